package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/catalog"
	"pluginsync/internal/infra/catalog/normalizer"
	"pluginsync/internal/infra/catalog/validator"
)

// Format is the syntax of a desired-state document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

func newDesiredViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("defaultSiteURL", "")
	v.SetDefault("strictDuplicates", false)
	return v
}

// Load reads the desired state from path.
func (l *Loader) Load(ctx context.Context, path string) (domain.DesiredState, error) {
	if path == "" {
		return domain.DesiredState{}, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DesiredState{}, fmt.Errorf("read config: %w", err)
	}
	desired, err := l.Parse(ctx, data, FormatForPath(path))
	if err != nil {
		return domain.DesiredState{}, err
	}
	l.logger.Debug("desired state loaded",
		zap.String("path", path),
		zap.Int("update_sites", len(desired.Sources)),
		zap.Int("required", len(desired.Required)),
		zap.Bool("proxy", desired.Proxy != nil),
	)
	return desired, nil
}

// Parse decodes, validates and normalizes a desired-state document.
func (l *Loader) Parse(ctx context.Context, data []byte, format Format) (domain.DesiredState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.DesiredState{}, ctx.Err()
	}

	v := newDesiredViper()
	var doc map[string]any
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return domain.DesiredState{}, domain.Malformed("load config", fmt.Sprintf("parse config: %v", err))
		}
		if missing := catalog.ExpandMapEnv(doc); len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.Strings("missing", missing))
		}
		if err := validator.ValidateDesiredState(doc); err != nil {
			return domain.DesiredState{}, err
		}
		if err := v.MergeConfigMap(doc); err != nil {
			return domain.DesiredState{}, domain.Malformed("load config", fmt.Sprintf("parse config: %v", err))
		}
	default:
		expanded, missing, err := catalog.ExpandConfigEnv(data)
		if err != nil {
			return domain.DesiredState{}, domain.Malformed("load config", err.Error())
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.Strings("missing", missing))
		}
		if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
			return domain.DesiredState{}, domain.Malformed("load config", fmt.Sprintf("parse config: %v", err))
		}
		if err := validator.ValidateDesiredState(doc); err != nil {
			return domain.DesiredState{}, err
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return domain.DesiredState{}, domain.Malformed("load config", fmt.Sprintf("parse config: %v", err))
		}
	}

	var raw normalizer.RawDesiredState
	if err := v.Unmarshal(&raw); err != nil {
		return domain.DesiredState{}, domain.Malformed("load config", fmt.Sprintf("decode config: %v", err))
	}
	if err := ctx.Err(); err != nil {
		return domain.DesiredState{}, err
	}

	desired, errs := normalizer.NormalizeDesiredState(raw)
	if len(errs) > 0 {
		return domain.DesiredState{}, domain.Malformed("load config", strings.Join(errs, "; "))
	}
	return desired, nil
}
