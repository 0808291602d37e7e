package validator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"pluginsync/internal/domain"
)

const desiredStateSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "proxy": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "properties": {
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 0, "maximum": 65535},
        "user": {"type": "string"},
        "password": {"type": "string"},
        "noProxy": {"type": ["array", "string"], "items": {"type": "string"}}
      }
    },
    "updateSites": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "url"],
        "properties": {
          "id": {"type": "string"},
          "url": {"type": "string"}
        }
      }
    },
    "required": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "minVersion"],
        "properties": {
          "id": {"type": "string"},
          "minVersion": {"type": "string"}
        }
      }
    },
    "defaultSiteURL": {"type": "string"},
    "strictDuplicates": {"type": "boolean"}
  }
}`

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(desiredStateSchema), &schema); err != nil {
		return nil, fmt.Errorf("decode desired state schema: %w", err)
	}
	return schema.Resolve(nil)
})

// ValidateDesiredState checks the structure of a decoded configuration document.
// Numeric versions must be quoted so that "2.10" is not read as 2.1.
func ValidateDesiredState(doc map[string]any) error {
	resolved, err := resolvedSchema()
	if err != nil {
		return domain.E(domain.CodeInternal, "validate config", "", err)
	}

	instance, err := toJSONValue(doc)
	if err != nil {
		return domain.Malformed("validate config", err.Error())
	}
	if err := resolved.Validate(instance); err != nil {
		return domain.Malformed("validate config", err.Error())
	}
	return nil
}

// toJSONValue normalizes YAML and TOML decoder output into plain JSON types.
func toJSONValue(doc map[string]any) (any, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return decoded, nil
}
