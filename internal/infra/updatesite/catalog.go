package updatesite

import (
	"bytes"
	"encoding/json"
	"fmt"

	"pluginsync/internal/domain"
)

// Catalog is the plugin index published by an update site.
type Catalog struct {
	ID      string            `json:"id,omitempty"`
	Plugins map[string]Plugin `json:"plugins"`
}

type Plugin struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	URL          string       `json:"url,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

type Dependency struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Optional bool   `json:"optional"`
}

var jsonpPrefix = []byte("updateCenter.post(")

// Decode parses an update-center document. Both plain JSON and the
// updateCenter.post(...) wrapper are accepted.
func Decode(body []byte) (Catalog, error) {
	payload := bytes.TrimSpace(body)
	if bytes.HasPrefix(payload, jsonpPrefix) {
		payload = bytes.TrimPrefix(payload, jsonpPrefix)
		payload = bytes.TrimSpace(payload)
		payload = bytes.TrimSuffix(payload, []byte(";"))
		payload = bytes.TrimSpace(payload)
		if !bytes.HasSuffix(payload, []byte(")")) {
			return Catalog{}, fmt.Errorf("decode update center: unterminated updateCenter.post wrapper")
		}
		payload = bytes.TrimSuffix(payload, []byte(")"))
	}

	var catalog Catalog
	if err := json.Unmarshal(payload, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode update center: %w", err)
	}
	if catalog.Plugins == nil {
		catalog.Plugins = map[string]Plugin{}
	}
	for id, plugin := range catalog.Plugins {
		if plugin.Name == "" {
			plugin.Name = id
			catalog.Plugins[id] = plugin
		}
	}
	return catalog, nil
}

// Plugin returns the entry for id when its version parses.
func (c Catalog) Plugin(id string) (Plugin, domain.Version, bool) {
	plugin, ok := c.Plugins[id]
	if !ok {
		return Plugin{}, domain.Version{}, false
	}
	version, err := domain.ParseVersion(plugin.Version)
	if err != nil {
		return Plugin{}, domain.Version{}, false
	}
	return plugin, version, true
}
