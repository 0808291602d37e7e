package catalog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// typedKeys lists the desired-state keys whose expanded value is not a
// string. Everything else, versions included, stays a string after expansion.
var typedKeys = map[string]string{
	"port":             "!!int",
	"strictDuplicates": "!!bool",
}

// ExpandConfigEnv expands ${VAR} references in the YAML scalars of a desired
// state and returns the re-encoded document with the sorted unset variables.
func ExpandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	missing := make(map[string]struct{})
	walkNode(&root, "", missing)

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), missingList(missing), nil
}

func walkNode(node *yaml.Node, key string, missing map[string]struct{}) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			walkNode(child, key, missing)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			walkNode(node.Content[i+1], node.Content[i].Value, missing)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			walkNode(node.Alias, key, missing)
		}
	case yaml.ScalarNode:
		if node.Tag != "" && node.Tag != "!!str" {
			return
		}
		if !strings.Contains(node.Value, "$") {
			return
		}
		expanded := expandEnvWithTracking(node.Value, missing)
		node.Tag, node.Value = "!!str", expanded
		if tag, ok := typedKeys[key]; ok && node.Style == 0 {
			if _, ok := coerceTyped(tag, expanded); ok {
				node.Tag = tag
			}
		}
	}
}

// ExpandMapEnv expands ${VAR} references in the string values of a decoded
// document in place and returns the sorted unset variables.
func ExpandMapEnv(doc map[string]any) []string {
	missing := make(map[string]struct{})
	expandMap(doc, missing)
	return missingList(missing)
}

func expandMap(doc map[string]any, missing map[string]struct{}) {
	for key, value := range doc {
		doc[key] = expandValue(key, value, missing)
	}
}

func expandValue(key string, value any, missing map[string]struct{}) any {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "$") {
			return v
		}
		expanded := expandEnvWithTracking(v, missing)
		if tag, ok := typedKeys[key]; ok {
			if typed, ok := coerceTyped(tag, expanded); ok {
				return typed
			}
		}
		return expanded
	case map[string]any:
		expandMap(v, missing)
		return v
	case []any:
		for i, child := range v {
			v[i] = expandValue(key, child, missing)
		}
		return v
	case []map[string]any:
		for _, child := range v {
			expandMap(child, missing)
		}
		return v
	default:
		return value
	}
}

func coerceTyped(tag, value string) (any, bool) {
	value = strings.TrimSpace(value)
	switch tag {
	case "!!int":
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	case "!!bool":
		b, err := strconv.ParseBool(value)
		return b, err == nil
	default:
		return nil, false
	}
}

func expandEnvWithTracking(value string, missing map[string]struct{}) string {
	return os.Expand(value, func(name string) string {
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		missing[name] = struct{}{}
		return ""
	})
}

func missingList(missing map[string]struct{}) []string {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
