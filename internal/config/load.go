package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFiles reads and parses the given YAML documents and merges them in
// order, later files overriding earlier ones.
func LoadFiles(paths ...string) (*Node, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration file given")
	}

	merged := map[string]any{}
	for _, path := range paths {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		values, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		merged = Merge(merged, values)
	}

	return NewNode(merged), nil
}

// Parse decodes one YAML document into a mapping. An empty document yields
// an empty mapping.
func Parse(data []byte) (map[string]any, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// Merge returns base with overlay applied on top. Mappings are merged
// recursively; any other value in overlay replaces the one in base. Neither
// input is modified.
func Merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		baseMap, baseOK := asMap(out[k])
		overMap, overOK := asMap(v)
		if baseOK && overOK {
			out[k] = Merge(baseMap, overMap)
			continue
		}
		out[k] = v
	}
	return out
}
