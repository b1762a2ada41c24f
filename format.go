// FILE: lixenwraith/envchain/format.go
package envchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Format identifies the syntax of a structured configuration document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DecodeTOML parses a TOML document into a nested map. Local dates, times and
// datetimes keep the decoder's offset-free zones, which the getters recognize.
func DecodeTOML(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeYAML parses a YAML document into a nested map.
// Timestamps are kept as their literal text so that dates and datetimes go
// through the same grammar and awareness rules as environment values.
func DecodeYAML(data []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	if root.Kind == 0 {
		return doc, nil
	}
	untagTimestamps(&root)
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// untagTimestamps retags every timestamp scalar under n as a string.
// Alias nodes are not followed; their anchors are visited in place.
func untagTimestamps(n *yaml.Node) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			n.Tag = "!!str"
		}
	case yaml.DocumentNode, yaml.SequenceNode, yaml.MappingNode:
		for _, child := range n.Content {
			untagTimestamps(child)
		}
	}
}

// DecodeJSON parses a JSON object into a nested map, keeping integers exact.
func DecodeJSON(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	doc := make(map[string]any)
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode parses data in the given format.
func Decode(format Format, data []byte) (map[string]any, error) {
	switch format {
	case FormatTOML:
		return DecodeTOML(data)
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON:
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// DecodeDotenv parses ".env" content into a flat name/value map.
// Malformed lines are an error.
func DecodeDotenv(data []byte) (map[string]string, error) {
	values, err := gotenv.StrictParse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return values, nil
}

// detectFileFormat determines format from file extension, defaulting to TOML.
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}
