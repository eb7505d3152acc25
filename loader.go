// FILE: lixenwraith/confvar/loader.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document formats understood by ParseDocument
const (
	FormatAuto = "auto"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// LoadFile reads a YAML, TOML or JSON document and applies it to the
// declared variables. A missing file returns ErrConfigNotFound; parse errors
// are returned without touching any variable.
func (r *Registry) LoadFile(path string) error {
	root, err := LoadDocument(path)
	if err != nil {
		r.Logger().WithError(err).WithField("file", path).Error("config file load failed")
		return err
	}
	return r.ApplyDocument(root)
}

// LoadData parses data in the given format (FormatAuto to detect) and
// applies it to the declared variables.
func (r *Registry) LoadData(data []byte, format string) error {
	root, err := ParseDocument(data, format)
	if err != nil {
		r.Logger().WithError(err).Error("config document parse failed")
		return err
	}
	return r.ApplyDocument(root)
}

// LoadDocument reads and parses a document file. The format is taken from
// the extension, falling back to content detection.
func LoadDocument(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = FormatAuto
	}

	root, err := ParseDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return root, nil
}

// ParseDocument parses data into a document tree.
func ParseDocument(data []byte, format string) (Node, error) {
	if format == "" || format == FormatAuto {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, ErrUnknownFormat
		}
	}

	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return YAMLNode(&doc), nil

	case FormatTOML:
		tree := make(map[string]any)
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return NodeFromValue(tree)

	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Numbers stay as literal text until normalized
		var tree any
		if err := decoder.Decode(&tree); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return NodeFromValue(normalizeJSON(tree))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// jsonInteger is an integer literal outside the int64 range, kept verbatim
type jsonInteger string

// MarshalYAML emits the literal as an integer scalar
func (n jsonInteger) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: string(n)}, nil
}

// normalizeJSON replaces json.Number with int64, float64 or, for integers
// wider than int64, the literal text so no digits are lost
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if !strings.ContainsAny(val.String(), ".eE") {
			return jsonInteger(val.String())
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, child := range val {
			val[k] = normalizeJSON(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = normalizeJSON(child)
		}
		return val
	default:
		return v
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		// .conf, .config and others are detected from content
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: "key = value" lines are also valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
