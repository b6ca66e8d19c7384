// Package config holds the report settings and reads them from a YAML or
// JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"jestfail/internal/results"
)

// DefaultFile is read when --config is not given and the file exists.
const DefaultFile = ".jestfail.yaml"

// Config is the report configuration. Keys match the options of the
// danger-plugin-jest so existing settings carry over.
type Config struct {
	TestResultsJSONPath string `json:"testResultsJsonPath,omitempty" yaml:"testResultsJsonPath,omitempty"`
	RelativePath        string `json:"relativePath,omitempty" yaml:"relativePath,omitempty"`
	ShowSuccessMessage  bool   `json:"showSuccessMessage,omitempty" yaml:"showSuccessMessage,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{TestResultsJSONPath: results.DefaultPath}
}

// WithDefaults fills unset fields from Default.
func (c Config) WithDefaults() Config {
	if c.TestResultsJSONPath == "" {
		c.TestResultsJSONPath = results.DefaultPath
	}
	return c
}

// LoadFromPath reads a config file. Format is chosen by extension, or by
// content when the extension is not recognised.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// LoadOptional behaves like LoadFromPath but returns Default when the file
// does not exist.
func LoadOptional(path string) (Config, error) {
	c, err := LoadFromPath(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Load parses config bytes. ext is a format hint (".json", ".yaml", ".yml").
func Load(data []byte, ext string) (Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("parse config json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return c.WithDefaults(), nil
}
