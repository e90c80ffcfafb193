package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Conventional configuration filenames probed when no explicit path is
// supplied, in preference order.
var defaultConfigNames = []string{
	"replay-config.yaml",
	"replay-config.yml",
	"replay-config.json",
}

// LoadFromFile reads a Config from a JSON or YAML file. The format is
// auto-detected from the file extension (.yaml, .yml for YAML, otherwise
// JSON). The document is parsed but not compiled; call Compile to obtain
// executable rules.
func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseJSON parses JSON bytes into a Config.
func ParseJSON(data []byte) (*Config, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &cfg, nil
}

// ParseYAML parses YAML bytes into a Config.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

// FindDefaultConfig returns the first conventional configuration file
// present in dir, or "" when none exists.
func FindDefaultConfig(dir string) string {
	for _, name := range defaultConfigNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadAndCompile loads a configuration file and compiles it in one step.
// When path is empty, the conventional default filenames are probed in the
// working directory; if none exists an empty rule set is returned, since
// the configuration document is optional.
func LoadAndCompile(path string) (*Rules, error) {
	if path == "" {
		path = FindDefaultConfig(".")
		if path == "" {
			return Compile(&Config{Version: Version})
		}
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return compiled, nil
}
