package stackcfg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a deserialized Root.
// It performs no validation beyond YAML decoding; validation happens in Resolve.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional behaves like Load but returns an empty Root when path does not exist.
func LoadOptional(path string) (*Root, error) {
	r, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Root{}, nil
	}
	return r, err
}

// Parse decodes a stored configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Root, error) {
	var cfg Root
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return &cfg, nil
}

// LoadDotenv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored
// unless required is true.
func LoadDotenv(path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
