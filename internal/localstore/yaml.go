package localstore

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML task file.
func LoadYAML(path string) (*domain.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.KindValidation, "parse "+path, err)
	}
	c, err := FromDocument(&doc)
	if err != nil {
		return nil, domain.WrapError(domain.KindValidation, "parse "+path, err)
	}
	return c, nil
}

// SaveYAML writes c as a YAML task file.
func SaveYAML(c *domain.Container, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToDocument(c)); err != nil {
		return fmt.Errorf("encoding task file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding task file: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing task file: %w", err)
	}
	return nil
}
