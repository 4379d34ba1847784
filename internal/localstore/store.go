package localstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

type Format string

const (
	FormatYAML  Format = "yaml"
	FormatExcel Format = "excel"
)

// FormatFor selects the file format from the path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatExcel, nil
	default:
		return "", domain.Errorf(domain.KindConfiguration, "select format",
			"unsupported file extension %q for %s (use .yaml, .yml or .xlsx)", filepath.Ext(path), path)
	}
}

// Exists reports whether a task file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the task file at path in the format its extension names.
func Load(path string) (*domain.Container, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, domain.Errorf(domain.KindNotFound, "load", "local file %s not found, run pull first", path)
	}
	if format == FormatExcel {
		return LoadExcel(path)
	}
	return LoadYAML(path)
}

// Save writes c to path, creating parent directories as needed.
func Save(c *domain.Container, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if format == FormatExcel {
		return SaveExcel(c, path)
	}
	return SaveYAML(c, path)
}

// FileStore exposes the package functions as a value so services can take
// the local store as a dependency.
type FileStore struct{}

func (FileStore) Load(path string) (*domain.Container, error) { return Load(path) }
func (FileStore) Save(c *domain.Container, path string) error { return Save(c, path) }
func (FileStore) Exists(path string) bool { return Exists(path) }
func (FileStore) Validate(c *domain.Container) []error { return Validate(c) }
func (FileStore) DescriptionsDir(localPath string) string { return DescriptionsDir(localPath) }
func (FileStore) LoadDescriptions(dir string, items []*domain.WorkItem) (int, error) {
	return LoadDescriptions(dir, items)
}
func (FileStore) SaveDescriptions(dir string, items []*domain.WorkItem) (int, error) {
	return SaveDescriptions(dir, items)
}
