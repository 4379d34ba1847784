package localstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

const (
	descriptionsDirName = "issues"
	headerPrefix        = "<!-- Issue #"
)

// DescriptionsDir is the sidecar directory that belongs to a task file.
func DescriptionsDir(localPath string) string {
	return filepath.Join(filepath.Dir(localPath), descriptionsDirName)
}

func descriptionPath(dir string, number int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.md", number))
}

// SaveDescription writes the item's body to <dir>/<n>.md behind a header
// comment. Local-only items and empty bodies are skipped; the return value
// reports whether a file was written.
func SaveDescription(dir string, item *domain.WorkItem) (bool, error) {
	body := item.DescriptionText()
	if item.Number <= 0 || strings.TrimSpace(body) == "" {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating descriptions dir: %w", err)
	}
	content := fmt.Sprintf("%s%d: %s -->\n\n%s", headerPrefix, item.Number, item.Title, body)
	if err := os.WriteFile(descriptionPath(dir, item.Number), []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing description for #%d: %w", item.Number, err)
	}
	return true, nil
}

// LoadDescription returns the stored body for an item number, or nil when
// there is no file or the file holds only the header.
func LoadDescription(dir string, number int) (*string, error) {
	data, err := os.ReadFile(descriptionPath(dir, number))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading description for #%d: %w", number, err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], headerPrefix) {
		if len(lines) > 2 {
			content = strings.Join(lines[2:], "\n")
		} else {
			content = ""
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	return &content, nil
}

// SaveDescriptions writes a sidecar for every numbered item with a body and
// returns how many were written.
func SaveDescriptions(dir string, items []*domain.WorkItem) (int, error) {
	saved := 0
	err := domain.Walk(items, func(item, _ *domain.WorkItem, _ int) error {
		ok, err := SaveDescription(dir, item)
		if err != nil {
			return err
		}
		if ok {
			saved++
		}
		return nil
	})
	return saved, err
}

// LoadDescriptions overrides item bodies with their sidecar contents and
// returns how many were found. A missing directory loads nothing.
func LoadDescriptions(dir string, items []*domain.WorkItem) (int, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	loaded := 0
	err := domain.Walk(items, func(item, _ *domain.WorkItem, _ int) error {
		if item.Number <= 0 {
			return nil
		}
		body, err := LoadDescription(dir, item.Number)
		if err != nil {
			return err
		}
		if body != nil {
			item.Description = body
			loaded++
		}
		return nil
	})
	return loaded, err
}
