package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes media files under a local directory. Saved files are
// served by the HTTP layer under /files/.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	const op = "media.NewDiskStore"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, filename, _ string, data []byte) (string, error) {
	const op = "media.DiskStore.Save"

	if err := validateFilename(filename); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%s: write file: %w", op, err)
	}

	return "/files/" + filename, nil
}

func validateFilename(filename string) error {
	if filename == "" {
		return errors.New("empty filename")
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return errors.New("invalid filename")
	}
	return nil
}
