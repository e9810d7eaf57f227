package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes files beneath a single root directory. Paths are always
// joined to the root; anything trying to escape it is rejected.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes upload directory", path)
	}
	return full, nil
}

func (s *LocalStorage) Save(path string, file io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(full), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, file)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *LocalStorage) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(path string) string {
	return "/uploads/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
}

// Root returns the directory files are stored under, for serving via
// http.FileServer.
func (s *LocalStorage) Root() string {
	return s.root
}
