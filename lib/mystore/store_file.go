package mystore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps every key in its own file below dir, readable by the owner only.
type FileStore struct {
	dir string
}

func NewFileStore(c context.Context, dir string) (*FileStore, func(), error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("error determining config dir: %w", err)
		}
		dir = filepath.Join(configDir, "ergsync")
	}
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, func() {}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileStore) Put(c context.Context, key string, value string) error {
	// readers never observe a partially written record
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.WriteString(value)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", key, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("error closing %s: %w", key, err)
	}
	err = os.Chmod(tmp.Name(), 0o600)
	if err != nil {
		return fmt.Errorf("error protecting %s: %w", key, err)
	}
	err = os.Rename(tmp.Name(), s.path(key))
	if err != nil {
		return fmt.Errorf("error storing %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Get(c context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStore) Delete(c context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error deleting %s: %w", key, err)
	}
	return nil
}
