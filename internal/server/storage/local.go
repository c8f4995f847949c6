package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

// LocalStore keeps blobs as files in one directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.root, name)
	if err := s.Write(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *LocalStore) Write(_ context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
