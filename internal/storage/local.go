// Package storage provides the default object-storage backend: a local
// directory serving files under a public base URL. Production deployments
// swap in a bucket-backed implementation of the same two methods.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) *Local {
	return &Local{baseDir: baseDir, baseURL: baseURL}
}

func (l *Local) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	full := filepath.Join(l.baseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return l.baseURL + "/" + path, nil
}

func (l *Local) Remove(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(p))); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
