// Package blob stores uploaded images and addresses them by reference URL.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a reference does not resolve to a stored blob.
var ErrNotFound = errors.New("blob not found")

// Store persists image bytes and reads them back by reference.
type Store interface {
	Put(ctx context.Context, data []byte, mime string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, string, error)
}

// LocalStore writes blobs into a directory that the HTTP server exposes
// under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory blobs are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Put writes data under a fresh random name and returns its reference URL.
func (s *LocalStore) Put(ctx context.Context, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}

	ext := ""
	if mt := mimetype.Lookup(mime); mt != nil {
		ext = mt.Extension()
	} else {
		ext = mimetype.Detect(data).Extension()
	}
	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Get reads the blob behind ref and sniffs its MIME type.
func (s *LocalStore) Get(ctx context.Context, ref string) ([]byte, string, error) {
	name, ok := s.nameFor(ref)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", ref, ErrNotFound)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read blob: %w", err)
	}
	return data, mimetype.Detect(data).String(), nil
}

// nameFor maps a reference URL to a file name inside dir, refusing anything
// that would escape it.
func (s *LocalStore) nameFor(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || rest == "" {
		return "", false
	}
	if path.Base(rest) != rest || rest == "." || rest == ".." {
		return "", false
	}
	return rest, true
}
