// Package filesystem reads input documents from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// MIMEResolver returns the MIME type for a file name, or "" to skip the file.
type MIMEResolver func(name string) string

// Source lists the top-level files of a directory whose type resolves.
// Subdirectories and hidden files are ignored.
type Source struct {
	root    string
	mimeFor MIMEResolver
}

// New creates a filesystem source rooted at root.
func New(root string, mimeFor MIMEResolver) *Source {
	return &Source{root: root, mimeFor: mimeFor}
}

// Root returns the input directory.
func (s *Source) Root() string {
	return s.root
}

// List returns the supported documents in the directory, sorted by name.
func (s *Source) List(ctx context.Context) ([]domain.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: input directory %s", domain.ErrNotFound, s.root)
		}
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	// os.ReadDir returns entries sorted by file name.
	refs := make([]domain.DocumentRef, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		mimeType := s.mimeFor(name)
		if mimeType == "" {
			continue
		}
		path, err := filepath.Abs(filepath.Join(s.root, name))
		if err != nil {
			return nil, err
		}
		refs = append(refs, domain.DocumentRef{
			Name:     name,
			URI:      URI(path),
			MIMEType: mimeType,
		})
	}
	return refs, nil
}

// Fetch reads a listed document.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := ResolvePath(ref.URI)
	if path == "" {
		path = filepath.Join(s.root, ref.Name)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.Name)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, ref.Name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &domain.RawDocument{
		Name:     ref.Name,
		URI:      ref.URI,
		MIMEType: ref.MIMEType,
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime(),
		},
	}, nil
}
