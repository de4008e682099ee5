// Package file loads query and reference manifests from JSON or YAML files.
//
// The query manifest is an object mapping group names to lists of
// {query, persona_hint} entries. Group order is preserved as written.
// The reference manifest is a list of {query, reference} entries.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Store reads manifests from fixed paths.
type Store struct {
	queriesPath    string
	referencesPath string
}

// New creates a manifest store. An empty referencesPath means no references.
func New(queriesPath, referencesPath string) *Store {
	return &Store{queriesPath: queriesPath, referencesPath: referencesPath}
}

// referenceEntry is one element of the reference manifest.
type referenceEntry struct {
	Query     string `json:"query" yaml:"query"`
	Reference string `json:"reference" yaml:"reference"`
}

// Queries loads the grouped query manifest.
func (s *Store) Queries(_ context.Context) (*domain.QueryManifest, error) {
	data, err := os.ReadFile(s.queriesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrManifest, s.queriesPath, err)
	}

	var groups []domain.QueryGroup
	if isYAML(s.queriesPath) {
		groups, err = decodeGroupsYAML(data)
	} else {
		groups, err = decodeGroupsJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrManifest, s.queriesPath, err)
	}

	for gi := range groups {
		for qi := range groups[gi].Queries {
			q := &groups[gi].Queries[qi]
			if strings.TrimSpace(q.Query) == "" {
				return nil, fmt.Errorf("%w: %s: group %q entry %d has no query text",
					domain.ErrManifest, s.queriesPath, groups[gi].Name, qi)
			}
			q.Group = groups[gi].Name
		}
	}

	return &domain.QueryManifest{Groups: groups}, nil
}

// References loads reference answers keyed by query text.
// Later entries for the same query win.
func (s *Store) References(_ context.Context) (domain.References, error) {
	if s.referencesPath == "" {
		return nil, fmt.Errorf("%w: no reference manifest configured", domain.ErrNotFound)
	}

	data, err := os.ReadFile(s.referencesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, s.referencesPath)
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrManifest, s.referencesPath, err)
	}

	var entries []referenceEntry
	if isYAML(s.referencesPath) {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrManifest, s.referencesPath, err)
	}

	refs := make(domain.References, len(entries))
	for _, e := range entries {
		if e.Query == "" {
			continue
		}
		refs[e.Query] = e.Reference
	}
	return refs, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// decodeGroupsJSON walks the top-level object token by token so groups
// keep their written order.
func decodeGroupsJSON(data []byte) ([]domain.QueryGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("query manifest must be an object of query groups")
	}

	var groups []domain.QueryGroup
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var queries []domain.QuerySpec
		if err := dec.Decode(&queries); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		groups = append(groups, domain.QueryGroup{Name: name, Queries: queries})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after query manifest")
	}
	return groups, nil
}

// decodeGroupsYAML reads the top-level mapping node in document order.
func decodeGroupsYAML(data []byte) ([]domain.QueryGroup, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("query manifest is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("query manifest must be a mapping of query groups")
	}

	groups := make([]domain.QueryGroup, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var queries []domain.QuerySpec
		if err := root.Content[i+1].Decode(&queries); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		groups = append(groups, domain.QueryGroup{Name: name, Queries: queries})
	}
	return groups, nil
}
