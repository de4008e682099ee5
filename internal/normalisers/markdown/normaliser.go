// Package markdown normalises Markdown input documents to plain prose.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Higher than plaintext
}

// Normalise strips Markdown syntax so sentence splitting sees prose only.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")

	metadata := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = "markdown"

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        uuid.New().String(),
			Name:      raw.Name,
			URI:       raw.URI,
			Title:     extractTitle(source, raw.Name, raw.URI),
			Content:   Strip(source),
			Metadata:  metadata,
			CreatedAt: time.Now(),
		},
	}, nil
}

// rewrite is one Markdown construct and its plain-text replacement.
type rewrite struct {
	pattern *regexp.Regexp
	repl    string
}

// Applied in order: blocks before inline constructs. Inline code keeps its
// text; images are dropped and links keep their label.
var rewrites = []rewrite{
	{regexp.MustCompile("(?s)```.*?```"), ""},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+(.*?)\s*#*$`), "$1"},
	{regexp.MustCompile(`(?m)^>\s?`), ""},
	{regexp.MustCompile(`(?m)^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`), ""},
	{regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`), ""},
	{regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`), "$2"},
	{regexp.MustCompile(`(^|\W)[*_]([^*_\n]+)[*_](\W|$)`), "$1$2$3"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Strip removes common Markdown formatting, leaving plain text.
func Strip(source string) string {
	for _, rw := range rewrites {
		source = rw.pattern.ReplaceAllString(source, rw.repl)
	}
	return strings.TrimSpace(source)
}

// extractTitle uses the first H1 heading, falling back to the file name.
func extractTitle(source, name, uri string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
	}

	if name == "" {
		name = filepath.Base(uri)
	}
	title := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(title)
}
