// Package plaintext normalises plain text input documents.
package plaintext

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw text document. Line endings are unified and a
// leading byte order mark is dropped; the text is otherwise unchanged.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(bytes.TrimPrefix(raw.Content, utf8BOM))
	content = strings.ReplaceAll(content, "\r\n", "\n")

	metadata := make(map[string]any, len(raw.Metadata)+1)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        uuid.New().String(),
			Name:      raw.Name,
			URI:       raw.URI,
			Title:     titleFromName(raw.Name, raw.URI),
			Content:   content,
			Metadata:  metadata,
			CreatedAt: time.Now(),
		},
	}, nil
}

// titleFromName turns "quarterly_report-2024.txt" into "quarterly report 2024".
func titleFromName(name, uri string) string {
	if name == "" {
		name = filepath.Base(uri)
	}
	title := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(title)
}
