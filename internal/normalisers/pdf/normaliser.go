// Package pdf extracts the text layer of PDF input documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts text page by page and joins pages with a newline.
// Pages whose text cannot be decoded are skipped; a document with no
// readable pages yields empty content rather than an error.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, pages, err := extractText(ctx, raw.Content, raw.Name)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["page_count"] = pages

	name := raw.Name
	if name == "" {
		name = filepath.Base(raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        uuid.New().String(),
			Name:      raw.Name,
			URI:       raw.URI,
			Title:     strings.TrimSuffix(name, filepath.Ext(name)),
			Content:   content,
			Metadata:  metadata,
			CreatedAt: time.Now(),
		},
	}, nil
}

func extractText(ctx context.Context, data []byte, name string) (text string, pages int, err error) {
	if len(data) == 0 {
		return "", 0, fmt.Errorf("%w: %s is empty", domain.ErrExtraction, name)
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: malformed PDF: %v", domain.ErrExtraction, name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}

	pages = reader.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("%s: skipping page %d: %v", name, i, err)
			continue
		}
		parts = append(parts, pageText)
	}

	return strings.Join(parts, "\n"), pages, nil
}
