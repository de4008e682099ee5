package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()

	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{Name: "empty.pdf", MIMEType: "application/pdf"}

	_, err := New().Normalise(context.Background(), raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "empty.pdf")
}

func TestNormalise_NotAPDF(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "fake.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is plain text pretending to be a PDF"),
	}

	_, err := New().Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestNormalise_TruncatedHeader(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "broken.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4\n%%EOF"),
	}

	_, err := New().Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}
