package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/persona-digest/internal/normalisers/markdown"
	"github.com/custodia-labs/persona-digest/internal/normalisers/pdf"
	"github.com/custodia-labs/persona-digest/internal/normalisers/plaintext"
)

// Extensions maps the input file extensions a run accepts to MIME types.
var Extensions = map[string]string{
	".pdf":      "application/pdf",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
}

// MIMETypeFor returns the MIME type for a file name, or "" if unsupported.
func MIMETypeFor(name string) string {
	return Extensions[strings.ToLower(filepath.Ext(name))]
}

// RegisterDefaults installs the built-in normalisers.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
}

// DefaultRegistry returns a registry with the built-in normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
