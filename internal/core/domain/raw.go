package domain

// DocumentRef identifies an input document before it is read.
type DocumentRef struct {
	// Name is the file name used to label records.
	Name string

	// URI is the location the document is read from.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string
}

// RawDocument represents opaque bytes read from an input document.
// It is the source's output before normalisation.
type RawDocument struct {
	// Name is the file name of the document.
	Name string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}
