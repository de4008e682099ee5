package filesystem

import "strings"

// ResolvePath converts a document URI to a local path for opening.
// Handles file:// URIs and bare paths.
func ResolvePath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// URI returns the file:// URI for a local path.
func URI(path string) string {
	return "file://" + path
}
