// Package normalisers provides implementations of the Normaliser interface
// for the document formats a digest run accepts. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; RegisterDefaults
// installs the built-in set (PDF, Markdown, plain text).
package normalisers
