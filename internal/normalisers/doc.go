// Package normalisers provides the document extractors: one per supported
// format, each turning a stored upload into text and, for paged formats,
// per-page images.
//
// Extractors are registered with the Registry at startup and resolved by
// MIME type, falling back to the file extension.
package normalisers
