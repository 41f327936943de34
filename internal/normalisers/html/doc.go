// Package html provides a Normaliser implementation for HTML documents.
// It extracts the visible text nodes, one per line, dropping scripts,
// styles and other non-rendered content.
package html
