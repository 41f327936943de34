// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions against the indexed documents.
	Answer driving.AnswerService

	// Document manages the uploaded document collection.
	Document driving.DocumentService

	// Settings exposes the effective configuration. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, document driving.DocumentService) *Ports {
	return &Ports{
		Answer:   answer,
		Document: document,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
