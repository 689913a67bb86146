package rdfexport

import (
	"errors"
	"time"
)

// Payload is the message published for each exported record.
type Payload struct {
	EntityID   string    `json:"entity_id"`
	Format     string    `json:"format"`
	MIMEType   string    `json:"mime_type"`
	Flavor     string    `json:"flavor"`
	Redirect   bool      `json:"redirect,omitempty"`
	Content    string    `json:"content"`
	ExportedAt time.Time `json:"exported_at"`
}

// Validate checks that the payload is complete.
func (p *Payload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entity_id is required")
	}
	if p.Format == "" {
		return errors.New("format is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}
