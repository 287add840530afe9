// Package models defines the domain types for Raido.
package models

import "time"

// FileInfo is a lightweight representation returned by list operations.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reference is an internal cross-note link found in a note body.
// Target is the opaque note identifier, Query an optional sub-target
// selector, Label an optional explicit display text.
type Reference struct {
	Target string `json:"target"`
	Query  string `json:"query,omitempty"`
	Label  string `json:"label,omitempty"`
}
