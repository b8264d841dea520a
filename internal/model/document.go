package model

import "time"

// DocumentContentType is the only content type documents are stored and served as.
const DocumentContentType = "application/pdf"

// Document represents an uploaded PDF owned by a single user.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	StorageKey  string      `json:"-"`
	Size        int64       `json:"size"`
	ContentType string      `json:"content_type"`
	CreatedAt   time.Time   `json:"created_at"`
	Highlights  []Highlight `json:"highlights,omitempty"`
}

// Pending reports whether the upload never completed. Pending documents are not servable.
func (d *Document) Pending() bool {
	return d.StorageKey == ""
}

// Highlight is an anchor tying captured text on a page to a document.
// Start and End come from the selection event at creation time and are only a hint;
// Text is the re-location key.
type Highlight struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Color      Color     `json:"color"`
	Comment    string    `json:"comment"`
	Page       int       `json:"page"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Occurrence int       `json:"occurrence"`
	Seq        int64     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
