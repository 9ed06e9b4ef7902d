package models

import "time"

// Series is a cluster of books sharing a normalized title lineage. The
// embedding vector of the normalized title is the cluster's canonical
// identity for similarity search.
type Series struct {
	ID uint64 `gorm:"primarykey" json:"id"`

	// Title is the normalized title the series was created from.
	Title string `gorm:"size:512" json:"title"`

	// ISBN is the set ISBN when a source reported one.
	ISBN string `gorm:"index;size:32" json:"isbn,omitempty"`

	// Embedding is the normalized-title vector used for similarity search.
	Embedding []float32 `gorm:"serializer:json" json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Series model.
func (Series) TableName() string {
	return "series"
}

// Validate checks required fields.
func (s *Series) Validate() error {
	if s.Title == "" {
		return ErrValidation{Field: "title", Message: "title is required"}
	}
	return nil
}
