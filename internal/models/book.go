package models

import (
	"time"
)

// Book represents one collected book. ISBN is the business key; the same
// ISBN seen on several sites collapses into one row whose Originals map
// keeps every site's raw record.
type Book struct {
	ID          uint64  `gorm:"primarykey" json:"id"`
	ISBN        string  `gorm:"uniqueIndex;not null;size:32" json:"isbn"`
	PublisherID uint64  `gorm:"index" json:"publisher_id"`
	SeriesID    *uint64 `gorm:"index" json:"series_id,omitempty"`

	// Title is the title as reported by the source, before any normalization.
	Title string `gorm:"not null;size:512" json:"title"`

	// ScheduledPubDate is the announced publication date, when known.
	ScheduledPubDate *time.Time `json:"scheduled_pub_date,omitempty"`

	// ActualPubDate is the confirmed publication date, when known.
	ActualPubDate *time.Time `json:"actual_pub_date,omitempty"`

	// Originals holds the per-site raw records this book was built from.
	Originals Originals `gorm:"serializer:json" json:"originals,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Book model.
func (Book) TableName() string {
	return "books"
}

// Validate checks required fields.
func (b *Book) Validate() error {
	if b.ISBN == "" {
		return ErrValidation{Field: "isbn", Message: "isbn is required"}
	}
	if b.Title == "" {
		return ErrValidation{Field: "title", Message: "title is required"}
	}
	return nil
}

// Original returns the raw record collected from the given site, or nil.
func (b *Book) Original(site Site) Raw {
	if b.Originals == nil {
		return nil
	}
	return b.Originals[site]
}

// AddOriginal attaches a site's raw record to the book, replacing any
// earlier record from the same site.
func (b *Book) AddOriginal(site Site, raw Raw) {
	if b.Originals == nil {
		b.Originals = make(Originals)
	}
	b.Originals[site] = raw
}

// Merge combines the receiver (the stored row) with an incoming book for
// the same ISBN. Identity fields come from the stored row; the incoming
// title and dates win when present, and originals are unioned with the
// incoming site records taking precedence.
func (b *Book) Merge(incoming *Book) *Book {
	merged := &Book{
		ID:               b.ID,
		ISBN:             b.ISBN,
		PublisherID:      b.PublisherID,
		SeriesID:         b.SeriesID,
		Title:            b.Title,
		ScheduledPubDate: b.ScheduledPubDate,
		ActualPubDate:    b.ActualPubDate,
		Originals:        make(Originals, len(b.Originals)),
	}
	for site, raw := range b.Originals {
		merged.Originals[site] = raw
	}

	if incoming.Title != "" && incoming.Title != b.Title {
		merged.Title = incoming.Title
	}
	if incoming.ScheduledPubDate != nil {
		merged.ScheduledPubDate = incoming.ScheduledPubDate
	}
	if incoming.ActualPubDate != nil {
		merged.ActualPubDate = incoming.ActualPubDate
	}
	for site, raw := range incoming.Originals {
		merged.Originals[site] = raw
	}
	return merged
}
