package models

import "time"

// Publisher is a publishing house whose catalogue is collected. Each site
// is searched with the publisher's site-specific keywords (imprint names,
// spelling variants).
type Publisher struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"not null;size:255" json:"name"`

	// Keywords maps each site to the search keywords used there.
	Keywords map[Site][]string `gorm:"serializer:json" json:"keywords,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Publisher model.
func (Publisher) TableName() string {
	return "publishers"
}

// KeywordsFor returns the search keywords configured for a site.
func (p *Publisher) KeywordsFor(site Site) []string {
	if p.Keywords == nil {
		return nil
	}
	return p.Keywords[site]
}
