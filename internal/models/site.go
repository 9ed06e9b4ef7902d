// Package models defines GORM database models for bookbatch entities.
package models

import "strings"

// Site identifies the source a raw book record was collected from.
type Site string

const (
	// SiteNLGO is the national library catalogue API.
	SiteNLGO Site = "NLGO"
	// SiteNaver is the Naver book search API.
	SiteNaver Site = "NAVER"
	// SiteAladin is the Aladin product API.
	SiteAladin Site = "ALADIN"
	// SiteKyobo is the Kyobo bookstore product pages (HTML scraped).
	SiteKyobo Site = "KYOBO"
)

// AllSites lists every known site in a stable order.
var AllSites = []Site{SiteNLGO, SiteNaver, SiteAladin, SiteKyobo}

// ParseSite converts a site code string to a Site.
func ParseSite(code string) (Site, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "nlgo":
		return SiteNLGO, nil
	case "naver":
		return SiteNaver, nil
	case "aladin":
		return SiteAladin, nil
	case "kyobo":
		return SiteKyobo, nil
	default:
		return "", ErrValidation{Field: "site", Message: "unknown site code: " + code}
	}
}

// String returns the site code.
func (s Site) String() string {
	return string(s)
}
