// Package series assembles the series mapping job: unorganized books are
// normalized, embedded and attached to the nearest existing series, or to
// a freshly created one when nothing is close enough.
package series

import (
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// MappingResult is one book's series decision.
type MappingResult struct {
	// Book is the book being organized.
	Book *models.Book

	// Series is the target series. For a new mapping it is not yet
	// persisted and has no ID.
	Series *models.Series

	// IsNew reports whether the series must be created before linking.
	IsNew bool

	// Score is the similarity against the chosen series, when the
	// decision came from a similarity search. Zero for set-ISBN matches.
	Score float64

	// Nearest is the best rejected candidate for a new mapping, with its
	// score in NearestScore. Carried for auditing only; the writer never
	// reads it.
	Nearest      *models.Series
	NearestScore float64
}

// ExistingMapping builds a result linking the book to a stored series.
func ExistingMapping(book *models.Book, series *models.Series, score float64) *MappingResult {
	return &MappingResult{Book: book, Series: series, Score: score}
}

// NewMapping builds a result creating a new series for the book. nearest,
// when non-nil, records the closest stored series that fell short of the
// threshold.
func NewMapping(book *models.Book, series *models.Series, nearest *repository.SeriesMatch) *MappingResult {
	result := &MappingResult{Book: book, Series: series, IsNew: true}
	if nearest != nil {
		result.Nearest = nearest.Series
		result.NearestScore = nearest.Score
	}
	return result
}
