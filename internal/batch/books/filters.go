package books

import (
	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/predicate"
)

// NewEmptyISBNFilter drops books without an ISBN. Sites occasionally
// return placeholder records with the ISBN field blank.
func NewEmptyISBNFilter() batch.Filter[*models.Book] {
	return batch.FilterFunc[*models.Book](func(books []*models.Book) []*models.Book {
		kept := make([]*models.Book, 0, len(books))
		for _, book := range books {
			if book.ISBN != "" {
				kept = append(kept, book)
			}
		}
		return kept
	})
}

// NewDropDuplicateISBNFilter keeps the first book per ISBN and drops later
// duplicates, preserving order.
func NewDropDuplicateISBNFilter() batch.Filter[*models.Book] {
	return batch.FilterFunc[*models.Book](func(books []*models.Book) []*models.Book {
		seen := make(map[string]struct{}, len(books))
		kept := make([]*models.Book, 0, len(books))
		for _, book := range books {
			if _, dup := seen[book.ISBN]; dup {
				continue
			}
			seen[book.ISBN] = struct{}{}
			kept = append(kept, book)
		}
		return kept
	})
}

// NewOriginFilter validates each book's raw record from the given site
// against the site's rule tree. A book without a record from the site, or
// a site without rules, passes unfiltered.
func NewOriginFilter(roots map[models.Site]predicate.Node, site models.Site) batch.Filter[*models.Book] {
	root := roots[site]
	return batch.FilterFunc[*models.Book](func(books []*models.Book) []*models.Book {
		if root == nil {
			return books
		}
		kept := make([]*models.Book, 0, len(books))
		for _, book := range books {
			raw := book.Original(site)
			if raw == nil || root.Test(raw) {
				kept = append(kept, book)
			}
		}
		return kept
	})
}

// DefaultFilterChain is the standard collection filter: drop blank ISBNs,
// collapse duplicates, then validate the site's raw records.
func DefaultFilterChain(roots map[models.Site]predicate.Node, site models.Site) *batch.FilterChain[*models.Book] {
	return batch.NewFilterChain(
		NewEmptyISBNFilter(),
		NewDropDuplicateISBNFilter(),
		NewOriginFilter(roots, site),
	)
}
