// Package books assembles the per-site book collection jobs on top of the
// generic batch engine: publisher keyword search for sites with a search
// API, stored-book enrichment for sites queried one ISBN at a time.
package books

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inkwhale/bookbatch/internal/batch"
)

// Parameter keys shared by the book collection jobs.
const (
	// ParamPublisher is a comma-separated list of publisher ids.
	ParamPublisher = "publisher_id"

	// ParamFrom and ParamTo bound the publication date window,
	// formatted 2006-01-02.
	ParamFrom = "from"
	ParamTo   = "to"

	// ParamISBN is an optional comma-separated list of ISBNs. Enrichment
	// jobs use it to target specific stored books instead of a window.
	ParamISBN = "isbn"
)

const dateLayout = "2006-01-02"

// PublisherIDs parses the publisher parameter. The parameter is required
// and must hold at least one id.
func PublisherIDs(params batch.JobParameter) ([]uint64, error) {
	raw, ok := params[ParamPublisher]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, batch.NewInvalidArgumentsError("publisher_id parameter is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, batch.NewInvalidArgumentsError(fmt.Sprintf("invalid publisher id %q", part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Window parses the from and to parameters. Both are required and
// from must not be after to.
func Window(params batch.JobParameter) (time.Time, time.Time, error) {
	from, err := requiredDate(params, ParamFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := requiredDate(params, ParamTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, batch.NewInvalidArgumentsError("from is after to")
	}
	return from, to, nil
}

// ISBNs parses the optional isbn parameter. Absence yields a nil slice;
// a present but blank value is an error.
func ISBNs(params batch.JobParameter) ([]string, error) {
	raw, ok := params[ParamISBN]
	if !ok {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	isbns := make([]string, 0, len(parts))
	for _, part := range parts {
		isbn := strings.TrimSpace(part)
		if isbn == "" {
			continue
		}
		isbns = append(isbns, isbn)
	}
	if len(isbns) == 0 {
		return nil, batch.NewInvalidArgumentsError("isbn parameter holds no ISBNs")
	}
	return isbns, nil
}

func requiredDate(params batch.JobParameter, key string) (time.Time, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return time.Time{}, batch.NewInvalidArgumentsError(key + " parameter is required")
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, batch.NewInvalidArgumentsError(fmt.Sprintf("invalid %s %q, want %s", key, raw, dateLayout))
	}
	return t, nil
}
