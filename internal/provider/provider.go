// Package provider implements the per-site collection clients. NLGO and
// Aladin search by publisher keyword with pagination, Naver looks up
// single ISBNs, and Kyobo scrapes product pages.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/observability"
)

// SearchRequest is one page of a publisher keyword search.
type SearchRequest struct {
	// Keyword is the publisher name registered at the site.
	Keyword string

	// From and To bound the publication date window.
	From time.Time
	To   time.Time

	// Page is 1-based.
	Page int
	Size int
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	TotalCount int
	PageNo     int
	Site       models.Site
	Books      []*models.Book

	// PageCount is the raw item count of the page before any client-side
	// filtering. Pagination must stop on PageCount, not len(Books): a
	// site that filters results locally can return an empty Books for a
	// page that was not empty on the wire.
	PageCount int
}

// Searcher is a site that supports paginated publisher keyword search.
type Searcher interface {
	Site() models.Site
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}

// Looker is a site queried one ISBN at a time.
type Looker interface {
	Site() models.Site
	// Lookup fetches the site's record for an ISBN. A nil book with a
	// nil error means the site does not know the ISBN.
	Lookup(ctx context.Context, isbn string) (*models.Book, error)
}

// RequestError reports a failed site request.
type RequestError struct {
	Site models.Site
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider %s: request failed: %v", e.Site, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError reports an unparseable site response.
type ParseError struct {
	Site models.Site
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %s: parsing response: %v", e.Site, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// maxSearchFetch caps how many raw items one keyword search fetches
// across pages; the search APIs stop serving results past this point.
const maxSearchFetch = 200

// SearchAll follows a keyword search across pages, in the site's page
// order, until a page comes back empty on the wire or the fetch cap is
// reached.
func SearchAll(ctx context.Context, s Searcher, keyword string, from, to time.Time, pageSize int) ([]*models.Book, error) {
	var all []*models.Book
	fetched := 0
	for page := 1; ; page++ {
		resp, err := s.Search(ctx, &SearchRequest{
			Keyword: keyword,
			From:    from,
			To:      to,
			Page:    page,
			Size:    pageSize,
		})
		if err != nil {
			return nil, err
		}
		if resp.PageCount == 0 {
			return all, nil
		}
		all = append(all, resp.Books...)
		fetched += resp.PageCount
		if fetched >= maxSearchFetch {
			return all, nil
		}
	}
}

// httpGetter performs retried GETs shared by all site clients.
type httpGetter struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	headers  map[string]string
}

func newHTTPGetter(net config.SourceNetwork, headers map[string]string) *httpGetter {
	timeout := net.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	attempts := uint(net.RetryAttempts)
	if attempts == 0 {
		attempts = 3
	}
	delay := net.RetryDelay
	if delay == 0 {
		delay = time.Second
	}
	return &httpGetter{
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
		delay:    delay,
		headers:  headers,
	}
}

// get fetches the URL and returns the body.
func (g *httpGetter) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			for k, v := range g.headers {
				req.Header.Set(k, v)
			}

			resp, err := g.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status: %d", resp.StatusCode)
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			observability.LoggerFromContext(ctx).DebugContext(ctx, "retrying request",
				slog.Uint64("attempt", uint64(attempt)+1),
				slog.String("error", err.Error()),
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// getJSON fetches the URL and decodes the JSON body into out.
func (g *httpGetter) getJSON(ctx context.Context, url string, out any) error {
	body, err := g.get(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// parseCompactDate parses a YYYYMMDD date, returning nil when absent or
// malformed.
func parseCompactDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseDashedDate parses a YYYY-MM-DD date, returning nil when absent or
// malformed.
func parseDashedDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
