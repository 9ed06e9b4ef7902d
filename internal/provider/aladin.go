package provider

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
)

const aladinItemSearchPath = "/ttb/api/ItemSearch.aspx"

// aladinItem is one product in Aladin's item search response.
type aladinItem struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Author        string `json:"author"`
	PubDate       string `json:"pubDate"`
	Description   string `json:"description"`
	ISBN          string `json:"isbn"`
	ISBN13        string `json:"isbn13"`
	PriceSales    int    `json:"priceSales"`
	PriceStandard int    `json:"priceStandard"`
	Cover         string `json:"cover"`
	Publisher     string `json:"publisher"`
}

// aladinResponse is Aladin's item search response.
type aladinResponse struct {
	TotalResults int          `json:"totalResults"`
	StartIndex   int          `json:"startIndex"`
	ItemsPerPage int          `json:"itemsPerPage"`
	Items        []aladinItem `json:"item"`
}

// AladinClient searches Aladin's product API by publisher keyword.
type AladinClient struct {
	baseURL string
	ttbKey  string
	getter  *httpGetter
}

// NewAladinClient creates an Aladin client.
func NewAladinClient(cfg config.SourceConfig, net config.SourceNetwork) *AladinClient {
	return &AladinClient{
		baseURL: cfg.BaseURL,
		ttbKey:  cfg.APIKey,
		getter:  newHTTPGetter(net, nil),
	}
}

// Site returns the site code.
func (c *AladinClient) Site() models.Site {
	return models.SiteAladin
}

// Search runs one page of a publisher keyword search. Aladin has no
// publication window parameters; results are sorted newest first and
// filtered to the requested window here.
func (c *AladinClient) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	query := url.Values{}
	query.Set("ttbkey", c.ttbKey)
	query.Set("Query", req.Keyword)
	query.Set("QueryType", "Publisher")
	query.Set("start", strconv.Itoa(req.Page))
	query.Set("MaxResults", strconv.Itoa(req.Size))
	query.Set("SearchTarget", "Book")
	query.Set("output", "js")
	query.Set("Version", "20131101")
	query.Set("Sort", "PublishTime")

	var parsed aladinResponse
	if err := c.getter.getJSON(ctx, c.baseURL+aladinItemSearchPath+"?"+query.Encode(), &parsed); err != nil {
		return nil, &RequestError{Site: c.Site(), Err: err}
	}

	resp := &SearchResponse{
		TotalCount: parsed.TotalResults,
		PageNo:     req.Page,
		Site:       c.Site(),
		PageCount:  len(parsed.Items),
	}
	for _, item := range parsed.Items {
		book := item.toBook()
		if book == nil {
			continue
		}
		if !inWindow(book.ActualPubDate, req.From, req.To) {
			continue
		}
		resp.Books = append(resp.Books, book)
	}
	return resp, nil
}

func (i *aladinItem) toBook() *models.Book {
	if i.ISBN13 == "" {
		return nil
	}
	book := &models.Book{
		ISBN:          i.ISBN13,
		Title:         i.Title,
		ActualPubDate: parseDashedDate(i.PubDate),
	}
	book.AddOriginal(models.SiteAladin, models.Raw{
		"title":         i.Title,
		"link":          i.Link,
		"author":        i.Author,
		"pubDate":       i.PubDate,
		"description":   i.Description,
		"isbn":          i.ISBN,
		"isbn13":        i.ISBN13,
		"priceSales":    i.PriceSales,
		"priceStandard": i.PriceStandard,
		"cover":         i.Cover,
		"publisher":     i.Publisher,
	})
	return book
}

// inWindow reports whether the date falls inside [from, to]. Books with
// no parsed date are kept; a zero bound is open on that side.
func inWindow(date *time.Time, from, to time.Time) bool {
	if date == nil {
		return true
	}
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && date.After(to) {
		return false
	}
	return true
}

var _ Searcher = (*AladinClient)(nil)
