package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
)

const nlgoSearchPath = "/seoji/SearchApi.do"

// nlgoDoc is one book record in the national library's response.
type nlgoDoc struct {
	Title           string `json:"TITLE"`
	EAISBN          string `json:"EA_ISBN"`
	SetISBN         string `json:"SET_ISBN"`
	EAAddCode       string `json:"EA_ADD_CODE"`
	SetAddCode      string `json:"SET_ADD_CODE"`
	SeriesNo        string `json:"SERIES_NO"`
	SetExpression   string `json:"SET_EXPRESSION"`
	Subject         string `json:"SUBJECT"`
	Publisher       string `json:"PUBLISHER"`
	Author          string `json:"AUTHOR"`
	RealPublishDate string `json:"REAL_PUBLISH_DATE"`
	PublishPredate  string `json:"PUBLISH_PREDATE"`
	UpdateDate      string `json:"UPDATE_DATE"`
	PrePrice        string `json:"PRE_PRICE"`
}

// nlgoResponse is the national library's search response. Counters come
// back as JSON strings.
type nlgoResponse struct {
	TotalCount json.Number `json:"TOTAL_COUNT"`
	PageNo     json.Number `json:"PAGE_NO"`
	Docs       []nlgoDoc   `json:"docs"`
}

// NLGOClient searches the national library's ISBN registry by publisher.
type NLGOClient struct {
	baseURL string
	certKey string
	getter  *httpGetter
}

// NewNLGOClient creates a national library client.
func NewNLGOClient(cfg config.SourceConfig, net config.SourceNetwork) *NLGOClient {
	return &NLGOClient{
		baseURL: cfg.BaseURL,
		certKey: cfg.APIKey,
		getter:  newHTTPGetter(net, nil),
	}
}

// Site returns the site code.
func (c *NLGOClient) Site() models.Site {
	return models.SiteNLGO
}

// Search fetches one page of the publisher's registered ISBNs inside the
// publication date window.
func (c *NLGOClient) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.From.IsZero() || req.To.IsZero() {
		return nil, &RequestError{Site: c.Site(), Err: fmt.Errorf("publication window is required")}
	}

	query := url.Values{}
	query.Set("cert_key", c.certKey)
	query.Set("start_publish_date", req.From.Format("20060102"))
	query.Set("end_publish_date", req.To.Format("20060102"))
	query.Set("publisher", req.Keyword)
	query.Set("result_style", "json")
	query.Set("page_no", strconv.Itoa(req.Page))
	query.Set("page_size", strconv.Itoa(req.Size))
	query.Set("sort", "INDEX_PUBLISHER")
	query.Set("order_by", "ASC")

	var parsed nlgoResponse
	if err := c.getter.getJSON(ctx, c.baseURL+nlgoSearchPath+"?"+query.Encode(), &parsed); err != nil {
		return nil, &RequestError{Site: c.Site(), Err: err}
	}

	total, _ := parsed.TotalCount.Int64()
	pageNo, _ := parsed.PageNo.Int64()

	books := make([]*models.Book, 0, len(parsed.Docs))
	for _, doc := range parsed.Docs {
		books = append(books, doc.toBook())
	}

	return &SearchResponse{
		TotalCount: int(total),
		PageNo:     int(pageNo),
		Site:       c.Site(),
		Books:      books,
		PageCount:  len(parsed.Docs),
	}, nil
}

func (d *nlgoDoc) toBook() *models.Book {
	book := &models.Book{
		ISBN:             d.EAISBN,
		Title:            d.Title,
		ScheduledPubDate: parseCompactDate(d.PublishPredate),
		ActualPubDate:    parseCompactDate(d.RealPublishDate),
	}
	book.AddOriginal(models.SiteNLGO, models.Raw{
		"title":             d.Title,
		"ea_isbn":           d.EAISBN,
		"set_isbn":          d.SetISBN,
		"ea_add_code":       d.EAAddCode,
		"set_add_code":      d.SetAddCode,
		"series_no":         d.SeriesNo,
		"set_expression":    d.SetExpression,
		"subject":           d.Subject,
		"publisher":         d.Publisher,
		"author":            d.Author,
		"real_publish_date": d.RealPublishDate,
		"publish_predate":   d.PublishPredate,
		"update_date":       d.UpdateDate,
		"pre_price":         d.PrePrice,
	})
	return book
}

var _ Searcher = (*NLGOClient)(nil)
