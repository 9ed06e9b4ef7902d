package provider

import (
	"context"
	"net/url"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
)

const naverBookSearchPath = "/v1/search/book_adv.json"

// naverItem is one book in Naver's search response.
type naverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Discount    string `json:"discount"`
	Publisher   string `json:"publisher"`
	PubDate     string `json:"pubdate"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

// naverResponse is Naver's book search response.
type naverResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []naverItem `json:"items"`
}

// NaverClient looks up single ISBNs on Naver's book search API. It is
// used to enrich already-collected books with sale data.
type NaverClient struct {
	baseURL string
	getter  *httpGetter
}

// NewNaverClient creates a Naver client. The API authenticates with
// client id and secret headers.
func NewNaverClient(cfg config.SourceConfig, net config.SourceNetwork) *NaverClient {
	return &NaverClient{
		baseURL: cfg.BaseURL,
		getter: newHTTPGetter(net, map[string]string{
			"X-Naver-Client-Id":     cfg.APIKey,
			"X-Naver-Client-Secret": cfg.Secret,
		}),
	}
}

// Site returns the site code.
func (c *NaverClient) Site() models.Site {
	return models.SiteNaver
}

// Lookup fetches Naver's record for one ISBN.
func (c *NaverClient) Lookup(ctx context.Context, isbn string) (*models.Book, error) {
	query := url.Values{}
	query.Set("d_isbn", isbn)

	var parsed naverResponse
	if err := c.getter.getJSON(ctx, c.baseURL+naverBookSearchPath+"?"+query.Encode(), &parsed); err != nil {
		return nil, &RequestError{Site: c.Site(), Err: err}
	}
	if len(parsed.Items) == 0 {
		return nil, nil
	}
	return parsed.Items[0].toBook(), nil
}

func (i *naverItem) toBook() *models.Book {
	book := &models.Book{
		ISBN:          i.ISBN,
		Title:         i.Title,
		ActualPubDate: parseCompactDate(i.PubDate),
	}
	raw := models.Raw{
		"title":       i.Title,
		"link":        i.Link,
		"image":       i.Image,
		"author":      i.Author,
		"publisher":   i.Publisher,
		"pubdate":     i.PubDate,
		"isbn":        i.ISBN,
		"description": i.Description,
	}
	if i.Discount != "" {
		raw["discount"] = i.Discount
	}
	book.AddOriginal(models.SiteNaver, raw)
	return book
}

var _ Looker = (*NaverClient)(nil)
