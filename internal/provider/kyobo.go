package provider

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/models"
)

const kyoboDetailPath = "/product/detailViewKor.laf"

// kyoboUserAgent is sent with every request; the product pages reject
// requests without a browser user agent.
const kyoboUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// KyoboClient scrapes Kyobo's product detail pages. Kyobo has no public
// API; sale data comes from the page's meta tags and markup.
type KyoboClient struct {
	baseURL string
	getter  *httpGetter
}

// NewKyoboClient creates a Kyobo client.
func NewKyoboClient(cfg config.SourceConfig, net config.SourceNetwork) *KyoboClient {
	return &KyoboClient{
		baseURL: cfg.BaseURL,
		getter: newHTTPGetter(net, map[string]string{
			"User-Agent": kyoboUserAgent,
		}),
	}
}

// Site returns the site code.
func (c *KyoboClient) Site() models.Site {
	return models.SiteKyobo
}

// Lookup fetches and parses the product page for one ISBN. A page with
// no books:isbn meta tag means Kyobo does not list the book.
func (c *KyoboClient) Lookup(ctx context.Context, isbn string) (*models.Book, error) {
	body, err := c.getter.get(ctx, c.baseURL+kyoboDetailPath+"?barcode="+isbn)
	if err != nil {
		return nil, &RequestError{Site: c.Site(), Err: err}
	}

	page, err := parseKyoboPage(body)
	if err != nil {
		return nil, &ParseError{Site: c.Site(), Err: err}
	}
	if page.isbn == "" {
		return nil, nil
	}
	return page.toBook(), nil
}

type kyoboPage struct {
	isbn        string
	title       string
	description string
	salePrice   string
	series      []string
}

func (p *kyoboPage) toBook() *models.Book {
	book := &models.Book{
		ISBN:  p.isbn,
		Title: p.title,
	}
	raw := models.Raw{
		"isbn":             p.isbn,
		"title":            p.title,
		"prod_description": p.description,
	}
	if p.salePrice != "" {
		raw["sale_price"] = p.salePrice
	}
	if len(p.series) > 0 {
		items := make([]any, 0, len(p.series))
		for _, title := range p.series {
			items = append(items, map[string]any{"title": title})
		}
		raw["series"] = items
	}
	book.AddOriginal(models.SiteKyobo, raw)
	return book
}

func parseKyoboPage(body []byte) (*kyoboPage, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	page := &kyoboPage{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				switch attr(n, "property") {
				case "books:isbn":
					page.isbn = attr(n, "content")
				case "og:description":
					if page.description == "" {
						page.description = attr(n, "content")
					}
				}
			case "span", "div", "h1":
				switch {
				case hasClass(n, "prod_title"):
					page.title = strings.TrimSpace(text(n))
				case hasClass(n, "prod_description"):
					page.description = strings.TrimSpace(text(n))
				case hasClass(n, "sale_price"):
					page.salePrice = strings.TrimSpace(text(n))
				case hasClass(n, "series_prod_title"):
					if title := strings.TrimSpace(text(n)); title != "" {
						page.series = append(page.series, title)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return page, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

var _ Looker = (*KyoboClient)(nil)
