package series

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/prompt"
)

// SetISBN returns the set ISBN the registry reported for the book, if any.
// A set ISBN identifies the whole series and makes similarity search
// unnecessary.
func SetISBN(book *models.Book) string {
	raw := book.Original(models.SiteNLGO)
	if raw == nil {
		return ""
	}
	isbn, _ := raw.Text("set_isbn")
	return strings.TrimSpace(isbn)
}

// ExtractSaleInfo collects the per-site sale context attached to the book,
// in the stable site order. Sites without a raw record contribute nothing.
func ExtractSaleInfo(book *models.Book) []prompt.SaleInfo {
	var infos []prompt.SaleInfo
	for _, site := range models.AllSites {
		raw := book.Original(site)
		if raw == nil {
			continue
		}
		var info *prompt.SaleInfo
		switch site {
		case models.SiteNaver:
			info = naverSaleInfo(raw)
		case models.SiteAladin:
			info = aladinSaleInfo(raw)
		case models.SiteKyobo:
			info = kyoboSaleInfo(raw)
		}
		if info == nil {
			continue
		}
		info.Site = string(site)
		if info.Title == "" {
			info.Title = NormalizeText(book.Title)
		}
		infos = append(infos, *info)
	}
	return infos
}

func naverSaleInfo(raw models.Raw) *prompt.SaleInfo {
	info := &prompt.SaleInfo{}
	if title, ok := raw.Text("title"); ok {
		info.Title = NormalizeText(title)
	}
	if desc, ok := raw.Text("description"); ok {
		info.Desc = desc
	}
	info.Price = priceOf(raw, "discount")
	return info
}

func aladinSaleInfo(raw models.Raw) *prompt.SaleInfo {
	info := &prompt.SaleInfo{}
	if title, ok := raw.Text("title"); ok {
		info.Title = NormalizeText(title)
	}
	if desc, ok := raw.Text("description"); ok {
		info.Desc = desc
	}
	info.Price = priceOf(raw, "priceSales")
	return info
}

func kyoboSaleInfo(raw models.Raw) *prompt.SaleInfo {
	info := &prompt.SaleInfo{}
	if title, ok := raw.Text("title"); ok {
		info.Title = NormalizeText(title)
	}
	if desc, ok := raw.Text("prod_description"); ok {
		info.Desc = desc
	}
	info.Price = priceOf(raw, "sale_price")
	for _, title := range raw.StringList("series") {
		info.Series = append(info.Series, NormalizeText(title))
	}
	return info
}

// priceOf reads a price field that sites report either as a number or as a
// digit string with thousands separators.
func priceOf(raw models.Raw, key string) *int {
	if n, ok := raw.Number(key); ok {
		price := int(n)
		return &price
	}
	s, ok := raw.Text(key)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	price, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &price
}

// NormalizeText applies NFKC normalization and collapses surrounding
// whitespace. Korean sites mix full-width and half-width forms of the same
// characters; NFKC folds them before any title comparison.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
