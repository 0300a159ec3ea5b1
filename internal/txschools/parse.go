package txschools

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"schoolscraper/internal/domain"
)

var phoneLabel = regexp.MustCompile(`(?i)PHONE:`)

// ParseRow maps one results-table row onto a Record: school name and link,
// district, address and grade span, one column each. Relative links are
// resolved against the site base.
func (s *Site) ParseRow(row *goquery.Selection) (domain.Record, error) {
	link := row.Find("td:nth-child(1) a").First()
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return domain.Record{}, fmt.Errorf("row has no school link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return domain.Record{}, fmt.Errorf("parsing school link %q: %w", href, err)
	}
	return domain.Record{
		Name:     strings.TrimSpace(link.Text()),
		URL:      s.base.ResolveReference(ref).String(),
		District: strings.TrimSpace(row.Find("td:nth-child(2) > a").First().Text()),
		Address:  strings.TrimSpace(row.Find("td:nth-child(3) > div").First().Text()),
		Grades:   strings.TrimSpace(row.Find("td:nth-child(4)").First().Text()),
	}, nil
}

// ParseDetail pulls candidate contact fields from a school detail page.
// Neither field is required; whatever is missing comes back empty.
func (s *Site) ParseDetail(doc *goquery.Document) domain.Contact {
	return domain.Contact{
		Phone:   detailPhone(doc),
		Website: detailWebsite(doc),
	}
}

// detailPhone locates a text node carrying the "PHONE:" label and returns
// the text node that immediately follows it in document order.
func detailPhone(doc *goquery.Document) string {
	var texts []string
	labelAt := -1
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if labelAt == -1 && phoneLabel.MatchString(n.Data) {
				labelAt = len(texts)
			}
			texts = append(texts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	if labelAt >= 0 && labelAt+1 < len(texts) {
		return strings.TrimSpace(texts[labelAt+1])
	}
	return ""
}

// detailWebsite returns the href of the first styled button anchor, which on
// school pages is the outbound link to the school's own website.
func detailWebsite(doc *goquery.Document) string {
	website := ""
	doc.Find("a.MuiButtonBase-root[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href := sel.AttrOr("href", ""); href != "" {
			website = href
			return false
		}
		return true
	})
	return website
}
