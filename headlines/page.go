package headlines

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page scrapes headline anchors out of an HTML page.
type Page struct {
	url       string
	selector  string
	userAgent string
	client    *http.Client
}

// NewPage creates a page source. selector must match <a> elements; an empty
// selector matches every anchor on the page.
func NewPage(pageURL, selector, userAgent string, client *http.Client) *Page {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if strings.TrimSpace(selector) == "" {
		selector = "a"
	}
	return &Page{
		url:       pageURL,
		selector:  selector,
		userAgent: userAgent,
		client:    client,
	}
}

func (p *Page) Name() string { return "page" }

// FetchHeadlines fetches the page and extracts the matched anchors in
// document order.
func (p *Page) FetchHeadlines(ctx context.Context) ([]Headline, error) {
	base, err := url.Parse(p.url)
	if err != nil {
		return nil, upstreamError("invalid page URL: %v", err)
	}

	doc, err := p.fetchHTML(ctx)
	if err != nil {
		return nil, err
	}

	return ExtractHeadlines(doc, p.selector, base), nil
}

func (p *Page) fetchHTML(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, upstreamError("failed to create request: %v", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, upstreamError("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, upstreamError("failed to parse HTML: %v", err)
	}
	return doc, nil
}

// ExtractHeadlines turns every anchor matched by selector into a headline.
// Relative links are resolved against base; anchors without an href are
// skipped.
func ExtractHeadlines(doc *goquery.Document, selector string, base *url.URL) []Headline {
	items := []Headline{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		link, err := base.Parse(href)
		if err != nil {
			return
		}

		// Normalize whitespace: replace multiple spaces/newlines with single space
		title := strings.Join(strings.Fields(s.Text()), " ")

		items = append(items, Headline{Title: title, URL: link.String()})
	})
	return items
}
