package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 5 << 20

// NewsAPI reads the top-headlines endpoint of a newsapi.org compatible
// service.
type NewsAPI struct {
	baseURL   string
	apiKey    string
	country   string
	userAgent string
	client    *http.Client
}

type newsAPIArticle struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

// NewNewsAPI creates a NewsAPI source. A nil client uses
// NewHTTPClient(0), which keeps the transport defaults.
func NewNewsAPI(baseURL, apiKey, country, userAgent string, client *http.Client) *NewsAPI {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &NewsAPI{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(apiKey),
		country:   strings.ToLower(strings.TrimSpace(country)),
		userAgent: userAgent,
		client:    client,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

// FetchHeadlines issues one GET to /top-headlines.
func (n *NewsAPI) FetchHeadlines(ctx context.Context) ([]Headline, error) {
	q := url.Values{}
	if n.country != "" {
		q.Set("country", n.country)
	}
	q.Set("apiKey", n.apiKey)

	u := fmt.Sprintf("%s/top-headlines?%s", n.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, upstreamError("failed to create request: %v", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, upstreamError("failed to fetch headlines: %v", redact(err, n.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, upstreamError("newsapi: http %d", resp.StatusCode)
	}

	var data newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&data); err != nil {
		return nil, upstreamError("newsapi: failed to decode response: %v", err)
	}
	if data.Status != "ok" {
		return nil, upstreamError("newsapi: status %q: %s %s", data.Status, data.Code, data.Message)
	}
	if data.Articles == nil {
		return nil, upstreamError("newsapi: response has no articles list")
	}

	items := make([]Headline, 0, len(data.Articles))
	for _, a := range data.Articles {
		items = append(items, Headline{Title: a.Title, URL: a.URL})
	}
	return items, nil
}

// redact keeps the credential out of transport errors, which quote the URL.
func redact(err error, secret string) string {
	msg := err.Error()
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(secret), "REDACTED")
}
