package headlines

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><body>
<nav><a href="/home">Home</a></nav>
<ul class="news">
  <li><a class="headline" href="/story/1">  Market
      rallies </a></li>
  <li><a class="headline" href="https://other.example/2">Storm warning</a></li>
  <li><a class="headline">No link here</a></li>
</ul>
</body></html>`

// TestPage_Selector verifies only matched anchors are returned, resolved and
// normalized
func TestPage_Selector(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "text/html", testPage)

	source := NewPage(srv.URL+"/front", "ul.news a.headline", "", nil)
	items, err := source.FetchHeadlines(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Headline{
		{Title: "Market rallies", URL: srv.URL + "/story/1"},
		{Title: "Storm warning", URL: "https://other.example/2"},
	}, items)
	assert.Equal(t, "page", source.Name())
}

// TestPage_DefaultSelector verifies an empty selector matches every anchor
func TestPage_DefaultSelector(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(testPage))
	require.NoError(t, err)
	base, _ := url.Parse("https://news.example/")

	source := NewPage(base.String(), " ", "", nil)
	items := ExtractHeadlines(doc, source.selector, base)

	require.Len(t, items, 3)
	assert.Equal(t, "https://news.example/home", items[0].URL)
}

// TestPage_HTTPError verifies non-200 pages fail
func TestPage_HTTPError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, "text/html", "bad gateway")

	items, err := NewPage(srv.URL, "a", "", nil).FetchHeadlines(context.Background())
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, ErrUpstream))
}
