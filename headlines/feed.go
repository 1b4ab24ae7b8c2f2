package headlines

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"
)

// Feed reads headlines from an RSS or Atom feed. The gofeed library detects
// the format, so both are handled transparently.
type Feed struct {
	url       string
	userAgent string
	client    *http.Client
}

// NewFeed creates a feed source.
func NewFeed(url, userAgent string, client *http.Client) *Feed {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Feed{
		url:       url,
		userAgent: userAgent,
		client:    client,
	}
}

func (f *Feed) Name() string { return "feed" }

// FetchHeadlines fetches and parses the feed, keeping item order.
func (f *Feed) FetchHeadlines(ctx context.Context) ([]Headline, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client
	if f.userAgent != "" {
		fp.UserAgent = f.userAgent
	}

	feed, err := fp.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, upstreamError("failed to parse feed: %v", err)
	}

	return FeedToHeadlines(feed), nil
}

// FeedItemToHeadline converts an RSS or Atom item. gofeed normalizes <link>
// (RSS) and <link rel="alternate"> (Atom) into item.Link.
func FeedItemToHeadline(item *gofeed.Item) Headline {
	return Headline{
		Title: item.Title,
		URL:   item.Link,
	}
}

// FeedToHeadlines converts every item in the feed.
func FeedToHeadlines(feed *gofeed.Feed) []Headline {
	items := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, FeedItemToHeadline(item))
	}
	return items
}
