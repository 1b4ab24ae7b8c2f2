package headlines

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// NoTitle replaces empty headline titles.
const NoTitle = "(No title)"

var listTemplate = template.Must(template.New("headlines").Parse(
	`<ol>{{range .}}<li><a href="{{.URL}}">{{.Title}}</a></li>{{end}}</ol>`,
))

// policy only lets the list markup and http(s) links through.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// Render produces an ordered list with one <li> per headline, in order.
func Render(items []Headline) ([]byte, error) {
	view := make([]Headline, len(items))
	for i, h := range items {
		if h.Title == "" {
			h.Title = NoTitle
		}
		view[i] = h
	}

	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render headlines: %w", err)
	}

	return policy.SanitizeBytes(buf.Bytes()), nil
}
