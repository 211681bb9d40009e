// Package linksource extracts document links from fetched pages. The
// two transports (headless browser, raw collector) share the same
// selector query and filename derivation.
package linksource

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/statdocs/harvester/internal/harvest"
)

// Parse queries the HTML with the selector and derives one Link per
// matched element. Relative hrefs are resolved against pageURL. Zero
// matches yields an empty slice, not an error.
func Parse(html string, pageURL string, selector string) ([]harvest.Link, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &harvest.ParseError{Selector: selector, Err: err}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &harvest.ParseError{Selector: selector, Err: fmt.Errorf("parse page url: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &harvest.ParseError{Selector: selector, Err: err}
	}

	var links []harvest.Link
	doc.FindMatcher(matcher).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		links = append(links, harvest.Link{
			URL:      resolved.String(),
			Filename: deriveFilename(sel, resolved, i),
		})
	})
	return links, nil
}

// deriveFilename picks the first non-empty candidate: the download
// attribute, the element's trimmed text, the last URL path segment,
// then a generated placeholder.
func deriveFilename(sel *goquery.Selection, u *url.URL, index int) string {
	if name := strings.TrimSpace(sel.AttrOr("download", "")); name != "" {
		return name
	}
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}
	if seg := path.Base(u.Path); seg != "" && seg != "/" && seg != "." {
		return seg
	}
	return fmt.Sprintf("file-%d%s", index, path.Ext(u.Path))
}
