package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks pulls anchor targets out of a page body and resolves them
// against base. Parsing is tolerant: malformed markup never fails, it just
// yields whatever anchors survive. The returned set is deduplicated in
// discovery order and already filtered down to valid URLs (and, unless
// external links are allowed, to the scan origin).
//
// Fragments are kept, so "/page" and "/page#section" are distinct targets.
func (s *scan) extractLinks(base *url.URL, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if !validURL(resolved) {
			return
		}
		if !s.allowExternal && resolved.Host != s.origin {
			return
		}
		target := resolved.String()
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		links = append(links, target)
	})

	return links
}
