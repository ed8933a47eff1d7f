// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// NormalizeURL strips the fragment, query, and trailing path slash so the
// same page is never visited twice under different spellings.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawQuery = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

var (
	slugSepRe      = regexp.MustCompile(`[/\\]`)
	slugUnsafeRe   = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
	slugCollapseRe = regexp.MustCompile(`_+`)
)

// Slug converts a page URL into a filesystem-safe name: the base URL's path
// prefix is dropped, path separators become "--", and remaining unsafe
// characters collapse to single underscores. The crawl root becomes
// "index".
func Slug(pageURL, baseURL string) string {
	pu, err := url.Parse(pageURL)
	if err != nil {
		return "index"
	}
	bu, err := url.Parse(baseURL)
	if err != nil {
		return "index"
	}

	path := pu.Path
	basePath := strings.TrimRight(bu.Path, "/")
	if basePath != "" && strings.HasPrefix(path, basePath) {
		path = path[len(basePath):]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "index"
	}

	name := slugSepRe.ReplaceAllString(path, "--")
	name = slugUnsafeRe.ReplaceAllString(name, "_")
	name = strings.Trim(slugCollapseRe.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return "index"
	}
	return name
}

// ExtractLinks returns the normalized absolute URLs of every anchor in the
// page that falls under allowedPrefix, resolved against pageURL.
// Fragment-only and query-only hrefs are ignored, and each URL appears at
// most once, in document order.
func ExtractLinks(page, pageURL, allowedPrefix string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if abs, ok := resolveHref(base, attrVal(n, "href")); ok {
				if strings.HasPrefix(abs, allowedPrefix) && !seen[abs] {
					seen[abs] = true
					links = append(links, abs)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// resolveHref turns one href attribute into a normalized absolute URL.
func resolveHref(base *url.URL, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs, err := NormalizeURL(base.ResolveReference(ref).String())
	if err != nil {
		return "", false
	}
	return abs, true
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
