package download

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// mp3Href matches anchors that point at an absolute mp3 URL.
var mp3Href = regexp.MustCompile(`http.*\.mp3`)

// archiveItemClass marks one entry of a blog archive listing.
const archiveItemClass = "archive-list-item"

// mp3Links returns the href of every <a> whose href matches mp3Href,
// in document order.
func mp3Links(doc *html.Node) []string {
	var links []string
	walk(doc, func(n *html.Node) bool {
		if isElement(n, "a") {
			if href, ok := attr(n, "href"); ok && mp3Href.MatchString(href) {
				links = append(links, href)
			}
		}
		return true
	})
	return links
}

// archiveLinks returns, for every <li class="archive-list-item">, the href of
// its first link resolved against base.
func archiveLinks(doc *html.Node, base *url.URL) []string {
	var links []string
	walk(doc, func(n *html.Node) bool {
		if !isElement(n, "li") || !hasClass(n, archiveItemClass) {
			return true
		}
		if a := firstLink(n); a != "" {
			links = append(links, resolve(base, a))
		}
		return false
	})
	return links
}

// firstLink returns the href of the first <a> under n.
func firstLink(n *html.Node) string {
	var href string
	walk(n, func(c *html.Node) bool {
		if href != "" {
			return false
		}
		if isElement(c, "a") {
			if h, ok := attr(c, "href"); ok && h != "" {
				href = h
				return false
			}
		}
		return true
	})
	return href
}

// walk visits n and its descendants depth-first. Returning false from visit
// skips the children of that node.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return strings.TrimSpace(a.Val), true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// fileName returns the last path segment of rawURL, the name a download is
// saved under.
func fileName(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	p := strings.TrimRight(u.Path, "/")
	i := strings.LastIndex(p, "/")
	name := p[i+1:]
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return name, true
}
