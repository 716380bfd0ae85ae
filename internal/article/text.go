// Package article holds text normalization shared by the curation stages.
package article

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText returns the prose content of body text. Articles arrive from
// a scraping front end and occasionally carry residual markup; the gate's
// length floor must measure words, not tags. Plain text passes through
// untouched.
func VisibleText(body string) string {
	if !strings.ContainsRune(body, '<') {
		return strings.TrimSpace(body)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}
