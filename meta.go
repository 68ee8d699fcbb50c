package recipon

import (
	"strings"

	"golang.org/x/net/html"
)

// extractMetaTitle returns the page title from meta tags.
// Priority: og:title > twitter:title > <title> element text.
// The HTML tokenizer lower-cases tag and attribute names, so matching is
// case-insensitive and independent of attribute order by construction.
func extractMetaTitle(doc *html.Node) (string, bool) {
	var ogTitle, twitterTitle, docTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property, name, content := metaAttrs(n)
				if property == "og:title" && ogTitle == "" {
					ogTitle = content
				} else if name == "twitter:title" && twitterTitle == "" {
					twitterTitle = content
				}
			case "title":
				if docTitle == "" {
					docTitle = collapseWhitespace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, t := range []string{ogTitle, twitterTitle, docTitle} {
		if v := strings.TrimSpace(t); v != "" {
			return v, true
		}
	}
	return "", false
}

// extractMetaImage returns the page's representative image URL.
// Priority: og:image > twitter:image / twitter:image:src.
func extractMetaImage(doc *html.Node) (string, bool) {
	var ogImage, twitterImage string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			property, name, content := metaAttrs(n)
			if property == "og:image" && ogImage == "" {
				ogImage = content
			} else if (name == "twitter:image" || name == "twitter:image:src") && twitterImage == "" {
				twitterImage = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, img := range []string{ogImage, twitterImage} {
		if v := strings.TrimSpace(img); v != "" {
			return v, true
		}
	}
	return "", false
}

// metaAttrs pulls the property/name/content attributes off a meta node,
// lower-casing the first two
func metaAttrs(n *html.Node) (property, name, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property":
			property = strings.ToLower(attr.Val)
		case "name":
			name = strings.ToLower(attr.Val)
		case "content":
			content = attr.Val
		}
	}
	return property, name, content
}
