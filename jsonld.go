package recipon

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// extractRecipeName scans the document for <script type="application/ld+json">
// blocks and returns the name of the first schema.org Recipe object found.
// Order of preference is document order of the blocks, then list/@graph order
// within a block. Malformed JSON is skipped without aborting the scan.
func extractRecipeName(doc *html.Node) (string, bool) {
	var name string

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, attr := range n.Attr {
				if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json") {
					if v, ok := recipeNameFromBlock(textContent(n)); ok {
						name = v
						return true
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return name, name != ""
}

// recipeNameFromBlock parses one JSON-LD block and returns the first Recipe
// name in it. A block may hold a single object, a list of objects, or an
// object whose @graph list contributes further candidates. The block size is
// already bounded by the fetch byte ceiling upstream.
func recipeNameFromBlock(blob string) (string, bool) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return "", false
	}

	var data any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		jsonldParseErrors.Inc()
		return "", false
	}

	var candidates []map[string]any
	switch v := data.(type) {
	case map[string]any:
		candidates = append(candidates, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok {
					candidates = append(candidates, obj)
				}
			}
		}
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				candidates = append(candidates, obj)
			}
		}
	}

	for _, obj := range candidates {
		if !hasType(obj["@type"], "Recipe") {
			continue
		}
		if name, ok := obj["name"].(string); ok {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				return trimmed, true
			}
		}
	}

	return "", false
}

// hasType reports whether a JSON-LD @type value, either a single string or a
// list of strings, contains want.
func hasType(typeField any, want string) bool {
	switch t := typeField.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// textContent concatenates all text nodes under n
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
