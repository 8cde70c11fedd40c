package pipeline

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/calais/internal/calais"
)

// skipped elements never contribute body text
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"footer":   true,
	"aside":    true,
	"form":     true,
}

// ExtractDocument splits an HTML page into title, abstract and body.
// The abstract comes from the description meta tags and the body from
// paragraph and heading text outside of page chrome. The original markup is kept.
func ExtractDocument(htmlContent string) (calais.Document, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return calais.Document{}, err
	}

	doc := calais.Document{HTML: htmlContent}
	var heading string
	var paragraphs []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped[n.Data] {
				return
			}
			switch n.Data {
			case "title":
				if doc.Title == "" {
					doc.Title = textContent(n)
				}
				return
			case "meta":
				if doc.Abstract == "" && isDescription(n) {
					doc.Abstract = strings.TrimSpace(attr(n, "content"))
				}
				return
			case "h1":
				if heading == "" {
					heading = textContent(n)
				}
				return
			case "p", "h2", "h3", "li", "blockquote":
				if text := textContent(n); text != "" {
					paragraphs = append(paragraphs, text)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)

	if doc.Title == "" {
		doc.Title = heading
	}
	doc.Body = strings.Join(paragraphs, "\n")
	return doc, nil
}

func isDescription(n *html.Node) bool {
	name := strings.ToLower(attr(n, "name"))
	prop := strings.ToLower(attr(n, "property"))
	return name == "description" || prop == "og:description"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent collects the text below n with whitespace collapsed
func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
