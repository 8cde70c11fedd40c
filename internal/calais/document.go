package calais

import (
	"strings"

	"github.com/ppiankov/calais/internal/xmldoc"
)

// Document is the envelope of an article submitted for annotation.
// HTML, when set, is the original markup the other fields were extracted from.
type Document struct {
	Title    string
	Abstract string
	Body     string
	HTML     string
}

// Render formats the document for the given input content type.
// text/xml uses the <document><title/><abstract/><body/></document> layout,
// text/html sends the original markup when available, and anything else is
// plain text with blank lines between the parts. application/pdf sends Body as-is.
func (d Document) Render(contentType string) (string, error) {
	switch contentType {
	case xmlContentType:
		return xmldoc.ToXMLDocument(xmldoc.Fields{
			{Name: "title", Value: d.Title},
			{Name: "abstract", Value: d.Abstract},
			{Name: "body", Value: d.Body},
		})
	case htmlContentType:
		if d.HTML != "" {
			return d.HTML, nil
		}
	case pdfContentType:
		// binary stream, sent untouched
		return d.Body, nil
	}
	return d.Text(), nil
}

// Text joins the non-empty parts with blank lines.
func (d Document) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Title, d.Abstract, d.Body} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// IsEmpty reports whether the document carries no text at all.
func (d Document) IsEmpty() bool {
	return d.Text() == "" && strings.TrimSpace(d.HTML) == ""
}
