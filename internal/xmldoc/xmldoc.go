// Package xmldoc renders nested key/value data as a single-root XML document.
package xmldoc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// RootElement wraps every document produced by ToXMLDocument.
const RootElement = "document"

const header = `<?xml version="1.0"?>` + "\n"

// textEscaper escapes character data. Quotes and line breaks are left as-is so
// article text stays readable.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ErrInvalidArgument is returned when the input is not a mapping.
var ErrInvalidArgument = errors.New("xmldoc: input must be a mapping")

// Field is one ordered element. Value is a scalar, a nested Fields or map, or a slice.
type Field struct {
	Name  string
	Value any
}

// Fields keeps element order, which plain maps cannot.
type Fields []Field

// ToXMLDocument converts data into an XML string. data must be Fields,
// map[string]any or map[string]string. Map keys are emitted in sorted order.
func ToXMLDocument(data any) (string, error) {
	fields, ok := asFields(data)
	if !ok {
		return "", fmt.Errorf("%w (got %T)", ErrInvalidArgument, data)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("<" + RootElement + ">")
	if err := writeFields(&b, fields); err != nil {
		return "", err
	}
	b.WriteString("</" + RootElement + ">\n")
	return b.String(), nil
}

func writeFields(b *strings.Builder, fields Fields) error {
	for _, f := range fields {
		if err := writeElement(b, ElementName(f.Name), f.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(b *strings.Builder, name string, value any) error {
	if nested, ok := asFields(value); ok {
		b.WriteString("<" + name + ">")
		if err := writeFields(b, nested); err != nil {
			return err
		}
		b.WriteString("</" + name + ">")
		return nil
	}

	if items, ok := asList(value); ok {
		b.WriteString("<" + name + ">")
		for i, item := range items {
			if err := writeElement(b, ElementName(strconv.Itoa(i)), item); err != nil {
				return err
			}
		}
		b.WriteString("</" + name + ">")
		return nil
	}

	text, err := scalar(value)
	if err != nil {
		return fmt.Errorf("xmldoc: element %q: %w", name, err)
	}
	if text == "" {
		b.WriteString("<" + name + "/>")
		return nil
	}

	b.WriteString("<" + name + ">")
	b.WriteString(textEscaper.Replace(text))
	b.WriteString("</" + name + ">")
	return nil
}

// ElementName turns a key into a valid element name. Keys that cannot start an
// element (digits, punctuation, empty) get an "item" prefix; other invalid
// characters become underscores.
func ElementName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if isNameChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()

	first, _ := firstRune(name)
	if name == "" || !isNameStart(first) || strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "item" + name
	}
	return name
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}

func asFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Fields, 0, len(m))
		for _, k := range keys {
			out = append(out, Field{Name: k, Value: m[k]})
		}
		return out, true
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Fields, 0, len(m))
		for _, k := range keys {
			out = append(out, Field{Name: k, Value: m[k]})
		}
		return out, true
	default:
		return nil, false
	}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func scalar(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", s), nil
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
