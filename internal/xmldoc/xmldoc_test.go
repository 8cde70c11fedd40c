package xmldoc

import (
	"errors"
	"strings"
	"testing"
)

func TestToXMLDocument_OrderedFields(t *testing.T) {
	got, err := ToXMLDocument(Fields{
		{Name: "title", Value: "As Macron heads to U.S."},
		{Name: "abstract", Value: "PARIS (Reuters) - \"strong relationship\""},
		{Name: "body", Value: "line one\nline <two> & three"},
	})
	if err != nil {
		t.Fatalf("ToXMLDocument failed: %v", err)
	}

	want := "<?xml version=\"1.0\"?>\n<document>" +
		"<title>As Macron heads to U.S.</title>" +
		"<abstract>PARIS (Reuters) - \"strong relationship\"</abstract>" +
		"<body>line one\nline &lt;two&gt; &amp; three</body>" +
		"</document>\n"
	if got != want {
		t.Errorf("unexpected document:\n got: %q\nwant: %q", got, want)
	}
}

func TestToXMLDocument_NestedMapsAndLists(t *testing.T) {
	got, err := ToXMLDocument(map[string]any{
		"meta": map[string]any{
			"source": "Reuters",
			"year":   2018,
		},
		"tags": []string{"politics", "trade"},
		"0":    "numeric key",
	})
	if err != nil {
		t.Fatalf("ToXMLDocument failed: %v", err)
	}

	for _, fragment := range []string{
		"<item0>numeric key</item0>",
		"<meta><source>Reuters</source><year>2018</year></meta>",
		"<tags><item0>politics</item0><item1>trade</item1></tags>",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("expected %q in %q", fragment, got)
		}
	}

	// sorted keys: "0" < "meta" < "tags"
	if strings.Index(got, "<item0>numeric") > strings.Index(got, "<meta>") {
		t.Error("expected map keys in sorted order")
	}
}

func TestToXMLDocument_EmptyValue(t *testing.T) {
	got, err := ToXMLDocument(map[string]string{"abstract": ""})
	if err != nil {
		t.Fatalf("ToXMLDocument failed: %v", err)
	}
	if !strings.Contains(got, "<abstract/>") {
		t.Errorf("expected self-closing element, got %q", got)
	}
}

func TestToXMLDocument_RejectsNonMapping(t *testing.T) {
	for _, input := range []any{"text", 42, []string{"a"}, nil} {
		_, err := ToXMLDocument(input)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("input %#v: expected ErrInvalidArgument, got %v", input, err)
		}
	}
}

func TestToXMLDocument_UnsupportedValue(t *testing.T) {
	_, err := ToXMLDocument(map[string]any{"ch": make(chan int)})
	if err == nil {
		t.Fatal("expected error for unsupported value type")
	}
}

func TestElementName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"title", "title"},
		{"0", "item0"},
		{"12", "item12"},
		{"", "item"},
		{"first name", "first_name"},
		{"-dash", "item-dash"},
		{"xmlns", "itemxmlns"},
		{"été", "été"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ElementName(tt.key); got != tt.want {
				t.Errorf("ElementName(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
