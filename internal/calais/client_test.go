package calais

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeTransport struct {
	calls      int
	responses  []*Response
	err        error
	lastURL    string
	lastHeader http.Header
	lastBody   string
}

func (f *fakeTransport) Post(_ context.Context, url string, header http.Header, body []byte) (*Response, error) {
	f.calls++
	f.lastURL = url
	f.lastHeader = header
	f.lastBody = string(body)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &Response{StatusCode: http.StatusOK, Status: "200 OK", Body: []byte(`{}`)}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func ok(body string) *Response {
	return &Response{StatusCode: http.StatusOK, Status: "200 OK", Body: []byte(body)}
}

func newTestClient(t *testing.T, transport Transport, opts ...Option) (*Client, *[]Warning) {
	t.Helper()
	var warnings []Warning
	base := []Option{
		WithTransport(transport),
		WithLogger(log.New(io.Discard)),
		WithWarningHandler(func(w Warning) { warnings = append(warnings, w) }),
	}
	c, err := New("test-token", append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, &warnings
}

const sampleResponse = `{
  "doc": {"info": {"docId": "http://d.opencalais.com/dochash-1/abc"}, "meta": {"language": "English"}},
  "http://d.opencalais.com/dochash-1/abc/cat/1": {
    "_typeGroup": "topics", "forenduserdisplay": "true", "score": 1, "name": "Politics"
  },
  "http://d.opencalais.com/pershash-1/macron": {
    "_typeGroup": "entities", "_type": "Person", "forenduserdisplay": "true",
    "name": "Emmanuel Macron", "commonname": "Macron", "relevance": 0.8,
    "confidence": {"statisticalfeature": "0.9", "resultype": "system", "aggregate": 0.95},
    "instances": [
      {"detection": "[President ]Emmanuel Macron[, one]", "prefix": "President ", "exact": "Emmanuel Macron", "suffix": ", one", "offset": 120, "length": 15},
      {"detection": "[As ]Macron[ heads]", "prefix": "As ", "exact": "Macron", "suffix": " heads", "offset": 3, "length": 6}
    ]
  },
  "http://d.opencalais.com/dochash-1/abc/lang": {"_typeGroup": "language", "language": "English"},
  "untyped": {"name": "no discriminator"}
}`

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("  ")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	c, _ := newTestClient(t, &fakeTransport{})
	cfg := c.Config()

	if cfg.ContentClass != "news" || cfg.ContentType != "text/raw" || cfg.OutputFormat != "application/json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.OmitOriginalDocument {
		t.Error("expected original document to be omitted by default")
	}
	if len(cfg.OutputTags) != 0 {
		t.Errorf("expected no output tags, got %v", cfg.OutputTags)
	}
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New("token", WithContentType("text/markdown"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetters_RejectUnknownValues(t *testing.T) {
	c, _ := newTestClient(t, &fakeTransport{})

	tests := []struct {
		name string
		set  func() error
	}{
		{"content class", func() error { return c.SetInputContentClass("blog") }},
		{"content type", func() error { return c.SetInputContentType("text/plain") }},
		{"output format", func() error { return c.SetOutputFormat("text/csv") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if c.Config().ContentClass != "news" {
		t.Error("rejected value must not change the configuration")
	}
}

func TestSetOutputTags_DropsUnsupported(t *testing.T) {
	c, warnings := newTestClient(t, &fakeTransport{})

	c.SetOutputTags([]string{"company", "bogus-tag"})

	tags := c.Config().OutputTags
	if len(tags) != 1 || tags[0] != "company" {
		t.Errorf("expected [company], got %v", tags)
	}
	if len(*warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %d", len(*warnings))
	}
	w := (*warnings)[0]
	if w.Code != WarnUnsupportedOutputTag || w.Value != "bogus-tag" {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestSetOutputTags_ResetsPreviousSelection(t *testing.T) {
	c, _ := newTestClient(t, &fakeTransport{})

	c.SetOutputTags([]string{"company", "person"})
	c.SetOutputTags([]string{"topic"})

	tags := c.Config().OutputTags
	if len(tags) != 1 || tags[0] != "topic" {
		t.Errorf("expected [topic], got %v", tags)
	}
}

func TestQuery_CachesIdenticalDocument(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok(sampleResponse)}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	first, err := c.Query(ctx, "Macron heads to Washington")
	if err != nil {
		t.Fatalf("first query failed: %v", err)
	}
	second, err := c.Query(ctx, "Macron heads to Washington")
	if err != nil {
		t.Fatalf("second query failed: %v", err)
	}

	if transport.calls != 1 {
		t.Errorf("expected 1 network call, got %d", transport.calls)
	}
	if first != second {
		t.Error("expected the cached response to be returned unchanged")
	}
}

func TestQuery_DifferentDocumentMisses(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	for _, doc := range []string{"document A", "document B", "document A"} {
		if _, err := c.Query(ctx, doc); err != nil {
			t.Fatalf("query %q failed: %v", doc, err)
		}
	}

	// single slot: B evicted A
	if transport.calls != 3 {
		t.Errorf("expected 3 network calls, got %d", transport.calls)
	}
}

func TestQuery_ForceRefresh(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	_, _ = c.Query(ctx, "doc")
	if _, err := c.Query(ctx, "doc", WithForceRefresh()); err != nil {
		t.Fatalf("forced query failed: %v", err)
	}

	if transport.calls != 2 {
		t.Errorf("expected 2 network calls, got %d", transport.calls)
	}
}

func TestQuery_APIError(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		{StatusCode: 500, Status: "500 Internal Server Error", Body: []byte(`{"fault":{"faultstring":"bad token"}}`)},
		ok(`{}`),
	}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	_, err := c.Query(ctx, "doc")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Fault != "bad token" {
		t.Errorf("expected fault 'bad token', got %q", apiErr.Fault)
	}
	if !errors.Is(err, ErrAPI) {
		t.Error("expected error to match ErrAPI")
	}
	if c.LastAPIResponse() != "" {
		t.Error("failed response must not be cached")
	}

	if _, err := c.Query(ctx, "doc"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if transport.calls != 2 {
		t.Errorf("expected the retry to reach the network, got %d calls", transport.calls)
	}
}

func TestQuery_FailureNeverServesPreviousDocument(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		ok(`{"a":{}}`),
		{StatusCode: 503, Status: "503 Service Unavailable", Body: []byte(`{"fault":{"faultstring":"busy"}}`)},
		ok(`{"b":{}}`),
	}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if _, err := c.Query(ctx, "A"); err != nil {
		t.Fatalf("query A failed: %v", err)
	}
	if _, err := c.Query(ctx, "B"); err == nil {
		t.Fatal("expected query B to fail")
	}

	body, err := c.Query(ctx, "B")
	if err != nil {
		t.Fatalf("second query B failed: %v", err)
	}
	if body != `{"b":{}}` {
		t.Errorf("expected B's own response, got %s", body)
	}
	if transport.calls != 3 {
		t.Errorf("expected 3 network calls, got %d", transport.calls)
	}
}

func TestQuery_InterveningFailureForcesRefetch(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		ok(`{"a":1}`),
		{StatusCode: 503, Status: "503 Service Unavailable", Body: []byte(`{"fault":{"faultstring":"busy"}}`)},
		ok(`{"a":2}`),
	}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if _, err := c.Query(ctx, "A"); err != nil {
		t.Fatalf("query A failed: %v", err)
	}
	if _, err := c.Query(ctx, "B"); err == nil {
		t.Fatal("expected query B to fail")
	}

	body, err := c.Query(ctx, "A")
	if err != nil {
		t.Fatalf("second query A failed: %v", err)
	}
	if body != `{"a":2}` {
		t.Errorf("expected a fresh response for A, got %s", body)
	}
	if transport.calls != 3 {
		t.Errorf("expected 3 network calls, got %d", transport.calls)
	}
}

func TestQuery_InvalidLanguageAfterSuccessServesNothing(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok(`{"a":1}`)}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if _, err := c.Query(ctx, "A"); err != nil {
		t.Fatalf("query A failed: %v", err)
	}

	body, err := c.Query(ctx, "A", WithLanguage("German"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if body != "" {
		t.Errorf("expected no body on failure, got %s", body)
	}

	body, err = c.Query(ctx, "B", WithLanguage("German"))
	if !errors.Is(err, ErrInvalidConfig) || body != "" {
		t.Errorf("expected failure without a body for B, got %q %v", body, err)
	}
	if transport.calls != 1 {
		t.Errorf("expected only the first query to reach the network, got %d", transport.calls)
	}
}

func TestQuery_ErrorStatusWithoutEnvelope(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		{StatusCode: 403, Status: "403 Forbidden", Body: []byte(`<html>denied</html>`)},
	}}
	c, _ := newTestClient(t, transport)

	_, err := c.Query(context.Background(), "doc")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 403 || apiErr.Fault != "403 Forbidden" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
}

func TestQuery_TransportError(t *testing.T) {
	transport := &fakeTransport{err: fmt.Errorf("connection refused")}
	c, _ := newTestClient(t, transport)

	_, err := c.Query(context.Background(), "doc")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestQuery_EmptyBody(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok("")}}
	c, _ := newTestClient(t, transport)

	_, err := c.Query(context.Background(), "doc")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestQuery_InvalidLanguage(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)

	_, err := c.Query(context.Background(), "doc", WithLanguage("German"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, got %d", transport.calls)
	}
	if c.LastDocumentHash() == "" {
		t.Error("expected the document hash to be recorded even on failure")
	}
}

func TestQuery_Headers(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport, WithEndpoint("https://calais.test/permid"), WithContentClass("research"))
	c.SetOutputTags([]string{"company", "person"})
	c.SetOutputOmitOriginalDocument(false)

	_, err := c.Query(context.Background(), "Bonjour", WithLanguage("French"), WithCharset("iso-8859-1"))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	h := transport.lastHeader
	expected := map[string]string{
		"X-AG-Access-Token":          "test-token",
		"Accept-Charset":             "iso-8859-1",
		"Content-Type":               "text/raw; charset=iso-8859-1",
		"outputFormat":               "application/json",
		"x-calais-language":          "French",
		"x-calais-contentClass":      "research",
		"omitOutputtingOriginalText": "false",
		"x-calais-selectiveTags":     "company, person",
	}
	for key, want := range expected {
		if got := h.Get(key); got != want {
			t.Errorf("header %s: expected %q, got %q", key, want, got)
		}
	}
	if transport.lastURL != "https://calais.test/permid" {
		t.Errorf("unexpected URL: %s", transport.lastURL)
	}
	if transport.lastBody != "Bonjour" {
		t.Errorf("unexpected body: %s", transport.lastBody)
	}
}

func TestQuery_NoSelectiveTagsHeaderByDefault(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)

	if _, err := c.Query(context.Background(), "doc"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if _, present := transport.lastHeader[http.CanonicalHeaderKey("x-calais-selectiveTags")]; present {
		t.Error("expected no selective tags header")
	}
}

func TestExtractData_PopulatesCollections(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok(sampleResponse)}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if err := c.ExtractData(ctx, "doc"); err != nil {
		t.Fatalf("ExtractData failed: %v", err)
	}

	topics, _ := c.GetTopics(ctx, "")
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	politics := topics["Politics"]
	if politics.ID != "http://d.opencalais.com/dochash-1/abc/cat/1" || politics.Score != 1 {
		t.Errorf("unexpected topic: %+v", politics)
	}

	entities, _ := c.GetEntities(ctx, "")
	if entities.Count() != 1 {
		t.Fatalf("expected 1 entity, got %d", entities.Count())
	}
	macron := entities["Person"]["Emmanuel Macron"]
	if macron.CommonName != "Macron" || macron.Relevance != 0.8 {
		t.Errorf("unexpected entity: %+v", macron)
	}
	if len(macron.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(macron.Instances))
	}
	if macron.Instances[0].Offset != 120 || macron.Instances[1].Exact != "Macron" {
		t.Errorf("instances out of order: %+v", macron.Instances)
	}
	if macron.Confidence["statisticalfeature"] != 0.9 || macron.Confidence["aggregate"] != 0.95 {
		t.Errorf("unexpected confidence: %v", macron.Confidence)
	}
	if _, ok := macron.Confidence["resultype"]; ok {
		t.Error("non-numeric confidence values must be skipped")
	}

	tags, _ := c.GetSocialTags(ctx, "")
	if len(tags) != 0 {
		t.Errorf("expected no social tags, got %d", len(tags))
	}
}

func TestExtractData_ReplacesPreviousCollections(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		ok(`{"t1":{"_typeGroup":"topics","name":"Politics","score":1}}`),
		ok(`{"t2":{"_typeGroup":"topics","name":"Sports","score":0.5}}`),
	}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if _, err := c.GetTopics(ctx, "first"); err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	topics, err := c.GetTopics(ctx, "second")
	if err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}

	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if _, ok := topics["Sports"]; !ok {
		t.Errorf("expected Sports, got %v", topics)
	}
}

func TestExtractData_NotAnObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[1, 2, 3]`},
		{"scalar", `42`},
		{"string", `"hello"`},
		{"garbage", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{responses: []*Response{ok(tt.body)}}
			c, _ := newTestClient(t, transport)

			err := c.ExtractData(context.Background(), "doc")
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestExtractData_ResetsOutputFormat(t *testing.T) {
	transport := &fakeTransport{}
	c, warnings := newTestClient(t, transport, WithOutputFormat("xml/rdf"))
	ctx := context.Background()

	if _, err := c.Query(ctx, "doc"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if err := c.ExtractData(ctx, "doc"); err != nil {
		t.Fatalf("ExtractData failed: %v", err)
	}

	if transport.calls != 2 {
		t.Errorf("expected the format change to bypass the cache, got %d calls", transport.calls)
	}
	if got := transport.lastHeader.Get("outputFormat"); got != "application/json" {
		t.Errorf("expected application/json output format, got %q", got)
	}
	if len(*warnings) != 1 || (*warnings)[0].Code != WarnOutputFormatReset {
		t.Errorf("expected one output format warning, got %+v", *warnings)
	}

	if err := c.ExtractData(ctx, "doc"); err != nil {
		t.Fatalf("second ExtractData failed: %v", err)
	}
	if transport.calls != 2 {
		t.Errorf("expected same-format extraction to hit the cache, got %d calls", transport.calls)
	}
	if len(*warnings) != 1 {
		t.Errorf("expected no further warnings, got %d", len(*warnings))
	}
}

func TestExtractData_ResetFormatRefetchesCachedDocument(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{
		ok(`<rdf:RDF/>`),
		ok(`{"t1":{"_typeGroup":"topics","name":"Politics","score":1}}`),
	}}
	c, _ := newTestClient(t, transport, WithOutputFormat("xml/rdf"))
	ctx := context.Background()

	if _, err := c.Query(ctx, "doc"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got := transport.lastHeader.Get("outputFormat"); got != "xml/rdf" {
		t.Fatalf("expected xml/rdf on the first request, got %q", got)
	}

	topics, err := c.GetTopics(ctx, "doc")
	if err != nil {
		t.Fatalf("GetTopics failed: %v", err)
	}
	if transport.calls != 2 {
		t.Fatalf("expected the cached rdf body to be refetched, got %d calls", transport.calls)
	}
	if got := transport.lastHeader.Get("outputFormat"); got != "application/json" {
		t.Errorf("expected the refetch to ask for application/json, got %q", got)
	}
	if _, ok := topics["Politics"]; !ok {
		t.Errorf("expected topics from the json response, got %v", topics)
	}
}

func TestExtractData_MalformedMemberWarns(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok(`{
		"t1": {"_typeGroup": "topics", "name": "Politics", "score": 0.9},
		"t2": {"_typeGroup": "topics", "name": "Sports", "score": "n/a"}
	}`)}}
	c, warnings := newTestClient(t, transport)

	topics, err := c.GetTopics(context.Background(), "doc")
	if err != nil {
		t.Fatalf("expected extraction to succeed, got %v", err)
	}
	if len(topics) != 1 {
		t.Errorf("expected 1 topic, got %v", topics)
	}
	if len(*warnings) != 1 || (*warnings)[0].Code != WarnMalformedMember || (*warnings)[0].Value != "t2" {
		t.Errorf("expected one malformed member warning for t2, got %+v", *warnings)
	}
}

func TestAccessors_EmptyBeforeExtraction(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	topics, err := c.GetTopics(ctx, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("expected empty topics, got %v", topics)
	}

	entities, err := c.GetEntities(ctx, "")
	if err != nil || entities.Count() != 0 {
		t.Errorf("expected empty entities, got %v (%v)", entities, err)
	}
	if transport.calls != 0 {
		t.Errorf("expected no network call, got %d", transport.calls)
	}
}

func TestAccessors_ShareOneRequest(t *testing.T) {
	transport := &fakeTransport{responses: []*Response{ok(sampleResponse)}}
	c, _ := newTestClient(t, transport)
	ctx := context.Background()

	if _, err := c.GetEntities(ctx, "article"); err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if _, err := c.GetTopics(ctx, "article"); err != nil {
		t.Fatalf("GetTopics failed: %v", err)
	}
	if _, err := c.GetSocialTags(ctx, ""); err != nil {
		t.Fatalf("GetSocialTags failed: %v", err)
	}

	if transport.calls != 1 {
		t.Errorf("expected 1 network call, got %d", transport.calls)
	}
	if c.LastAPIResponse() != sampleResponse {
		t.Error("expected the raw response to be kept for archival")
	}
}

func TestHTTPTransport_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-AG-Access-Token") != "test-token" {
			t.Errorf("missing access token header")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "the document" {
			t.Errorf("unexpected body: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	c, err := New("test-token",
		WithEndpoint(server.URL),
		WithTransport(NewHTTPTransport(DefaultTransportConfig())),
		WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	entities, err := c.GetEntities(context.Background(), "the document")
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if entities.Count() != 1 {
		t.Errorf("expected 1 entity, got %d", entities.Count())
	}
}

func TestHTTPTransport_ErrorStatusIsAResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"fault":{"faultstring":"Invalid API key"}}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(DefaultTransportConfig())
	resp, err := transport.Post(context.Background(), server.URL, http.Header{}, []byte("doc"))
	if err != nil {
		t.Fatalf("expected a response, got error %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}

	c, _ := newTestClient(t, transport, WithEndpoint(server.URL))
	_, err = c.Query(context.Background(), "doc")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Fault != "Invalid API key" {
		t.Fatalf("expected fault 'Invalid API key', got %v", err)
	}
}

func TestHTTPTransport_OversizedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"doc":{"info":{"document":"longer than twenty bytes"}}}`))
	}))
	defer server.Close()

	cfg := DefaultTransportConfig()
	cfg.MaxBodyBytes = 20
	transport := NewHTTPTransport(cfg)

	if _, err := transport.Post(context.Background(), server.URL, http.Header{}, []byte("doc")); err == nil {
		t.Fatal("expected an oversized response to fail")
	}

	c, _ := newTestClient(t, transport, WithEndpoint(server.URL))
	_, err := c.Query(context.Background(), "doc")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if c.LastAPIResponse() != "" {
		t.Errorf("expected nothing cached, got %s", c.LastAPIResponse())
	}
}
