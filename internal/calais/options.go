package calais

import (
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
)

// Defaults applied by New.
const (
	DefaultEndpoint          = "https://api.thomsonreuters.com/permid/calais"
	DefaultContentClass      = "news"
	DefaultContentType       = "text/raw"
	DefaultOutputFormat      = "application/json"
	DefaultLanguage          = "English"
	DefaultCharset           = "utf-8"
	DefaultOmitOriginalDoc   = true
	jsonOutputFormat         = "application/json"
	xmlContentType           = "text/xml"
	htmlContentType          = "text/html"
	pdfContentType           = "application/pdf"
	headerAccessToken        = "X-AG-Access-Token"
	headerOutputFormat       = "outputFormat"
	headerLanguage           = "x-calais-language"
	headerContentClass       = "x-calais-contentClass"
	headerOmitOriginalText   = "omitOutputtingOriginalText"
	headerSelectiveTags      = "x-calais-selectiveTags"
	selectiveTagsSeparator   = ", "
	contentTypeCharsetFormat = "%s; charset=%s"
)

// Whitelists for every configuration knob.
var (
	SupportedContentClasses = []string{"news", "research"}

	SupportedContentTypes = []string{
		"text/html",       // web pages
		"text/xml",        // XML content
		"text/raw",        // clean, unformatted text
		"application/pdf", // PDF files as binary streams
	}

	SupportedOutputFormats = []string{"xml/rdf", "application/json", "text/n3"}

	SupportedLanguages = []string{"English", "French", "Spanish"}

	SupportedOutputTags = []string{
		"additionalcontactdetails",
		"company",
		"country",
		"deal",
		"industry",
		"person",
		"socialtags",
		"topic",
	}
)

// Config is the validated client configuration. The zero value is not valid; use New.
type Config struct {
	ContentClass         string
	ContentType          string
	OutputFormat         string
	OutputTags           []string
	OmitOriginalDocument bool
}

// Option configures a Client at construction time.
type Option func(*Client) error

// WithEndpoint overrides the annotation service URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if endpoint == "" {
			return invalidConfig("empty endpoint")
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) error {
		if t == nil {
			return invalidConfig("nil transport")
		}
		c.transport = t
		return nil
	}
}

// WithContentType sets the input content type.
func WithContentType(contentType string) Option {
	return func(c *Client) error {
		return c.SetInputContentType(contentType)
	}
}

// WithContentClass sets the input content class.
func WithContentClass(class string) Option {
	return func(c *Client) error {
		return c.SetInputContentClass(class)
	}
}

// WithOutputFormat sets the requested output format.
func WithOutputFormat(format string) Option {
	return func(c *Client) error {
		return c.SetOutputFormat(format)
	}
}

// WithLogger sets the logger used by the default warning handler.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = log.New(io.Discard)
		}
		c.logger = logger
		return nil
	}
}

// WithWarningHandler routes non-fatal warnings to h instead of the logger.
func WithWarningHandler(h WarningHandler) Option {
	return func(c *Client) error {
		c.warn = h
		return nil
	}
}

// QueryOption adjusts a single query.
type QueryOption func(*queryParams)

type queryParams struct {
	language     string
	charset      string
	forceRefresh bool
}

func defaultQueryParams() queryParams {
	return queryParams{
		language: DefaultLanguage,
		charset:  DefaultCharset,
	}
}

// WithLanguage sets the document language. Must be one of SupportedLanguages.
func WithLanguage(language string) QueryOption {
	return func(p *queryParams) {
		p.language = language
	}
}

// WithCharset sets the document charset sent to the service.
func WithCharset(charset string) QueryOption {
	return func(p *queryParams) {
		if charset != "" {
			p.charset = charset
		}
	}
}

// WithForceRefresh bypasses the response cache.
func WithForceRefresh() QueryOption {
	return func(p *queryParams) {
		p.forceRefresh = true
	}
}

// SetInputContentClass validates and sets the input content class.
func (c *Client) SetInputContentClass(class string) error {
	if !slices.Contains(SupportedContentClasses, class) {
		return invalidConfig("unsupported input class (%s)", class)
	}
	c.config.ContentClass = class
	return nil
}

// SetInputContentType validates and sets the input content type.
func (c *Client) SetInputContentType(contentType string) error {
	if !slices.Contains(SupportedContentTypes, contentType) {
		return invalidConfig("unsupported input mime type (%s)", contentType)
	}
	c.config.ContentType = contentType
	return nil
}

// SetOutputFormat validates and sets the output format.
func (c *Client) SetOutputFormat(format string) error {
	if !slices.Contains(SupportedOutputFormats, format) {
		return invalidConfig("unsupported output format (%s)", format)
	}
	c.config.OutputFormat = format
	return nil
}

// SetOutputOmitOriginalDocument controls whether the service echoes the document back.
// Recommended for large documents.
func (c *Client) SetOutputOmitOriginalDocument(omit bool) {
	c.config.OmitOriginalDocument = omit
}

// SetOutputTags replaces the selective tag filter. Unsupported tags are dropped
// with one warning each; the call itself never fails. An empty list means all tags.
func (c *Client) SetOutputTags(tags []string) {
	selected := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(SupportedOutputTags, tag) {
			c.emit(Warning{
				Code:    WarnUnsupportedOutputTag,
				Message: "unsupported output tag dropped",
				Value:   tag,
			})
			continue
		}
		selected = append(selected, tag)
	}
	c.config.OutputTags = selected
}

// Config returns a copy of the current configuration.
func (c *Client) Config() Config {
	cfg := c.config
	cfg.OutputTags = slices.Clone(c.config.OutputTags)
	return cfg
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
