// Package calais is a client for the Open Calais annotation service.
//
// A Client submits a document over HTTPS and reshapes the returned JSON graph into
// three collections: entities grouped by type, topics, and social tags. Responses are
// cached in a single slot addressed by the sha256 of the document, so asking for
// entities, then topics, then social tags of the same document costs one request.
//
// A Client is not safe for concurrent use; keep one outstanding query per client.
package calais

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/calais/internal/cache"
)

// Client talks to the annotation service and owns the parsed collections.
type Client struct {
	token     string
	endpoint  string
	transport Transport
	config    Config

	logger *log.Logger
	warn   WarningHandler

	slot *cache.Slot

	topics     Topics
	socialTags SocialTags
	entities   Entities
}

// New creates a client for the given access token.
func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, invalidConfig("an API token is required")
	}

	c := &Client{
		token:    token,
		endpoint: DefaultEndpoint,
		config: Config{
			ContentClass:         DefaultContentClass,
			ContentType:          DefaultContentType,
			OutputFormat:         DefaultOutputFormat,
			OmitOriginalDocument: DefaultOmitOriginalDoc,
		},
		logger: log.Default(),
		slot:   cache.NewSlot(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(DefaultTransportConfig())
	}

	return c, nil
}

// Query returns the raw service response for document.
//
// The document hash is computed and recorded on every call. When it matches both
// the previously recorded hash and the hash of the last successful response, and
// no refresh is forced, the stored body is returned without a network call. Any
// intervening call for another document, failed or not, forces a refetch. Only
// 2xx responses are cached.
func (c *Client) Query(ctx context.Context, document string, opts ...QueryOption) (string, error) {
	params := defaultQueryParams()
	for _, opt := range opts {
		opt(&params)
	}

	hash := cache.DocumentHash(document)
	changed := c.slot.Observe(hash)

	if !slices.Contains(SupportedLanguages, params.language) {
		return "", invalidConfig("unsupported document language (%s)", params.language)
	}

	if !changed && !params.forceRefresh {
		if body, ok := c.slot.Get(hash); ok {
			c.logger.Debug("annotation cache hit", "hash", hash[:12])
			return string(body), nil
		}
	}

	resp, err := c.transport.Post(ctx, c.endpoint, c.buildHeader(params), []byte(document))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if err := classify(resp); err != nil {
		return "", err
	}

	if len(resp.Body) == 0 {
		return "", fmt.Errorf("%w: empty response body", ErrTransport)
	}

	c.slot.Store(hash, resp.Body)
	c.logger.Debug("annotation fetched", "hash", hash[:12], "bytes", len(resp.Body))

	return string(resp.Body), nil
}

func (c *Client) buildHeader(params queryParams) http.Header {
	h := make(http.Header)
	h.Set(headerAccessToken, c.token)
	h.Set("Accept-Charset", params.charset)
	h.Set("Content-Type", fmt.Sprintf(contentTypeCharsetFormat, c.config.ContentType, params.charset))
	h.Set(headerOutputFormat, c.config.OutputFormat)
	h.Set(headerLanguage, params.language)
	h.Set(headerContentClass, c.config.ContentClass)
	h.Set(headerOmitOriginalText, formatBool(c.config.OmitOriginalDocument))

	if len(c.config.OutputTags) > 0 {
		h.Set(headerSelectiveTags, strings.Join(c.config.OutputTags, selectiveTagsSeparator))
	}
	return h
}

// ExtractData queries the service for document and replaces the entity, topic and
// social tag collections with the parsed response.
//
// Parsing only understands JSON: any other output format is reset to
// application/json with a warning, and that one query bypasses the cache.
func (c *Client) ExtractData(ctx context.Context, document string, opts ...QueryOption) error {
	if c.config.OutputFormat != jsonOutputFormat {
		c.emit(Warning{
			Code:    WarnOutputFormatReset,
			Message: "resetting output format to " + jsonOutputFormat,
			Value:   c.config.OutputFormat,
		})
		c.config.OutputFormat = jsonOutputFormat
		opts = append(opts, WithForceRefresh())
	}

	body, err := c.Query(ctx, document, opts...)
	if err != nil {
		return err
	}

	members, err := decodeMembers([]byte(body))
	if err != nil {
		return err
	}

	for _, m := range members {
		if u, ok := m.(Unrecognized); ok && u.Err != nil {
			c.emit(Warning{
				Code:    WarnMalformedMember,
				Message: fmt.Sprintf("skipping malformed %s member: %v", u.Group, u.Err),
				Value:   u.Key,
			})
		}
	}

	parsed := route(members)
	c.topics = parsed.topics
	c.socialTags = parsed.socialTags
	c.entities = parsed.entities

	c.logger.Debug("annotation parsed",
		"members", len(members),
		"topics", len(parsed.topics),
		"social_tags", len(parsed.socialTags),
		"entities", parsed.entities.Count(),
	)
	return nil
}

// GetEntities returns entities grouped by type. When document is non-empty it is
// extracted first; otherwise the result of the last extraction is returned.
func (c *Client) GetEntities(ctx context.Context, document string, opts ...QueryOption) (Entities, error) {
	if err := c.extractIfGiven(ctx, document, opts); err != nil {
		return nil, err
	}
	return c.entities, nil
}

// GetTopics returns topics keyed by name. See GetEntities for the document rule.
func (c *Client) GetTopics(ctx context.Context, document string, opts ...QueryOption) (Topics, error) {
	if err := c.extractIfGiven(ctx, document, opts); err != nil {
		return nil, err
	}
	return c.topics, nil
}

// GetSocialTags returns social tags keyed by name. See GetEntities for the document rule.
func (c *Client) GetSocialTags(ctx context.Context, document string, opts ...QueryOption) (SocialTags, error) {
	if err := c.extractIfGiven(ctx, document, opts); err != nil {
		return nil, err
	}
	return c.socialTags, nil
}

func (c *Client) extractIfGiven(ctx context.Context, document string, opts []QueryOption) error {
	if document == "" {
		return nil
	}
	return c.ExtractData(ctx, document, opts...)
}

// LastAPIResponse returns the most recent successful raw response body, for archival.
func (c *Client) LastAPIResponse() string {
	body, _ := c.slot.Value()
	return string(body)
}

// LastDocumentHash returns the sha256 of the most recently queried document.
func (c *Client) LastDocumentHash() string {
	return c.slot.LastSeen()
}
