package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/calais/internal/calais"
	"github.com/ppiankov/calais/internal/logger"
	"github.com/ppiankov/calais/internal/model"
	"github.com/ppiankov/calais/internal/util"
)

// ErrEmptyDocument is returned when a source yields no text to annotate.
var ErrEmptyDocument = errors.New("empty document")

// ErrDisallowed is returned when robots.txt forbids fetching a URL source.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Waiter paces outgoing source fetches.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// crawlDelayer is implemented by waiters that honour robots.txt Crawl-delay
type crawlDelayer interface {
	SetCrawlDelay(rawURL string, delay time.Duration)
}

// Pipeline loads a source, annotates it and builds a report.
// It owns one calais.Client and is not safe for concurrent use.
type Pipeline struct {
	client  *calais.Client
	fetcher *Fetcher
	robots  *util.RobotsChecker
	limiter Waiter
	logger  *log.Logger
	config  *model.Config

	clientOpts []calais.Option
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline and client logger
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithLimiter paces URL fetches
func WithLimiter(w Waiter) Option {
	return func(p *Pipeline) { p.limiter = w }
}

// WithClientOptions passes extra options to the underlying calais.Client
func WithClientOptions(opts ...calais.Option) Option {
	return func(p *Pipeline) { p.clientOpts = append(p.clientOpts, opts...) }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		fetcher: NewFetcher(cfg.HTTP),
		logger:  logger.Discard(),
		config:  cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Discard()
	}

	if cfg.Fetch.RespectRobots {
		p.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, 10*time.Second, cfg.Fetch.RobotsTTL)
	}

	transport := calais.NewHTTPTransport(calais.TransportConfig{
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		InsecureTLS:  cfg.HTTP.InsecureTLS,
		HTTPProxy:    cfg.HTTP.HTTPProxy,
		HTTPSProxy:   cfg.HTTP.HTTPSProxy,
		NoProxy:      cfg.HTTP.NoProxy,
	})

	clientOpts := []calais.Option{
		calais.WithTransport(transport),
		calais.WithLogger(p.logger),
		calais.WithContentClass(cfg.Calais.ContentClass),
		calais.WithContentType(cfg.Calais.ContentType),
		calais.WithOutputFormat(cfg.Calais.OutputFormat),
	}
	if cfg.Calais.Endpoint != "" {
		clientOpts = append(clientOpts, calais.WithEndpoint(cfg.Calais.Endpoint))
	}
	clientOpts = append(clientOpts, p.clientOpts...)

	client, err := calais.New(cfg.Calais.Token, clientOpts...)
	if err != nil {
		return nil, err
	}
	client.SetOutputOmitOriginalDocument(cfg.Calais.OmitOriginalDocument)
	if len(cfg.Calais.OutputTags) > 0 {
		client.SetOutputTags(cfg.Calais.OutputTags)
	}
	p.client = client

	return p, nil
}

// Client returns the underlying annotation client
func (p *Pipeline) Client() *calais.Client {
	return p.client
}

// Source is a loaded document ready for annotation
type Source struct {
	Location  string
	Subject   string
	Document  calais.Document
	FetchMeta *model.FetchMeta
}

// Load reads a file or fetches an http(s) URL
func (p *Pipeline) Load(ctx context.Context, location string) (*Source, error) {
	if isURL(location) {
		return p.loadURL(ctx, location)
	}
	return loadFile(location)
}

func (p *Pipeline) loadURL(ctx context.Context, rawURL string) (*Source, error) {
	if p.robots != nil {
		allowed, delay, err := p.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		if d, ok := p.limiter.(crawlDelayer); ok && delay > 0 {
			p.logger.Debug("robots crawl delay", "url", rawURL, "delay", delay)
			d.SetCrawlDelay(rawURL, delay)
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := ExtractDocument(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	subject := doc.Title
	if subject == "" {
		subject = result.Subject
	}
	meta := result.Meta

	return &Source{
		Location:  result.FinalURL,
		Subject:   subject,
		Document:  doc,
		FetchMeta: &meta,
	}, nil
}

func loadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	base := filepath.Base(path)
	src := &Source{
		Location: path,
		Subject:  strings.TrimSuffix(base, filepath.Ext(base)),
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		doc, err := ExtractDocument(string(data))
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		if doc.Title != "" {
			src.Subject = doc.Title
		}
		src.Document = doc
	default:
		src.Document = calais.Document{Body: string(data)}
	}
	return src, nil
}

// Annotate loads a file or URL and annotates it
func (p *Pipeline) Annotate(ctx context.Context, location string) (*model.Report, error) {
	src, err := p.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.AnnotateSource(ctx, src)
}

// AnnotateSource sends an already loaded source to the service and builds the report
func (p *Pipeline) AnnotateSource(ctx context.Context, src *Source) (*model.Report, error) {
	if src.Document.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, src.Location)
	}

	cfg := p.client.Config()
	text, err := src.Document.Render(cfg.ContentType)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	language := p.config.Calais.Language
	if language == "" {
		language = calais.DefaultLanguage
	}
	query := []calais.QueryOption{
		calais.WithLanguage(language),
		calais.WithCharset(p.config.Calais.Charset),
	}

	start := time.Now()
	if err := p.client.ExtractData(ctx, text, query...); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	// collections were just replaced; an empty document reads them back
	topics, _ := p.client.GetTopics(ctx, "")
	entities, _ := p.client.GetEntities(ctx, "")
	tags, _ := p.client.GetSocialTags(ctx, "")

	report := &model.Report{
		Subject:      src.Subject,
		Source:       src.Location,
		ContentType:  cfg.ContentType,
		Language:     language,
		DocumentHash: p.client.LastDocumentHash(),
		AnnotatedAt:  time.Now().UTC(),
		FetchMeta:    src.FetchMeta,
		Topics:       model.SortedTopics(topics),
		Entities:     model.GroupEntities(entities),
		SocialTags:   model.SortedSocialTags(tags),
	}
	if p.config.Output.IncludeRaw {
		report.Raw = json.RawMessage(p.client.LastAPIResponse())
	}

	p.logger.Info("annotated",
		"source", src.Location,
		"topics", len(report.Topics),
		"entities", report.EntityCount(),
		"social_tags", len(report.SocialTags),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}
