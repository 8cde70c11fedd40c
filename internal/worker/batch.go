package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/calais/internal/model"
)

// Annotator annotates one file or URL source
type Annotator interface {
	Annotate(ctx context.Context, source string) (*model.Report, error)
}

// AnnotatorFactory builds an Annotator for a single worker. Annotators hold a
// calais.Client, which serves one query at a time, so workers never share one.
type AnnotatorFactory func() (Annotator, error)

// AnnotateJob represents one source annotation
type AnnotateJob struct {
	Index      int
	Source     string
	annotators []Annotator
}

// Execute annotates the source with the annotator owned by workerID
func (j *AnnotateJob) Execute(ctx context.Context, workerID int) Result {
	report, err := j.annotators[workerID].Annotate(ctx, j.Source)
	return &AnnotateResult{
		Index:  j.Index,
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// AnnotateResult represents the result of an annotation job
type AnnotateResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the annotation result
func (r *AnnotateResult) GetError() error {
	return r.Error
}

// BatchProcessor annotates multiple sources concurrently
type BatchProcessor struct {
	factory     AnnotatorFactory
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(factory AnnotatorFactory, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		factory:     factory,
		concurrency: concurrency,
	}
}

// ProcessSources annotates the sources concurrently and returns one result per
// source, in input order. Sources left unprocessed after cancellation carry ctx's error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) ([]*AnnotateResult, error) {
	if len(sources) == 0 {
		return []*AnnotateResult{}, nil
	}

	workers := min(b.concurrency, len(sources))
	annotators := make([]Annotator, workers)
	for i := range annotators {
		a, err := b.factory()
		if err != nil {
			return nil, fmt.Errorf("create annotator: %w", err)
		}
		annotators[i] = a
	}

	jobs := make([]Job, len(sources))
	for i, source := range sources {
		jobs[i] = &AnnotateJob{Index: i, Source: source, annotators: annotators}
	}

	pool := NewPool(ctx, workers)
	defer pool.Shutdown()

	byIndex := make([]*AnnotateResult, len(sources))
	for _, r := range pool.Run(jobs) {
		res := r.(*AnnotateResult)
		byIndex[res.Index] = res
	}

	for i, res := range byIndex {
		if res != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		byIndex[i] = &AnnotateResult{Index: i, Source: sources[i], Error: err}
	}

	return byIndex, nil
}

// ProcessFile reads sources from a file and annotates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnnotateResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources)
}

// Summarize counts successes and failures
func Summarize(results []*AnnotateResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// Failures returns the failed results ordered by source
func Failures(results []*AnnotateResult) []*AnnotateResult {
	var out []*AnnotateResult
	for _, r := range results {
		if r.Error != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// ReadSourcesFromFile reads file paths or URLs from a file (one per line)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
