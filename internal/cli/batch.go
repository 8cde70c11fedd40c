package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/calais/internal/pipeline"
	"github.com/ppiankov/calais/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Annotate multiple files or URLs from a list in parallel",
	Long: `Batch annotates many documents concurrently:
- Read sources from the input file (one file path or URL per line, # for comments)
- Annotate in parallel; every worker owns its own client and response cache
- URL fetches are paced per host and honour robots.txt crawl delays
- Write a JSON and a Markdown report for each source

Example:
  calais batch sources.txt
  calais batch sources.txt --concurrency 8 --output-dir ./reports
  calais batch sources.txt --timeout 30m --language French`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./calais-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64("rps", 2, "source fetches per second per host")
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("fetch.requests_per_second", batchCmd.Flags().Lookup("rps"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Calais Batch Annotation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	limiter := worker.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.BurstSize)
	factory := func() (worker.Annotator, error) {
		p, err := pipeline.NewPipeline(cfg, pipeline.WithLogger(log), pipeline.WithLimiter(limiter))
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	processor := worker.NewBatchProcessor(factory, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(os.Stderr)
	for _, result := range results {
		if result.Error != nil {
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Report.Subject))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Source, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d topics, %d entities, %d social tags)\n",
			result.Report.Subject, len(result.Report.Topics), result.Report.EntityCount(), len(result.Report.SocialTags))
	}

	succeeded, failed := worker.Summarize(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failures := worker.Failures(results); len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "  Failed sources:\n")
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", f.Source, f.Error)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d sources failed", failed)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-_")
	if s == "" {
		s = "report"
	}

	// Limit length
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}

	return s
}
