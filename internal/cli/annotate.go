package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/calais/internal/pipeline"
)

var (
	outJSON string
	outMD   string
	timeout time.Duration
	rawOnly bool
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <file|url>",
	Short: "Annotate a single document and print its entities, topics and social tags",
	Long: `Annotate loads one document and submits it to the annotation service:
- Local files are sent as-is; HTML files are split into title, description and text
- URLs are fetched (respecting robots.txt) and extracted the same way
- Topics, entities (grouped by type) and social tags are printed
- Optional JSON and Markdown reports are written

Example:
  calais annotate article.txt
  calais annotate https://www.reuters.com/world/ --json report.json --md report.md
  calais annotate story.html --content-type text/xml --tags person,company`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	annotateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	annotateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	annotateCmd.Flags().BoolVar(&rawOnly, "raw", false, "print the raw service response instead of the summary")
	annotateCmd.Flags().Duration("http-timeout", 2*time.Minute, "timeout for a single HTTP request")
	_ = viper.BindPFlag("http.timeout", annotateCmd.Flags().Lookup("http-timeout"))
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	log.Debug("annotating", "source", source, "content_type", cfg.Calais.ContentType, "language", cfg.Calais.Language)

	p, err := pipeline.NewPipeline(cfg, pipeline.WithLogger(log))
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	report, err := p.Annotate(ctx, source)
	if err != nil {
		return fmt.Errorf("annotate failed: %w", err)
	}

	if rawOnly {
		fmt.Println(p.Client().LastAPIResponse())
		return nil
	}

	renderer := pipeline.NewRenderer(os.Stdout)
	if err := renderer.RenderReport(report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outJSON != "" {
		log.Info("wrote JSON", "path", outJSON)
	}
	if outMD != "" {
		log.Info("wrote Markdown", "path", outMD)
	}

	return nil
}
