package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/calais/internal/model"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer whose summaries go to out
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(Markdown(report)), 0o644)
}

// Markdown formats a report as Markdown
func Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Content type:** %s\n", report.ContentType)
	fmt.Fprintf(&b, "- **Language:** %s\n", report.Language)
	fmt.Fprintf(&b, "- **Document hash:** `%s`\n", report.DocumentHash)
	fmt.Fprintf(&b, "- **Annotated at:** %s\n\n", report.AnnotatedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Topics\n\n")
	if len(report.Topics) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		b.WriteString("| Topic | Score |\n|---|---|\n")
		for _, t := range report.Topics {
			fmt.Fprintf(&b, "| %s | %.3f |\n", escapeCell(t.Name), t.Score)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Entities\n\n")
	if len(report.Entities) == 0 {
		b.WriteString("_none_\n\n")
	}
	for _, g := range report.Entities {
		fmt.Fprintf(&b, "### %s\n\n", g.Type)
		b.WriteString("| Name | Relevance | Confidence | Mentions |\n|---|---|---|---|\n")
		for _, e := range g.Entities {
			confidence := "-"
			if v, ok := e.Confidence["aggregate"]; ok {
				confidence = fmt.Sprintf("%.3f", v)
			}
			fmt.Fprintf(&b, "| %s | %.3f | %s | %d |\n", escapeCell(e.Name), e.Relevance, confidence, len(e.Instances))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Social tags\n\n")
	if len(report.SocialTags) == 0 {
		b.WriteString("_none_\n")
	}
	for _, t := range report.SocialTags {
		fmt.Fprintf(&b, "- %s (importance %g)\n", t.Name, t.Importance)
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderSummary prints topics, entities and social tags
func (r *Renderer) RenderSummary(report *model.Report) {
	w := r.out
	_, _ = fmt.Fprintf(w, "\n%s\n", report.Subject)
	_, _ = fmt.Fprintf(w, "Source: %s\n", report.Source)
	_, _ = fmt.Fprintf(w, "Hash:   %s\n", report.DocumentHash)

	_, _ = fmt.Fprintf(w, "\nTOPICS (%d)\n", len(report.Topics))
	for _, t := range report.Topics {
		_, _ = fmt.Fprintf(w, "  %-40s %.3f\n", t.Name, t.Score)
	}

	_, _ = fmt.Fprintf(w, "\nENTITIES (%d)\n", report.EntityCount())
	for _, g := range report.Entities {
		_, _ = fmt.Fprintf(w, "  %s\n", g.Type)
		for _, e := range g.Entities {
			_, _ = fmt.Fprintf(w, "    %-38s %.3f\n", e.Name, e.Relevance)
		}
	}

	_, _ = fmt.Fprintf(w, "\nSOCIAL TAGS (%d)\n", len(report.SocialTags))
	for _, t := range report.SocialTags {
		_, _ = fmt.Fprintf(w, "  %-40s %g\n", t.Name, t.Importance)
	}
}

// RenderReport renders the report to the specified outputs and prints the summary
func (r *Renderer) RenderReport(report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	r.RenderSummary(report)
	return nil
}
