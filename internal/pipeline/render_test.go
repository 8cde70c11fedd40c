package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/calais/internal/calais"
	"github.com/ppiankov/calais/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Subject:      "Macron heads to Washington",
		Source:       "article.txt",
		ContentType:  "text/raw",
		Language:     "English",
		DocumentHash: strings.Repeat("a", 64),
		AnnotatedAt:  time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Topics:       []calais.Topic{{ID: "t1", Name: "Politics", Score: 0.9}},
		Entities: []model.EntityGroup{{
			Type: "Person",
			Entities: []calais.Entity{{
				ID: "e1", Type: "Person", Name: "Emmanuel | Macron", Relevance: 0.8,
				Confidence: map[string]float64{"aggregate": 0.95},
			}},
		}},
		SocialTags: []calais.SocialTag{{ID: "s1", Name: "Diplomacy", Importance: 1}},
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := NewRenderer(&bytes.Buffer{}).RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Subject != "Macron heads to Washington" || decoded.EntityCount() != 1 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())

	for _, want := range []string{
		"# Macron heads to Washington",
		"| Politics | 0.900 |",
		"### Person",
		`| Emmanuel \| Macron | 0.800 | 0.950 | 0 |`,
		"- Diplomacy (importance 1)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestMarkdown_EmptySections(t *testing.T) {
	md := Markdown(&model.Report{Subject: "Empty"})
	if strings.Count(md, "_none_") != 3 {
		t.Errorf("expected three empty sections, got:\n%s", md)
	}
}

func TestRenderReport(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "r.json")
	mdPath := filepath.Join(dir, "r.md")

	if err := NewRenderer(&out).RenderReport(sampleReport(), jsonPath, mdPath); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	for _, p := range []string{jsonPath, mdPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to be written: %v", p, err)
		}
	}

	summary := out.String()
	for _, want := range []string{"TOPICS (1)", "ENTITIES (1)", "SOCIAL TAGS (1)", "Politics"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected summary to contain %q\n%s", want, summary)
		}
	}
}
