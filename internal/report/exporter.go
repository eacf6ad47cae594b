package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/daterange"
	"github.com/Afrawles/ghactivity/internal/logger"
)

//go:embed "templates"
var templateFS embed.FS

// Meta describes the run an export belongs to.
type Meta struct {
	RunID       string          `json:"run_id,omitempty"`
	User        string          `json:"user"`
	Private     bool            `json:"private"`
	Range       daterange.Range `json:"-"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type objectDoc struct {
	ID         string                    `json:"id"`
	Kind       activity.Kind             `json:"kind"`
	Link       string                    `json:"link"`
	Title      *string                   `json:"title,omitempty"`
	Activities []activity.ActivityRecord `json:"activities"`
}

type repoDoc struct {
	Repository string      `json:"repository"`
	Objects    []objectDoc `json:"objects"`
}

type reportDoc struct {
	Meta
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Repositories []repoDoc `json:"repositories"`
	Stats        Stats     `json:"stats"`
}

func documents(idx *activity.Index) []repoDoc {
	repos := make([]repoDoc, 0, len(idx.Repositories()))
	for _, repo := range idx.Repositories() {
		doc := repoDoc{Repository: repo}
		for _, obj := range idx.Objects(repo) {
			doc.Objects = append(doc.Objects, objectDoc{
				ID:         obj.ID,
				Kind:       obj.Kind,
				Link:       obj.Link,
				Title:      obj.Title,
				Activities: obj.SortedActivities(),
			})
		}
		repos = append(repos, doc)
	}
	return repos
}

type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

// ExportJSON writes the index with run metadata and returns the file path.
func (e *Exporter) ExportJSON(idx *activity.Index, meta Meta, filename string) (string, error) {
	doc := reportDoc{
		Meta:         meta,
		From:         meta.Range.From,
		To:           meta.Range.To,
		Repositories: documents(idx),
		Stats:        Statistics(idx),
	}

	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON report: %w", err)
	}

	outputPath := filepath.Join(e.OutputDir, filename)
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	logger.Named("report").Info().Str("path", outputPath).Msg("JSON report saved")
	return outputPath, nil
}

// ExportHTML renders the index through the embedded report template.
func (e *Exporter) ExportHTML(idx *activity.Index, stats Stats, meta Meta, filename string) (string, error) {
	funcMap := template.FuncMap{
		"title":    cases.Title(language.English).String,
		"truncate": Truncate,
		"when":     formatTime,
		"day":      formatDay,
		"ranked":   Ranked,
	}
	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/report.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := map[string]any{
		"Meta":         meta,
		"Generated":    meta.GeneratedAt.Format("2006-01-02 15:04:05"),
		"Repositories": documents(idx),
		"Stats":        stats,
		"MaxBody":      MaxBodyRunes,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	outputPath := filepath.Join(e.OutputDir, filename)
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write HTML report: %w", err)
	}

	logger.Named("report").Info().Str("path", outputPath).Msg("HTML report saved")
	return outputPath, nil
}
