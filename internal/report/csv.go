package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/daterange"
)

type CSVExporter struct {
	OutputDir string
	// Prefix is prepended to every file name, e.g. "octo_20240301_120000".
	Prefix string
}

func NewCSVExporter(outputDir, prefix string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir, Prefix: prefix}
}

// Export writes <prefix>_activity_list.csv and <prefix>_dashboard.csv and
// returns their paths.
func (e *CSVExporter) Export(idx *activity.Index, r daterange.Range) ([]string, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	list, err := e.exportActivityList(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to export activity list: %w", err)
	}

	dash, err := e.exportDashboard(idx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to export dashboard: %w", err)
	}

	return []string{list, dash}, nil
}

func (e *CSVExporter) path(name string) string {
	if e.Prefix == "" {
		return filepath.Join(e.OutputDir, name+".csv")
	}
	return filepath.Join(e.OutputDir, e.Prefix+"_"+name+".csv")
}

func (e *CSVExporter) exportActivityList(idx *activity.Index) (_ string, err error) {
	filename := e.path("activity_list")
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer closeFile(file, &err)

	writer := csv.NewWriter(file)

	header := []string{
		"#",
		"Repository",
		"Kind",
		"ID",
		"Title",
		"Action",
		"Body",
		"Date",
		"Link",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i, row := range Rows(idx) {
		link := row.ActivityLink
		if link == "" {
			link = row.Link
		}
		record := []string{
			strconv.Itoa(i + 1),
			row.Repository,
			row.Kind.String(),
			row.ObjectID,
			row.Title,
			row.Action,
			row.Body,
			formatTime(row.CreatedAt),
			link,
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return filename, writer.Error()
}

// exportDashboard writes one row per action and, for every repository, one
// column per object kind.
func (e *CSVExporter) exportDashboard(idx *activity.Index, r daterange.Range) (_ string, err error) {
	filename := e.path("dashboard")
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer closeFile(file, &err)

	writer := csv.NewWriter(file)
	d := buildDashboard(idx)

	preamble := [][]string{
		{"Date From:", formatDay(r.From)},
		{"Date to:", formatDay(r.To)},
		{""},
	}
	if err := writer.WriteAll(preamble); err != nil {
		return "", err
	}

	header := []string{"", "Action"}
	for range d.repos {
		for _, k := range Kinds {
			header = append(header, kindHeader(k))
		}
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	repoRow := []string{"", ""}
	for _, repo := range d.repos {
		repoRow = append(repoRow, repo)
		for range Kinds[1:] {
			repoRow = append(repoRow, "")
		}
	}
	if err := writer.Write(repoRow); err != nil {
		return "", err
	}

	for _, action := range d.actions {
		record := []string{"", action}
		for _, repo := range d.repos {
			for col := range Kinds {
				record = append(record, strconv.Itoa(d.count(action, repo, col)))
			}
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	totalsRow := []string{"", "Total"}
	for _, repo := range d.repos {
		for _, n := range d.totals(repo) {
			totalsRow = append(totalsRow, strconv.Itoa(n))
		}
	}
	if err := writer.Write(totalsRow); err != nil {
		return "", err
	}

	writer.Flush()
	return filename, writer.Error()
}

// closeFile closes f and reports its error through err unless err is
// already set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
