package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Afrawles/ghactivity/internal/daterange"
)

var testRange = daterange.Range{
	From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2024, 3, 1, 23, 59, 59, 999999000, time.UTC),
}

func testMeta() Meta {
	return Meta{
		RunID:       "run-1",
		User:        "octo",
		Range:       testRange,
		GeneratedAt: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestStatistics(t *testing.T) {
	s := Statistics(sampleIndex())

	if s.Repositories != 2 || s.Objects != 3 || s.Activities != 4 {
		t.Fatalf("totals = %+v", s)
	}
	if !reflect.DeepEqual(s.ByRepository, map[string]int{"octo/hello": 3, "octo/tools": 1}) {
		t.Fatalf("ByRepository = %v", s.ByRepository)
	}
	if !reflect.DeepEqual(s.ByKind, map[string]int{"Issue": 2, "PullRequest": 1, "Commit": 1}) {
		t.Fatalf("ByKind = %v", s.ByKind)
	}

	ranked := Ranked(s.ByAction)
	want := []Count{{"Comment created", 2}, {"closed", 1}, {"opened", 1}}
	if !reflect.DeepEqual(ranked, want) {
		t.Fatalf("Ranked(ByAction) = %v, want %v", ranked, want)
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := NewExporter(dir).ExportJSON(sampleIndex(), testMeta(), "report.json")
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		RunID        string `json:"run_id"`
		User         string `json:"user"`
		Repositories []struct {
			Repository string `json:"repository"`
			Objects    []struct {
				ID         string `json:"id"`
				Kind       string `json:"kind"`
				Activities []struct {
					Action string `json:"action"`
				} `json:"activities"`
			} `json:"objects"`
		} `json:"repositories"`
		Stats Stats `json:"stats"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if doc.User != "octo" || doc.RunID != "run-1" {
		t.Fatalf("meta = %q %q", doc.User, doc.RunID)
	}
	if len(doc.Repositories) != 2 || doc.Repositories[0].Repository != "octo/hello" {
		t.Fatalf("repositories = %+v", doc.Repositories)
	}
	issue := doc.Repositories[0].Objects[0]
	if issue.ID != "#3" || issue.Kind != "Issue" {
		t.Fatalf("first object = %+v", issue)
	}
	if len(issue.Activities) != 2 || issue.Activities[0].Action != "opened" {
		t.Fatalf("activities should be sorted by time: %+v", issue.Activities)
	}
	if doc.Stats.Activities != 4 {
		t.Fatalf("stats = %+v", doc.Stats)
	}
}

func TestExportHTML(t *testing.T) {
	dir := t.TempDir()
	idx := sampleIndex()
	path, err := NewExporter(dir).ExportHTML(idx, Statistics(idx), testMeta(), "report.html")
	if err != nil {
		t.Fatalf("ExportHTML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)

	for _, want := range []string{
		"GitHub activity for octo",
		"octo/hello",
		"octo/tools",
		"Comment Created",
		"this comment is definitely lon...",
		`href="https://github.com/octo/hello/pull/4"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestExportHTML_WriteFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	idx := sampleIndex()

	path, err := NewExporter(dir).ExportHTML(idx, Statistics(idx), testMeta(), "report.html")
	if err == nil {
		t.Fatalf("expected an error writing into a missing directory")
	}
	if path != "" {
		t.Fatalf("path = %q, want empty on failure", path)
	}
}

func TestCSVExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	paths, err := NewCSVExporter(dir, "octo").Export(sampleIndex(), testRange)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(paths) != 2 ||
		filepath.Base(paths[0]) != "octo_activity_list.csv" ||
		filepath.Base(paths[1]) != "octo_dashboard.csv" {
		t.Fatalf("paths = %v", paths)
	}

	list := readCSV(t, paths[0])
	if len(list) != 5 {
		t.Fatalf("activity list rows = %d, want header + 4", len(list))
	}
	if !reflect.DeepEqual(list[1][1:6], []string{"octo/hello", "Issue", "#3", "bug report", "opened"}) {
		t.Fatalf("first activity row = %v", list[1])
	}
	if list[2][8] != "https://github.com/octo/hello/issues/3#issuecomment-1" {
		t.Fatalf("comment row should link to the comment: %v", list[2])
	}

	dash := readCSV(t, paths[1])
	// date rows, header, repo row, 3 actions, total; the spacer line reads as no record
	if len(dash) != 8 {
		t.Fatalf("dashboard rows = %d: %v", len(dash), dash)
	}
	if dash[3][2] != "octo/hello" || dash[3][5] != "octo/tools" {
		t.Fatalf("repository row = %v", dash[3])
	}
	total := dash[len(dash)-1]
	if !reflect.DeepEqual(total, []string{"", "Total", "2", "1", "0", "0", "0", "1"}) {
		t.Fatalf("totals row = %v", total)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestExcelExporter(t *testing.T) {
	dir := t.TempDir()
	path, err := NewExcelExporter(dir, "octo").Export(sampleIndex(), testRange)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filepath.Base(path) != "octo_activity.xlsx" {
		t.Fatalf("path = %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"Dashboard", "octo-hello", "octo-tools"}) {
		t.Fatalf("sheets = %v", sheets)
	}

	title, err := f.GetCellValue("octo-hello", "D2")
	if err != nil || title != "bug report" {
		t.Fatalf("D2 = %q, %v", title, err)
	}
	linked, target, err := f.GetCellHyperLink("octo-tools", "H2")
	if err != nil || !linked || !strings.Contains(target, "commitcomment-9") {
		t.Fatalf("H2 hyperlink = %v %q %v", linked, target, err)
	}
}

func TestSheetNames(t *testing.T) {
	long := "an-organisation-with-a-long-name/and-a-long-repository"
	if got := sanitizeSheetName(long); len([]rune(got)) != maxSheetName {
		t.Fatalf("sanitizeSheetName(long) = %q", got)
	}
	if got := sanitizeSheetName("a/b[1]?"); got != "a-b(1)" {
		t.Fatalf("sanitizeSheetName = %q", got)
	}

	used := map[string]bool{}
	first := uniqueSheetName(sanitizeSheetName(long), used)
	second := uniqueSheetName(sanitizeSheetName(long+"-fork"), used)
	if first == second {
		t.Fatalf("collision not resolved: %q", first)
	}
	if len([]rune(second)) > maxSheetName || !strings.HasSuffix(second, " (2)") {
		t.Fatalf("second = %q", second)
	}
	if got := uniqueSheetName("OCTO-HELLO", map[string]bool{"octo-hello": true}); got != "OCTO-HELLO (2)" {
		t.Fatalf("case-insensitive collision = %q", got)
	}
}

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for col, want := range cases {
		if got := columnLetter(col); got != want {
			t.Errorf("columnLetter(%d) = %q, want %q", col, got, want)
		}
	}
}
