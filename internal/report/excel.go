package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/daterange"
)

const maxSheetName = 31

type ExcelExporter struct {
	OutputDir string
	Prefix    string
}

func NewExcelExporter(outputDir, prefix string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir, Prefix: prefix}
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "#000000", Style: 1},
	{Type: "right", Color: "#000000", Style: 1},
	{Type: "top", Color: "#000000", Style: 1},
	{Type: "bottom", Color: "#000000", Style: 1},
}

type sheetStyles struct {
	header, repoHeader, total, link int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return s, err
	}
	if s.repoHeader, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true},
		Border: thinBorder,
	}); err != nil {
		return s, err
	}
	if s.link, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#0563C1", Underline: "single"},
	}); err != nil {
		return s, err
	}
	return s, nil
}

// Export writes a workbook with a Dashboard sheet and one sheet per
// repository, returning its path.
func (e *ExcelExporter) Export(idx *activity.Index, r daterange.Range) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := "activity.xlsx"
	if e.Prefix != "" {
		name = e.Prefix + "_activity.xlsx"
	}
	filename := filepath.Join(e.OutputDir, name)

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return "", fmt.Errorf("failed to create styles: %w", err)
	}

	if err := e.createDashboardSheet(f, "Dashboard", styles, buildDashboard(idx), r); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	used := map[string]bool{"dashboard": true}
	for _, repo := range idx.Repositories() {
		sheetName := uniqueSheetName(sanitizeSheetName(repo), used)
		if err := e.createRepoSheet(f, sheetName, styles, repoRows(idx, repo)); err != nil {
			return "", fmt.Errorf("failed to create sheet for %s: %w", repo, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if i, err := f.GetSheetIndex("Dashboard"); err == nil {
		f.SetActiveSheet(i)
	}

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, sheetName string, styles sheetStyles, d *dashboard, r daterange.Range) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	cells := newCellWriter(f, sheetName)

	cells.set(1, 1, "Date From:", 0)
	cells.set(2, 1, formatDay(r.From), 0)
	cells.set(1, 2, "Date to:", 0)
	cells.set(2, 2, formatDay(r.To), 0)

	row := 4
	col := 1
	cells.set(col, row, "", styles.header)
	col++
	cells.set(col, row, "Action", styles.header)
	col++
	for range d.repos {
		for _, k := range Kinds {
			cells.set(col, row, kindHeader(k), styles.header)
			col++
		}
	}
	lastCol := col - 1

	row++
	col = 3
	span := len(Kinds) - 1
	for _, repo := range d.repos {
		cells.set(col, row, repo, 0)
		cells.style(col, row, col+span, row, styles.repoHeader)
		cells.merge(col, row, col+span, row)
		col += len(Kinds)
	}

	for _, action := range d.actions {
		row++
		cells.set(2, row, action, 0)
		col = 3
		for _, repo := range d.repos {
			for k := range Kinds {
				cells.set(col, row, d.count(action, repo, k), 0)
				col++
			}
		}
	}

	row++
	cells.set(1, row, "", styles.total)
	cells.set(2, row, "Total", styles.total)
	col = 3
	for _, repo := range d.repos {
		for _, n := range d.totals(repo) {
			cells.set(col, row, n, styles.total)
			col++
		}
	}

	cells.width(1, 1, 5)
	cells.width(2, 2, 24)
	if lastCol >= 3 {
		cells.width(3, lastCol, 15)
	}

	return cells.err
}

func (e *ExcelExporter) createRepoSheet(f *excelize.File, sheetName string, styles sheetStyles, rows []Row) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	cells := newCellWriter(f, sheetName)

	headers := []string{"#", "Kind", "ID", "Title", "Action", "Body", "Date", "Link"}
	for col, header := range headers {
		cells.set(col+1, 1, header, styles.header)
	}

	for i, r := range rows {
		row := i + 2
		link := r.ActivityLink
		if link == "" {
			link = r.Link
		}

		cells.set(1, row, i+1, 0)
		cells.set(2, row, r.Kind.String(), 0)
		cells.set(3, row, r.ObjectID, 0)
		cells.set(4, row, r.Title, 0)
		cells.set(5, row, r.Action, 0)
		cells.set(6, row, r.Body, 0)
		cells.set(7, row, formatTime(r.CreatedAt), 0)
		if link != "" {
			cells.set(8, row, link, styles.link)
			cells.hyperlink(8, row, link)
		}
	}

	cells.width(1, 1, 5)
	cells.width(2, 3, 12)
	cells.width(4, 4, 40)
	cells.width(5, 5, 20)
	cells.width(6, 6, 50)
	cells.width(7, 7, 20)
	cells.width(8, 8, 60)

	if cells.err == nil {
		cells.err = f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	return cells.err
}

// cellWriter keeps the first excelize error so sheet builders read linearly.
type cellWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func newCellWriter(f *excelize.File, sheet string) *cellWriter {
	return &cellWriter{f: f, sheet: sheet}
}

func (c *cellWriter) set(col, row int, value any, style int) {
	if c.err != nil {
		return
	}
	cell := cellName(col, row)
	if c.err = c.f.SetCellValue(c.sheet, cell, value); c.err != nil {
		return
	}
	if style != 0 {
		c.err = c.f.SetCellStyle(c.sheet, cell, cell, style)
	}
}

func (c *cellWriter) style(col1, row1, col2, row2, style int) {
	if c.err != nil {
		return
	}
	c.err = c.f.SetCellStyle(c.sheet, cellName(col1, row1), cellName(col2, row2), style)
}

func (c *cellWriter) merge(col1, row1, col2, row2 int) {
	if c.err != nil || (col1 == col2 && row1 == row2) {
		return
	}
	c.err = c.f.MergeCell(c.sheet, cellName(col1, row1), cellName(col2, row2))
}

func (c *cellWriter) hyperlink(col, row int, link string) {
	if c.err != nil {
		return
	}
	c.err = c.f.SetCellHyperLink(c.sheet, cellName(col, row), link, "External")
}

func (c *cellWriter) width(col1, col2 int, w float64) {
	if c.err != nil {
		return
	}
	c.err = c.f.SetColWidth(c.sheet, columnLetter(col1), columnLetter(col2), w)
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// sanitizeSheetName maps a repository name onto Excel's sheet name rules.
func sanitizeSheetName(name string) string {
	name = strings.NewReplacer(
		"/", "-",
		"\\", "-",
		"?", "",
		"*", "",
		":", "-",
		"[", "(",
		"]", ")",
	).Replace(name)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Repository"
	}

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// uniqueSheetName suffixes name until it is unused; Excel compares sheet
// names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len([]rune(suffix)) > maxSheetName {
			base = base[:maxSheetName-len([]rune(suffix))]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
