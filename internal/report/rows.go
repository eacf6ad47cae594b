package report

import (
	"sort"
	"time"

	"github.com/Afrawles/ghactivity/internal/activity"
)

// Kinds is the column order used by the dashboards.
var Kinds = []activity.Kind{activity.KindIssue, activity.KindPullRequest, activity.KindCommit}

// Row is one activity flattened with its object and repository.
type Row struct {
	Repository   string
	Kind         activity.Kind
	ObjectID     string
	Title        string
	Link         string
	Action       string
	Body         string
	ActivityLink string
	CreatedAt    time.Time
}

// Rows flattens idx in index order, activities sorted by time within each object.
func Rows(idx *activity.Index) []Row {
	var rows []Row
	for _, repo := range idx.Repositories() {
		rows = append(rows, repoRows(idx, repo)...)
	}
	return rows
}

func repoRows(idx *activity.Index, repo string) []Row {
	var rows []Row
	for _, obj := range idx.Objects(repo) {
		for _, act := range obj.SortedActivities() {
			r := Row{
				Repository:   repo,
				Kind:         obj.Kind,
				ObjectID:     obj.ID,
				Title:        obj.TitleOrEmpty(),
				Link:         obj.Link,
				Action:       act.Action,
				ActivityLink: act.Link,
				CreatedAt:    act.CreatedAt,
			}
			if act.Body != nil {
				r.Body = *act.Body
			}
			rows = append(rows, r)
		}
	}
	return rows
}

// dashboard counts activities per action, repository and kind.
type dashboard struct {
	repos   []string
	actions []string
	counts  map[string]map[string][]int // action -> repo -> per-kind counts
}

func buildDashboard(idx *activity.Index) *dashboard {
	d := &dashboard{
		repos:  idx.Repositories(),
		counts: make(map[string]map[string][]int),
	}
	sort.Strings(d.repos)

	for _, row := range Rows(idx) {
		byRepo, ok := d.counts[row.Action]
		if !ok {
			byRepo = make(map[string][]int)
			d.counts[row.Action] = byRepo
			d.actions = append(d.actions, row.Action)
		}
		if byRepo[row.Repository] == nil {
			byRepo[row.Repository] = make([]int, len(Kinds))
		}
		byRepo[row.Repository][kindColumn(row.Kind)]++
	}
	sort.Strings(d.actions)
	return d
}

// count returns the cell for (action, repo, kind column)
func (d *dashboard) count(action, repo string, col int) int {
	c := d.counts[action][repo]
	if c == nil {
		return 0
	}
	return c[col]
}

func (d *dashboard) totals(repo string) []int {
	out := make([]int, len(Kinds))
	for _, action := range d.actions {
		for col := range Kinds {
			out[col] += d.count(action, repo, col)
		}
	}
	return out
}

func kindColumn(k activity.Kind) int {
	for i, kk := range Kinds {
		if kk == k {
			return i
		}
	}
	return 0
}

func kindHeader(k activity.Kind) string {
	switch k {
	case activity.KindIssue:
		return "Issues"
	case activity.KindPullRequest:
		return "Pull Requests"
	case activity.KindCommit:
		return "Commits"
	default:
		return k.String()
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02-01-06")
}
