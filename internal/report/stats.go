package report

import (
	"sort"

	"github.com/Afrawles/ghactivity/internal/activity"
)

// Stats summarises an index for the end-of-run report.
type Stats struct {
	Repositories int            `json:"repositories"`
	Objects      int            `json:"objects"`
	Activities   int            `json:"activities"`
	ByRepository map[string]int `json:"by_repository"`
	ByKind       map[string]int `json:"by_kind"`
	ByAction     map[string]int `json:"by_action"`
}

// Statistics counts activities by repository, object kind and action
func Statistics(idx *activity.Index) Stats {
	s := Stats{
		ByRepository: make(map[string]int),
		ByKind:       make(map[string]int),
		ByAction:     make(map[string]int),
	}

	for _, repo := range idx.Repositories() {
		s.Repositories++
		for _, obj := range idx.Objects(repo) {
			s.Objects++
			for _, act := range obj.Activities {
				s.Activities++
				s.ByRepository[repo]++
				s.ByKind[obj.Kind.String()]++
				s.ByAction[act.Action]++
			}
		}
	}

	return s
}

// Count is one entry of a ranked breakdown.
type Count struct {
	Name  string
	Value int
}

// Ranked orders m by count descending, then name.
func Ranked(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
