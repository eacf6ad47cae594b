package report

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Afrawles/ghactivity/internal/activity"
)

// MaxBodyRunes is how much of a comment body the markdown summary keeps.
const MaxBodyRunes = 30

// WriteMarkdown renders idx as
//
//	## <repo>
//	- [<Kind> [<id>](<link>)] <title>
//	  - <action>[: <body>]
//
// Repositories and objects follow index order, activities are sorted by time.
func WriteMarkdown(w io.Writer, idx *activity.Index) error {
	bw := bufio.NewWriter(w)

	for _, repo := range idx.Repositories() {
		if _, err := fmt.Fprintf(bw, "## %s\n", repo); err != nil {
			return err
		}
		for _, obj := range idx.Objects(repo) {
			if err := writeObject(bw, obj); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func writeObject(w io.Writer, obj *activity.TrackedObject) error {
	if _, err := fmt.Fprintf(w, "- [%s [%s](%s)] %s\n", obj.Kind, obj.ID, obj.Link, obj.TitleOrEmpty()); err != nil {
		return err
	}

	for _, act := range obj.SortedActivities() {
		line := "  - " + act.Action
		if act.Body != nil {
			line += ": " + Truncate(*act.Body, MaxBodyRunes)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Truncate keeps the first n runes of s and appends "..." when anything was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
