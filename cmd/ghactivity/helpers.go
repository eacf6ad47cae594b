package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Afrawles/ghactivity/internal/daterange"
	"github.com/Afrawles/ghactivity/internal/report"
)

// newSpinner draws on stderr so stdout carries only the markdown report.
func newSpinner(description string, visible bool) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}

// resolveRange prefers a named period over explicit dates; empty dates mean today.
func resolveRange(from, to, period string, now time.Time) (daterange.Range, error) {
	if strings.TrimSpace(period) != "" {
		return daterange.Period(period, now.In(time.Local))
	}
	return daterange.DayBounds(from, to, time.Local)
}

func printSummary(w io.Writer, stats report.Stats, paths []string) {
	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Repositories: %d\n", stats.Repositories)
	fmt.Fprintf(w, "  Issues / PRs / commits: %d\n", stats.Objects)
	fmt.Fprintf(w, "  Activities: %d\n", stats.Activities)

	if ranked := report.Ranked(stats.ByAction); len(ranked) > 0 {
		parts := make([]string, 0, len(ranked))
		for _, c := range ranked {
			parts = append(parts, fmt.Sprintf("%s %d", c.Name, c.Value))
		}
		fmt.Fprintf(w, "  Actions: %s\n", strings.Join(parts, ", "))
	}

	if len(paths) > 0 {
		fmt.Fprintf(w, "\nReports saved:\n")
		for _, p := range paths {
			fmt.Fprintf(w, "  -> %s\n", p)
		}
	}
}
