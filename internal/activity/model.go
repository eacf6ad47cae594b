// Package activity turns GitHub feed events into tracked issues, pull
// requests and commits grouped by repository.
package activity

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Kind is the type of object an event talks about.
type Kind int

const (
	KindIssue Kind = iota
	KindPullRequest
	KindCommit
)

func (k Kind) String() string {
	switch k {
	case KindIssue:
		return "Issue"
	case KindPullRequest:
		return "PullRequest"
	case KindCommit:
		return "Commit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText lets exporters write the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// RawEvent is one record of the user event feed, payload left undecoded.
// CreatedAt is zero when the record carries no created_at.
type RawEvent struct {
	ID        string
	Type      string
	RepoName  string
	CreatedAt time.Time
	Payload   json.RawMessage
}

// ActivityRecord is one observed action on a TrackedObject.
type ActivityRecord struct {
	Action    string    `json:"action"`
	Body      *string   `json:"body,omitempty"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackedObject is an issue, pull request or commit seen in the feed.
// Kind, Link and Title come from the first event that mentioned it.
type TrackedObject struct {
	ID         string           `json:"id"`
	Kind       Kind             `json:"kind"`
	Link       string           `json:"link"`
	Title      *string          `json:"title,omitempty"`
	Activities []ActivityRecord `json:"-"`
}

// TitleOrEmpty returns the title, or "" for untitled objects such as commits.
func (o *TrackedObject) TitleOrEmpty() string {
	if o.Title == nil {
		return ""
	}
	return *o.Title
}

// SortedActivities returns a copy of the activities ordered by CreatedAt.
// Records with equal timestamps keep their discovery order.
func (o *TrackedObject) SortedActivities() []ActivityRecord {
	out := make([]ActivityRecord, len(o.Activities))
	copy(out, o.Activities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
