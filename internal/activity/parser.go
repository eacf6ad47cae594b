package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// commitIDLength is how many leading hex digits of a commit SHA form its id.
const commitIDLength = 6

// Parsed is the normalized form of one feed event.
type Parsed struct {
	Repo     string
	ID       string
	Object   TrackedObject
	Activity ActivityRecord
}

// handler extracts the three parts of a Parsed from a decoded payload.
type handler struct {
	id       func(p payload) (string, error)
	object   func(p payload) (TrackedObject, error)
	activity func(p payload) (ActivityRecord, error)
}

var handlers = map[string]handler{
	"IssuesEvent": {
		id:       numberID("issue"),
		object:   titledObject(KindIssue, "issue", "issue"),
		activity: stateActivity,
	},
	"IssueCommentEvent": {
		id:       numberID("issue"),
		object:   titledObject(KindIssue, "issue", "issue"),
		activity: commentActivity,
	},
	"PullRequestEvent": {
		id:       numberID("pull_request"),
		object:   titledObject(KindPullRequest, "pull_request", "pull_request"),
		activity: stateActivity,
	},
	"PullRequestReviewCommentEvent": {
		id:       numberID("pull_request"),
		object:   titledObject(KindPullRequest, "comment", "pull_request"),
		activity: commentActivity,
	},
	"CommitCommentEvent": {
		id:       commitID,
		object:   commitObject,
		activity: commentActivity,
	},
}

// EventTypes lists the feed event types the parser understands.
func EventTypes() []string {
	return []string{
		"IssuesEvent",
		"IssueCommentEvent",
		"PullRequestEvent",
		"PullRequestReviewCommentEvent",
		"CommitCommentEvent",
	}
}

// Supports reports whether eventType has a handler.
func Supports(eventType string) bool {
	_, ok := handlers[eventType]
	return ok
}

// Parse extracts the tracked object and activity carried by ev.
func Parse(ev RawEvent) (Parsed, error) {
	h, ok := handlers[ev.Type]
	if !ok {
		return Parsed{}, &UnknownEventTypeError{Type: ev.Type}
	}
	if ev.RepoName == "" {
		return Parsed{}, &MalformedEventError{Type: ev.Type, Field: "repo.name"}
	}
	if ev.CreatedAt.IsZero() {
		return Parsed{}, &MalformedEventError{Type: ev.Type, Field: "created_at"}
	}

	p, err := decodePayload(ev)
	if err != nil {
		return Parsed{}, err
	}

	id, err := h.id(p)
	if err != nil {
		return Parsed{}, err
	}
	obj, err := h.object(p)
	if err != nil {
		return Parsed{}, err
	}
	act, err := h.activity(p)
	if err != nil {
		return Parsed{}, err
	}

	obj.ID = id
	act.CreatedAt = ev.CreatedAt.UTC()

	return Parsed{
		Repo:     ev.RepoName,
		ID:       id,
		Object:   obj,
		Activity: act,
	}, nil
}

func numberID(objectKey string) func(p payload) (string, error) {
	return func(p payload) (string, error) {
		n, err := p.number(objectKey, "number")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("#%d", n), nil
	}
}

func commitID(p payload) (string, error) {
	sha, err := p.str("comment", "commit_id")
	if err != nil {
		return "", err
	}
	if len(sha) < commitIDLength || !isHex(sha[:commitIDLength]) {
		return "", p.malformed("comment", "commit_id")
	}
	return sha[:commitIDLength], nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// titledObject builds an issue or pull request whose link is read from
// linkKey.html_url and title from titleKey.title.
func titledObject(kind Kind, linkKey, titleKey string) func(p payload) (TrackedObject, error) {
	return func(p payload) (TrackedObject, error) {
		link, err := p.str(linkKey, "html_url")
		if err != nil {
			return TrackedObject{}, err
		}
		title, err := p.str(titleKey, "title")
		if err != nil {
			return TrackedObject{}, err
		}
		return TrackedObject{Kind: kind, Link: link, Title: &title}, nil
	}
}

// commitObject links to the commit comment; the feed payload carries no
// separate commit resource.
func commitObject(p payload) (TrackedObject, error) {
	link, err := p.str("comment", "html_url")
	if err != nil {
		return TrackedObject{}, err
	}
	return TrackedObject{Kind: KindCommit, Link: link}, nil
}

func stateActivity(p payload) (ActivityRecord, error) {
	action, err := p.str("action")
	if err != nil {
		return ActivityRecord{}, err
	}
	return ActivityRecord{Action: action}, nil
}

func commentActivity(p payload) (ActivityRecord, error) {
	action, err := p.str("action")
	if err != nil {
		return ActivityRecord{}, err
	}
	body, err := p.str("comment", "body")
	if err != nil {
		return ActivityRecord{}, err
	}
	link, err := p.str("comment", "html_url")
	if err != nil {
		return ActivityRecord{}, err
	}
	return ActivityRecord{
		Action: "Comment " + action,
		Body:   &body,
		Link:   link,
	}, nil
}

// payload is a decoded event payload with typed, path-based accessors.
type payload struct {
	eventType string
	root      map[string]any
}

func decodePayload(ev RawEvent) (payload, error) {
	p := payload{eventType: ev.Type}
	if len(bytes.TrimSpace(ev.Payload)) == 0 {
		return p, &MalformedEventError{Type: ev.Type, Field: "payload"}
	}

	dec := json.NewDecoder(bytes.NewReader(ev.Payload))
	dec.UseNumber()
	if err := dec.Decode(&p.root); err != nil || p.root == nil {
		return p, &MalformedEventError{Type: ev.Type, Field: "payload"}
	}
	return p, nil
}

func (p payload) malformed(path ...string) error {
	return &MalformedEventError{
		Type:  p.eventType,
		Field: "payload." + strings.Join(path, "."),
	}
}

func (p payload) lookup(path ...string) (any, bool) {
	var cur any = p.root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (p payload) str(path ...string) (string, error) {
	v, ok := p.lookup(path...)
	if !ok {
		return "", p.malformed(path...)
	}
	s, ok := v.(string)
	if !ok {
		return "", p.malformed(path...)
	}
	return s, nil
}

func (p payload) number(path ...string) (uint64, error) {
	v, ok := p.lookup(path...)
	if !ok {
		return 0, p.malformed(path...)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, p.malformed(path...)
	}
	n, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return 0, p.malformed(path...)
	}
	return n, nil
}
