package activity

import (
	"reflect"
	"sort"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestIndex_ApplySameObjectKeepsFirstMetadata(t *testing.T) {
	idx := NewIndex()

	first := TrackedObject{Kind: KindIssue, Link: "https://example.com/1", Title: strPtr("first title")}
	second := TrackedObject{Kind: KindIssue, Link: "https://example.com/other", Title: strPtr("second title")}

	idx.Apply("octo/hello", "#1", first, ActivityRecord{Action: "opened", CreatedAt: t0})
	idx.Apply("octo/hello", "#1", second, ActivityRecord{Action: "closed", CreatedAt: t0.Add(time.Hour)})

	objs := idx.Objects("octo/hello")
	if len(objs) != 1 {
		t.Fatalf("expected one object, got %d", len(objs))
	}
	obj := objs[0]
	if obj.TitleOrEmpty() != "first title" || obj.Link != "https://example.com/1" {
		t.Fatalf("object metadata should come from the first event: %+v", obj)
	}

	var actions []string
	for _, a := range obj.Activities {
		actions = append(actions, a.Action)
	}
	if !reflect.DeepEqual(actions, []string{"opened", "closed"}) {
		t.Fatalf("activities = %v", actions)
	}
}

func TestIndex_ReplayAppendsTwice(t *testing.T) {
	idx := NewIndex()
	obj := TrackedObject{Kind: KindCommit, Link: "l"}
	act := ActivityRecord{Action: "Comment created", Body: strPtr("b"), CreatedAt: t0}

	idx.Apply("octo/hello", "abcdef", obj, act)
	idx.Apply("octo/hello", "abcdef", obj, act)

	got, ok := idx.Lookup("octo/hello", "abcdef")
	if !ok {
		t.Fatalf("object not found")
	}
	if len(got.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(got.Activities))
	}
	if idx.Len() != 1 || idx.ActivityCount() != 2 {
		t.Fatalf("Len = %d, ActivityCount = %d", idx.Len(), idx.ActivityCount())
	}
}

func TestIndex_SameIDDifferentRepositories(t *testing.T) {
	idx := NewIndex()
	idx.Apply("octo/a", "#1", TrackedObject{Kind: KindIssue}, ActivityRecord{Action: "opened"})
	idx.Apply("octo/b", "#1", TrackedObject{Kind: KindPullRequest}, ActivityRecord{Action: "opened"})

	repos := idx.Repositories()
	sort.Strings(repos)
	if !reflect.DeepEqual(repos, []string{"octo/a", "octo/b"}) {
		t.Fatalf("repositories = %v", repos)
	}
	a, _ := idx.Lookup("octo/a", "#1")
	b, _ := idx.Lookup("octo/b", "#1")
	if a == b || a.Kind != KindIssue || b.Kind != KindPullRequest {
		t.Fatalf("objects in different repositories must be distinct")
	}
	if _, ok := idx.Lookup("octo/c", "#1"); ok {
		t.Fatalf("lookup in unknown repository should miss")
	}
	if idx.Objects("octo/c") != nil {
		t.Fatalf("Objects of unknown repository should be nil")
	}
}

func TestIndex_TemplateNotAliased(t *testing.T) {
	idx := NewIndex()
	tmpl := TrackedObject{Kind: KindIssue, Activities: make([]ActivityRecord, 0, 4)}

	idx.Apply("octo/a", "#1", tmpl, ActivityRecord{Action: "opened"})
	idx.Apply("octo/a", "#2", tmpl, ActivityRecord{Action: "closed"})

	one, _ := idx.Lookup("octo/a", "#1")
	two, _ := idx.Lookup("octo/a", "#2")
	if one.Activities[0].Action != "opened" || two.Activities[0].Action != "closed" {
		t.Fatalf("objects share activity storage: %v / %v", one.Activities, two.Activities)
	}
}

func TestTrackedObject_SortedActivities(t *testing.T) {
	obj := &TrackedObject{Activities: []ActivityRecord{
		{Action: "c", CreatedAt: t0.Add(2 * time.Hour)},
		{Action: "a", CreatedAt: t0},
		{Action: "b1", CreatedAt: t0.Add(time.Hour)},
		{Action: "b2", CreatedAt: t0.Add(time.Hour)},
	}}

	var got []string
	for _, a := range obj.SortedActivities() {
		got = append(got, a.Action)
	}
	if !reflect.DeepEqual(got, []string{"a", "b1", "b2", "c"}) {
		t.Fatalf("sorted = %v", got)
	}
	if obj.Activities[0].Action != "c" {
		t.Fatalf("SortedActivities must not reorder the stored slice")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindIssue:       "Issue",
		KindPullRequest: "PullRequest",
		KindCommit:      "Commit",
		Kind(42):        "Kind(42)",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
