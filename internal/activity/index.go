package activity

// Index groups tracked objects by repository name and object id.
// Both levels remember insertion order so iteration is deterministic.
type Index struct {
	repos map[string]*repoObjects
	order []string
}

type repoObjects struct {
	byID  map[string]*TrackedObject
	order []string
}

func NewIndex() *Index {
	return &Index{repos: make(map[string]*repoObjects)}
}

// Apply records act against (repo, id). The first call for a pair stores
// obj as the tracked object; later calls only append activities, so the
// kind, link and title of the first event win. Nothing is deduplicated here.
func (x *Index) Apply(repo, id string, obj TrackedObject, act ActivityRecord) *TrackedObject {
	r, ok := x.repos[repo]
	if !ok {
		r = &repoObjects{byID: make(map[string]*TrackedObject)}
		x.repos[repo] = r
		x.order = append(x.order, repo)
	}

	stored, ok := r.byID[id]
	if !ok {
		o := obj
		o.ID = id
		o.Activities = append([]ActivityRecord(nil), obj.Activities...)
		stored = &o
		r.byID[id] = stored
		r.order = append(r.order, id)
	}

	stored.Activities = append(stored.Activities, act)
	return stored
}

// Lookup returns the tracked object for (repo, id), if any.
func (x *Index) Lookup(repo, id string) (*TrackedObject, bool) {
	r, ok := x.repos[repo]
	if !ok {
		return nil, false
	}
	o, ok := r.byID[id]
	return o, ok
}

// Repositories returns repository names in the order they were first seen.
func (x *Index) Repositories() []string {
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

// Objects returns the tracked objects of repo in the order they were first seen.
func (x *Index) Objects(repo string) []*TrackedObject {
	r, ok := x.repos[repo]
	if !ok {
		return nil
	}
	out := make([]*TrackedObject, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len is the number of tracked objects across all repositories.
func (x *Index) Len() int {
	n := 0
	for _, r := range x.repos {
		n += len(r.byID)
	}
	return n
}

// ActivityCount is the number of activity records across all objects.
func (x *Index) ActivityCount() int {
	n := 0
	for _, r := range x.repos {
		for _, o := range r.byID {
			n += len(o.Activities)
		}
	}
	return n
}
