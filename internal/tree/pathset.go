package tree

// PathSet is an immutable, insertion-ordered set of paths. Every update
// returns a new set and leaves the receiver untouched, so a set handed to a
// view can never change underneath it.
type PathSet struct {
	order []string
	index map[string]struct{}
}

// NewPathSet builds a set from paths, dropping duplicates.
func NewPathSet(paths ...string) PathSet {
	var s PathSet
	for _, p := range paths {
		s = s.With(p)
	}
	return s
}

func (s PathSet) Has(path string) bool {
	_, ok := s.index[path]
	return ok
}

func (s PathSet) Len() int {
	return len(s.order)
}

// Paths returns the members in insertion order.
func (s PathSet) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// With returns a set that also contains path, appended last.
func (s PathSet) With(path string) PathSet {
	if s.Has(path) {
		return s
	}
	next := PathSet{
		order: make([]string, len(s.order), len(s.order)+1),
		index: make(map[string]struct{}, len(s.order)+1),
	}
	copy(next.order, s.order)
	for k := range s.index {
		next.index[k] = struct{}{}
	}
	next.order = append(next.order, path)
	next.index[path] = struct{}{}
	return next
}

// Without returns a set that no longer contains path.
func (s PathSet) Without(path string) PathSet {
	if !s.Has(path) {
		return s
	}
	return s.Filter(func(p string) bool { return p != path })
}

// Toggle removes path if present, otherwise adds it.
func (s PathSet) Toggle(path string) PathSet {
	if s.Has(path) {
		return s.Without(path)
	}
	return s.With(path)
}

// Filter keeps the members for which keep returns true.
func (s PathSet) Filter(keep func(string) bool) PathSet {
	next := PathSet{index: make(map[string]struct{}, len(s.order))}
	for _, p := range s.order {
		if keep(p) {
			next.order = append(next.order, p)
			next.index[p] = struct{}{}
		}
	}
	return next
}
