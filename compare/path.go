package compare

import "strconv"

// Path is a slash-delimited location inside a nested structure, e.g.
// "/state/optimizers/Adam/param_groups/0/lr". It is an immutable value:
// descending into a container produces a new Path, so recursion never
// shares mutable state.
type Path string

// Key returns the path extended by a mapping key.
func (p Path) Key(k string) Path {
	return p + "/" + Path(k)
}

// Index returns the path extended by a sequence position.
func (p Path) Index(i int) Path {
	return p.Key(strconv.Itoa(i))
}

// String returns the path text.
func (p Path) String() string {
	return string(p)
}
