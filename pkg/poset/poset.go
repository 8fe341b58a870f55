package poset

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrUnknownClass is returned when a class was never registered with
	// [Relation.Init].
	ErrUnknownClass = errors.New("unknown class")

	// ErrNonConsecutiveRows is returned by [Relation.ValidateLayered] when an
	// edge does not connect a class of size n to one of size n+1.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive sizes")

	// ErrNotIncreasing is returned by [Relation.Validate] when an edge does
	// not point to a strictly larger class. Such an edge would make the
	// relation reflexive or cyclic.
	ErrNotIncreasing = errors.New("edges must point to larger classes")

	// ErrInvalidClass is returned by [ParseClass] for malformed identifiers.
	ErrInvalidClass = errors.New("invalid class identifier")
)

// Class identifies an isomorphism class: the Index-th representative among
// the subarchitectures with Size qubits.
type Class struct {
	Size  int `json:"n" bson:"n"`
	Index int `json:"i" bson:"i"`
}

// String returns the identifier "size.index", e.g. "4.2".
func (c Class) String() string {
	return strconv.Itoa(c.Size) + "." + strconv.Itoa(c.Index)
}

// ParseClass parses the "size.index" form produced by [Class.String].
func ParseClass(s string) (Class, error) {
	size, index, ok := strings.Cut(s, ".")
	if !ok {
		return Class{}, fmt.Errorf("%w: %q", ErrInvalidClass, s)
	}
	n, err1 := strconv.Atoi(size)
	i, err2 := strconv.Atoi(index)
	if err1 != nil || err2 != nil || n < 0 || i < 0 {
		return Class{}, fmt.Errorf("%w: %q", ErrInvalidClass, s)
	}
	return Class{Size: n, Index: i}, nil
}

// Compare orders classes by size, then index.
func Compare(a, b Class) int {
	if c := cmp.Compare(a.Size, b.Size); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Set is a set of classes.
type Set map[Class]struct{}

// NewSet returns a set holding the given classes.
func NewSet(classes ...Class) Set {
	s := make(Set, len(classes))
	for _, c := range classes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts c.
func (s Set) Add(c Class) { s[c] = struct{}{} }

// Has reports whether c is in the set.
func (s Set) Has(c Class) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of classes.
func (s Set) Len() int { return len(s) }

// Sorted returns the classes in ascending [Compare] order.
func (s Set) Sorted() []Class {
	return slices.SortedFunc(maps.Keys(s), Compare)
}

// Clone returns a copy of s. The clone of a nil set is an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Union returns a new set with the classes of s and o.
func (s Set) Union(o Set) Set {
	out := s.Clone()
	for c := range o {
		out[c] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the classes present in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for c := range s {
		if o.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Difference returns a new set with the classes of s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for c := range s {
		if !o.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Equal reports whether s and o hold the same classes.
func (s Set) Equal(o Set) bool {
	return len(s) == len(o) && len(s.Intersect(o)) == len(s)
}

// Relation maps every registered class to the set of classes above it.
type Relation map[Class]Set

// Init registers each class with an empty set. Classes that are already
// registered keep their current set.
func (r Relation) Init(classes ...Class) {
	for _, c := range classes {
		if _, ok := r[c]; !ok {
			r[c] = make(Set)
		}
	}
}

// Get returns the set related to c, or ErrUnknownClass.
func (r Relation) Get(c Class) (Set, error) {
	s, ok := r[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, c)
	}
	return s, nil
}

// Add records from -> to. Both classes must be registered.
func (r Relation) Add(from, to Class) error {
	s, err := r.Get(from)
	if err != nil {
		return err
	}
	if _, ok := r[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, to)
	}
	s.Add(to)
	return nil
}

// Keys returns the registered classes in ascending order.
func (r Relation) Keys() []Class {
	return slices.SortedFunc(maps.Keys(r), Compare)
}

// EdgeCount returns the number of related pairs.
func (r Relation) EdgeCount() int {
	n := 0
	for _, s := range r {
		n += len(s)
	}
	return n
}

// Clone returns a deep copy of r.
func (r Relation) Clone() Relation {
	out := make(Relation, len(r))
	for c, s := range r {
		out[c] = s.Clone()
	}
	return out
}

// Equal reports whether r and o register the same classes with the same sets.
func (r Relation) Equal(o Relation) bool {
	if len(r) != len(o) {
		return false
	}
	for c, s := range r {
		t, ok := o[c]
		if !ok || !s.Equal(t) {
			return false
		}
	}
	return true
}

// Validate checks that every edge targets a registered, strictly larger class.
func (r Relation) Validate() error {
	for _, from := range r.Keys() {
		for _, to := range r[from].Sorted() {
			if _, ok := r[to]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrUnknownClass, from, to)
			}
			if Compare(from, to) >= 0 {
				return fmt.Errorf("%w: %s -> %s", ErrNotIncreasing, from, to)
			}
		}
	}
	return nil
}

// ValidateLayered checks [Relation.Validate] and additionally that every edge
// connects consecutive sizes, as the direct subsumption order must.
func (r Relation) ValidateLayered() error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, from := range r.Keys() {
		for to := range r[from] {
			if to.Size != from.Size+1 {
				return fmt.Errorf("%w: %s -> %s", ErrNonConsecutiveRows, from, to)
			}
		}
	}
	return nil
}

// TransitiveClosure returns the relation "strictly above, at any distance".
// Classes are resolved from the largest down, so every class above the one
// being processed already has its complete closure.
func (r Relation) TransitiveClosure() Relation {
	keys := r.Keys()
	out := make(Relation, len(r))
	for i := len(keys) - 1; i >= 0; i-- {
		c := keys[i]
		closure := r[c].Clone()
		for d := range r[c] {
			for e := range out[d] {
				closure.Add(e)
			}
		}
		out[c] = closure
	}
	return out
}

// ReflexiveClosure returns a copy of r in which every class is related to itself.
func (r Relation) ReflexiveClosure() Relation {
	out := r.Clone()
	for c, s := range out {
		s.Add(c)
	}
	return out
}

// Inverse returns the converse relation: for every c -> d in r, d -> c.
// Every class registered in r is registered in the result.
func (r Relation) Inverse() Relation {
	out := make(Relation, len(r))
	for c := range r {
		out.Init(c)
	}
	for c, s := range r {
		for d := range s {
			out.Init(d)
			out[d].Add(c)
		}
	}
	return out
}

// Minimal returns the classes of s that are not strictly above another class
// of s. above must map each class to the classes strictly above it, as
// returned by [Relation.TransitiveClosure].
func Minimal(s Set, above Relation) Set {
	out := s.Clone()
	for c := range s {
		for d := range above[c] {
			delete(out, d)
		}
	}
	return out
}

// Rows groups the registered classes by size, each row in ascending order.
func (r Relation) Rows() map[int][]Class {
	rows := make(map[int][]Class)
	for _, c := range r.Keys() {
		rows[c.Size] = append(rows[c.Size], c)
	}
	return rows
}
