package poset

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func c(n, i int) Class { return Class{Size: n, Index: i} }

// diamond builds 1.0 -> {2.0, 2.1} -> 3.0.
func diamond(t *testing.T) Relation {
	t.Helper()
	r := make(Relation)
	r.Init(c(1, 0), c(2, 0), c(2, 1), c(3, 0))
	for _, e := range [][2]Class{
		{c(1, 0), c(2, 0)},
		{c(1, 0), c(2, 1)},
		{c(2, 0), c(3, 0)},
		{c(2, 1), c(3, 0)},
	} {
		if err := r.Add(e[0], e[1]); err != nil {
			t.Fatalf("Add(%s, %s) error = %v", e[0], e[1], err)
		}
	}
	return r
}

func TestClassStringAndParse(t *testing.T) {
	cl := c(12, 3)
	if cl.String() != "12.3" {
		t.Errorf("String() = %q, want %q", cl.String(), "12.3")
	}
	got, err := ParseClass("12.3")
	if err != nil || got != cl {
		t.Errorf("ParseClass() = %v, %v", got, err)
	}
	for _, bad := range []string{"", "12", "a.b", "1.-1", "-1.0"} {
		if _, err := ParseClass(bad); !errors.Is(err, ErrInvalidClass) {
			t.Errorf("ParseClass(%q) error = %v, want ErrInvalidClass", bad, err)
		}
	}
}

func TestCompare(t *testing.T) {
	if Compare(c(1, 5), c(2, 0)) >= 0 {
		t.Error("size should dominate index")
	}
	if Compare(c(2, 1), c(2, 0)) <= 0 {
		t.Error("index should break ties")
	}
	if Compare(c(2, 1), c(2, 1)) != 0 {
		t.Error("equal classes should compare equal")
	}
}

func TestSetOperations(t *testing.T) {
	a := NewSet(c(1, 0), c(2, 0), c(2, 1))
	b := NewSet(c(2, 1), c(3, 0))

	if diff := cmp.Diff([]Class{c(1, 0), c(2, 0), c(2, 1), c(3, 0)}, a.Union(b).Sorted()); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Class{c(2, 1)}, a.Intersect(b).Sorted()); diff != "" {
		t.Errorf("Intersect mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Class{c(1, 0), c(2, 0)}, a.Difference(b).Sorted()); diff != "" {
		t.Errorf("Difference mismatch (-want +got):\n%s", diff)
	}
	if !a.Equal(a.Clone()) {
		t.Error("clone should be equal")
	}
	if a.Equal(b) {
		t.Error("different sets reported equal")
	}
	var empty Set
	if empty.Clone() == nil || empty.Clone().Len() != 0 {
		t.Error("Clone of nil set should be empty and non-nil")
	}
}

func TestRelationUnknownClass(t *testing.T) {
	r := make(Relation)
	r.Init(c(1, 0))
	if _, err := r.Get(c(2, 0)); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Get(unregistered) error = %v, want ErrUnknownClass", err)
	}
	if err := r.Add(c(1, 0), c(2, 0)); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Add(to unregistered) error = %v, want ErrUnknownClass", err)
	}
	if err := r.Add(c(2, 0), c(1, 0)); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Add(from unregistered) error = %v, want ErrUnknownClass", err)
	}
}

func TestInitKeepsExisting(t *testing.T) {
	r := diamond(t)
	r.Init(c(1, 0))
	if r[c(1, 0)].Len() != 2 {
		t.Errorf("Init() reset an existing set: %v", r[c(1, 0)].Sorted())
	}
}

func TestValidate(t *testing.T) {
	r := diamond(t)
	if err := r.ValidateLayered(); err != nil {
		t.Fatalf("ValidateLayered() error = %v", err)
	}

	skip := diamond(t)
	skip[c(1, 0)].Add(c(3, 0))
	if err := skip.Validate(); err != nil {
		t.Errorf("Validate() error = %v, skip edges are increasing", err)
	}
	if err := skip.ValidateLayered(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("ValidateLayered() error = %v, want ErrNonConsecutiveRows", err)
	}

	down := diamond(t)
	down[c(3, 0)].Add(c(1, 0))
	if err := down.Validate(); !errors.Is(err, ErrNotIncreasing) {
		t.Errorf("Validate() error = %v, want ErrNotIncreasing", err)
	}

	self := diamond(t)
	self[c(2, 0)].Add(c(2, 0))
	if err := self.Validate(); !errors.Is(err, ErrNotIncreasing) {
		t.Errorf("Validate() self edge error = %v, want ErrNotIncreasing", err)
	}

	dangling := diamond(t)
	dangling[c(3, 0)].Add(c(4, 0))
	if err := dangling.Validate(); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Validate() dangling error = %v, want ErrUnknownClass", err)
	}
}

func TestClosures(t *testing.T) {
	r := diamond(t)
	trans := r.TransitiveClosure()

	want := map[Class][]Class{
		c(1, 0): {c(2, 0), c(2, 1), c(3, 0)},
		c(2, 0): {c(3, 0)},
		c(2, 1): {c(3, 0)},
		c(3, 0): nil,
	}
	for cl, w := range want {
		if diff := cmp.Diff(w, trans[cl].Sorted()); diff != "" {
			t.Errorf("TransitiveClosure[%s] mismatch (-want +got):\n%s", cl, diff)
		}
	}
	if r[c(1, 0)].Len() != 2 {
		t.Error("TransitiveClosure modified its receiver")
	}

	refl := trans.ReflexiveClosure()
	for cl := range want {
		if !refl[cl].Has(cl) {
			t.Errorf("ReflexiveClosure[%s] missing itself", cl)
		}
		if trans[cl].Has(cl) {
			t.Errorf("ReflexiveClosure modified its receiver at %s", cl)
		}
	}

	inv := trans.Inverse()
	if diff := cmp.Diff([]Class{c(1, 0), c(2, 0), c(2, 1)}, inv[c(3, 0)].Sorted()); diff != "" {
		t.Errorf("Inverse[3.0] mismatch (-want +got):\n%s", diff)
	}
	if inv[c(1, 0)].Len() != 0 {
		t.Errorf("Inverse[1.0] = %v, want empty", inv[c(1, 0)].Sorted())
	}
}

func TestMinimal(t *testing.T) {
	trans := diamond(t).TransitiveClosure()
	got := Minimal(NewSet(c(2, 0), c(2, 1), c(3, 0)), trans)
	if diff := cmp.Diff([]Class{c(2, 0), c(2, 1)}, got.Sorted()); diff != "" {
		t.Errorf("Minimal mismatch (-want +got):\n%s", diff)
	}
	got = Minimal(NewSet(c(1, 0), c(3, 0)), trans)
	if diff := cmp.Diff([]Class{c(1, 0)}, got.Sorted()); diff != "" {
		t.Errorf("Minimal mismatch (-want +got):\n%s", diff)
	}
}

func TestRowsAndCounts(t *testing.T) {
	r := diamond(t)
	rows := r.Rows()
	if len(rows) != 3 || len(rows[2]) != 2 {
		t.Errorf("Rows() = %v", rows)
	}
	if r.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", r.EdgeCount())
	}
	if !r.Equal(r.Clone()) {
		t.Error("Clone() should be Equal")
	}
}
