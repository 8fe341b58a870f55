package subarch

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/poset"
)

// OptimalCandidates returns the representatives of [Order.OptimalClasses].
// For k == N the result is the whole device.
func (o *Order) OptimalCandidates(k int) ([]*arch.Graph, error) {
	classes, err := o.OptimalClasses(k)
	if err != nil {
		return nil, err
	}
	return o.graphs(classes), nil
}

// OptimalClasses returns the minimal classes that lie at or above every
// desirable candidate for circuits of k qubits. Each result can therefore
// host every candidate at once.
//
// Fails with ErrCodeOutOfRange unless 0 < k <= N.
func (o *Order) OptimalClasses(k int) ([]poset.Class, error) {
	if err := errors.ValidateQubits(k, o.Size()); err != nil {
		return nil, err
	}
	if k == o.Size() {
		return []poset.Class{o.Top()}, nil
	}

	var common poset.Set
	for _, c := range o.candidates(k).Sorted() {
		if common == nil {
			common = o.refl[c].Clone()
			continue
		}
		common = common.Intersect(o.refl[c])
	}
	return poset.Minimal(common, o.trans).Sorted(), nil
}

// Candidates returns the union of the desirable sets of all classes of size
// k: the subarchitectures worth considering for a k-qubit circuit.
func (o *Order) Candidates(k int) ([]poset.Class, error) {
	if err := errors.ValidateQubits(k, o.Size()); err != nil {
		return nil, err
	}
	return o.candidates(k).Sorted(), nil
}

func (o *Order) candidates(k int) poset.Set {
	out := poset.NewSet()
	for _, c := range o.Classes(k) {
		for d := range o.desirable[c] {
			out.Add(d)
		}
	}
	return out
}

// Covering returns the representatives of [Order.CoveringClasses].
func (o *Order) Covering(k, size int) ([]*arch.Graph, error) {
	classes, err := o.CoveringClasses(k, size)
	if err != nil {
		return nil, err
	}
	return o.graphs(classes), nil
}

// CoveringClasses returns a set of classes such that every desirable
// candidate for k qubits lies at or below one of them, aiming for at most
// size classes.
//
// Starting from the candidates, classes at or above them are visited from
// the smallest up. Whenever a visited class sits strictly above two or more
// members of the covering it replaces them. The walk stops once the covering
// is small enough or nothing is left to visit, so the bound is best effort
// and the result is not guaranteed minimal.
//
// Fails with ErrCodeOutOfRange unless 0 < k <= N and with
// ErrCodeInvalidInput when size < 1.
func (o *Order) CoveringClasses(k, size int) ([]poset.Class, error) {
	if err := errors.ValidateQubits(k, o.Size()); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "covering size %d must be positive", size)
	}

	cov := o.candidates(k)
	queue := treeset.NewWith(classComparator)
	for c := range cov {
		for d := range o.refl[c] {
			queue.Add(d)
		}
	}

	for cov.Len() > size && !queue.Empty() {
		it := queue.Iterator()
		it.First()
		d := it.Value().(poset.Class)
		queue.Remove(d)

		covered := cov.Intersect(o.below[d])
		if covered.Len() > 1 {
			cov = cov.Difference(covered)
			cov.Add(d)
		}
	}
	return cov.Sorted(), nil
}

func classComparator(a, b any) int {
	return poset.Compare(a.(poset.Class), b.(poset.Class))
}

func (o *Order) graphs(classes []poset.Class) []*arch.Graph {
	out := make([]*arch.Graph, len(classes))
	for i, c := range classes {
		out[i] = o.sgs[c.Size][c.Index].Clone()
	}
	return out
}
