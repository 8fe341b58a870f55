package subarch

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/poset"
)

func TestOptimalClasses(t *testing.T) {
	ring8 := mustBuildDevice(t, "rigetti_8")
	tee := mustBuild(t, london)

	tests := []struct {
		name string
		o    *Order
		k    int
		want []poset.Class
	}{
		{"london k=1", tee, 1, []poset.Class{cl(1, 0)}},
		{"london k=3", tee, 3, []poset.Class{cl(3, 0)}},
		{"london k=4 needs both shapes", tee, 4, []poset.Class{cl(5, 0)}},
		{"london k=5", tee, 5, []poset.Class{cl(5, 0)}},
		{"ring k=5 stays a path", ring8, 5, []poset.Class{cl(5, 0)}},
		{"ring k=6 closes the ring", ring8, 6, []poset.Class{cl(8, 0)}},
		{"ring k=7 closes the ring", ring8, 7, []poset.Class{cl(8, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.o.OptimalClasses(tt.k)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OptimalClasses(%d) mismatch (-want +got):\n%s", tt.k, diff)
			}
		})
	}
}

func TestOptimalCandidatesCoverEverySize(t *testing.T) {
	for _, name := range []string{"ibmq_london_5", "ibm_casablanca_7", "rigetti_8"} {
		o := mustBuildDevice(t, name)
		for k := 1; k <= o.Size(); k++ {
			classes, err := o.OptimalClasses(k)
			if err != nil {
				t.Fatalf("%s: OptimalClasses(%d): %v", name, k, err)
			}
			if len(classes) == 0 {
				t.Errorf("%s: OptimalClasses(%d) is empty", name, k)
			}
			cands, _ := o.Candidates(k)
			for _, c := range classes {
				if c.Size < k {
					t.Errorf("%s: candidate %s smaller than %d", name, c, k)
				}
				// Every optimal class hosts every desirable candidate.
				for _, d := range cands {
					if d != c && !o.trans[d].Has(c) {
						t.Errorf("%s: optimal %s not above candidate %s", name, c, d)
					}
				}
			}
			// Results are pairwise incomparable.
			for _, a := range classes {
				for _, b := range classes {
					if o.trans[a].Has(b) {
						t.Errorf("%s: optimal %s below optimal %s", name, a, b)
					}
				}
			}
		}
	}
}

func TestCoveringClasses(t *testing.T) {
	tee := mustBuild(t, london)

	tests := []struct {
		name    string
		k, size int
		want    []poset.Class
	}{
		{"already small enough", 4, 2, []poset.Class{cl(4, 0), cl(4, 1)}},
		{"merged into the device", 4, 1, []poset.Class{cl(5, 0)}},
		{"single candidate", 3, 1, []poset.Class{cl(3, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tee.CoveringClasses(tt.k, tt.size)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CoveringClasses(%d, %d) mismatch (-want +got):\n%s", tt.k, tt.size, diff)
			}
		})
	}
}

// spider is a 6-vertex tree. Its size-5 classes are the fork {0,1,2,3,4},
// which holds both 4-vertex shapes, and the path {0,1,3,4,5}.
var spider = []arch.Pair{{0, 1}, {1, 2}, {1, 3}, {3, 4}, {4, 5}}

func TestCoveringStopsBelowTop(t *testing.T) {
	o := mustBuild(t, spider)

	cands, err := o.Candidates(4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]poset.Class{cl(4, 0), cl(4, 1)}, cands); diff != "" {
		t.Fatalf("Candidates(4) mismatch (-want +got):\n%s", diff)
	}

	got, err := o.CoveringClasses(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]poset.Class{cl(5, 0)}, got); diff != "" {
		t.Errorf("CoveringClasses(4, 1) mismatch (-want +got):\n%s", diff)
	}
	if got[0] == o.Top() {
		t.Errorf("covering collapsed to the whole device %s", o.Top())
	}
}

func TestCoveringCoversCandidates(t *testing.T) {
	for _, name := range []string{"ibm_casablanca_7", "rigetti_8"} {
		o := mustBuildDevice(t, name)
		for k := 1; k <= o.Size(); k++ {
			cands, _ := o.Candidates(k)
			for size := 1; size <= 3; size++ {
				cov, err := o.CoveringClasses(k, size)
				if err != nil {
					t.Fatalf("%s: CoveringClasses(%d, %d): %v", name, k, size, err)
				}
				covSet := poset.NewSet(cov...)
				for _, c := range cands {
					if covSet.Intersect(o.refl[c]).Len() == 0 {
						t.Errorf("%s: candidate %s not covered by %v", name, c, cov)
					}
				}
			}
		}
	}
}

func mustBuildDevice(t *testing.T, name string) *Order {
	t.Helper()
	o, err := FromDevice(context.Background(), name, quiet())
	if err != nil {
		t.Fatalf("FromDevice(%s): %v", name, err)
	}
	return o
}

func TestGuadalupeRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("16-qubit enumeration skipped in short mode")
	}
	o := mustBuildDevice(t, "ibm_guadalupe_16")

	cands, err := o.OptimalCandidates(9)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 2 {
		t.Fatalf("OptimalCandidates(9) returned %d graphs, want 2", len(cands))
	}
	for _, g := range cands {
		if g.NodeCount() != 15 {
			t.Errorf("candidate %s has %d qubits, want 15", g, g.NodeCount())
		}
	}
	if o.Subgraphs(9) == nil || len(o.Subgraphs(16)) != 1 {
		t.Errorf("unexpected class table %v", o.Stats().Classes)
	}
}
