package subarch

import "github.com/matzehuels/subarch/pkg/arch"

// pathOrderLess reports whether the larger graph H is strictly better
// connected than G under iso: some pair of distinct vertices of G is closer
// in H after mapping. dG and dH are the all-pairs distance matrices of the
// two graphs. Only improvement is required; other pairs may get longer.
func pathOrderLess(dG, dH [][]int, iso arch.Mapping) bool {
	for v := range dG {
		for w := v + 1; w < len(dG); w++ {
			if dG[v][w] > dH[iso[v]][iso[w]] {
				return true
			}
		}
	}
	return false
}

// PathOrderLess is the exported form of the path order between two graphs
// under a mapping from g into h. It computes both distance matrices.
func PathOrderLess(g, h *arch.Graph, iso arch.Mapping) bool {
	return pathOrderLess(g.DistanceMatrix(), h.DistanceMatrix(), iso)
}
