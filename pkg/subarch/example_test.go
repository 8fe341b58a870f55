package subarch_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/subarch"
)

func ExampleOrder_OptimalCandidates() {
	// A T-shaped device: 1 is the hub, 3-4 is the long arm.
	o, _ := subarch.FromCouplingMap(context.Background(),
		[]arch.Pair{{0, 1}, {1, 2}, {1, 3}, {3, 4}},
		subarch.WithLogger(log.New(io.Discard)))

	for k := 3; k <= 4; k++ {
		cands, _ := o.OptimalCandidates(k)
		fmt.Println(k, cands)
	}
	// Output:
	// 3 [{0 1 2: 0-1 1-2}]
	// 4 [{0 1 2 3 4: 0-1 1-2 1-3 3-4}]
}

func ExampleOrder_Covering() {
	o, _ := subarch.FromCouplingMap(context.Background(),
		[]arch.Pair{{0, 1}, {1, 2}, {1, 3}, {3, 4}},
		subarch.WithLogger(log.New(io.Discard)))

	two, _ := o.Covering(4, 2)
	one, _ := o.Covering(4, 1)
	fmt.Println(two)
	fmt.Println(one)
	// Output:
	// [{0 1 2 3: 0-1 1-2 1-3} {0 1 3 4: 0-1 1-3 3-4}]
	// [{0 1 2 3 4: 0-1 1-2 1-3 3-4}]
}
