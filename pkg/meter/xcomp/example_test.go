package xcomp_test

import (
	"fmt"

	"github.com/omeyang/xmeter/pkg/meter/xcomp"
)

func ExampleNew() {
	calls := int64(0)
	counter := xcomp.New(xcomp.Meta{Label: "calls", Unit: "1", Policy: xcomp.PolicySum},
		func() int64 {
			calls += 3
			return calls
		})

	counter.Start()
	counter.Stop()
	fmt.Println(counter.Meta().Label, counter.Value())
	// Output: calls 3
}

func ExampleCombine() {
	fmt.Println(xcomp.Combine(xcomp.PolicySum, int64(2), 5))
	fmt.Println(xcomp.Combine(xcomp.PolicyMax, int64(2), 5))
	// Output:
	// 7
	// 5
}
