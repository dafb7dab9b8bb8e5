package xhash_test

import (
	"fmt"

	"github.com/omeyang/xmeter/pkg/meter/xhash"
)

func ExampleRegistry_Intern() {
	r := xhash.New()
	id := r.Intern("total")
	label, _ := r.Label(id)

	fmt.Println(label, id == r.Intern("total"), id == xhash.RootID)
	// Output: total true false
}
