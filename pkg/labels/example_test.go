package labels_test

import (
	"fmt"

	"github.com/matzehuels/genomap/pkg/geometry"
	"github.com/matzehuels/genomap/pkg/labels"
)

func ExampleAngled() {
	// Two pairs of crowded labels on the right side of a 10 kb plasmid.
	p := geometry.NewCircular(geometry.Point{}, 10_000)
	ls := []*labels.Label{
		labels.New("lacZ", 2500, 40, 12),
		labels.New("lacY", 2502, 40, 12),
		labels.New("lacA", 2600, 40, 12),
		labels.New("lacI", 2602, 40, 12),
	}

	rep := labels.NewAngled(p, labels.DefaultConfig()).Place(ls, 200)
	fmt.Println("initial islands:", rep.InitialIslands)
	fmt.Println("final islands:", rep.IslandSizes)
	fmt.Println("merges:", rep.Merges)
	// Output:
	// initial islands: 2
	// final islands: [4]
	// merges: 1
}

func ExampleDefault() {
	p := geometry.NewCircular(geometry.Point{}, 10_000)
	ls := []*labels.Label{
		labels.New("oriC", 1, 30, 12),
		labels.New("dnaA", 1, 30, 12),
	}

	labels.NewDefault(p, labels.DefaultConfig()).Place(ls, 100)
	for _, l := range ls {
		fmt.Printf("%s: line %.0f\n", l.Name, l.LineLength(100))
	}
	// Output:
	// oriC: line 20
	// dnaA: line 32
}
