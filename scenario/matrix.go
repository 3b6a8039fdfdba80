package scenario

import (
	"strings"

	"github.com/elementsproject/lightning-integration/node"
)

// Product returns every ordered combination of repeat kinds, the cartesian
// power of kinds. Scenarios run once per combination.
func Product(kinds []node.Kind, repeat int) [][]node.Kind {
	if repeat <= 0 || len(kinds) == 0 {
		return nil
	}
	combos := [][]node.Kind{{}}
	for i := 0; i < repeat; i++ {
		next := make([][]node.Kind, 0, len(combos)*len(kinds))
		for _, c := range combos {
			for _, k := range kinds {
				combo := make([]node.Kind, len(c), len(c)+1)
				copy(combo, c)
				next = append(next, append(combo, k))
			}
		}
		combos = next
	}
	return combos
}

// Pairs is Product with repeat 2.
func Pairs(kinds []node.Kind) [][]node.Kind {
	return Product(kinds, 2)
}

// IDFor names a combination for subtest names, e.g. "lnd_eclair".
func IDFor(kinds []node.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "_")
}
