package generator

import (
	"math/rand/v2"
	"sort"
)

// weighted samples items proportionally to their weight.
type weighted[T any] struct {
	items      []T
	cumulative []float64
}

func (w *weighted[T]) add(item T, weight float64) {
	total := weight
	if n := len(w.cumulative); n > 0 {
		total += w.cumulative[n-1]
	}
	w.items = append(w.items, item)
	w.cumulative = append(w.cumulative, total)
}

func (w *weighted[T]) pick(rng *rand.Rand) T {
	target := rng.Float64() * w.cumulative[len(w.cumulative)-1]
	i := sort.Search(len(w.cumulative), func(i int) bool {
		return w.cumulative[i] > target
	})
	if i == len(w.items) {
		i--
	}
	return w.items[i]
}
