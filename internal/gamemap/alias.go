package gamemap

import "fmt"

// AliasTable samples an index in O(1) with probability proportional to its
// weight (Vose's alias method). It is immutable once built.
type AliasTable struct {
	prob  []float64
	alias []int
}

// NewAliasTable builds a table for weights. Weights must be non-negative
// with a positive total.
func NewAliasTable(weights []float64) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidWeights)
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: entry %d is negative", ErrInvalidWeights, i)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total weight must be positive", ErrInvalidWeights)
	}

	t := &AliasTable{prob: make([]float64, n), alias: make([]int, n)}
	scaled := make([]float64, n)
	var small, large []int
	for i, w := range weights {
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		t.prob[s] = scaled[s]
		t.alias[s] = l
		scaled[l] = scaled[l] + scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// Leftovers are 1 up to rounding error.
	for _, i := range large {
		t.prob[i] = 1
		t.alias[i] = i
	}
	for _, i := range small {
		t.prob[i] = 1
		t.alias[i] = i
	}
	return t, nil
}

// Len is the number of entries in the table.
func (t *AliasTable) Len() int { return len(t.prob) }

// Sample draws one index using a column roll and a coin flip.
func (t *AliasTable) Sample(src Source) int {
	i := src.Intn(len(t.prob))
	if src.Float64() < t.prob[i] {
		return i
	}
	return t.alias[i]
}

// ResourceTable pairs resource kind names with an alias table over their weights.
type ResourceTable struct {
	names []string
	table *AliasTable
}

// NewResourceTable builds a sampler for resource kinds. Names are taken in
// the order given so draws are reproducible for a seed.
func NewResourceTable(names []string, weights []float64) (*ResourceTable, error) {
	if len(names) != len(weights) {
		return nil, fmt.Errorf("%w: %d names for %d weights", ErrInvalidWeights, len(names), len(weights))
	}
	t, err := NewAliasTable(weights)
	if err != nil {
		return nil, err
	}
	return &ResourceTable{names: append([]string(nil), names...), table: t}, nil
}

// Sample returns one resource kind name.
func (r *ResourceTable) Sample(src Source) string {
	return r.names[r.table.Sample(src)]
}
