package gamemap

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// scriptedSource replays fixed draws; Intn fails the test if a draw is out of range.
type scriptedSource struct {
	t      *testing.T
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		s.t.Fatalf("scripted source exhausted")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 || v >= n {
		s.t.Fatalf("scripted draw %d out of range [0,%d)", v, n)
	}
	return v
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

var uniform = Weights{Obstacle: 1, Resource: 1, Enemy: 1, Campfire: 1, Boss: 1}

func TestWeightedRandomCategoryBands(t *testing.T) {
	src := &scriptedSource{t: t, ints: []int{0, 1, 2, 3, 4}}
	g, err := NewGenerator(uniform, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Category{Obstacle, Resource, Enemy, Campfire, Boss}
	for i, w := range want {
		if got := g.WeightedRandomCategory(); got != w {
			t.Fatalf("draw %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestWeightedRandomCategoryBoundaryFallsIntoNextBand(t *testing.T) {
	w := Weights{Obstacle: 2, Resource: 3, Enemy: 0, Campfire: 0, Boss: 1}
	cases := map[int]Category{0: Obstacle, 1: Obstacle, 2: Resource, 4: Resource, 5: Boss}
	for roll, want := range cases {
		if got := w.categoryForRoll(roll); got != want {
			t.Fatalf("roll %d: expected %s, got %s", roll, want, got)
		}
	}
}

func TestWeightedRandomCategoryConverges(t *testing.T) {
	w := Weights{Obstacle: 1, Resource: 2, Enemy: 3, Campfire: 4, Boss: 10}
	g, err := NewGenerator(w, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const draws = 200000
	counts := map[Category]int{}
	for i := 0; i < draws; i++ {
		counts[g.WeightedRandomCategory()]++
	}
	expected := map[Category]float64{Obstacle: 1, Resource: 2, Enemy: 3, Campfire: 4, Boss: 10}
	for cat, weight := range expected {
		got := float64(counts[cat]) / draws
		want := weight / float64(w.Total())
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("%s: proportion %.4f, expected %.4f", cat, got, want)
		}
	}
	if counts[Empty] != 0 {
		t.Fatalf("Empty must never be rolled")
	}
}

func TestNewGeneratorRejectsBadWeights(t *testing.T) {
	if _, err := NewGenerator(Weights{}, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights for zero total, got %v", err)
	}
	if _, err := NewGenerator(Weights{Obstacle: -1, Boss: 3}, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights for negative weight, got %v", err)
	}
	if _, err := NewGenerator(uniform, nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

func TestGetOrCreateNodeIsIdempotent(t *testing.T) {
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(3)))
	if _, err := g.GetNodesInView(hex.Origin, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := hex.Cube{X: 3, Y: -1, Z: -2}
	a, err := g.GetOrCreateNode(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := g.GetOrCreateNode(c)
	if a != b || a.Category != b.Category {
		t.Fatalf("expected the same node instance on repeat access")
	}
}

func TestFirstNodeIsEmptyWithoutDraw(t *testing.T) {
	src := &scriptedSource{t: t}
	g, _ := NewGenerator(uniform, src)
	n, err := g.GetOrCreateNode(hex.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Category != Empty || n.Blocked {
		t.Fatalf("isolated node should be open Empty, got %s", n)
	}
}

func TestObstacleEnclosedNodeIsForcedEmpty(t *testing.T) {
	src := &scriptedSource{t: t}
	g, _ := NewGenerator(uniform, src)
	for _, c := range hex.Origin.Neighbors() {
		if _, ok, err := g.Place(c, Obstacle); err != nil || !ok {
			t.Fatalf("place %v: ok=%v err=%v", c, ok, err)
		}
	}
	n, err := g.GetOrCreateNode(hex.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Category != Empty {
		t.Fatalf("expected Empty inside an obstacle ring, got %s", n.Category)
	}
}

func TestOneOpenNeighborRollsCategory(t *testing.T) {
	src := &scriptedSource{t: t, ints: []int{4}}
	g, _ := NewGenerator(uniform, src)
	g.Place(hex.Cube{X: 1, Y: -1, Z: 0}, Campfire)
	g.Place(hex.Cube{X: -1, Y: 1, Z: 0}, Obstacle)
	n, _ := g.GetOrCreateNode(hex.Origin)
	if n.Category != Boss {
		t.Fatalf("expected rolled Boss, got %s", n.Category)
	}
}

func TestGetOrCreateNodeRejectsInvalidCube(t *testing.T) {
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(1)))
	if _, err := g.GetOrCreateNode(hex.Cube{X: 1, Y: 1, Z: 1}); !errors.Is(err, hex.ErrInvalidCube) {
		t.Fatalf("expected ErrInvalidCube, got %v", err)
	}
	if g.Len() != 0 {
		t.Fatalf("invalid coordinate must not grow the map")
	}
}

func TestGetNodesInView(t *testing.T) {
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(11)))
	nodes, err := g.GetNodesInView(hex.Origin, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 19 || g.Len() != 19 {
		t.Fatalf("expected 19 nodes, got %d (map %d)", len(nodes), g.Len())
	}
	for _, n := range nodes {
		if n.Blocked != (n.Category == Obstacle) {
			t.Fatalf("blocked flag disagrees with category on %s", n)
		}
	}

	again, _ := g.GetNodesInView(hex.Origin, 1)
	byCoord := map[hex.Cube]*Node{}
	for _, n := range nodes {
		byCoord[n.Coord] = n
	}
	for _, n := range again {
		if byCoord[n.Coord] != n {
			t.Fatalf("overlapping view returned a different node at %v", n.Coord)
		}
	}

	wider, _ := g.GetNodesInView(hex.Origin, 3)
	if len(wider) != 37 || g.Len() != 37 {
		t.Fatalf("expected map to grow to 37, got %d", g.Len())
	}
}

func TestGetNodesInViewNegativeRadius(t *testing.T) {
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(1)))
	nodes, err := g.GetNodesInView(hex.Origin, -2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 || g.Len() != 0 {
		t.Fatalf("negative radius should yield nothing")
	}
}

func TestGetNeighborsDoesNotCreate(t *testing.T) {
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(1)))
	center, _ := g.GetOrCreateNode(hex.Origin)
	g.GetOrCreateNode(hex.Cube{X: 1, Y: 0, Z: -1})
	nbs := g.GetNeighbors(center)
	if len(nbs) != 1 || g.Len() != 2 {
		t.Fatalf("expected 1 neighbor and no growth, got %d neighbors, map %d", len(nbs), g.Len())
	}
}

func TestSameSeedSameMap(t *testing.T) {
	a, _ := NewGenerator(uniform, rand.New(rand.NewSource(99)))
	b, _ := NewGenerator(uniform, rand.New(rand.NewSource(99)))
	na, _ := a.GetNodesInView(hex.Origin, 4)
	nb, _ := b.GetNodesInView(hex.Origin, 4)
	for i := range na {
		if na[i].Coord != nb[i].Coord || na[i].Category != nb[i].Category {
			t.Fatalf("maps diverge at %v: %s vs %s", na[i].Coord, na[i].Category, nb[i].Category)
		}
	}
}

func TestObserverSeesEveryCreation(t *testing.T) {
	created := 0
	g, _ := NewGenerator(uniform, rand.New(rand.NewSource(5)),
		WithObserver(ObserverFunc(func(*Node) { created++ })))
	g.GetNodesInView(hex.Origin, 2)
	g.GetNodesInView(hex.Origin, 2)
	if created != 19 {
		t.Fatalf("expected 19 creations, got %d", created)
	}
}

func TestResourceNodesGetKinds(t *testing.T) {
	table, err := NewResourceTable([]string{"herb", "ore"}, []float64{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := Weights{Resource: 1}
	g, _ := NewGenerator(w, rand.New(rand.NewSource(2)), WithResources(table))
	nodes, _ := g.GetNodesInView(hex.Origin, 2)
	for _, n := range nodes {
		switch n.Category {
		case Resource:
			if n.Resource != "herb" && n.Resource != "ore" {
				t.Fatalf("resource node %s has kind %q", n, n.Resource)
			}
		case Empty:
			if n.Resource != "" {
				t.Fatalf("empty node %s should carry no resource", n)
			}
		default:
			t.Fatalf("unexpected category %s", n.Category)
		}
	}
}

func TestDecorIsDeterministicAndRocksObstacles(t *testing.T) {
	build := func() []*Node {
		g, _ := NewGenerator(uniform, rand.New(rand.NewSource(4)), WithDecor(DefaultDecor(4)))
		nodes, _ := g.GetNodesInView(hex.Origin, 5)
		return nodes
	}
	a, b := build(), build()
	for i := range a {
		if a[i].Modifiers != b[i].Modifiers {
			t.Fatalf("modifiers differ at %v", a[i].Coord)
		}
		if a[i].Blocked && !a[i].Modifiers.Has(Rock) {
			t.Fatalf("obstacle %s missing Rock", a[i])
		}
		if !a[i].Blocked && a[i].Modifiers.Has(Rock) {
			t.Fatalf("open node %s carries Rock", a[i])
		}
	}
}

func TestParseCategory(t *testing.T) {
	for c := Empty; c <= Boss; c++ {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCategory("dragon"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestCategoryJSON(t *testing.T) {
	for c := Empty; c <= Boss; c++ {
		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal %v: %v", c, err)
		}
		var got Category
		if err := json.Unmarshal(data, &got); err != nil || got != c {
			t.Fatalf("unmarshal %s = %v, %v", data, got, err)
		}
	}
	var got Category
	if err := json.Unmarshal([]byte(`"dragon"`), &got); err == nil {
		t.Fatalf("expected error for unknown category name")
	}
}
