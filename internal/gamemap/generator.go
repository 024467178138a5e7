package gamemap

import (
	"fmt"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// Observer is notified synchronously after each node is materialized.
type Observer interface {
	NodeCreated(n *Node)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(n *Node)

// NodeCreated calls f(n).
func (f ObserverFunc) NodeCreated(n *Node) { f(n) }

// Option configures a Generator.
type Option func(*Generator)

// WithObserver registers an observer for node creation.
func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observers = append(g.observers, o) }
}

// WithDecor enables noise-driven tile modifiers.
func WithDecor(cfg Decor) Option {
	return func(g *Generator) { g.decor = newDecorator(cfg) }
}

// WithResources assigns a sampled resource kind to every Resource node.
func WithResources(t *ResourceTable) Option {
	return func(g *Generator) { g.resources = t }
}

// Generator owns a lazily grown hex map. Nodes are created on first access
// and never removed or re-rolled. It is not safe for concurrent use.
type Generator struct {
	nodes   map[hex.Cube]*Node
	weights Weights
	total   int
	src     Source

	decor     *decorator
	resources *ResourceTable
	observers []Observer
}

// NewGenerator creates an empty map that rolls categories from src using weights.
func NewGenerator(weights Weights, src Source, opts ...Option) (*Generator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("gamemap: nil random source")
	}
	g := &Generator{
		nodes:   make(map[hex.Cube]*Node),
		weights: weights,
		total:   weights.Total(),
		src:     src,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Weights returns the category weights the generator was built with.
func (g *Generator) Weights() Weights { return g.weights }

// Len returns the number of materialized nodes.
func (g *Generator) Len() int { return len(g.nodes) }

// Node returns the node at c without creating it.
func (g *Generator) Node(c hex.Cube) (*Node, bool) {
	n, ok := g.nodes[c]
	return n, ok
}

// Nodes returns every materialized node in unspecified order.
func (g *Generator) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// GetOrCreateNode returns the node at c, creating it on first access.
// A new node rolls a weighted category when at least one materialized
// neighbor is not an Obstacle; otherwise it is forced to Empty.
func (g *Generator) GetOrCreateNode(c hex.Cube) (*Node, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", hex.ErrInvalidCube, c)
	}
	if n, ok := g.nodes[c]; ok {
		return n, nil
	}

	cat := Empty
	if g.hasOpenNeighbor(c) {
		cat = g.WeightedRandomCategory()
	}
	return g.materialize(c, cat), nil
}

func (g *Generator) materialize(c hex.Cube, cat Category) *Node {
	n := newNode(c, cat)
	if cat == Resource && g.resources != nil {
		n.Resource = g.resources.Sample(g.src)
	}
	if g.decor != nil {
		n.Modifiers = g.decor.modifiers(n)
	}
	g.nodes[c] = n

	for _, o := range g.observers {
		o.NodeCreated(n)
	}
	return n
}

func (g *Generator) hasOpenNeighbor(c hex.Cube) bool {
	for _, nc := range c.Neighbors() {
		if nb, ok := g.nodes[nc]; ok && nb.Category != Obstacle {
			return true
		}
	}
	return false
}

// GetNodesInView materializes and returns every node within radius of
// center, in hex.Disk order. A negative radius yields an empty result.
func (g *Generator) GetNodesInView(center hex.Cube, radius int) ([]*Node, error) {
	if !center.Valid() {
		return nil, fmt.Errorf("%w: %s", hex.ErrInvalidCube, center)
	}
	cells := hex.Disk(center, radius)
	out := make([]*Node, 0, len(cells))
	for _, c := range cells {
		n, err := g.GetOrCreateNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// WeightedRandomCategory draws one category from the configured bands.
func (g *Generator) WeightedRandomCategory() Category {
	return g.weights.categoryForRoll(g.src.Intn(g.total))
}

// GetNeighbors returns the materialized neighbors of n in
// hex.CubeDirections order. Missing coordinates are skipped, not created.
func (g *Generator) GetNeighbors(n *Node) []*Node {
	out := make([]*Node, 0, 6)
	for _, nc := range n.Coord.Neighbors() {
		if nb, ok := g.nodes[nc]; ok {
			out = append(out, nb)
		}
	}
	return out
}

// Place materializes a node with a fixed category at c. It exists for
// hosts that author parts of the map by hand; an existing node is left
// untouched and returned with ok=false.
func (g *Generator) Place(c hex.Cube, cat Category) (n *Node, ok bool, err error) {
	if !c.Valid() {
		return nil, false, fmt.Errorf("%w: %s", hex.ErrInvalidCube, c)
	}
	if n, exists := g.nodes[c]; exists {
		return n, false, nil
	}
	return g.materialize(c, cat), true, nil
}
