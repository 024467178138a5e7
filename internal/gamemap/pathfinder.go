package gamemap

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// ErrNodeNotFound is returned when a search endpoint has not been materialized.
var ErrNodeNotFound = errors.New("node not found")

// unseen is the G value every node is reset to before a search.
const unseen = math.MaxInt

// Pathfinder runs A* over a Generator's nodes with unit edge cost and hex
// distance as the heuristic. Searches write scratch fields on the nodes, so
// a Pathfinder shares the Generator's single-threaded contract.
type Pathfinder struct {
	g *Generator
}

// NewPathfinder returns a pathfinder over g's node store.
func NewPathfinder(g *Generator) *Pathfinder {
	return &Pathfinder{g: g}
}

// FindPath returns the minimum-cost route from start to goal, start first.
// found is false when no route exists; that is not an error. Endpoints that
// are not yet materialized yield ErrNodeNotFound and the map is not grown.
func (p *Pathfinder) FindPath(start, goal hex.Cube) (path []*Node, found bool, err error) {
	startNode, ok := p.g.Node(start)
	if !ok {
		return nil, false, fmt.Errorf("start %s: %w", start, ErrNodeNotFound)
	}
	goalNode, ok := p.g.Node(goal)
	if !ok {
		return nil, false, fmt.Errorf("goal %s: %w", goal, ErrNodeNotFound)
	}

	// Full reset every call: O(map size), keeps repeated searches independent.
	for _, n := range p.g.nodes {
		n.G = unseen
		n.H = 0
		n.Parent = nil
	}

	open := &openSet{index: make(map[*Node]*openItem)}
	closed := mapset.New[*Node]()

	startNode.G = 0
	startNode.H = hex.Distance(start, goal)
	open.push(startNode)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem).node
		delete(open.index, cur)
		closed.Put(cur)

		if cur == goalNode {
			return retrace(startNode, goalNode), true, nil
		}

		for _, nb := range p.g.GetNeighbors(cur) {
			if nb.Blocked || closed.Has(nb) {
				continue
			}
			tentative := cur.G + 1
			item, inOpen := open.index[nb]
			if inOpen && tentative >= nb.G {
				continue
			}
			nb.G = tentative
			nb.H = hex.Distance(nb.Coord, goal)
			nb.Parent = cur
			if inOpen {
				heap.Fix(open, item.idx)
			} else {
				open.push(nb)
			}
		}
	}
	return nil, false, nil
}

// PathCost is the number of unit edges in path.
func PathCost(path []*Node) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}

func retrace(start, goal *Node) []*Node {
	path := []*Node{goal}
	for cur := goal; cur != start; {
		cur = cur.Parent
		path = append(path, cur)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openItem is a heap entry; seq records insertion order for the final tie-break.
type openItem struct {
	node *Node
	seq  int
	idx  int
}

// openSet orders nodes by F, then H, then insertion order.
type openSet struct {
	items []*openItem
	index map[*Node]*openItem
	seq   int
}

func (o *openSet) push(n *Node) {
	item := &openItem{node: n, seq: o.seq}
	o.seq++
	o.index[n] = item
	heap.Push(o, item)
}

func (o openSet) Len() int { return len(o.items) }

func (o openSet) Less(i, j int) bool {
	a, b := o.items[i].node, o.items[j].node
	if a.F() != b.F() {
		return a.F() < b.F()
	}
	if a.H != b.H {
		return a.H < b.H
	}
	return o.items[i].seq < o.items[j].seq
}

func (o openSet) Swap(i, j int) {
	o.items[i], o.items[j] = o.items[j], o.items[i]
	o.items[i].idx = i
	o.items[j].idx = j
}

func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.idx = len(o.items)
	o.items = append(o.items, item)
}

func (o *openSet) Pop() any {
	old := o.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	o.items = old[:n-1]
	return item
}
