package gamemap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// openGrid builds a disk of Empty nodes with the given cells blocked.
func openGrid(t *testing.T, radius int, blocked ...hex.Cube) *Generator {
	t.Helper()
	g, err := NewGenerator(uniform, &scriptedSource{t: t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range blocked {
		g.Place(c, Obstacle)
	}
	for _, c := range hex.Disk(hex.Origin, radius) {
		g.Place(c, Empty)
	}
	return g
}

func assertValidPath(t *testing.T, path []*Node, start, goal hex.Cube) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("empty path")
	}
	if path[0].Coord != start || path[len(path)-1].Coord != goal {
		t.Fatalf("path runs %v -> %v, expected %v -> %v", path[0].Coord, path[len(path)-1].Coord, start, goal)
	}
	for i, n := range path {
		if n.Blocked && i > 0 {
			t.Fatalf("path crosses blocked node %s", n)
		}
		if i > 0 && hex.Distance(path[i-1].Coord, n.Coord) != 1 {
			t.Fatalf("path not contiguous between %v and %v", path[i-1].Coord, n.Coord)
		}
	}
}

func TestFindPathSameNode(t *testing.T) {
	g := openGrid(t, 1)
	path, found, err := NewPathfinder(g).FindPath(hex.Origin, hex.Origin)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(path) != 1 || PathCost(path) != 0 || path[0].Coord != hex.Origin {
		t.Fatalf("expected single-node path, got %d nodes", len(path))
	}
}

func TestFindPathStraightLine(t *testing.T) {
	g := openGrid(t, 3)
	start, goal := hex.Cube{X: -3, Y: 0, Z: 3}, hex.Cube{X: 3, Y: 0, Z: -3}
	path, found, err := NewPathfinder(g).FindPath(start, goal)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	assertValidPath(t, path, start, goal)
	if PathCost(path) != 6 || PathCost(path) != len(path)-1 {
		t.Fatalf("expected cost 6, got %d", PathCost(path))
	}
}

func TestFindPathBlockedGoal(t *testing.T) {
	wall := hex.Cube{X: 1, Y: 0, Z: -1}
	g := openGrid(t, 1, wall)
	_, found, err := NewPathfinder(g).FindPath(hex.Cube{X: -1, Y: 0, Z: 1}, wall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("a blocked goal must report no path")
	}
}

func TestFindPathRoutesAroundObstacle(t *testing.T) {
	wall := hex.Cube{X: 1, Y: 0, Z: -1}
	g := openGrid(t, 2, wall)
	start, goal := hex.Cube{X: -1, Y: 0, Z: 1}, hex.Cube{X: 2, Y: 0, Z: -2}
	path, found, err := NewPathfinder(g).FindPath(start, goal)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	assertValidPath(t, path, start, goal)
	if PathCost(path) != 4 {
		t.Fatalf("expected detour of cost 4, got %d", PathCost(path))
	}
}

func TestFindPathObstacleRing(t *testing.T) {
	g := openGrid(t, 4, hex.Ring(hex.Origin, 2)...)
	_, found, err := NewPathfinder(g).FindPath(hex.Origin, hex.Cube{X: 4, Y: -4, Z: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected no path through a closed ring")
	}
	// Inside the ring is still reachable.
	path, found, _ := NewPathfinder(g).FindPath(hex.Origin, hex.Cube{X: 1, Y: -1, Z: 0})
	if !found || PathCost(path) != 1 {
		t.Fatalf("expected one-step path inside the ring")
	}
}

func TestFindPathMissingEndpoint(t *testing.T) {
	g := openGrid(t, 1)
	before := g.Len()
	_, _, err := NewPathfinder(g).FindPath(hex.Origin, hex.Cube{X: 5, Y: -5, Z: 0})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	_, _, err = NewPathfinder(g).FindPath(hex.Cube{X: -5, Y: 5, Z: 0}, hex.Origin)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound for start, got %v", err)
	}
	if g.Len() != before {
		t.Fatalf("pathfinding must not grow the map")
	}
}

func TestFindPathRepeatedSearchesAgree(t *testing.T) {
	g := openGrid(t, 3, hex.Cube{X: 0, Y: 0, Z: 0}, hex.Cube{X: 1, Y: -1, Z: 0})
	pf := NewPathfinder(g)
	start, goal := hex.Cube{X: -2, Y: 1, Z: 1}, hex.Cube{X: 2, Y: -1, Z: -1}
	first, _, _ := pf.FindPath(start, goal)
	// an unrelated search in between leaves stale scratch behind
	pf.FindPath(goal, hex.Cube{X: 0, Y: 3, Z: -3})
	second, _, _ := pf.FindPath(start, goal)
	if len(first) != len(second) {
		t.Fatalf("path lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("paths diverge at step %d", i)
		}
	}
}

// bfsCost is a reference shortest-path length over the generator's nodes.
func bfsCost(g *Generator, start, goal hex.Cube) (int, bool) {
	dist := map[hex.Cube]int{start: 0}
	queue := []hex.Cube{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return dist[cur], true
		}
		for _, nc := range cur.Neighbors() {
			n, ok := g.Node(nc)
			if !ok || n.Blocked {
				continue
			}
			if _, seen := dist[nc]; seen {
				continue
			}
			dist[nc] = dist[cur] + 1
			queue = append(queue, nc)
		}
	}
	return 0, false
}

func TestFindPathMatchesBreadthFirstOnGeneratedMaps(t *testing.T) {
	w := Weights{Obstacle: 3, Resource: 2, Enemy: 2, Campfire: 1, Boss: 1}
	for seed := int64(1); seed <= 5; seed++ {
		g, _ := NewGenerator(w, rand.New(rand.NewSource(seed)))
		cells, _ := g.GetNodesInView(hex.Origin, 6)
		pf := NewPathfinder(g)
		picker := rand.New(rand.NewSource(seed * 31))
		for i := 0; i < 25; i++ {
			a := cells[picker.Intn(len(cells))]
			b := cells[picker.Intn(len(cells))]
			if a.Blocked || b.Blocked {
				continue
			}
			path, found, err := pf.FindPath(a.Coord, b.Coord)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want, reachable := bfsCost(g, a.Coord, b.Coord)
			if found != reachable {
				t.Fatalf("seed %d: %v->%v found=%v, bfs reachable=%v", seed, a.Coord, b.Coord, found, reachable)
			}
			if !found {
				continue
			}
			assertValidPath(t, path, a.Coord, b.Coord)
			if PathCost(path) != want {
				t.Fatalf("seed %d: %v->%v cost %d, optimal %d", seed, a.Coord, b.Coord, PathCost(path), want)
			}
		}
	}
}
