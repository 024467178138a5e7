package gamemap

import (
	"fmt"
	"strings"
	"time"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// Category is the kind of content a hex node holds.
type Category int

const (
	Empty Category = iota
	Obstacle
	Resource
	Enemy
	Campfire
	Boss
)

var categoryNames = [...]string{"empty", "obstacle", "resource", "enemy", "campfire", "boss"}

// String returns the lowercase name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a category name (case-insensitive) back to its value.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(s, name) {
			return Category(i), nil
		}
	}
	return Empty, fmt.Errorf("unknown category %q", s)
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a category name written by MarshalText.
func (c *Category) UnmarshalText(b []byte) error {
	cat, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

// Modifier flags decorate a node's base tile without affecting passability.
type Modifier uint8

const (
	Grass Modifier = 1 << iota
	Rock
	Moss
)

// Has reports whether all bits of f are set.
func (m Modifier) Has(f Modifier) bool { return m&f == f }

// Names lists the set flags in declaration order.
func (m Modifier) Names() []string {
	var out []string
	if m.Has(Grass) {
		out = append(out, "grass")
	}
	if m.Has(Rock) {
		out = append(out, "rock")
	}
	if m.Has(Moss) {
		out = append(out, "moss")
	}
	return out
}

// Node is one map cell. Category, Blocked, Modifiers and Resource are fixed
// at creation; G, H and Parent are pathfinding scratch overwritten by every
// search.
type Node struct {
	Coord     hex.Cube
	Category  Category
	Blocked   bool
	Modifiers Modifier
	Resource  string

	// Harvest state, only meaningful for Resource nodes.
	Depleted bool
	ReadyAt  time.Time

	G      int
	H      int
	Parent *Node
}

func newNode(c hex.Cube, cat Category) *Node {
	return &Node{
		Coord:    c,
		Category: cat,
		Blocked:  cat == Obstacle,
	}
}

// F is the A* priority G+H.
func (n *Node) F() int { return n.G + n.H }

func (n *Node) String() string {
	return fmt.Sprintf("%s%s", n.Category, n.Coord)
}
