package hex

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCube is returned for cube triples whose components do not sum to zero.
var ErrInvalidCube = errors.New("cube coordinate components must sum to zero")

// Axial represents axial coordinates (q, r) for pointy-top orientation.
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// CubeDirections are the six neighbor offsets in cube space.
var CubeDirections = [6]Cube{
	{+1, -1, 0}, {+1, 0, -1}, {0, +1, -1},
	{-1, +1, 0}, {-1, 0, +1}, {0, -1, +1},
}

// Origin is the cube coordinate (0, 0, 0).
var Origin = Cube{}

// NewCube builds a cube coordinate, rejecting triples off the x+y+z=0 plane.
func NewCube(x, y, z int) (Cube, error) {
	c := Cube{X: x, Y: y, Z: z}
	if !c.Valid() {
		return Cube{}, fmt.Errorf("%w: %s", ErrInvalidCube, c)
	}
	return c, nil
}

// Valid reports whether c lies on the x+y+z=0 plane.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

// Add returns c+o in cube space.
func (c Cube) Add(o Cube) Cube { return Cube{c.X + o.X, c.Y + o.Y, c.Z + o.Z} }

// Sub returns c-o in cube space.
func (c Cube) Sub(o Cube) Cube { return Cube{c.X - o.X, c.Y - o.Y, c.Z - o.Z} }

// Scale multiplies each component by k.
func (c Cube) Scale(k int) Cube { return Cube{c.X * k, c.Y * k, c.Z * k} }

// Neighbor returns the adjacent coordinate in direction dir (0..5).
func (c Cube) Neighbor(dir int) Cube { return c.Add(CubeDirections[((dir%6)+6)%6]) }

// Neighbors returns all six adjacent coordinates in CubeDirections order.
func (c Cube) Neighbors() [6]Cube {
	var out [6]Cube
	for i, d := range CubeDirections {
		out[i] = c.Add(d)
	}
	return out
}

// String formats c as "(x,y,z)".
func (c Cube) String() string { return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z) }

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Z} }

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	x := a.Q
	z := a.R
	y := -x - z
	return Cube{X: x, Y: y, Z: z}
}

// Distance returns hex distance between two cube coords.
func Distance(a, b Cube) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dz := abs(a.Z - b.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

// DistanceAxial returns hex distance between two axial coords.
func DistanceAxial(a, b Axial) int {
	return Distance(a.ToCube(), b.ToCube())
}

// AxialToPixel converts axial to pixel coordinates for pointy-top layout.
// size is the hex radius (corner to center) in pixels.
func AxialToPixel(a Axial, size float64) (x, y float64) {
	// pointy-top: x = size*sqrt(3)*(q + r/2); y = size*3/2*r
	x = size * math.Sqrt(3) * (float64(a.Q) + float64(a.R)/2.0)
	y = size * 1.5 * float64(a.R)
	return
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
