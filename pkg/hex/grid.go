package hex

// Disk returns all cube coordinates at distance <= r from center, in the
// order of the dx/dy double loop with dz = -dx-dy. A negative radius
// yields nil.
func Disk(center Cube, r int) []Cube {
	if r < 0 {
		return nil
	}
	res := make([]Cube, 0, 1+3*r*(r+1))
	for dx := -r; dx <= r; dx++ {
		for dy := max(-r, -dx-r); dy <= min(r, -dx+r); dy++ {
			dz := -dx - dy
			res = append(res, center.Add(Cube{dx, dy, dz}))
		}
	}
	return res
}

// Ring returns the cube coordinates at exact distance k from center,
// starting from direction 4 and walking each of the six sides.
// If k==0, returns [center]; a negative k yields nil.
func Ring(center Cube, k int) []Cube {
	if k < 0 {
		return nil
	}
	if k == 0 {
		return []Cube{center}
	}
	res := make([]Cube, 0, 6*k)
	cur := center.Add(CubeDirections[4].Scale(k))
	for side := 0; side < 6; side++ {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Add(CubeDirections[side])
		}
	}
	return res
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
