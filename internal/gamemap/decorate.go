package gamemap

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// Decor configures noise-driven tile modifiers.
type Decor struct {
	Seed       int64
	Scale      float64 // noise frequency per pixel unit
	GrassLevel float64 // noise >= GrassLevel adds Grass
	MossLevel  float64 // noise < MossLevel adds Moss
}

// DefaultDecor returns modifier settings that leave roughly a third of open
// ground grassy and a sliver mossy.
func DefaultDecor(seed int64) Decor {
	return Decor{Seed: seed, Scale: 0.15, GrassLevel: 0.6, MossLevel: 0.25}
}

// decorator assigns modifier flags from a seeded noise field. The same seed
// and coordinate always produce the same flags.
type decorator struct {
	cfg   Decor
	noise opensimplex.Noise
}

func newDecorator(cfg Decor) *decorator {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultDecor(cfg.Seed).Scale
	}
	return &decorator{cfg: cfg, noise: opensimplex.NewNormalized(cfg.Seed)}
}

func (d *decorator) sample(c hex.Cube) float64 {
	x, y := hex.AxialToPixel(c.ToAxial(), 1)
	return d.noise.Eval2(x*d.cfg.Scale, y*d.cfg.Scale)
}

func (d *decorator) modifiers(n *Node) Modifier {
	if n.Blocked {
		return Rock
	}
	var m Modifier
	v := d.sample(n.Coord)
	if v >= d.cfg.GrassLevel {
		m |= Grass
	}
	if v < d.cfg.MossLevel {
		m |= Moss
	}
	return m
}
