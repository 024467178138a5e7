// Command mapdump generates a map from a server config and prints it to the
// terminal, optionally with a path between two cells.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"

	"github.com/gravitas-games/hexlands/internal/config"
	"github.com/gravitas-games/hexlands/internal/gamemap"
	"github.com/gravitas-games/hexlands/internal/server"
	"github.com/gravitas-games/hexlands/pkg/hex"
)

var glyphs = map[gamemap.Category]string{
	gamemap.Empty:    ".",
	gamemap.Obstacle: "#",
	gamemap.Resource: "$",
	gamemap.Enemy:    "E",
	gamemap.Campfire: "^",
	gamemap.Boss:     "B",
}

var styles = map[gamemap.Category]color.Style{
	gamemap.Empty:    {color.FgGray},
	gamemap.Obstacle: {color.FgWhite, color.OpBold},
	gamemap.Resource: {color.FgGreen},
	gamemap.Enemy:    {color.FgRed},
	gamemap.Campfire: {color.FgYellow},
	gamemap.Boss:     {color.FgMagenta, color.OpBold},
}

var pathStyle = color.Style{color.FgCyan, color.OpBold}

func main() {
	configPath := flag.String("config", "./configs/server.yaml", "server config to read map settings from")
	radius := flag.Int("radius", 8, "radius of the generated view around the origin")
	seed := flag.Int64("seed", 0, "override the configured map seed")
	from := flag.String("from", "", "path start as x,y,z")
	to := flag.String("to", "", "path goal as x,y,z")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *seed != 0 {
		cfg.Map.Seed = *seed
	}
	if cfg.Map.Seed == 0 {
		cfg.Map.Seed = 1
	}

	gen, err := server.NewGenerator(cfg.Map, cfg.Map.Seed)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}
	if _, err := gen.GetNodesInView(hex.Origin, *radius); err != nil {
		log.Fatalf("Failed to generate view: %v", err)
	}

	onPath := map[hex.Cube]bool{}
	var summary string
	if *from != "" && *to != "" {
		summary, err = findPath(gen, *from, *to, onPath)
		if err != nil {
			log.Fatalf("Path search failed: %v", err)
		}
	}

	render(gen, *radius, onPath)
	printCensus(gen)
	if summary != "" {
		fmt.Println(summary)
	}
}

// loadConfig falls back to defaults when the config file does not exist
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func parseCube(s string) (hex.Cube, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return hex.Cube{}, fmt.Errorf("coordinate %q: want x,y,z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return hex.Cube{}, fmt.Errorf("coordinate %q: %w", s, err)
		}
		v[i] = n
	}
	return hex.NewCube(v[0], v[1], v[2])
}

func findPath(gen *gamemap.Generator, from, to string, onPath map[hex.Cube]bool) (string, error) {
	start, err := parseCube(from)
	if err != nil {
		return "", err
	}
	goal, err := parseCube(to)
	if err != nil {
		return "", err
	}
	path, found, err := gamemap.NewPathfinder(gen).FindPath(start, goal)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("no path from %s to %s", start, goal), nil
	}
	for _, n := range path {
		onPath[n.Coord] = true
	}
	return fmt.Sprintf("path %s -> %s: %d steps", start, goal, gamemap.PathCost(path)), nil
}

// render prints one line per axial row, indented to give the pointy-top stagger
func render(gen *gamemap.Generator, radius int, onPath map[hex.Cube]bool) {
	for r := -radius; r <= radius; r++ {
		var b strings.Builder
		indent := r
		if indent < 0 {
			indent = -indent
		}
		b.WriteString(strings.Repeat(" ", indent))

		qMin, qMax := -radius, radius
		if -r-radius > qMin {
			qMin = -r - radius
		}
		if -r+radius < qMax {
			qMax = -r + radius
		}
		for q := qMin; q <= qMax; q++ {
			c := hex.Axial{Q: q, R: r}.ToCube()
			n, ok := gen.Node(c)
			if !ok {
				b.WriteString("  ")
				continue
			}
			if onPath[c] {
				b.WriteString(pathStyle.Sprint("*"))
			} else {
				b.WriteString(styles[n.Category].Sprint(glyphs[n.Category]))
			}
			b.WriteByte(' ')
		}
		fmt.Println(b.String())
	}
}

func printCensus(gen *gamemap.Generator) {
	counts := make(map[gamemap.Category]int)
	for _, n := range gen.Nodes() {
		counts[n.Category]++
	}
	fmt.Printf("%s nodes\n", humanize.Comma(int64(gen.Len())))
	for cat := gamemap.Empty; cat <= gamemap.Boss; cat++ {
		fmt.Printf("  %s %-9s %s\n", styles[cat].Sprint(glyphs[cat]), cat, humanize.Comma(int64(counts[cat])))
	}
}
