// Command hsagarender is a debug-only tool: it reads a saved ResultBundle
// JSON document and draws the best solution's building placements and
// road network as an SVG for visual inspection. It has no role in the
// optimization pipeline itself.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type road struct {
	Type     string  `json:"type"`
	Vertices []point `json:"vertices"`
}

type roadNetwork struct {
	Roads []road `json:"roads"`
}

type solution struct {
	Positions map[string]point `json:"positions"`
	Fitness   float64          `json:"fitness"`
}

type bundle struct {
	BestSolution solution    `json:"best_solution"`
	RoadNetwork  roadNetwork `json:"road_network"`
}

const (
	canvasSize  = 1000
	margin      = 40
	buildingRad = 10
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hsagarender <result.json> [out.svg]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hsagarender: %v\n", err)
		os.Exit(1)
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		fmt.Fprintf(os.Stderr, "hsagarender: parsing result bundle: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if len(os.Args) >= 3 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "hsagarender: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	minX, minY, maxX, maxY := bounds(b)
	scaleX, scaleY, tx, ty := fit(minX, minY, maxX, maxY)
	proj := func(p point) (int, int) {
		return int(p.X*scaleX + tx), int(p.Y*scaleY + ty)
	}

	canvas := svg.New(out)
	canvas.Start(canvasSize, canvasSize)
	canvas.Rect(0, 0, canvasSize, canvasSize, "fill:#0f172a")

	for _, r := range b.RoadNetwork.Roads {
		style := "stroke:#64748b;stroke-width:2"
		if r.Type == "major" {
			style = "stroke:#38bdf8;stroke-width:3"
		}
		for i := 0; i+1 < len(r.Vertices); i++ {
			x1, y1 := proj(r.Vertices[i])
			x2, y2 := proj(r.Vertices[i+1])
			canvas.Line(x1, y1, x2, y2, style)
		}
	}

	for id, p := range b.BestSolution.Positions {
		x, y := proj(p)
		canvas.Circle(x, y, buildingRad, "fill:#f97316;stroke:#fff;stroke-width:1")
		canvas.Text(x, y-buildingRad-4, id, "font-size:11px;fill:#e2e8f0;text-anchor:middle")
	}

	canvas.Text(canvasSize/2, 20, fmt.Sprintf("fitness: %.2f", b.BestSolution.Fitness), "font-size:13px;fill:#e2e8f0;text-anchor:middle")
	canvas.End()
}

func bounds(b bundle) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	consider := func(p point) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, p := range b.BestSolution.Positions {
		consider(p)
	}
	for _, r := range b.RoadNetwork.Roads {
		for _, p := range r.Vertices {
			consider(p)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, canvasSize, canvasSize
	}
	return minX, minY, maxX, maxY
}

func fit(minX, minY, maxX, maxY float64) (scaleX, scaleY, tx, ty float64) {
	w, h := maxX-minX, maxY-minY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	avail := float64(canvasSize - 2*margin)
	scale := math.Min(avail/w, avail/h)
	return scale, scale, float64(margin) - minX*scale, float64(margin) - minY*scale
}
