package chart

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"route-dashboard/internal/domain"
)

// Tooltip is the text shown for a plotted point.
type Tooltip struct {
	Title string   `json:"title"`
	Lines []string `json:"lines,omitempty"`
	Label string   `json:"label"`
}

// Tooltip resolves the semantics of the point at (layer, index). Out of range
// indices and points without ids resolve to a generic fallback.
func (p Projection) Tooltip(layer, index int, routes []domain.DriverRoute) Tooltip {
	if layer < 0 || layer >= len(p.Layers) {
		return Tooltip{Title: "Point"}
	}
	l := p.Layers[layer]
	if index < 0 || index >= len(l.Vertices) {
		return Tooltip{Title: "Point"}
	}
	v := l.Vertices[index]

	t := Tooltip{Label: formatPair(v.X, v.Y)}

	switch l.Kind {
	case KindRoute:
		t.Title = l.Label
		for _, r := range routes {
			if RouteLabel(r.DriverID) == l.Label {
				t.Title = fmt.Sprintf("Driver %d", r.DriverID)
				t.Lines = []string{fmt.Sprintf("Distance: %.1f", r.Distance)}
				break
			}
		}
	default:
		switch {
		case v.ID == nil:
			t.Title = "Point"
		case *v.ID == domain.DepotID:
			t.Title = "Depot"
		default:
			t.Title = fmt.Sprintf("Point #%d", *v.ID)
		}
	}

	return t
}

func formatPair(x, y float64) string {
	return fmt.Sprintf("(%.1f, %.1f)", x, y)
}

// Nearest finds the plotted vertex closest to (x, y). Layers drawn on top win
// ties. Vertices with NaN coordinates are never selected.
func (p Projection) Nearest(x, y float64) (layer, index int, ok bool) {
	target := orb.Point{x, y}
	best := math.Inf(1)

	for li := len(p.Layers) - 1; li >= 0; li-- {
		for vi, v := range p.Layers[li].Vertices {
			if !finite(v) {
				continue
			}
			d := planar.DistanceSquared(target, orb.Point{v.X, v.Y})
			if d < best {
				best, layer, index, ok = d, li, vi, true
			}
		}
	}

	return layer, index, ok
}

// Bounds returns the area covering every finite vertex, padded so that a
// single point still has a non-empty extent.
func (p Projection) Bounds() (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, l := range p.Layers {
		for _, v := range l.Vertices {
			if finite(v) {
				mp = append(mp, orb.Point{v.X, v.Y})
			}
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}

	b := mp.Bound()
	pad := math.Max(b.Right()-b.Left(), b.Top()-b.Bottom()) * 0.05
	if pad == 0 {
		pad = 1
	}
	return b.Pad(pad), true
}

func finite(v Vertex) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
