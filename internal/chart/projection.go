// Package chart projects an optimization result into plotted layers and
// renders them.
//
// Layers are produced in draw order: route lines first, then delivery
// markers, then the depot marker on top.
package chart

import (
	"encoding/json"
	"fmt"
	"math"

	"route-dashboard/internal/domain"
)

// LayerKind identifies how a layer is drawn and how its tooltips resolve.
type LayerKind string

const (
	KindRoute      LayerKind = "route"
	KindDeliveries LayerKind = "deliveries"
	KindDepot      LayerKind = "depot"
)

// Palette is the fixed set of route colors. A route's color is chosen by its
// position in the input list, not by its driver id.
var Palette = []string{
	"#3366cc", "#dc3912", "#ff9900", "#109618", "#990099",
	"#0099c6", "#dd4477", "#66aa00", "#b82e2e", "#316395",
}

const (
	DeliveriesColor = "#4b5563"
	DepotColor      = "#111827"
)

// Vertex is a plotted coordinate pair. ID is set for marker vertices and is
// used only for tooltip lookup.
type Vertex struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	ID *int    `json:"id,omitempty"`
}

// MarshalJSON writes missing coordinates as null, since JSON has no NaN.
func (v Vertex) MarshalJSON() ([]byte, error) {
	type wire struct {
		X  *float64 `json:"x"`
		Y  *float64 `json:"y"`
		ID *int     `json:"id,omitempty"`
	}
	w := wire{ID: v.ID}
	if !math.IsNaN(v.X) && !math.IsInf(v.X, 0) {
		w.X = &v.X
	}
	if !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) {
		w.Y = &v.Y
	}
	return json.Marshal(w)
}

// Layer is one plotted dataset.
type Layer struct {
	Kind     LayerKind `json:"kind"`
	Label    string    `json:"label"`
	DriverID int       `json:"driverId"`
	Color    string    `json:"color"`
	Vertices []Vertex  `json:"vertices"`
	InLegend bool      `json:"inLegend"`
}

// Projection is the renderable form of a result.
type Projection struct {
	Layers []Layer `json:"layers"`
}

// Project partitions deliveries into the depot and the rest and adds one line
// layer per route that has at least one point. A single-point route is kept as
// a one-vertex line. Missing coordinates are projected as NaN so the plotted
// line visibly breaks at that vertex.
func Project(deliveries []domain.DeliveryPoint, routes []domain.DriverRoute) Projection {
	var (
		depot  *domain.DeliveryPoint
		others []Vertex
	)
	for i := range deliveries {
		d := deliveries[i]
		if d.IsDepot() {
			if depot == nil {
				depot = &d
			}
			continue
		}
		others = append(others, markerVertex(d))
	}

	layers := make([]Layer, 0, len(routes)+2)
	for i, r := range routes {
		if len(r.Points) == 0 {
			continue
		}

		vs := make([]Vertex, 0, len(r.Points))
		for _, p := range r.Points {
			x, y := p.XY()
			vs = append(vs, Vertex{X: x, Y: y})
		}

		layers = append(layers, Layer{
			Kind:     KindRoute,
			Label:    RouteLabel(r.DriverID),
			DriverID: r.DriverID,
			Color:    Palette[i%len(Palette)],
			Vertices: vs,
			InLegend: true,
		})
	}

	if len(others) > 0 {
		layers = append(layers, Layer{
			Kind:     KindDeliveries,
			Label:    "Deliveries",
			Color:    DeliveriesColor,
			Vertices: others,
		})
	}

	if depot != nil {
		layers = append(layers, Layer{
			Kind:     KindDepot,
			Label:    "Depot",
			Color:    DepotColor,
			Vertices: []Vertex{markerVertex(*depot)},
			InLegend: true,
		})
	}

	return Projection{Layers: layers}
}

func markerVertex(p domain.DeliveryPoint) Vertex {
	x, y := p.XY()
	id := p.ID
	return Vertex{X: x, Y: y, ID: &id}
}

// RouteLabel is the layer label for a driver's route.
func RouteLabel(driverID int) string {
	return fmt.Sprintf("Driver %d", driverID)
}

// LayersOf returns the layers of the given kind in draw order.
func (p Projection) LayersOf(kind LayerKind) []Layer {
	var out []Layer
	for _, l := range p.Layers {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// LegendEntries lists the layers shown in the legend. The delivery markers
// are left out.
func (p Projection) LegendEntries() []Layer {
	var out []Layer
	for _, l := range p.Layers {
		if l.InLegend {
			out = append(out, l)
		}
	}
	return out
}
