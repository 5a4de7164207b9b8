package chart

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-dashboard/internal/domain"
)

func pt(id int, x, y float64) domain.DeliveryPoint { return domain.NewDeliveryPoint(id, x, y) }

func TestProjectPartitionsDepot(t *testing.T) {
	deliveries := []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1), pt(2, 2, 2)}

	p := Project(deliveries, nil)

	depots := p.LayersOf(KindDepot)
	require.Len(t, depots, 1)
	require.Len(t, depots[0].Vertices, 1)
	assert.Equal(t, 0, *depots[0].Vertices[0].ID)

	markers := p.LayersOf(KindDeliveries)
	require.Len(t, markers, 1)
	require.Len(t, markers[0].Vertices, 2)
	for _, v := range markers[0].Vertices {
		assert.NotEqual(t, 0, *v.ID, "depot must not be in the delivery layer")
	}

	assert.Empty(t, p.LayersOf(KindRoute))
}

func TestProjectDrawOrder(t *testing.T) {
	deliveries := []domain.DeliveryPoint{pt(1, 1, 1), pt(0, 0, 0)}
	routes := []domain.DriverRoute{{DriverID: 1, Points: []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1)}}}

	p := Project(deliveries, routes)

	require.Len(t, p.Layers, 3)
	assert.Equal(t, KindRoute, p.Layers[0].Kind)
	assert.Equal(t, KindDeliveries, p.Layers[1].Kind)
	assert.Equal(t, KindDepot, p.Layers[2].Kind)
}

func TestProjectOmitsEmptyRoutes(t *testing.T) {
	routes := []domain.DriverRoute{
		{DriverID: 1, Points: []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1), pt(2, 2, 2)}},
		{DriverID: 2},
	}

	p := Project(nil, routes)

	lines := p.LayersOf(KindRoute)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].DriverID)
	assert.Len(t, lines[0].Vertices, 3)
}

func TestProjectKeepsSinglePointRoute(t *testing.T) {
	routes := []domain.DriverRoute{{DriverID: 7, Points: []domain.DeliveryPoint{pt(3, 5, 5)}}}

	lines := Project(nil, routes).LayersOf(KindRoute)

	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Vertices, 1)
}

func TestProjectColorByPosition(t *testing.T) {
	routes := []domain.DriverRoute{
		{DriverID: 42, Points: []domain.DeliveryPoint{pt(1, 1, 1)}},
		{DriverID: 3, Points: []domain.DeliveryPoint{pt(2, 2, 2)}},
	}

	for i := 0; i < 3; i++ {
		lines := Project(nil, routes).LayersOf(KindRoute)
		require.Len(t, lines, 2)
		assert.Equal(t, Palette[0], lines[0].Color)
		assert.Equal(t, Palette[1], lines[1].Color)
	}

	many := make([]domain.DriverRoute, len(Palette)+1)
	for i := range many {
		many[i] = domain.DriverRoute{DriverID: 100 - i, Points: []domain.DeliveryPoint{pt(i+1, float64(i), 0)}}
	}
	lines := Project(nil, many).LayersOf(KindRoute)
	assert.Equal(t, Palette[0], lines[len(Palette)].Color, "palette wraps by position")
}

func TestProjectMissingCoordinatesBecomeNaN(t *testing.T) {
	x := 4.0
	routes := []domain.DriverRoute{{DriverID: 1, Points: []domain.DeliveryPoint{pt(1, 1, 1), {ID: 2, X: &x}}}}

	lines := Project(nil, routes).LayersOf(KindRoute)

	require.Len(t, lines[0].Vertices, 2)
	assert.Equal(t, 4.0, lines[0].Vertices[1].X)
	assert.True(t, math.IsNaN(lines[0].Vertices[1].Y))
}

func TestLegendExcludesDeliveries(t *testing.T) {
	deliveries := []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1)}
	routes := []domain.DriverRoute{{DriverID: 1, Points: []domain.DeliveryPoint{pt(1, 1, 1)}}}

	entries := Project(deliveries, routes).LegendEntries()

	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEqual(t, KindDeliveries, e.Kind)
	}
}

func TestVertexJSONWritesNullForNaN(t *testing.T) {
	b, err := json.Marshal(Vertex{X: 1, Y: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":null}`, string(b))
}

func TestRouteLayerJSONAlwaysCarriesDriverID(t *testing.T) {
	routes := []domain.DriverRoute{
		{DriverID: 0, Points: []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1)}},
		{DriverID: 9, Points: []domain.DeliveryPoint{pt(0, 0, 0), pt(2, 2, 2)}},
	}
	p := Project(nil, routes)
	require.Len(t, p.LayersOf(KindRoute), 2)

	for _, l := range p.LayersOf(KindRoute) {
		b, err := json.Marshal(l)
		require.NoError(t, err)

		var fields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &fields))
		assert.Contains(t, fields, "driverId", l.Label)
	}
}

func TestRenderPNG(t *testing.T) {
	x := 9.0
	deliveries := []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1), pt(2, 2, 3)}
	routes := []domain.DriverRoute{
		{DriverID: 1, Points: []domain.DeliveryPoint{pt(0, 0, 0), pt(1, 1, 1), {ID: 5, X: &x}, pt(2, 2, 3), pt(0, 0, 0)}},
		{DriverID: 2, Points: []domain.DeliveryPoint{pt(2, 2, 3)}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, Project(deliveries, routes), RenderOptions{Width: 400, Height: 300}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderPNGNothingToPlot(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG(&buf, Project(nil, nil), RenderOptions{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestSegmentsSplitAtNaN(t *testing.T) {
	vs := []Vertex{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: math.NaN(), Y: 2}, {X: 3, Y: 3}}

	segs := segments(vs)

	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 2)
	assert.Len(t, segs[1], 1)
}
