package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToPlot is returned when a projection has no finite vertex.
var ErrNothingToPlot = errors.New("chart: nothing to plot")

// RenderOptions controls the rendered image.
type RenderOptions struct {
	Width  int
	Height int
	Title  string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	return o
}

// RenderPNG draws the projection as a PNG image.
//
// Route lines are split at NaN vertices so a missing point leaves a visible gap.
// The legend is built from LegendEntries, so delivery markers never appear in it.
func RenderPNG(w io.Writer, p Projection, opts RenderOptions) error {
	opts = opts.withDefaults()

	bound, ok := p.Bounds()
	if !ok {
		return ErrNothingToPlot
	}

	var series []gochart.Series
	for _, l := range p.Layers {
		series = append(series, layerSeries(l)...)
	}
	if len(series) == 0 {
		return ErrNothingToPlot
	}

	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  "x",
			Range: &gochart.ContinuousRange{Min: bound.Left(), Max: bound.Right()},
		},
		YAxis: gochart.YAxis{
			Name:  "y",
			Range: &gochart.ContinuousRange{Min: bound.Bottom(), Max: bound.Top()},
		},
		Series: series,
	}

	// The legend reads from a separate chart so that it lists one entry per
	// legend layer regardless of how many segments a route was split into.
	legend := gochart.Chart{Series: legendSeries(p.LegendEntries())}
	if len(legend.Series) > 0 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&legend)}
	}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("chart: render png: %w", err)
	}
	return nil
}

func layerSeries(l Layer) []gochart.Series {
	col := drawing.ColorFromHex(trimHash(l.Color))

	switch l.Kind {
	case KindRoute:
		var out []gochart.Series
		for _, seg := range segments(l.Vertices) {
			xs, ys := values(seg)
			// A one-vertex segment is drawn as a dot so it stays visible.
			dot := 0.0
			if len(seg) == 1 {
				dot = 4
			}
			out = append(out, gochart.ContinuousSeries{
				Name:    l.Label,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
					DotColor:    col,
					DotWidth:    dot,
				},
			})
		}
		return out

	default:
		vs := finiteVertices(l.Vertices)
		if len(vs) == 0 {
			return nil
		}
		xs, ys := values(vs)
		width := 3.0
		if l.Kind == KindDepot {
			width = 8
		}
		return []gochart.Series{gochart.ContinuousSeries{
			Name:    l.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotColor:    col,
				DotWidth:    width,
			},
		}}
	}
}

func legendSeries(layers []Layer) []gochart.Series {
	out := make([]gochart.Series, 0, len(layers))
	for _, l := range layers {
		col := drawing.ColorFromHex(trimHash(l.Color))
		out = append(out, gochart.ContinuousSeries{
			Name:  l.Label,
			Style: gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col},
		})
	}
	return out
}

// segments splits a polyline at every non-finite vertex.
func segments(vs []Vertex) [][]Vertex {
	var (
		out [][]Vertex
		cur []Vertex
	)
	for _, v := range vs {
		if !finite(v) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, v)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func finiteVertices(vs []Vertex) []Vertex {
	out := make([]Vertex, 0, len(vs))
	for _, v := range vs {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}

func values(vs []Vertex) ([]float64, []float64) {
	xs := make([]float64, len(vs))
	ys := make([]float64, len(vs))
	for i, v := range vs {
		xs[i], ys[i] = v.X, v.Y
	}
	return xs, ys
}

func trimHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}
