package presenter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-dashboard/internal/chart"
	"route-dashboard/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestBuildRendersResult(t *testing.T) {
	res := &domain.OptimizationResult{
		BestMethod:          "NN",
		MinimumMakespan:     123.4,
		OptimizedDistanceNN: ptr(123.4),
		OptimizedDistanceGI: ptr(150),
		Deliveries: []domain.DeliveryPoint{
			domain.NewDeliveryPoint(0, 0, 0),
			domain.NewDeliveryPoint(2, 1, 1),
			domain.NewDeliveryPoint(3, 2, 2),
		},
		DriverRoutes: []domain.DriverRoute{{
			DriverID:    1,
			DeliveryIDs: []int{2, 3},
			Distance:    123.4,
			Points: []domain.DeliveryPoint{
				domain.NewDeliveryPoint(0, 0, 0),
				domain.NewDeliveryPoint(2, 1, 1),
				domain.NewDeliveryPoint(3, 2, 2),
			},
		}},
	}

	v := Build(State{Result: res, Connection: domain.ConnConnected})

	require.True(t, v.HasResult)
	assert.True(t, v.CanSubmit)
	assert.Contains(t, v.Summary, SummaryCard{Label: "Total Distance", Value: "123.4"})
	assert.Contains(t, v.Summary, SummaryCard{Label: "Best Method", Value: "NN"})
	assert.Contains(t, v.Summary, SummaryCard{Label: "Makespan", Value: "123.4"})

	require.Len(t, v.Drivers, 1)
	assert.Equal(t, "0 → 2 → 3 → 0", v.Drivers[0].Stops)
	assert.Equal(t, "123.4", v.Drivers[0].Distance)
	assert.Equal(t, chart.Palette[0], v.Drivers[0].Color)

	require.Len(t, v.Methods, 2)
	assert.True(t, v.Methods[0].Best)
	assert.False(t, v.Methods[1].Best)

	require.NotNil(t, v.Chart)
	assert.Len(t, v.Chart.LayersOf(chart.KindRoute), 1)
}

func TestBuildWithoutResult(t *testing.T) {
	v := Build(State{Loading: true})

	assert.False(t, v.HasResult)
	assert.False(t, v.CanSubmit)
	assert.Equal(t, domain.ConnNotConnected, v.Connection)
	assert.Empty(t, v.Drivers)
	assert.NotNil(t, v.Log)
}

func TestLineFallbacks(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 30, 5, 0, time.UTC)

	l := Line(domain.ProgressNotification{ReceivedAt: at})

	assert.Equal(t, "(no message)", l.Text)
	assert.Equal(t, domain.StyleInfo, l.Style)
	assert.Equal(t, "09:30:05", l.Time)
}

func TestSummaryWithoutMethod(t *testing.T) {
	cards := Summary(&domain.OptimizationResult{ExecutionTimeMs: 1500})

	assert.Equal(t, "n/a", cards[0].Value)
	assert.Equal(t, SummaryCard{Label: "Execution Time", Value: "1.5s"}, cards[len(cards)-1])
}

func TestTerminalRendering(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderLine(LogLine{Text: "Done", Style: domain.StyleSuccessLarge, Time: "10:00:00"})
	assert.Contains(t, out, "10:00:00")
	assert.Contains(t, out, "Done")

	card := RenderDriverCard(Card(domain.DriverRoute{DriverID: 4, DeliveryIDs: []int{7}, Distance: 9.25}))
	assert.Contains(t, card, "Driver 4")
	assert.Contains(t, card, "0 → 7 → 0")

	summary := RenderSummary([]SummaryCard{{Label: "Makespan", Value: "1.0"}})
	assert.Contains(t, summary, "Makespan")

	methods := RenderMethods([]MethodMetric{{Method: "NN", Distance: "1.0", Best: true}})
	assert.True(t, strings.HasPrefix(methods, "* NN"))
}
