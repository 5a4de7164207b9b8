// Package presenter turns dashboard state into display-ready values shared by
// the HTML page, the JSON state endpoint and the terminal client.
package presenter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"route-dashboard/internal/chart"
	"route-dashboard/internal/domain"
	"route-dashboard/internal/logbuffer"
)

// StopSeparator joins the stops of a driver card.
const StopSeparator = " → "

// State is the raw dashboard state a View is built from.
type State struct {
	Version      uint64
	Params       domain.OptimizationRequest
	Loading      bool
	Connection   domain.ConnectionState
	ConfigErrors []string
	Error        string
	FieldErrors  map[string]string
	Log          []domain.ProgressNotification
	Result       *domain.OptimizationResult
}

type SummaryCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MethodMetric compares one heuristic against the others.
type MethodMetric struct {
	Method   string `json:"method"`
	Distance string `json:"distance"`
	Makespan string `json:"makespan,omitempty"`
	Best     bool   `json:"best"`
}

type DriverCard struct {
	DriverID  int    `json:"driverId"`
	Title     string `json:"title"`
	Distance  string `json:"distance"`
	Stops     string `json:"stops"`
	StopCount int    `json:"stopCount"`
	Color     string `json:"color"`
}

type LogLine struct {
	Text  string       `json:"text"`
	Style domain.Style `json:"style"`
	Time  string       `json:"time"`
}

// View is the complete display model of the dashboard.
type View struct {
	Version      uint64                     `json:"version"`
	Params       domain.OptimizationRequest `json:"params"`
	Loading      bool                       `json:"loading"`
	CanSubmit    bool                       `json:"canSubmit"`
	Connection   domain.ConnectionState     `json:"connection"`
	ConfigErrors []string                   `json:"configErrors,omitempty"`
	Error        string                     `json:"error,omitempty"`
	FieldErrors  map[string]string          `json:"fieldErrors,omitempty"`
	Log          []LogLine                  `json:"log"`
	HasResult    bool                       `json:"hasResult"`
	Summary      []SummaryCard              `json:"summary,omitempty"`
	Methods      []MethodMetric             `json:"methods,omitempty"`
	Drivers      []DriverCard               `json:"drivers,omitempty"`
	BestCut      []int                      `json:"bestCut,omitempty"`
	Chart        *chart.Projection          `json:"chart,omitempty"`
}

// Build derives the View for s.
func Build(s State) View {
	v := View{
		Version:      s.Version,
		Params:       s.Params,
		Loading:      s.Loading,
		CanSubmit:    !s.Loading,
		Connection:   s.Connection,
		ConfigErrors: s.ConfigErrors,
		Error:        s.Error,
		FieldErrors:  s.FieldErrors,
		Log:          make([]LogLine, 0, len(s.Log)),
	}
	if v.Connection == "" {
		v.Connection = domain.ConnNotConnected
	}

	for _, n := range s.Log {
		v.Log = append(v.Log, Line(n))
	}

	if s.Result == nil {
		return v
	}

	r := s.Result
	v.HasResult = true
	v.BestCut = r.BestCut
	v.Summary = Summary(r)
	v.Methods = Methods(r)

	p := chart.Project(r.Deliveries, r.DriverRoutes)
	v.Chart = &p

	colors := routeColors(p)
	for _, route := range r.DriverRoutes {
		card := Card(route)
		card.Color = colors[route.DriverID]
		v.Drivers = append(v.Drivers, card)
	}

	return v
}

// Summary returns the headline statistic cards for a result.
func Summary(r *domain.OptimizationResult) []SummaryCard {
	method := strings.TrimSpace(r.BestMethod)
	if method == "" {
		method = "n/a"
	}

	cards := []SummaryCard{
		{Label: "Best Method", Value: method},
		{Label: "Makespan", Value: Number(r.MinimumMakespan)},
		{Label: "Total Distance", Value: Number(r.TotalDistance())},
	}
	if r.ExecutionTimeMs > 0 {
		cards = append(cards, SummaryCard{
			Label: "Execution Time",
			Value: (time.Duration(r.ExecutionTimeMs * float64(time.Millisecond))).Round(time.Millisecond).String(),
		})
	}
	return cards
}

// Methods lists the metrics reported for each competing heuristic.
func Methods(r *domain.OptimizationResult) []MethodMetric {
	best := domain.CanonicalMethod(r.BestMethod)

	var out []MethodMetric
	add := func(label string, dist, makespan *float64) {
		if dist == nil {
			return
		}
		m := MethodMetric{Method: label, Distance: Number(*dist)}
		if makespan != nil {
			m.Makespan = Number(*makespan)
		}
		m.Best = label == best
		out = append(out, m)
	}

	add(domain.MethodNearestNeighbor, r.OptimizedDistanceNN, r.MakespanNN)
	add(domain.MethodGreedyInsertion, r.OptimizedDistanceGI, r.MakespanGI)
	add(domain.MethodSavings, r.OptimizedDistanceSavings, r.MakespanSavings)
	return out
}

// Card returns the per-driver summary.
func Card(r domain.DriverRoute) DriverCard {
	stops := r.StopSequence()
	parts := make([]string, len(stops))
	for i, id := range stops {
		parts[i] = strconv.Itoa(id)
	}

	return DriverCard{
		DriverID:  r.DriverID,
		Title:     fmt.Sprintf("Driver %d", r.DriverID),
		Distance:  Number(r.Distance),
		Stops:     strings.Join(parts, StopSeparator),
		StopCount: len(r.DeliveryIDs),
	}
}

// Line renders a log entry with fallbacks for missing text or style.
func Line(n domain.ProgressNotification) LogLine {
	text, style := logbuffer.Display(n)
	l := LogLine{Text: text, Style: style}
	if !n.ReceivedAt.IsZero() {
		l.Time = n.ReceivedAt.Format("15:04:05")
	}
	return l
}

// Number formats a metric with one decimal place.
func Number(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func routeColors(p chart.Projection) map[int]string {
	out := make(map[int]string)
	for _, l := range p.LayersOf(chart.KindRoute) {
		if _, ok := out[l.DriverID]; !ok {
			out[l.DriverID] = l.Color
		}
	}
	return out
}
