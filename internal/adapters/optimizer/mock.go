package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"route-dashboard/internal/domain"
)

// Reporter receives progress notifications emitted while the mock computes.
type Reporter func(n domain.ProgressNotification)

// Mock is an in-process stand-in for the computation service. It produces a
// deterministic result for a given seed, which is enough for local runs
// without the real service and for tests.
type Mock struct {
	Seed   int64
	Delay  time.Duration
	Report Reporter
	Err    error
}

func NewMock(seed int64, report Reporter) *Mock {
	return &Mock{Seed: seed, Report: report}
}

func (m *Mock) Optimize(ctx context.Context, req domain.OptimizationRequest) (*domain.OptimizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, &ServerError{Status: 400, Message: err.Error()}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(m.Seed))
	span := req.MaxCoordinate - req.MinCoordinate

	m.report(domain.ProgressNotification{Message: "Optimization started", Style: domain.StyleHeader})

	deliveries := make([]domain.DeliveryPoint, 0, req.NumberOfDeliveries+1)
	depot := req.MinCoordinate + span/2
	deliveries = append(deliveries, domain.NewDeliveryPoint(domain.DepotID, depot, depot))
	for i := 1; i <= req.NumberOfDeliveries; i++ {
		x := req.MinCoordinate + rng.Float64()*span
		y := req.MinCoordinate + rng.Float64()*span
		deliveries = append(deliveries, domain.NewDeliveryPoint(i, x, y))
	}
	m.report(domain.ProgressNotification{
		Message: fmt.Sprintf("Generated %d deliveries", req.NumberOfDeliveries),
		Style:   domain.StyleStep,
	})

	routes := make([]domain.DriverRoute, req.NumberOfDrivers)
	for d := range routes {
		routes[d] = domain.DriverRoute{DriverID: d + 1, Points: []domain.DeliveryPoint{deliveries[0]}}
	}
	for i, p := range deliveries[1:] {
		r := &routes[i%req.NumberOfDrivers]
		r.Points = append(r.Points, p)
		r.DeliveryIDs = append(r.DeliveryIDs, p.ID)
		r.OriginalIndices = append(r.OriginalIndices, i+1)

		if err := m.wait(ctx); err != nil {
			return nil, err
		}
		m.report(domain.ProgressNotification{
			Message:               fmt.Sprintf("Assigned %d/%d deliveries", i+1, req.NumberOfDeliveries),
			Style:                 domain.StyleProgress,
			ClearPreviousProgress: i > 0,
		})
	}

	makespan := 0.0
	total := 0.0
	for d := range routes {
		stops := nearestNeighborOrder(deliveries[0], routes[d].Points[1:])
		routes[d].Points = append([]domain.DeliveryPoint{deliveries[0]}, stops...)
		routes[d].DeliveryIDs = routes[d].DeliveryIDs[:0]
		for _, p := range stops {
			routes[d].DeliveryIDs = append(routes[d].DeliveryIDs, p.ID)
		}
		routes[d].Points = append(routes[d].Points, deliveries[0])
		routes[d].Distance = pathLength(routes[d].Points)
		total += routes[d].Distance
		makespan = math.Max(makespan, routes[d].Distance)
	}

	m.report(domain.ProgressNotification{Message: "Optimization complete", Style: domain.StyleSuccessLarge})

	return &domain.OptimizationResult{
		BestMethod:          domain.MethodNearestNeighbor,
		Deliveries:          deliveries,
		MinimumMakespan:     makespan,
		DriverRoutes:        routes,
		OptimizedDistanceNN: &total,
		MakespanNN:          &makespan,
		ExecutionTimeMs:     float64(time.Since(start).Milliseconds()),
	}, nil
}

func (m *Mock) report(n domain.ProgressNotification) {
	if m.Report != nil {
		m.Report(n)
	}
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pathLength(points []domain.DeliveryPoint) float64 {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		x, y := p.XY()
		ls = append(ls, orb.Point{x, y})
	}
	return planar.Length(ls)
}
