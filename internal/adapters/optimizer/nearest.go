package optimizer

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"route-dashboard/internal/domain"
)

// nearestNeighborOrder orders stops with a greedy nearest-neighbor walk
// starting at start. Each step picks the closest remaining stop; ties go to
// the lower delivery ID so the order is deterministic.
func nearestNeighborOrder(start domain.DeliveryPoint, stops []domain.DeliveryPoint) []domain.DeliveryPoint {
	remaining := make([]domain.DeliveryPoint, len(stops))
	copy(remaining, stops)

	ordered := make([]domain.DeliveryPoint, 0, len(stops))
	current := start

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)
		for i, p := range remaining {
			d := planar.DistanceSquared(point(current), point(p))
			if d < bestDist || (d == bestDist && best >= 0 && p.ID < remaining[best].ID) || best < 0 {
				best = i
				bestDist = d
			}
		}

		current = remaining[best]
		ordered = append(ordered, current)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return ordered
}

func point(p domain.DeliveryPoint) orb.Point {
	x, y := p.XY()
	return orb.Point{x, y}
}
