package domain

import "math"

// DepotID is the identifier reserved for the depot every route starts and ends at.
const DepotID = 0

// DeliveryPoint is a single generated delivery location.
// Coordinates are pointers because the computation service may omit them;
// a nil coordinate is treated as missing rather than as the origin.
type DeliveryPoint struct {
	ID int      `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

// NewDeliveryPoint builds a point with both coordinates present.
func NewDeliveryPoint(id int, x, y float64) DeliveryPoint {
	return DeliveryPoint{ID: id, X: &x, Y: &y}
}

func (p DeliveryPoint) IsDepot() bool { return p.ID == DepotID }

// XY returns the coordinate pair, substituting NaN for a missing component.
func (p DeliveryPoint) XY() (float64, float64) {
	x, y := math.NaN(), math.NaN()
	if p.X != nil {
		x = *p.X
	}
	if p.Y != nil {
		y = *p.Y
	}
	return x, y
}

// HasCoordinates reports whether both coordinates are present and finite.
func (p DeliveryPoint) HasCoordinates() bool {
	x, y := p.XY()
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}
