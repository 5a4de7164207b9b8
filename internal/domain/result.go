package domain

import "strings"

// Method labels reported by the computation service for the winning heuristic.
const (
	MethodNearestNeighbor = "NN"
	MethodGreedyInsertion = "GI"
	MethodSavings         = "Savings"
)

// OptimizationResult is a complete snapshot returned by the computation service.
// It is received atomically and replaced wholesale on every new request.
type OptimizationResult struct {
	BestMethod      string          `json:"bestMethod"`
	Deliveries      []DeliveryPoint `json:"deliveries"`
	BestCut         []int           `json:"bestCut,omitempty"`
	MinimumMakespan float64         `json:"minimumMakespan"`
	DriverRoutes    []DriverRoute   `json:"driverRoutes"`

	OptimizedDistanceNN      *float64 `json:"optimizedDistanceNN,omitempty"`
	OptimizedDistanceGI      *float64 `json:"optimizedDistanceGI,omitempty"`
	OptimizedDistanceSavings *float64 `json:"optimizedDistanceSavings,omitempty"`
	MakespanNN               *float64 `json:"makespanNN,omitempty"`
	MakespanGI               *float64 `json:"makespanGI,omitempty"`
	MakespanSavings          *float64 `json:"makespanSavings,omitempty"`

	ExecutionTimeMs float64 `json:"executionTimeMs"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
}

// TotalDistance returns the distance reported for the winning method.
// When the service did not report a metric for that method, the sum of the
// individual route distances is used instead.
func (r *OptimizationResult) TotalDistance() float64 {
	if r == nil {
		return 0
	}

	if d := r.methodDistance(); d != nil {
		return *d
	}

	total := 0.0
	for _, route := range r.DriverRoutes {
		total += route.Distance
	}
	return total
}

func (r *OptimizationResult) methodDistance() *float64 {
	switch CanonicalMethod(r.BestMethod) {
	case MethodNearestNeighbor:
		return r.OptimizedDistanceNN
	case MethodGreedyInsertion:
		return r.OptimizedDistanceGI
	case MethodSavings:
		return r.OptimizedDistanceSavings
	}
	return nil
}

// CanonicalMethod maps the long and short spellings the service has used onto
// the canonical labels. Unknown labels are returned unchanged.
func CanonicalMethod(m string) string {
	switch strings.ToLower(strings.Join(strings.Fields(m), "")) {
	case "nn", "nearestneighbor", "nearestneighbour", "nearest-neighbor":
		return MethodNearestNeighbor
	case "gi", "greedyinsertion", "greedy-insertion", "greedy":
		return MethodGreedyInsertion
	case "savings", "clarkewright", "clarke-wright", "cw":
		return MethodSavings
	}
	return m
}

// Route returns the route for the given driver and whether it exists.
// Driver ids are assumed unique; the first match wins.
func (r *OptimizationResult) Route(driverID int) (DriverRoute, bool) {
	if r == nil {
		return DriverRoute{}, false
	}
	for _, route := range r.DriverRoutes {
		if route.DriverID == driverID {
			return route, true
		}
	}
	return DriverRoute{}, false
}
