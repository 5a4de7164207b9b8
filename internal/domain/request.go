package domain

import (
	"fmt"
	"strings"
)

// Coordinate bounds used when the user does not open the bounds disclosure.
const (
	DefaultMinCoordinate = 0.0
	DefaultMaxCoordinate = 100.0
)

// OptimizationRequest carries the parameters submitted to the computation service.
type OptimizationRequest struct {
	NumberOfDeliveries int     `json:"numberOfDeliveries"`
	NumberOfDrivers    int     `json:"numberOfDrivers"`
	MinCoordinate      float64 `json:"minCoordinate"`
	MaxCoordinate      float64 `json:"maxCoordinate"`
}

// ValidationError lists every field that violates the request constraints.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := []string{"numberOfDeliveries", "numberOfDrivers", "minCoordinate", "maxCoordinate"}
	parts := make([]string, 0, len(e.Fields))
	for _, k := range keys {
		if msg, ok := e.Fields[k]; ok {
			parts = append(parts, fmt.Sprintf("%s %s", k, msg))
		}
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}

// Validate checks the constraints that must hold before any network call:
// both counts strictly positive and the minimum coordinate strictly below the maximum.
func (r OptimizationRequest) Validate() error {
	fields := make(map[string]string)

	if r.NumberOfDeliveries <= 0 {
		fields["numberOfDeliveries"] = "must be greater than 0"
	}
	if r.NumberOfDrivers <= 0 {
		fields["numberOfDrivers"] = "must be greater than 0"
	}
	if !(r.MinCoordinate < r.MaxCoordinate) {
		fields["minCoordinate"] = "must be less than maxCoordinate"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
