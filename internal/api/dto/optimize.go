package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"route-dashboard/internal/domain"
)

// OptimizeRequest is the body of POST /api/optimize. Bounds are optional;
// when omitted the default 0..100 area is used.
type OptimizeRequest struct {
	NumberOfDeliveries int      `json:"numberOfDeliveries"`
	NumberOfDrivers    int      `json:"numberOfDrivers"`
	MinCoordinate      *float64 `json:"minCoordinate,omitempty"`
	MaxCoordinate      *float64 `json:"maxCoordinate,omitempty"`
}

func (r OptimizeRequest) ToDomain() domain.OptimizationRequest {
	req := domain.OptimizationRequest{
		NumberOfDeliveries: r.NumberOfDeliveries,
		NumberOfDrivers:    r.NumberOfDrivers,
		MinCoordinate:      domain.DefaultMinCoordinate,
		MaxCoordinate:      domain.DefaultMaxCoordinate,
	}
	if r.MinCoordinate != nil {
		req.MinCoordinate = *r.MinCoordinate
	}
	if r.MaxCoordinate != nil {
		req.MaxCoordinate = *r.MaxCoordinate
	}
	return req
}

// OptimizeRequestFromForm reads the dashboard form. The bounds fields only
// count when the "bounds" disclosure checkbox is on.
func OptimizeRequestFromForm(form url.Values) (OptimizeRequest, error) {
	var (
		req OptimizeRequest
		err error
	)

	if req.NumberOfDeliveries, err = formInt(form, "numberOfDeliveries"); err != nil {
		return req, err
	}
	if req.NumberOfDrivers, err = formInt(form, "numberOfDrivers"); err != nil {
		return req, err
	}

	if form.Get("bounds") == "" {
		return req, nil
	}
	if req.MinCoordinate, err = formFloat(form, "minCoordinate"); err != nil {
		return req, err
	}
	if req.MaxCoordinate, err = formFloat(form, "maxCoordinate"); err != nil {
		return req, err
	}
	return req, nil
}

func formInt(form url.Values, key string) (int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return n, nil
}

func formFloat(form url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}

type AcceptedResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Class  string            `json:"class,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
