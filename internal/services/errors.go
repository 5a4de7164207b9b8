package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"route-dashboard/internal/domain"
	"route-dashboard/internal/ports"
)

// ErrorClass groups failures by how the user can recover from them.
type ErrorClass string

const (
	ClassNone       ErrorClass = ""
	ClassConfig     ErrorClass = "configuration"
	ClassValidation ErrorClass = "validation"
	ClassTransport  ErrorClass = "transport"
	ClassServer     ErrorClass = "server"
)

func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}

	var (
		ve *domain.ValidationError
		se *ports.ServerError
	)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return ClassConfig
	case errors.As(err, &ve):
		return ClassValidation
	case errors.As(err, &se):
		return ClassServer
	}
	return ClassTransport
}

// UserMessage is the banner text for err. Server messages are shown verbatim.
func UserMessage(err error) string {
	var (
		ve *domain.ValidationError
		se *ports.ServerError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "Optimization service is not configured."
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &se):
		if msg := strings.TrimSpace(se.Message); msg != "" {
			return msg
		}
		return fmt.Sprintf("Optimization failed with status %d.", se.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "The optimization service did not respond in time."
	case errors.Is(err, context.Canceled):
		return "The optimization request was cancelled."
	}
	return fmt.Sprintf("Could not reach the optimization service: %v", err)
}
