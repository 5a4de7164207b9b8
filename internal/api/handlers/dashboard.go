package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"route-dashboard/internal/api/dto"
	"route-dashboard/internal/domain"
	"route-dashboard/internal/platform/obs"
	"route-dashboard/internal/services"
)

const maxBodyBytes = 1 << 16

type DashboardHandler struct {
	Session *services.Session
	Logger  *zap.Logger
	// Context outlives single requests; optimization calls are bound to it.
	Context context.Context
}

// Optimize starts an optimization. It answers as soon as the request is
// accepted; progress and the result arrive through the state feed.
func (h *DashboardHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	body, isForm, err := decodeOptimize(w, r)
	if err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	ctx := h.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = obs.WithRequestID(ctx, obs.RequestID(r.Context()))

	_, err = h.Session.Start(ctx, body.ToDomain())

	// Plain form posts fall back to a full page load; the page shows the outcome.
	if isForm && !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusAccepted, dto.AcceptedResponse{
		Status:    "accepted",
		RequestID: obs.RequestID(r.Context()),
	})
}

func (h *DashboardHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	resp := dto.ErrorResponse{
		Error: services.UserMessage(err),
		Class: string(services.Classify(err)),
	}

	var (
		status = http.StatusInternalServerError
		ve     *domain.ValidationError
	)
	switch {
	case errors.Is(err, services.ErrRequestInFlight):
		status = http.StatusConflict
		resp.Error = err.Error()
		resp.Class = ""
	case errors.Is(err, services.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Fields = ve.Fields
	}
	writeJSON(w, r, h.Logger, status, resp)
}

func (h *DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Logger, http.StatusOK, h.Session.Snapshot())
}

func (h *DashboardHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	h.Session.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func decodeOptimize(w http.ResponseWriter, r *http.Request) (dto.OptimizeRequest, bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return dto.OptimizeRequest{}, true, errors.New("invalid form body")
		}
		req, err := dto.OptimizeRequestFromForm(r.PostForm)
		return req, true, err
	}

	var req dto.OptimizeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return req, false, errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return req, false, errors.New("body must contain only one JSON object")
	}
	return req, false, nil
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}
