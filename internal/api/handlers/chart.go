package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"route-dashboard/internal/api/dto"
	"route-dashboard/internal/chart"
	"route-dashboard/internal/services"
)

type ChartHandler struct {
	Session *services.Session
	Logger  *zap.Logger
	Options chart.RenderOptions
}

// PNG renders the current result.
func (h *ChartHandler) PNG(w http.ResponseWriter, r *http.Request) {
	res := h.Session.Result()
	if res == nil {
		writeError(w, r, h.Logger, http.StatusNotFound, "no result to plot")
		return
	}

	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, chart.Project(res.Deliveries, res.DriverRoutes), h.Options)
	if errors.Is(err, chart.ErrNothingToPlot) {
		writeError(w, r, h.Logger, http.StatusNotFound, "no result to plot")
		return
	}
	if err != nil {
		h.Logger.Error("render chart", zap.Error(err))
		writeError(w, r, h.Logger, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// Tooltip describes the plotted point nearest to the x, y query parameters.
func (h *ChartHandler) Tooltip(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "x and y must be numbers")
		return
	}

	res := h.Session.Result()
	if res == nil {
		writeError(w, r, h.Logger, http.StatusNotFound, "no result to plot")
		return
	}

	p := chart.Project(res.Deliveries, res.DriverRoutes)
	layer, index, ok := p.Nearest(x, y)
	if !ok {
		writeError(w, r, h.Logger, http.StatusNotFound, "no plotted point")
		return
	}

	t := p.Tooltip(layer, index, res.DriverRoutes)
	writeJSON(w, r, h.Logger, http.StatusOK, dto.TooltipResponse{
		Layer: layer,
		Index: index,
		Title: t.Title,
		Lines: t.Lines,
		Label: t.Label,
	})
}
