package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"route-dashboard/internal/presenter"
	"route-dashboard/internal/services"
)

//go:embed templates/dashboard.html templates/dashboard.js
var assets embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"boundsOpen": func(v presenter.View) bool {
		_, min := v.FieldErrors["minCoordinate"]
		_, max := v.FieldErrors["maxCoordinate"]
		return min || max
	},
}).ParseFS(assets, "templates/dashboard.html"))

type PageHandler struct {
	Session *services.Session
	Logger  *zap.Logger
}

// Dashboard renders the full page from the current view. Later updates
// arrive over the state feed.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, h.Session.Snapshot()); err != nil {
		h.Logger.Error("render dashboard", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// Script serves the page's client code.
func Script(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	http.ServeFileFS(w, r, assets, "templates/dashboard.js")
}
