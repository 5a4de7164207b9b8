package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"route-dashboard/internal/api/handlers"
	"route-dashboard/internal/chart"
	"route-dashboard/internal/services"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Session        *services.Session
	Feed           *handlers.Feed
	Logger         *zap.Logger
	AllowedOrigins []string
	Chart          chart.RenderOptions
	// Context bounds optimization calls started over HTTP.
	Context context.Context
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	page := &handlers.PageHandler{Session: d.Session, Logger: logger}
	dash := &handlers.DashboardHandler{Session: d.Session, Logger: logger, Context: d.Context}
	charts := &handlers.ChartHandler{Session: d.Session, Logger: logger, Options: d.Chart}

	r := mux.NewRouter()
	r.HandleFunc("/", page.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/static/dashboard.js", handlers.Script).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health(logger)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/optimize", dash.Optimize).Methods(http.MethodPost)
	api.HandleFunc("/state", dash.State).Methods(http.MethodGet)
	api.HandleFunc("/error/dismiss", dash.DismissError).Methods(http.MethodPost)
	api.HandleFunc("/reset", dash.Reset).Methods(http.MethodPost)
	api.HandleFunc("/chart.png", charts.PNG).Methods(http.MethodGet)
	api.HandleFunc("/chart/tooltip", charts.Tooltip).Methods(http.MethodGet)
	if d.Feed != nil {
		api.Handle("/ws", d.Feed).Methods(http.MethodGet)
	}

	r.Use(requestIDMiddleware, loggingMiddleware(logger), recoveryMiddleware(logger))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	return c.Handler(r)
}
