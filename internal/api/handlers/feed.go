package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"route-dashboard/internal/adapters/progress"
	"route-dashboard/internal/services"
)

// StateEvent is the event name of the browser feed envelopes.
const StateEvent = "state"

// Feed pushes the dashboard view to browsers over a websocket. Each client
// gets the current view on connect and a fresh one after every change.
type Feed struct {
	session *services.Session
	hub     *progress.Hub
	logger  *zap.Logger
}

func NewFeed(session *services.Session, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := progress.NewHub(StateEvent, logger)
	hub.Welcome = func() any { return session.Snapshot() }
	return &Feed{session: session, hub: hub, logger: logger}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hub.ServeHTTP(w, r)
}

// Clients reports how many browsers are connected.
func (f *Feed) Clients() int {
	return f.hub.Clients()
}

// Run publishes views until ctx is done, then disconnects every client.
func (f *Feed) Run(ctx context.Context) error {
	changes, cancel := f.session.Subscribe()
	defer cancel()
	defer f.hub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := f.hub.Publish(f.session.Snapshot()); err != nil {
				f.logger.Warn("publish state", zap.Error(err))
			}
		}
	}
}
