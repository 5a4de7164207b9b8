package ports

import (
	"context"
	"route-dashboard/internal/domain"
)

// ProgressSink receives everything the push channel produces.
type ProgressSink interface {
	OnNotification(n domain.ProgressNotification)
	OnStateChange(s domain.ConnectionState)
}

// ProgressFeed is the push channel carrying progress notifications.
// Run owns the connection until ctx is cancelled.
type ProgressFeed interface {
	Run(ctx context.Context, sink ProgressSink) error
	State() domain.ConnectionState
}
