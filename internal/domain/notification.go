package domain

import "time"

// Style tags the visual category of a progress notification.
// The set is open: unknown values are kept and rendered with a neutral style.
type Style string

const (
	StyleHeader       Style = "header"
	StyleStep         Style = "step"
	StyleInfo         Style = "info"
	StyleDetail       Style = "detail"
	StyleSuccess      Style = "success"
	StyleWarning      Style = "warning"
	StyleError        Style = "error"
	StyleProgress     Style = "progress"
	StyleDebug        Style = "debug"
	StyleSuccessLarge Style = "success-large"
	StyleErrorLarge   Style = "error-large"
)

// ProgressNotification is a single status line pushed by the computation service.
type ProgressNotification struct {
	Message               string    `json:"message"`
	Style                 Style     `json:"style"`
	Data                  any       `json:"data,omitempty"`
	ClearPreviousProgress bool      `json:"clearPreviousProgress"`
	ReceivedAt            time.Time `json:"receivedAt"`
}
