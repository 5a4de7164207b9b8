// Package logbuffer reconciles pushed progress notifications into the
// ordered log shown while a computation is running.
package logbuffer

import (
	"strings"
	"time"

	"route-dashboard/internal/domain"
)

const (
	fallbackMessage = "(no message)"
	fallbackStyle   = domain.StyleInfo
)

// Append returns the log with n reconciled into it.
//
// A notification flagged ClearPreviousProgress with style "progress" replaces
// the most recent progress entry in place, stamped with now. Anything else,
// including a flagged notification when no progress entry exists, is appended.
// The input slice is never modified.
func Append(log []domain.ProgressNotification, n domain.ProgressNotification, now time.Time) []domain.ProgressNotification {
	last := LastProgress(log)

	out := make([]domain.ProgressNotification, len(log), len(log)+1)
	copy(out, log)

	if n.ClearPreviousProgress && n.Style == domain.StyleProgress && last >= 0 {
		n.ReceivedAt = now
		out[last] = n
		return out
	}

	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = now
	}
	return append(out, n)
}

// LastProgress returns the index of the newest progress entry in log, or -1.
func LastProgress(log []domain.ProgressNotification) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Style == domain.StyleProgress {
			return i
		}
	}
	return -1
}

// Display returns the text and style to render for n, substituting fallbacks
// for a missing message or style.
func Display(n domain.ProgressNotification) (string, domain.Style) {
	msg := n.Message
	if strings.TrimSpace(msg) == "" {
		msg = fallbackMessage
	}

	style := domain.Style(strings.ToLower(strings.TrimSpace(string(n.Style))))
	if style == "" {
		style = fallbackStyle
	}
	return msg, style
}
