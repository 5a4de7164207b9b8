package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"route-dashboard/internal/domain"
)

// recordSeparator terminates frames in hub protocols that batch several
// messages into one websocket frame.
const recordSeparator = 0x1e

// Envelope is a named event on the push channel. Both the plain
// {"event","data"} shape and the hub invocation shape {"target","arguments"}
// are accepted.
type Envelope struct {
	Event     string            `json:"event,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Target    string            `json:"target,omitempty"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

func (e Envelope) name() string {
	if e.Event != "" {
		return e.Event
	}
	return e.Target
}

func (e Envelope) payload() json.RawMessage {
	if len(e.Data) > 0 {
		return e.Data
	}
	if len(e.Arguments) > 0 {
		return e.Arguments[0]
	}
	return nil
}

// splitFrames returns the individual JSON records of a websocket message.
func splitFrames(msg []byte) [][]byte {
	var out [][]byte
	for _, part := range bytes.Split(msg, []byte{recordSeparator}) {
		if len(bytes.TrimSpace(part)) > 0 {
			out = append(out, part)
		}
	}
	return out
}

// decodeNotification extracts a notification for event from one record.
// ok is false when the record is for another event. A string payload is
// taken as the message text.
func decodeNotification(record []byte, event string) (n domain.ProgressNotification, ok bool, err error) {
	var env Envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return n, false, fmt.Errorf("decode envelope: %w", err)
	}
	if !strings.EqualFold(env.name(), event) {
		return n, false, nil
	}

	raw := env.payload()
	if len(raw) == 0 {
		return n, true, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		n.Message = text
		return n, true, nil
	}

	if err := json.Unmarshal(raw, &n); err != nil {
		return n, false, fmt.Errorf("decode %s payload: %w", event, err)
	}
	return n, true, nil
}
