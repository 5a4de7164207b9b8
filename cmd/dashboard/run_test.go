package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"route-dashboard/internal/domain"
)

type countingSink struct {
	notes  int
	states []domain.ConnectionState
}

func (c *countingSink) OnNotification(domain.ProgressNotification) { c.notes++ }
func (c *countingSink) OnStateChange(s domain.ConnectionState)     { c.states = append(c.states, s) }

func TestTerminalLogRewritesProgressInPlace(t *testing.T) {
	var buf bytes.Buffer
	term := &terminalLog{out: termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))}

	term.OnNotification(domain.ProgressNotification{Message: "Optimizing", Style: domain.StyleHeader})
	term.OnNotification(domain.ProgressNotification{Message: "10%", Style: domain.StyleProgress})
	term.OnNotification(domain.ProgressNotification{Message: "60%", Style: domain.StyleProgress, ClearPreviousProgress: true})

	out := buf.String()
	assert.Contains(t, out, "\x1b[1F", "cursor moves up before rewriting")
	assert.Contains(t, out, "60%")
	assert.Len(t, term.log, 2)
}

func TestTerminalLogAppendsWhenProgressIsNotLast(t *testing.T) {
	var buf bytes.Buffer
	term := &terminalLog{out: termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))}

	term.OnNotification(domain.ProgressNotification{Message: "10%", Style: domain.StyleProgress})
	term.OnNotification(domain.ProgressNotification{Message: "note", Style: domain.StyleInfo})
	term.OnNotification(domain.ProgressNotification{Message: "60%", Style: domain.StyleProgress, ClearPreviousProgress: true})

	out := buf.String()
	assert.NotContains(t, out, "\x1b[1F")
	assert.Equal(t, 3, strings.Count(out, "\n"))
	assert.Equal(t, "60%", term.log[0].Message)
}

func TestFanout(t *testing.T) {
	logger = zap.NewNop()
	a, b := &countingSink{}, &countingSink{}
	f := fanout{a, b}

	f.OnNotification(domain.ProgressNotification{Message: "x"})
	f.OnStateChange(domain.ConnConnected)

	assert.Equal(t, 1, a.notes)
	assert.Equal(t, 1, b.notes)
	assert.Equal(t, []domain.ConnectionState{domain.ConnConnected}, b.states)
}
