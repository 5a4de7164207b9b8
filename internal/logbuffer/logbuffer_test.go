package logbuffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-dashboard/internal/domain"
)

var t0 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func note(msg string, style domain.Style, clear bool) domain.ProgressNotification {
	return domain.ProgressNotification{Message: msg, Style: style, ClearPreviousProgress: clear}
}

func TestAppendWithoutReplacementIsPureAppend(t *testing.T) {
	in := []domain.ProgressNotification{
		note("start", domain.StyleHeader, false),
		note("10%", domain.StyleProgress, false),
		note("20%", domain.StyleProgress, false),
		note("flag on non-progress", domain.StyleInfo, true),
		note("done", domain.StyleSuccessLarge, false),
	}

	var log []domain.ProgressNotification
	for i, n := range in {
		log = Append(log, n, t0.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, log, len(in))
	for i := range in {
		assert.Equal(t, in[i].Message, log[i].Message)
	}
}

func TestAppendReplacesLastProgressInPlace(t *testing.T) {
	log := []domain.ProgressNotification{
		note("header", domain.StyleHeader, false),
		note("10%", domain.StyleProgress, false),
		note("step", domain.StyleStep, false),
	}
	before := append([]domain.ProgressNotification(nil), log...)

	now := t0.Add(time.Minute)
	got := Append(log, note("20%", domain.StyleProgress, true), now)

	require.Len(t, got, 3)
	assert.Equal(t, "20%", got[1].Message)
	assert.Equal(t, now, got[1].ReceivedAt)
	assert.Equal(t, before[0], got[0])
	assert.Equal(t, before[2], got[2])
	assert.Equal(t, before, log, "input log must not be modified")
}

func TestAppendReplacesOnlyMostRecentProgress(t *testing.T) {
	log := []domain.ProgressNotification{
		note("a", domain.StyleProgress, false),
		note("b", domain.StyleProgress, false),
	}

	got := Append(log, note("c", domain.StyleProgress, true), t0)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Message)
	assert.Equal(t, "c", got[1].Message)
}

func TestAppendFallsBackToAppendWithoutPriorProgress(t *testing.T) {
	log := []domain.ProgressNotification{note("header", domain.StyleHeader, false)}

	got := Append(log, note("5%", domain.StyleProgress, true), t0)

	require.Len(t, got, 2)
	assert.Equal(t, "5%", got[1].Message)
	assert.Equal(t, t0, got[1].ReceivedAt)
}

func TestAppendKeepsProvidedTimestampOnAppend(t *testing.T) {
	n := note("x", domain.StyleInfo, false)
	n.ReceivedAt = t0.Add(-time.Hour)

	got := Append(nil, n, t0)

	require.Len(t, got, 1)
	assert.Equal(t, t0.Add(-time.Hour), got[0].ReceivedAt)
}

func TestDisplayFallbacks(t *testing.T) {
	msg, style := Display(domain.ProgressNotification{})
	assert.Equal(t, "(no message)", msg)
	assert.Equal(t, domain.StyleInfo, style)

	msg, style = Display(note("ok", "SUCCESS", false))
	assert.Equal(t, "ok", msg)
	assert.Equal(t, domain.StyleSuccess, style)
}

func TestLastProgress(t *testing.T) {
	assert.Equal(t, -1, LastProgress(nil))

	log := []domain.ProgressNotification{
		note("a", domain.StyleProgress, false),
		note("b", domain.StyleInfo, false),
		note("c", domain.StyleProgress, false),
		note("d", domain.StyleStep, false),
	}
	assert.Equal(t, 2, LastProgress(log))
	assert.Equal(t, -1, LastProgress(log[1:2]))
}
