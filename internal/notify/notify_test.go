package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/worklogwatch/internal/timetracker"
)

func deviations() []timetracker.Deviation {
	return []timetracker.Deviation{
		{Date: time.Date(2022, 9, 12, 0, 0, 0, 0, time.UTC), SpentTime: 0, Baseline: 8 * time.Hour},
		{Date: time.Date(2022, 9, 13, 0, 0, 0, 0, time.UTC), SpentTime: 9 * time.Hour, Baseline: 8 * time.Hour},
	}
}

func TestTerminalNotifier_WritesAlert(t *testing.T) {
	var buf bytes.Buffer

	err := NewTerminalNotifier(&buf).Notify(context.Background(), "bob", deviations())

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "WORKLOG DEVIATION")
	assert.Contains(t, out, "bob: 2 day(s) off the 8h0m0s baseline")
	assert.Contains(t, out, "2022-09-12 Mon")
	assert.Contains(t, out, "-8h0m0s")
	assert.Contains(t, out, "+1h0m0s")
	assert.False(t, strings.Contains(out, bell), "bell must not ring on a buffer")
}

func TestTerminalNotifier_BellWhenForced(t *testing.T) {
	var buf bytes.Buffer

	err := NewTerminalNotifier(&buf).WithBell(true).Notify(context.Background(), "bob", deviations())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), bell))
}

func TestTerminalNotifier_SilentWithoutDeviations(t *testing.T) {
	var buf bytes.Buffer

	err := NewTerminalNotifier(&buf).WithBell(true).Notify(context.Background(), "bob", nil)

	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestTerminalNotifier_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTerminalNotifier(&buf).Notify(ctx, "bob", deviations())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestRenderAlert_Empty(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Empty(t, RenderAlert("bob", nil))
		assert.Empty(t, RenderAlert("bob", []timetracker.Deviation{}))
	})
}
