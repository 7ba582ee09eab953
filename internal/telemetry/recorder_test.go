package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
)

type fixedSession string

func (s fixedSession) SessionID(context.Context) string { return string(s) }

type fakeSender struct {
	mu     sync.Mutex
	clicks []dto.SessionClicksRequest
	moves  []dto.SessionMovesRequest
	err    error
	block  chan struct{}
}

func (f *fakeSender) SendClicks(_ context.Context, req dto.SessionClicksRequest) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, req)
	return f.err
}

func (f *fakeSender) SendMoves(_ context.Context, req dto.SessionMovesRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, req)
	return f.err
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 8, 30, 0, 123_000_000, time.FixedZone("CST", 8*3600))
}

func newTestRecorder(sender Sender, cfg config.TelemetryConfig) *Recorder {
	return NewRecorder(sender, fixedSession("sess-1"), cfg, zap.NewNop(), WithClock(fixedClock))
}

func TestClickLabel(t *testing.T) {
	assert.Equal(t, "sendBtn", ClickLabel("sendBtn", "Send"))
	assert.Equal(t, "Send", ClickLabel("", "Send"))
	assert.Equal(t, "unknown", ClickLabel("", ""))
	assert.Equal(t, strings.Repeat("a", 50), ClickLabel("", strings.Repeat("a", 80)))
	assert.Equal(t, strings.Repeat("课", 50), ClickLabel("", strings.Repeat("课", 51)))
}

func TestRecorder_ClickThresholdFlush(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRecorder(sender, config.TelemetryConfig{})

	for i := 0; i < 19; i++ {
		r.Click("btn")
	}
	require.NoError(t, r.Close(context.Background()))
	require.Len(t, sender.clicks, 1, "close flushes the partial batch")
	assert.Len(t, sender.clicks[0].Clicks, 19)

	sender = &fakeSender{}
	r = newTestRecorder(sender, config.TelemetryConfig{})
	for i := 0; i < 20; i++ {
		r.Click("btn")
	}
	r.wg.Wait()
	require.Len(t, sender.clicks, 1, "the 20th click triggers a send")
	assert.Len(t, sender.clicks[0].Clicks, 20)
	assert.Equal(t, "sess-1", sender.clicks[0].SessionID)
	assert.Equal(t, "2026-10-19T00:30:00.123Z", sender.clicks[0].Clicks[0].Time)

	require.NoError(t, r.Close(context.Background()))
	assert.Len(t, sender.clicks, 1, "an empty buffer is not sent")
}

func TestRecorder_MoveThresholdFlush(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRecorder(sender, config.TelemetryConfig{MoveThreshold: 3})

	for i := 0; i < 7; i++ {
		r.Move(i, i*2)
	}
	require.NoError(t, r.Close(context.Background()))

	require.Len(t, sender.moves, 3)
	total := 0
	for _, req := range sender.moves {
		total += len(req.Moves)
	}
	assert.Equal(t, 7, total, "no event is sent twice or lost")
	assert.Equal(t, fixedClock().UnixMilli(), sender.moves[0].Moves[0].T)
}

func TestRecorder_MovesKeepInsertionOrder(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRecorder(sender, config.TelemetryConfig{MoveThreshold: 4})
	for i := 0; i < 4; i++ {
		r.Move(i, 0)
	}
	r.wg.Wait()

	require.Len(t, sender.moves, 1)
	for i, m := range sender.moves[0].Moves {
		assert.Equal(t, i, m.X)
	}
}

func TestRecorder_SendErrorDropsBatch(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sender := &fakeSender{err: errors.New("backend down")}
	r := NewRecorder(sender, fixedSession("s"), config.TelemetryConfig{ClickThreshold: 2}, zap.New(core))

	r.Click("a")
	r.Click("b")
	r.Click("c")
	require.NoError(t, r.Close(context.Background()))

	assert.Len(t, sender.clicks, 2, "no retry of the failed batch")
	assert.Equal(t, 2, logs.FilterMessage("failed to flush telemetry").Len())
}

func TestRecorder_Disabled(t *testing.T) {
	off := false
	sender := &fakeSender{}
	r := newTestRecorder(sender, config.TelemetryConfig{Enabled: &off, ClickThreshold: 1})

	r.Click("a")
	r.Move(1, 1)
	require.NoError(t, r.Close(context.Background()))
	assert.Empty(t, sender.clicks)
	assert.Empty(t, sender.moves)
}

func TestRecorder_CloseHonorsContext(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	r := newTestRecorder(sender, config.TelemetryConfig{})
	r.Click("a")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)

	close(sender.block)
	require.NoError(t, r.Close(context.Background()))
	assert.Len(t, sender.clicks, 1)
}
