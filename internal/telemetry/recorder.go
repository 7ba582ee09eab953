package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/pkg/trace"
)

// ISO-8601 UTC with millisecond precision
const clickTimeLayout = "2006-01-02T15:04:05.000Z"

// Sender delivers telemetry batches to the backend
type Sender interface {
	SendClicks(ctx context.Context, req dto.SessionClicksRequest) error
	SendMoves(ctx context.Context, req dto.SessionMovesRequest) error
}

// SessionSource provides the session id batches are attributed to
type SessionSource interface {
	SessionID(ctx context.Context) string
}

// Recorder buffers clicks and pointer moves and sends them in batches.
// Sends are fire-and-forget; a failed batch is logged and dropped.
type Recorder struct {
	logger  *zap.Logger
	sender  Sender
	session SessionSource
	enabled bool
	now     func() time.Time

	clicks *Buffer[dto.ClickEvent]
	moves  *Buffer[dto.MoveEvent]
	wg     sync.WaitGroup
}

type Option func(*Recorder)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(sender Sender, session SessionSource, cfg config.TelemetryConfig, logger *zap.Logger, opts ...Option) *Recorder {
	clickThreshold, moveThreshold := cfg.ClickThreshold, cfg.MoveThreshold
	if clickThreshold <= 0 {
		clickThreshold = cnst.ClickFlushThreshold
	}
	if moveThreshold <= 0 {
		moveThreshold = cnst.MoveFlushThreshold
	}

	r := &Recorder{
		logger:  logger.Named("telemetry"),
		sender:  sender,
		session: session,
		enabled: cfg.TelemetryEnabled(),
		now:     time.Now,
		clicks:  NewBuffer[dto.ClickEvent](clickThreshold),
		moves:   NewBuffer[dto.MoveEvent](moveThreshold),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClickLabel names a click target: its id, else the first 50 characters of
// its text, else "unknown".
func ClickLabel(id, text string) string {
	if id != "" {
		return id
	}
	if text == "" {
		return cnst.UnknownClickLabel
	}
	if runes := []rune(text); len(runes) > cnst.ClickLabelMaxRunes {
		return string(runes[:cnst.ClickLabelMaxRunes])
	}
	return text
}

// Click records a click on the element labelled label
func (r *Recorder) Click(label string) {
	if !r.enabled {
		return
	}
	ev := dto.ClickEvent{Label: label, Time: r.now().UTC().Format(clickTimeLayout)}
	if batch := r.clicks.Push(ev); batch != nil {
		r.sendClicks(batch)
	}
}

// Move records a pointer position in viewport coordinates
func (r *Recorder) Move(x, y int) {
	if !r.enabled {
		return
	}
	ev := dto.MoveEvent{X: x, Y: y, T: r.now().UnixMilli()}
	if batch := r.moves.Push(ev); batch != nil {
		r.sendMoves(batch)
	}
}

// FlushClicks sends buffered clicks, if any
func (r *Recorder) FlushClicks() {
	if batch := r.clicks.Drain(); batch != nil {
		r.sendClicks(batch)
	}
}

// FlushMoves sends buffered moves, if any
func (r *Recorder) FlushMoves() {
	if batch := r.moves.Drain(); batch != nil {
		r.sendMoves(batch)
	}
}

// Close flushes both buffers and waits for in-flight sends or ctx expiry
func (r *Recorder) Close(ctx context.Context) error {
	r.FlushClicks()
	r.FlushMoves()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) sendClicks(batch []dto.ClickEvent) {
	r.dispatch("click", len(batch), func(ctx context.Context, sessionID string) error {
		return r.sender.SendClicks(ctx, dto.SessionClicksRequest{SessionID: sessionID, Clicks: batch})
	})
}

func (r *Recorder) sendMoves(batch []dto.MoveEvent) {
	r.dispatch("move", len(batch), func(ctx context.Context, sessionID string) error {
		return r.sender.SendMoves(ctx, dto.SessionMovesRequest{SessionID: sessionID, Moves: batch})
	})
}

func (r *Recorder) dispatch(kind string, n int, send func(context.Context, string) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		span := trace.Tracer(cnst.TraceWidget).Start(context.Background(), cnst.SpanTelemetrySend).
			WithAttrs(attribute.String(cnst.AttrEventKind, kind), attribute.Int(cnst.AttrEventCount, n))
		defer span.End()

		if err := send(span.Ctx, r.session.SessionID(span.Ctx)); err != nil {
			span.Fail(err)
			r.logger.Error("failed to flush telemetry", zap.String("kind", kind), zap.Int("events", n), zap.Error(err))
			return
		}
		r.logger.Debug("flushed telemetry", zap.String("kind", kind), zap.Int("events", n))
	}()
}
