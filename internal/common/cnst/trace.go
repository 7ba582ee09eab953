package cnst

// Tracer names used across the binaries
const (
	// TraceWidget is the tracer name for the widget core
	TraceWidget = "coursechat/widget"
	// TraceBackend is the tracer name for the development backend
	TraceBackend = "coursechat/backend"
)

// Common span names
const (
	SpanQuerySubmit   = "widget.query.submit"
	SpanMediaLoad     = "widget.media.load"
	SpanTelemetrySend = "widget.telemetry.send"
	SpanUpcomingFetch = "widget.upcoming.fetch"
	SpanAnswer        = "backend.answer"
)

// Common attribute keys
const (
	AttrSessionID   = "session.id"
	AttrPersona     = "persona.id"
	AttrMediaKind   = "media.kind"
	AttrMediaTag    = "media.tag"
	AttrMediaCount  = "media.count"
	AttrEventKind   = "telemetry.kind"
	AttrEventCount  = "telemetry.count"
	AttrAnswerer    = "answerer.type"
	AttrErrorReason = "error.reason"
)
