package cnst

import "time"

// Backend endpoints consumed by the widget
const (
	PathQuery           = "/api/query"
	PathMediaMatch      = "/api/media-match"
	PathSessionClicks   = "/api/session-clicks"
	PathSessionMove     = "/api/session-move"
	PathUpcomingClasses = "/api/upcoming-classes"
	PathHealthz         = "/healthz"
)

const (
	DefaultBackendURL  = "http://localhost:8000"
	DefaultBackendAddr = ":8000"
	DefaultGeoURL      = "https://ipinfo.io/json"
	DefaultGeoToken    = "demo"
)

// Session cookie mirrored into the client cookie jar
const (
	SessionKey          = "ai_session_id"
	SessionCookiePath   = "/"
	SessionCookieMaxAge = 60 * 60 * 24 * 30
)

const (
	ClickFlushThreshold = 20
	MoveFlushThreshold  = 50
	ClickLabelMaxRunes  = 50
	UnknownClickLabel   = "unknown"
	SlideTransition     = 100 * time.Millisecond
	DefaultDateLayout   = "1/2/2006"
	UntitledSection     = "Untitled"
)
