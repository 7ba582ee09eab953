package dto

// ClickEvent is a single recorded click
type ClickEvent struct {
	Label string `json:"label"`
	Time  string `json:"time"`
}

// MoveEvent is a single recorded pointer position
type MoveEvent struct {
	X int   `json:"x"`
	Y int   `json:"y"`
	T int64 `json:"t"`
}

type SessionClicksRequest struct {
	SessionID string       `json:"session_id"`
	Clicks    []ClickEvent `json:"clicks"`
}

type SessionMovesRequest struct {
	SessionID string      `json:"session_id"`
	Moves     []MoveEvent `json:"moves"`
}
