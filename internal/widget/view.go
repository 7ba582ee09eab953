package widget

import "github.com/amoylab/coursechat/internal/overlay"

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the chat log
type Message struct {
	ID   uint64
	Role Role
	Text string
}

// ChatView renders the chat log. Methods are called from controller
// goroutines and must be safe for concurrent use.
type ChatView interface {
	AddMessage(msg Message)
	RemoveMessage(id uint64)
	ClearInput()
	ShowChoices(prompt string, choices []*Choice)
	DisableChoice(id uint64)
}

// Views is everything the widget draws on
type Views interface {
	ChatView
	overlay.SlideshowView
	overlay.VideoView
	overlay.SyllabusView
	overlay.UpcomingView
}
