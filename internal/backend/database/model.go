package database

import (
	"strings"
	"time"
)

// Persona is an assistant identity with its own system prompt
type Persona struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(100)"`
	Name         string    `json:"name" gorm:"type:varchar(255)"`
	SystemPrompt string    `json:"systemPrompt" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Prompt is a shared prompt fragment, e.g. the global prefix
type Prompt struct {
	Key  string `json:"key" gorm:"primaryKey;column:prompt_key;type:varchar(100)"`
	Text string `json:"text" gorm:"type:text"`
}

// PersonaPrompt is a persona joined with the global prompt prefix
type PersonaPrompt struct {
	Persona      Persona
	GlobalPrefix string
}

// SystemPrompt is the full system prompt sent to a language model
func (p *PersonaPrompt) SystemPrompt() string {
	return p.GlobalPrefix + "\n\n" + p.Persona.SystemPrompt
}

// Rule maps query keywords to a canned reply
type Rule struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	PersonaID string `json:"personaId" gorm:"type:varchar(100);index"` // empty applies to every persona
	Keywords  string `json:"keywords" gorm:"type:text"`                // comma separated, lower case
	Reply     string `json:"reply" gorm:"type:text"`
	Priority  int    `json:"priority" gorm:"not null;default:0"`
}

// KeywordList splits Keywords
func (r *Rule) KeywordList() []string {
	return splitList(r.Keywords)
}

// MediaAsset is a visual attached to one or more tags
type MediaAsset struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MediaType    string    `json:"mediaType" gorm:"type:varchar(20);index"` // slideshow, video, syllabus
	Tags         string    `json:"tags" gorm:"type:text"`                   // ",tag1,tag2,"
	Position     int       `json:"position" gorm:"not null;default:0"`
	MediaURL     string    `json:"mediaUrl" gorm:"type:text"`
	Title        string    `json:"title" gorm:"type:varchar(255)"`
	Caption      string    `json:"caption" gorm:"type:text"`
	SyllabusJSON string    `json:"syllabusJson" gorm:"type:text"` // JSON stored as text
	CreatedAt    time.Time `json:"createdAt"`
}

// TagList splits Tags
func (m *MediaAsset) TagList() []string {
	return splitList(m.Tags)
}

// Course is a scheduled class offering
type Course struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string    `json:"name" gorm:"type:varchar(255)"`
	Location         string    `json:"location" gorm:"type:varchar(255)"`
	Length           string    `json:"length" gorm:"type:varchar(100)"`
	StartDate        time.Time `json:"startDate" gorm:"index"`
	RegistrationLink string    `json:"registrationLink" gorm:"type:text"`
}

// SessionMetadata is the environment description sent with a session's first query
type SessionMetadata struct {
	SessionID        string    `json:"sessionId" gorm:"primaryKey;type:varchar(64)"`
	BrowserName      string    `json:"browserName" gorm:"type:varchar(255)"`
	BrowserVersion   string    `json:"browserVersion" gorm:"type:varchar(255)"`
	OSName           string    `json:"osName" gorm:"type:varchar(100)"`
	OSVersion        string    `json:"osVersion" gorm:"type:varchar(100)"`
	ScreenResolution string    `json:"screenResolution" gorm:"type:varchar(50)"`
	Referrer         *string   `json:"referrer" gorm:"type:text"`
	UTMSource        *string   `json:"utmSource" gorm:"type:varchar(255)"`
	UTMMedium        *string   `json:"utmMedium" gorm:"type:varchar(255)"`
	UTMCampaign      *string   `json:"utmCampaign" gorm:"type:varchar(255)"`
	UTMTerm          *string   `json:"utmTerm" gorm:"type:varchar(255)"`
	UTMContent       *string   `json:"utmContent" gorm:"type:varchar(255)"`
	Country          string    `json:"country" gorm:"type:varchar(100)"`
	City             string    `json:"city" gorm:"type:varchar(100)"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Exchange is one query and the reply it got
type Exchange struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID string    `json:"sessionId" gorm:"type:varchar(64);index"`
	PersonaID string    `json:"personaId" gorm:"type:varchar(100)"`
	Query     string    `json:"query" gorm:"type:text"`
	Response  string    `json:"response" gorm:"type:text"`
	Answerer  string    `json:"answerer" gorm:"type:varchar(50)"`
	CreatedAt time.Time `json:"createdAt"`
}

// Click is one logged click
type Click struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"sessionId" gorm:"type:varchar(64);index"`
	Label     string    `json:"label" gorm:"type:varchar(255)"`
	ClickedAt time.Time `json:"clickedAt"`
}

// Move is one logged pointer position
type Move struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string `json:"sessionId" gorm:"type:varchar(64);index"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	T         int64  `json:"t"` // epoch milliseconds
}

func allModels() []any {
	return []any{
		&Persona{}, &Prompt{}, &Rule{}, &MediaAsset{}, &Course{},
		&SessionMetadata{}, &Exchange{}, &Click{}, &Move{},
	}
}

func joinList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.ToLower(strings.TrimSpace(it)); it != "" {
			clean = append(clean, it)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return "," + strings.Join(clean, ",") + ","
}

func splitList(s string) []string {
	var out []string
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
