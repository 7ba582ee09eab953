package database

import (
	"context"
	"errors"
	"time"

	"github.com/amoylab/coursechat/internal/common/dto"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// Database defines the storage operations of the development backend
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside one transaction carried by its context.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// GetPersonaPrompt returns the persona with the global prompt prefix stored
	// under promptKey. Either one missing yields ErrNotFound.
	GetPersonaPrompt(ctx context.Context, personaID, promptKey string) (*PersonaPrompt, error)

	// ListRules returns the keyword rules that apply to personaID, highest
	// priority first.
	ListRules(ctx context.Context, personaID string) ([]*Rule, error)

	// SaveSessionMetadata stores the metadata of a session once; it reports
	// whether a new row was written.
	SaveSessionMetadata(ctx context.Context, sessionID string, m *dto.Metadata) (bool, error)

	// SaveExchange records one answered query.
	SaveExchange(ctx context.Context, e *Exchange) error

	// MatchMedia returns assets of mediaType carrying tag, in catalog order.
	MatchMedia(ctx context.Context, mediaType, tag string) ([]*MediaAsset, error)

	// InsertClicks and InsertMoves store a telemetry batch.
	InsertClicks(ctx context.Context, clicks []*Click) error
	InsertMoves(ctx context.Context, moves []*Move) error

	// UpcomingCourses returns courses starting on or after from, soonest first.
	UpcomingCourses(ctx context.Context, from time.Time) ([]*Course, error)

	// Seed loads catalog into empty tables; it reports whether anything was written.
	Seed(ctx context.Context, catalog *Catalog) (bool, error)
}
