// Package answer produces replies for /api/query.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/backend/database"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/pkg/openai"
)

// Request is one query to answer
type Request struct {
	Query        string
	PersonaID    string
	SessionID    string
	SystemPrompt string
}

// Answerer turns a query into reply text. Replies may embed directive markers.
type Answerer interface {
	Name() string
	Answer(ctx context.Context, req Request) (string, error)
}

// New creates the answerer selected by cfg.Type
func New(cfg *config.AnswererConfig, db database.Database, logger *zap.Logger) (Answerer, error) {
	switch cfg.Type {
	case "rules":
		return NewRules(db, logger), nil
	case "openai":
		return NewOpenAI(openai.NewClient(&cfg.OpenAI), logger), nil
	default:
		return nil, fmt.Errorf("unsupported answerer type: %s", cfg.Type)
	}
}
