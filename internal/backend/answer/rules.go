package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/backend/database"
)

// FallbackReply is returned when no rule matches
const FallbackReply = "I don't have an answer for that yet. Try asking about a program or upcoming classes."

// Rules answers with the reply of the first catalog rule whose keyword
// occurs in the query
type Rules struct {
	db     database.Database
	logger *zap.Logger
}

func NewRules(db database.Database, logger *zap.Logger) *Rules {
	return &Rules{db: db, logger: logger.Named("answer.rules")}
}

func (r *Rules) Name() string { return "rules" }

func (r *Rules) Answer(ctx context.Context, req Request) (string, error) {
	rules, err := r.db.ListRules(ctx, req.PersonaID)
	if err != nil {
		return "", err
	}

	query := strings.ToLower(req.Query)
	for _, rule := range rules {
		for _, kw := range rule.KeywordList() {
			if strings.Contains(query, kw) {
				r.logger.Debug("rule matched",
					zap.Uint("rule_id", rule.ID),
					zap.String("keyword", kw),
					zap.String("session_id", req.SessionID),
				)
				return rule.Reply, nil
			}
		}
	}
	return FallbackReply, nil
}
