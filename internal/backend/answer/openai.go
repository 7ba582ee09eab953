package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAI answers with a chat completion under the persona system prompt
type OpenAI struct {
	client completer
	logger *zap.Logger
}

func NewOpenAI(client completer, logger *zap.Logger) *OpenAI {
	return &OpenAI{client: client, logger: logger.Named("answer.openai")}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Answer(ctx context.Context, req Request) (string, error) {
	reply, err := o.client.Complete(ctx, req.SystemPrompt, "Question: "+req.Query)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	o.logger.Debug("completion received",
		zap.String("session_id", req.SessionID),
		zap.Int("length", len(reply)),
	)
	return reply, nil
}
