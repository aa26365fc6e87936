package llm

import (
	"context"
	"fmt"

	"github.com/RichardoC/lumi/internal/models"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Service turns a conversation into the assistant's next reply by driving an
// llms.Model.
type Service struct {
	model  llms.Model
	logger *zap.Logger
}

func New(model llms.Model, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{model: model, logger: logger}
}

// NewScripted builds a Service backed by the keyword classifier.
func NewScripted(classifier *Classifier, logger *zap.Logger) *Service {
	return New(NewScriptedModel(classifier), logger)
}

// Reply answers utterance given the conversation so far. history is expected
// to end with the user message carrying utterance; it is added when missing.
func (s *Service) Reply(ctx context.Context, utterance string, history []models.Message) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llms.TextParts(chatFromRole(m.Role), m.Content))
	}
	if n := len(history); n == 0 || history[n-1].Role != models.RoleUser || history[n-1].Content != utterance {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, utterance))
	}

	resp, err := s.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("failed to generate reply: empty response")
	}

	choice := resp.Choices[0]
	category, _ := choice.GenerationInfo[InfoCategory].(string)
	if category == CrisisCategory {
		s.logger.Warn("crisis keywords detected, replying with safety resources",
			zap.String("category", category))
	} else {
		s.logger.Debug("reply generated",
			zap.String("category", category),
			zap.Int("history", len(history)))
	}

	return choice.Content, nil
}
