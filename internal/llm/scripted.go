package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/RichardoC/lumi/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoUtterance is returned when a request carries no human message to answer.
var ErrNoUtterance = errors.New("no human message to reply to")

// GenerationInfo key holding the matched category name.
const InfoCategory = "category"

// ScriptedModel is an llms.Model whose completions come from the keyword
// Classifier instead of a language model. It answers the last human message.
type ScriptedModel struct {
	classifier *Classifier
}

var _ llms.Model = (*ScriptedModel)(nil)

func NewScriptedModel(classifier *Classifier) *ScriptedModel {
	if classifier == nil {
		classifier = NewClassifier(nil, nil)
	}
	return &ScriptedModel{classifier: classifier}
}

func (m *ScriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	history := make([]models.Message, 0, len(messages))
	utterance, found := "", false
	for _, mc := range messages {
		text := textOf(mc)
		role := roleFromChat(mc.Role)
		history = append(history, models.Message{Role: role, Content: text})
		if role == models.RoleUser {
			utterance, found = text, true
		}
	}
	if !found {
		return nil, ErrNoUtterance
	}

	match := m.classifier.Match(utterance, history)
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:        match.Response,
			StopReason:     "stop",
			GenerationInfo: map[string]any{InfoCategory: match.Category},
		}},
	}, nil
}

// Call is kept for llms.Model compatibility.
func (m *ScriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(mc llms.MessageContent) string {
	var b strings.Builder
	for _, part := range mc.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func roleFromChat(t llms.ChatMessageType) models.Role {
	switch t {
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
		return models.RoleUser
	case llms.ChatMessageTypeSystem:
		return models.RoleSystem
	default:
		return models.RoleAssistant
	}
}

func chatFromRole(r models.Role) llms.ChatMessageType {
	switch r {
	case models.RoleUser:
		return llms.ChatMessageTypeHuman
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeAI
	}
}
