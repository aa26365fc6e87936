package llm_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/RichardoC/lumi/internal/llm"
	"github.com/RichardoC/lumi/internal/models"
	"github.com/tmc/langchaingo/llms"
)

func crisisResponse(t *testing.T) string {
	t.Helper()
	return llm.DefaultCatalog().Categories[0].Response
}

func TestServiceReply(t *testing.T) {
	svc := llm.NewScripted(llm.NewClassifier(nil, rand.New(rand.NewPCG(1, 2))), nil)

	history := []models.Message{
		{Role: models.RoleAssistant, Content: "How are you feeling today?"},
		{Role: models.RoleUser, Content: "I don't want to live"},
	}
	got, err := svc.Reply(context.Background(), "I don't want to live", history)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != crisisResponse(t) {
		t.Fatalf("expected crisis response, got %q", got)
	}
}

func TestServiceReplyAddsMissingUtterance(t *testing.T) {
	svc := llm.NewScripted(nil, nil)

	// Only an assistant message in history: the utterance itself must be answered.
	got, err := svc.Reply(context.Background(), "kill myself", []models.Message{
		{Role: models.RoleAssistant, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != crisisResponse(t) {
		t.Fatalf("expected crisis response, got %q", got)
	}
}

func TestScriptedModelAnswersLastHumanMessage(t *testing.T) {
	model := llm.NewScriptedModel(nil)

	resp, err := model.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "I want to end my life"),
		llms.TextParts(llms.ChatMessageTypeAI, "I'm here."),
		llms.TextParts(llms.ChatMessageTypeHuman, "hello"),
	})
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("expected one choice, got %d", len(resp.Choices))
	}
	if cat := resp.Choices[0].GenerationInfo[llm.InfoCategory]; cat != "greeting" {
		t.Fatalf("expected greeting category, got %v", cat)
	}
}

func TestScriptedModelWithoutHumanMessage(t *testing.T) {
	model := llm.NewScriptedModel(nil)

	_, err := model.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "be kind"),
	})
	if !errors.Is(err, llm.ErrNoUtterance) {
		t.Fatalf("expected ErrNoUtterance, got %v", err)
	}
}

func TestScriptedModelSinglePrompt(t *testing.T) {
	model := llm.NewScriptedModel(nil)

	got, err := llms.GenerateFromSinglePrompt(context.Background(), model, "suicide")
	if err != nil {
		t.Fatalf("GenerateFromSinglePrompt: %v", err)
	}
	if got != crisisResponse(t) {
		t.Fatalf("expected crisis response, got %q", got)
	}
}

func TestScriptedModelHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := llm.NewScripted(nil, nil).Reply(ctx, "hello", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
