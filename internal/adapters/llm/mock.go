package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// MockAI is the local-mode stand-in for Gemini. Deterministic output so
// the app is usable (and testable) without GCP credentials.
type MockAI struct{}

func NewMockAI() *MockAI {
	return &MockAI{}
}

func (m *MockAI) GenerateReply(_ context.Context, userMessage string, _ domain.ChatContext) (string, error) {
	return fmt.Sprintf("I hear you. You said %q. What else do you remember about that moment?", userMessage), nil
}

func (m *MockAI) ExtractDream(_ context.Context, transcript []*domain.Message) (*domain.DreamDraft, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("mock extract: empty transcript")
	}

	// First user message seeds the description.
	var first string
	for _, msg := range transcript {
		if msg.Author == domain.RoleUser {
			first = msg.Text
			break
		}
	}
	if first == "" {
		first = transcript[0].Text
	}

	title := first
	if words := strings.Fields(first); len(words) > 6 {
		title = strings.Join(words[:6], " ")
	}

	return &domain.DreamDraft{
		Title:       title,
		Description: first,
		Mood:        "curious",
		Emotions:    []string{"wonder"},
		Tags:        []string{"mock"},
	}, nil
}

func (m *MockAI) InterpretDream(_ context.Context, dream *domain.Dream) (string, error) {
	return fmt.Sprintf(
		"One way to read %q: the dream may be replaying something unresolved from your day. What felt most vivid?",
		dream.Title,
	), nil
}

func (m *MockAI) DescribeScene(_ context.Context, dream *domain.Dream) (string, error) {
	return fmt.Sprintf("A soft-focus painting of %s, muted twilight palette, wide composition.", dream.Title), nil
}

func (m *MockAI) GenerateImage(_ context.Context, prompt string) (string, error) {
	return "data:image/png;base64,bW9jaw==", nil
}
