package tools

import (
	"context"
	"fmt"

	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// DreamCaptureTool turns a capture-session transcript into a stored
// dream: structured extraction through the AI client, then a regular
// create through the dreams service.
type DreamCaptureTool struct {
	ai     domain.AIClient
	dreams *dreams.Service
}

func NewDreamCaptureTool(ai domain.AIClient, dreamSvc *dreams.Service) *DreamCaptureTool {
	return &DreamCaptureTool{
		ai:     ai,
		dreams: dreamSvc,
	}
}

func (t *DreamCaptureTool) Name() string {
	return "dream_capture"
}

// Call expects input["transcript"] to hold the session messages
// ([]*domain.Message). It returns {"dream_id": ..., "title": ...}.
func (t *DreamCaptureTool) Call(
	ctx context.Context,
	tctx ToolContext,
	input map[string]any,
) (map[string]any, error) {
	if tctx.UserID == "" || tctx.SessionID == "" {
		return nil, fmt.Errorf("dream_capture: missing UserID or SessionID in ToolContext")
	}

	transcript, ok := input["transcript"].([]*domain.Message)
	if !ok || len(transcript) == 0 {
		return nil, fmt.Errorf("dream_capture: transcript is required")
	}

	draft, err := t.ai.ExtractDream(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("dream_capture: extract failed: %w", err)
	}

	dream, err := t.dreams.CreateDream(ctx, dreams.CreateDreamInput{
		Title:       draft.Title,
		Description: draft.Description,
		Mood:        draft.Mood,
		Emotions:    draft.Emotions,
		Tags:        draft.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("dream_capture: create failed: %w", err)
	}

	return map[string]any{
		"status":   "ok",
		"dream_id": string(dream.ID),
		"title":    dream.Title,
	}, nil
}
