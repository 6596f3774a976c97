package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/app/tools"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/observability"
)

// AgentInput feeds one agent. UserMessage is rewritten between agents;
// Original always holds the message the user actually sent.
type AgentInput struct {
	UserMessage string
	Original    string
	ChatCtx     domain.ChatContext
}

type AgentOutput struct {
	Reply        string
	SavedDreamID domain.DreamID
}

type Agent interface {
	Name() string
	Run(ctx context.Context, in AgentInput) (AgentOutput, error)
}

// Flow runs agents in sequence; each agent's reply becomes the next
// agent's input.
type Flow struct {
	agents []Agent
}

// NewDefaultFlow wires listener -> capturer.
func NewDefaultFlow(ai domain.AIClient, captureTool tools.Tool, gate QuotaGate) *Flow {
	return &Flow{
		agents: []Agent{
			NewListenerAgent(ai),
			NewCaptureAgent(captureTool, gate),
		},
	}
}

func (f *Flow) Run(ctx context.Context, userMessage string, chatCtx domain.ChatContext) (AgentOutput, error) {
	if len(f.agents) == 0 {
		return AgentOutput{}, fmt.Errorf("no agents configured in flow")
	}

	log := observability.FromContext(ctx).With(
		zap.String("session_id", string(chatCtx.SessionID)),
		zap.String("user_id", string(chatCtx.UserID)),
	)

	in := AgentInput{
		UserMessage: userMessage,
		Original:    userMessage,
		ChatCtx:     chatCtx,
	}

	var final AgentOutput
	for _, ag := range f.agents {
		start := time.Now()

		out, err := ag.Run(ctx, in)
		if err != nil {
			log.Error("agent failed", zap.String("agent", ag.Name()), zap.Error(err))
			return AgentOutput{}, fmt.Errorf("agent %s failed: %w", ag.Name(), err)
		}

		log.Debug("agent done",
			zap.String("agent", ag.Name()),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)

		in.UserMessage = out.Reply
		final.Reply = out.Reply
		if out.SavedDreamID != "" {
			final.SavedDreamID = out.SavedDreamID
		}
	}
	return final, nil
}

// ListenerAgent produces the conversational reply that keeps the user
// describing their dream.
type ListenerAgent struct {
	ai domain.AIClient
}

func NewListenerAgent(ai domain.AIClient) *ListenerAgent {
	return &ListenerAgent{ai: ai}
}

func (a *ListenerAgent) Name() string {
	return "listener"
}

func (a *ListenerAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	reply, err := a.ai.GenerateReply(ctx, in.UserMessage, in.ChatCtx)
	if err != nil {
		return AgentOutput{}, err
	}
	return AgentOutput{Reply: reply}, nil
}

// CaptureAgent watches for a save request and, when it sees one, runs
// the dream-capture tool over the transcript. Extraction has its own
// quota, separate from the chat turn that triggered it.
type CaptureAgent struct {
	tool tools.Tool
	gate QuotaGate
}

func NewCaptureAgent(tool tools.Tool, gate QuotaGate) *CaptureAgent {
	return &CaptureAgent{tool: tool, gate: gate}
}

func (a *CaptureAgent) Name() string {
	return "capturer"
}

func (a *CaptureAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	if a.tool == nil || !wantsSave(in.Original) {
		return AgentOutput{Reply: in.UserMessage}, nil
	}

	if err := a.gate.CheckAndConsume(ctx, domain.ActionExtract); err != nil {
		return AgentOutput{}, err
	}

	out, err := a.tool.Call(ctx,
		tools.ToolContext{
			UserID:    string(in.ChatCtx.UserID),
			SessionID: string(in.ChatCtx.SessionID),
		},
		map[string]any{
			"transcript": in.ChatCtx.History,
		},
	)
	if err != nil {
		return AgentOutput{}, err
	}

	dreamID, _ := out["dream_id"].(string)
	title, _ := out["title"].(string)

	reply := in.UserMessage
	if title != "" {
		reply = fmt.Sprintf("Saved your dream as %q. %s", title, in.UserMessage)
	}

	return AgentOutput{
		Reply:        reply,
		SavedDreamID: domain.DreamID(dreamID),
	}, nil
}

// wantsSave is a deliberately simple intent check; the LLM reply still
// guides the user, this only decides whether to run extraction.
func wantsSave(msg string) bool {
	m := strings.ToLower(msg)
	if !strings.Contains(m, "save") && !strings.Contains(m, "journal") {
		return false
	}
	return strings.Contains(m, "dream") || strings.Contains(m, "it") || strings.Contains(m, "this")
}
