package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/app/tools"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/observability"
)

const historyWindow = 20

// QuotaGate is the slice of the quota service the assistant needs.
type QuotaGate interface {
	CheckAndConsume(ctx context.Context, action domain.ActionType) error
}

// Service drives the chat-guided dream capture flow plus the one-shot
// AI actions on a stored dream (interpretation, scene description,
// image generation). Every AI call goes through the quota gate first.
type Service struct {
	ai       domain.AIClient
	images   domain.ImageClient
	sessions domain.SessionStore
	messages domain.MessageStore
	dreams   *dreams.Service
	quota    QuotaGate
	flow     *Flow

	now func() time.Time
}

func NewService(
	ai domain.AIClient,
	images domain.ImageClient,
	sessions domain.SessionStore,
	messages domain.MessageStore,
	dreamSvc *dreams.Service,
	gate QuotaGate,
) *Service {
	capture := tools.NewDreamCaptureTool(ai, dreamSvc)
	return &Service{
		ai:       ai,
		images:   images,
		sessions: sessions,
		messages: messages,
		dreams:   dreamSvc,
		quota:    gate,
		flow:     NewDefaultFlow(ai, capture, gate),
		now:      time.Now,
	}
}

// ───────────────────────── sessions ─────────────────────────

func (s *Service) StartSession(ctx context.Context, title string) (*domain.Session, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	if title == "" {
		title = "Dream capture " + s.now().Format("Jan 2")
	}

	now := s.now()
	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	observability.FromContext(ctx).Info("session started",
		zap.String("session_id", string(session.ID)),
		zap.String("user_id", string(userID)),
	)
	return session, nil
}

func (s *Service) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = 50
	}
	return s.sessions.ListSessionsByUser(ctx, userID, limit)
}

func (s *Service) GetTimeline(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	if _, err := s.ownedSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.messages.GetMessagesBySession(ctx, sessionID, limit)
}

// ───────────────────────── chat ─────────────────────────

// SendMessage runs one chat turn: store the user message, run the agent
// flow over recent history, store and return the assistant reply. When
// the flow captured a dream, the session records its ID.
func (s *Service) SendMessage(ctx context.Context, sessionID domain.SessionID, text string) (*domain.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrBadParams)
	}

	session, err := s.ownedSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.CheckAndConsume(ctx, domain.ActionChat); err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: sessionID,
		Author:    domain.RoleUser,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.messages.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	history, err := s.messages.GetMessagesBySession(ctx, sessionID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	out, err := s.flow.Run(ctx, text, domain.ChatContext{
		SessionID: sessionID,
		UserID:    session.UserID,
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	reply := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: sessionID,
		Author:    domain.RoleAssistant,
		Text:      out.Reply,
		CreatedAt: s.now(),
	}
	if err := s.messages.AppendMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	session.UpdatedAt = s.now()
	if out.SavedDreamID != "" {
		session.SavedDreamID = out.SavedDreamID
	}
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return reply, nil
}

// ───────────────────────── dream AI actions ─────────────────────────

// Interpret produces and stores an interpretation for one of the
// caller's dreams.
func (s *Service) Interpret(ctx context.Context, dreamID domain.DreamID) (*domain.Dream, error) {
	dream, err := s.ownDream(ctx, dreamID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.CheckAndConsume(ctx, domain.ActionInterpret); err != nil {
		return nil, err
	}

	text, err := s.ai.InterpretDream(ctx, dream)
	if err != nil {
		return nil, fmt.Errorf("interpret dream: %w", err)
	}
	return s.dreams.AttachInterpretation(ctx, dreamID, text)
}

// DescribeScene turns a dream into a visual scene description, usable
// as an image prompt. Nothing is persisted.
func (s *Service) DescribeScene(ctx context.Context, dreamID domain.DreamID) (string, error) {
	dream, err := s.dreams.GetDream(ctx, dreamID)
	if err != nil {
		return "", err
	}

	if err := s.quota.CheckAndConsume(ctx, domain.ActionDescribe); err != nil {
		return "", err
	}
	return s.ai.DescribeScene(ctx, dream)
}

// GenerateImage renders an image from the given prompt (or the dream's
// description when empty) and attaches it to the dream.
func (s *Service) GenerateImage(ctx context.Context, dreamID domain.DreamID, prompt string) (*domain.Dream, error) {
	dream, err := s.ownDream(ctx, dreamID)
	if err != nil {
		return nil, err
	}
	if prompt == "" {
		prompt = dream.Description
	}
	if prompt == "" {
		return nil, fmt.Errorf("%w: nothing to render", domain.ErrBadParams)
	}

	if err := s.quota.CheckAndConsume(ctx, domain.ActionImage); err != nil {
		return nil, err
	}

	url, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	return s.dreams.AttachImage(ctx, dreamID, url)
}

// ───────────────────────── helpers ─────────────────────────

// ownDream fetches a dream and verifies the caller owns it, so the
// quota slot is only consumed for requests that can succeed.
func (s *Service) ownDream(ctx context.Context, id domain.DreamID) (*domain.Dream, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	dream, err := s.dreams.GetDream(ctx, id)
	if err != nil {
		return nil, err
	}
	if dream.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return dream, nil
}

func (s *Service) ownedSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}
