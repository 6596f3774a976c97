package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/adapters/storage/memory"
	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/cache"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/quota"
)

// fakeAI gives canned answers and counts calls.
type fakeAI struct {
	replies    int
	extracts   int
	interprets int
	describes  int
}

func (f *fakeAI) GenerateReply(_ context.Context, userMessage string, _ domain.ChatContext) (string, error) {
	f.replies++
	return "Tell me more about: " + userMessage, nil
}

func (f *fakeAI) ExtractDream(_ context.Context, transcript []*domain.Message) (*domain.DreamDraft, error) {
	f.extracts++
	if len(transcript) == 0 {
		return nil, errors.New("empty transcript")
	}
	return &domain.DreamDraft{
		Title:       "The Glass Staircase",
		Description: transcript[0].Text,
		Mood:        "uneasy",
		Tags:        []string{"stairs"},
	}, nil
}

func (f *fakeAI) InterpretDream(_ context.Context, dream *domain.Dream) (string, error) {
	f.interprets++
	return "An interpretation of " + dream.Title, nil
}

func (f *fakeAI) DescribeScene(_ context.Context, dream *domain.Dream) (string, error) {
	f.describes++
	return "A painting of " + dream.Title, nil
}

type fakeImages struct {
	calls int
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.calls++
	return "https://img.example/" + strings.ReplaceAll(prompt, " ", "-"), nil
}

func newTestService(t *testing.T, limits map[domain.ActionType]int) (*Service, *fakeAI, *fakeImages, *dreams.Service) {
	t.Helper()

	if limits == nil {
		limits = quota.DefaultLimits()
	}
	logger := zap.NewNop()
	c := cache.New(cache.DefaultDreamTTL, cache.DefaultListTTL, logger)
	dreamSvc := dreams.NewService(memory.NewDreamStore(), memory.NewUserStore(), c)
	gate := quota.NewService(memory.NewUsageStore(), limits, logger)

	ai := &fakeAI{}
	images := &fakeImages{}
	svc := NewService(ai, images, memory.NewSessionStore(), memory.NewMessageStore(), dreamSvc, gate)
	return svc, ai, images, dreamSvc
}

func userCtx(id string) context.Context {
	return domain.WithUser(context.Background(), domain.UserID(id))
}

func TestStartSessionRequiresUser(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	if _, err := svc.StartSession(context.Background(), "night one"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSendMessageRoundTrip(t *testing.T) {
	svc, ai, _, _ := newTestService(t, nil)
	ctx := userCtx("maya")

	session, err := svc.StartSession(ctx, "night one")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	reply, err := svc.SendMessage(ctx, session.ID, "I was falling through clouds")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply.Author != domain.RoleAssistant {
		t.Fatalf("reply author = %q, want assistant", reply.Author)
	}
	if !strings.Contains(reply.Text, "falling through clouds") {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
	if ai.replies != 1 {
		t.Fatalf("GenerateReply calls = %d, want 1", ai.replies)
	}

	timeline, err := svc.GetTimeline(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("GetTimeline: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2 (user + assistant)", len(timeline))
	}
	if timeline[0].Author != domain.RoleUser || timeline[1].Author != domain.RoleAssistant {
		t.Fatalf("timeline order wrong: %q then %q", timeline[0].Author, timeline[1].Author)
	}
}

func TestSendMessageForeignSessionForbidden(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	session, err := svc.StartSession(userCtx("maya"), "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := svc.SendMessage(userCtx("lee"), session.ID, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSendMessageConsumesChatQuota(t *testing.T) {
	limits := quota.DefaultLimits()
	limits[domain.ActionChat] = 2
	svc, _, _, _ := newTestService(t, limits)
	ctx := userCtx("maya")

	session, err := svc.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SendMessage(ctx, session.ID, "more clouds"); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	_, err = svc.SendMessage(ctx, session.ID, "one too many")
	var limErr *domain.LimitExceededError
	if !errors.As(err, &limErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limErr.Action != domain.ActionChat || limErr.Limit != 2 {
		t.Fatalf("unexpected limit error: %+v", limErr)
	}
}

func TestSaveIntentCapturesDream(t *testing.T) {
	svc, ai, _, dreamSvc := newTestService(t, nil)
	ctx := userCtx("maya")

	session, err := svc.StartSession(ctx, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := svc.SendMessage(ctx, session.ID, "I climbed a glass staircase"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	reply, err := svc.SendMessage(ctx, session.ID, "please save this dream")
	if err != nil {
		t.Fatalf("SendMessage(save): %v", err)
	}
	if ai.extracts != 1 {
		t.Fatalf("ExtractDream calls = %d, want 1", ai.extracts)
	}
	if !strings.Contains(reply.Text, "Saved your dream") {
		t.Fatalf("reply does not confirm save: %q", reply.Text)
	}

	updated, err := svc.sessions.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if updated.SavedDreamID == "" {
		t.Fatal("session.SavedDreamID not set after capture")
	}

	dream, err := dreamSvc.GetDream(ctx, updated.SavedDreamID)
	if err != nil {
		t.Fatalf("captured dream not readable: %v", err)
	}
	if dream.Title != "The Glass Staircase" {
		t.Fatalf("dream title = %q", dream.Title)
	}
	if dream.UserID != "maya" {
		t.Fatalf("dream owner = %q", dream.UserID)
	}
}

func TestPlainMessageDoesNotExtract(t *testing.T) {
	svc, ai, _, _ := newTestService(t, nil)
	ctx := userCtx("maya")

	session, _ := svc.StartSession(ctx, "")
	if _, err := svc.SendMessage(ctx, session.ID, "the water was warm"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if ai.extracts != 0 {
		t.Fatalf("ExtractDream calls = %d, want 0", ai.extracts)
	}
}

func TestExtractQuotaBlocksCapture(t *testing.T) {
	limits := quota.DefaultLimits()
	limits[domain.ActionExtract] = 0
	// zero limit means the action is disabled outright
	svc, ai, _, _ := newTestService(t, limits)
	ctx := userCtx("maya")

	session, _ := svc.StartSession(ctx, "")
	if _, err := svc.SendMessage(ctx, session.ID, "a dream about rivers"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	_, err := svc.SendMessage(ctx, session.ID, "save the dream")
	if err == nil {
		t.Fatal("expected capture to fail on extract quota")
	}
	if ai.extracts != 0 {
		t.Fatalf("ExtractDream calls = %d, want 0", ai.extracts)
	}
}

func TestInterpretAttachesToDream(t *testing.T) {
	svc, ai, _, dreamSvc := newTestService(t, nil)
	ctx := userCtx("maya")

	dream, err := dreamSvc.CreateDream(ctx, dreams.CreateDreamInput{Title: "Rivers", Description: "slow water"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	updated, err := svc.Interpret(ctx, dream.ID)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if updated.Interpretation != "An interpretation of Rivers" {
		t.Fatalf("interpretation = %q", updated.Interpretation)
	}
	if ai.interprets != 1 {
		t.Fatalf("InterpretDream calls = %d, want 1", ai.interprets)
	}
}

func TestInterpretForeignDreamForbidden(t *testing.T) {
	svc, ai, _, dreamSvc := newTestService(t, nil)

	dream, err := dreamSvc.CreateDream(userCtx("maya"), dreams.CreateDreamInput{
		Title:  "Rivers",
		Public: true,
	})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	if _, err := svc.Interpret(userCtx("lee"), dream.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if ai.interprets != 0 {
		t.Fatalf("InterpretDream calls = %d, want 0", ai.interprets)
	}
}

func TestDescribeScene(t *testing.T) {
	svc, _, _, dreamSvc := newTestService(t, nil)
	ctx := userCtx("maya")

	dream, _ := dreamSvc.CreateDream(ctx, dreams.CreateDreamInput{Title: "Rivers"})

	scene, err := svc.DescribeScene(ctx, dream.ID)
	if err != nil {
		t.Fatalf("DescribeScene: %v", err)
	}
	if scene != "A painting of Rivers" {
		t.Fatalf("scene = %q", scene)
	}
}

func TestGenerateImageAttachesURL(t *testing.T) {
	svc, _, images, dreamSvc := newTestService(t, nil)
	ctx := userCtx("maya")

	dream, _ := dreamSvc.CreateDream(ctx, dreams.CreateDreamInput{
		Title:       "Rivers",
		Description: "slow water at dusk",
	})

	updated, err := svc.GenerateImage(ctx, dream.ID, "")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if updated.ImageURL == "" {
		t.Fatal("ImageURL not set")
	}
	if images.calls != 1 {
		t.Fatalf("GenerateImage calls = %d, want 1", images.calls)
	}
}

func TestImageQuotaCeiling(t *testing.T) {
	limits := quota.DefaultLimits()
	limits[domain.ActionImage] = 1
	svc, _, images, dreamSvc := newTestService(t, limits)
	ctx := userCtx("maya")

	dream, _ := dreamSvc.CreateDream(ctx, dreams.CreateDreamInput{Title: "Rivers", Description: "water"})

	if _, err := svc.GenerateImage(ctx, dream.ID, "first"); err != nil {
		t.Fatalf("first image: %v", err)
	}
	_, err := svc.GenerateImage(ctx, dream.ID, "second")
	var limErr *domain.LimitExceededError
	if !errors.As(err, &limErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if images.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", images.calls)
	}
}
