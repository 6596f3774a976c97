package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	httpadapter "github.com/berningb/dream-speak-sub000/internal/adapters/http"
	"github.com/berningb/dream-speak-sub000/internal/adapters/llm"
	firestorestore "github.com/berningb/dream-speak-sub000/internal/adapters/storage/firestore"
	memstore "github.com/berningb/dream-speak-sub000/internal/adapters/storage/memory"
	"github.com/berningb/dream-speak-sub000/internal/app/assistant"
	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/app/social"
	"github.com/berningb/dream-speak-sub000/internal/auth"
	"github.com/berningb/dream-speak-sub000/internal/cache"
	"github.com/berningb/dream-speak-sub000/internal/config"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/metrics"
	"github.com/berningb/dream-speak-sub000/internal/observability"
	"github.com/berningb/dream-speak-sub000/internal/quota"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.NewLogger(cfg.Mode == config.ModeLocal)
	defer func() { _ = logger.Sync() }()

	metrics.Register()

	// AI clients: mock in local dev, Gemini/Imagen against Vertex.
	var (
		aiClient    domain.AIClient
		imageClient domain.ImageClient
	)
	if cfg.UseMockAI {
		logger.Info("using mock AI client")
		mock := llm.NewMockAI()
		aiClient = mock
		imageClient = mock
	} else {
		logger.Info("using Gemini AI client",
			zap.String("model", cfg.ModelName),
			zap.String("image_model", cfg.ImageModel),
		)
		gemini, err := llm.NewGeminiClient(ctx, llm.Config{
			ProjectID:  cfg.GCPProjectID,
			Location:   cfg.GCPLocation,
			ModelName:  cfg.ModelName,
			ImageModel: cfg.ImageModel,
		})
		if err != nil {
			logger.Fatal("initializing Gemini client", zap.Error(err))
		}
		aiClient = gemini
		imageClient = gemini
	}

	// Storage: one Firestore store implements every port; memory
	// stores mirror them for local dev.
	var (
		dreamStore   domain.DreamStore
		userStore    domain.UserStore
		commentStore domain.CommentStore
		reactStore   domain.ReactionStore
		noteStore    domain.NoteStore
		friendStore  domain.FriendStore
		usageStore   domain.UsageStore
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		logger.Info("using Firestore storage", zap.String("project", cfg.GCPProjectID))
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			logger.Fatal("initializing Firestore store", zap.Error(err))
		}
		defer func() { _ = fs.Close() }()

		dreamStore, userStore, commentStore = fs, fs, fs
		reactStore, noteStore, friendStore = fs, fs, fs
		usageStore, sessionStore, messageStore = fs, fs, fs

	default:
		logger.Info("using in-memory storage")
		dreamStore = memstore.NewDreamStore()
		userStore = memstore.NewUserStore()
		commentStore = memstore.NewCommentStore()
		reactStore = memstore.NewReactionStore()
		noteStore = memstore.NewNoteStore()
		friendStore = memstore.NewFriendStore()
		usageStore = memstore.NewUsageStore()
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()
	}

	c := cache.New(cfg.DreamCacheTTL, cfg.ListCacheTTL, logger)

	notifier := auth.NewNotifier()
	notifier.Subscribe(func(auth.Event) { c.Reset() })

	quotaSvc := quota.NewService(usageStore, cfg.QuotaLimits(), logger)
	dreamSvc := dreams.NewService(dreamStore, userStore, c)
	socialSvc := social.NewService(dreamStore, commentStore, reactStore, noteStore, friendStore, c)
	assistantSvc := assistant.NewService(aiClient, imageClient, sessionStore, messageStore, dreamSvc, quotaSvc)

	secret := cfg.AuthSecret
	if secret == "" {
		// Local dev convenience only; Load rejects an empty secret in gcp mode.
		secret = "dev-secret"
	}
	verifier := auth.NewVerifier(secret)

	server := httpadapter.NewServer(dreamSvc, socialSvc, assistantSvc, quotaSvc, notifier)
	router := httpadapter.NewRouter(server, verifier, logger)

	addr := ":" + cfg.Port
	logger.Info("dreamspeak API listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
