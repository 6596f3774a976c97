package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// Config selects the Vertex project and models the client talks to.
type Config struct {
	ProjectID  string
	Location   string
	ModelName  string // text model, e.g. gemini-2.5-flash
	ImageModel string // image model, e.g. imagen-3.0-generate-002
}

// GeminiClient implements domain.AIClient and domain.ImageClient on
// Vertex AI (Gemini + Imagen).
type GeminiClient struct {
	client     *genai.Client
	modelName  string
	imageModel string
}

func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("gemini: project and location must be set")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "imagen-3.0-generate-002"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		modelName:  cfg.ModelName,
		imageModel: cfg.ImageModel,
	}, nil
}

func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	userMessage string,
	chatCtx domain.ChatContext,
) (string, error) {
	var contents []*genai.Content
	for _, m := range chatCtx.History {
		role := genai.Role(genai.RoleUser)
		if m.Author == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(baseSystemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   2048,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// draftSchema constrains extraction output to the journal-entry shape.
var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"mood":        {Type: genai.TypeString},
		"emotions":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"tags":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"title", "description"},
}

func (g *GeminiClient) ExtractDream(ctx context.Context, transcript []*domain.Message) (*domain.DreamDraft, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("gemini extract: empty transcript")
	}

	temp := float32(0.2)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractInstructions, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    draftSchema,
	}

	contents := []*genai.Content{
		genai.NewContentFromText("Transcript:\n"+TranscriptText(transcript), genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}

	var out struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Mood        string   `json:"mood"`
		Emotions    []string `json:"emotions"`
		Tags        []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(res.Text()), &out); err != nil {
		return nil, fmt.Errorf("gemini extract: decoding response: %w", err)
	}
	if out.Title == "" || out.Description == "" {
		return nil, fmt.Errorf("gemini extract: incomplete draft")
	}

	return &domain.DreamDraft{
		Title:       out.Title,
		Description: out.Description,
		Mood:        out.Mood,
		Emotions:    out.Emotions,
		Tags:        out.Tags,
	}, nil
}

func (g *GeminiClient) InterpretDream(ctx context.Context, dream *domain.Dream) (string, error) {
	return g.oneShot(ctx, interpretInstructions, dreamText(dream))
}

func (g *GeminiClient) DescribeScene(ctx context.Context, dream *domain.Dream) (string, error) {
	scene, err := g.oneShot(ctx, describeInstructions, dreamText(dream))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(scene), nil
}

func (g *GeminiClient) oneShot(ctx context.Context, system, user string) (string, error) {
	temp := float32(0.6)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   2048,
	}
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// GenerateImage renders one image and returns it as a data URI so the
// caller does not need a blob store.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}

	res, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, cfg)
	if err != nil {
		return "", fmt.Errorf("imagen generate: %w", err)
	}
	if len(res.GeneratedImages) == 0 || res.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("imagen returned no image")
	}

	img := res.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	encoded := base64.StdEncoding.EncodeToString(img.ImageBytes)
	return "data:" + mime + ";base64," + encoded, nil
}
