// Package httpadapter exposes the application services over a JSON
// HTTP API. Handlers are thin: decode, call the service, map domain
// errors to status codes.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/berningb/dream-speak-sub000/internal/app/assistant"
	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/app/social"
	"github.com/berningb/dream-speak-sub000/internal/auth"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/quota"
)

type Server struct {
	dreams    *dreams.Service
	social    *social.Service
	assistant *assistant.Service
	quota     *quota.Service
	notifier  *auth.Notifier
}

func NewServer(
	dreamSvc *dreams.Service,
	socialSvc *social.Service,
	assistantSvc *assistant.Service,
	quotaSvc *quota.Service,
	notifier *auth.Notifier,
) *Server {
	return &Server{
		dreams:    dreamSvc,
		social:    socialSvc,
		assistant: assistantSvc,
		quota:     quotaSvc,
		notifier:  notifier,
	}
}

// ─────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────

type errorBody struct {
	Error string `json:"error"`
}

type limitBody struct {
	Error   string `json:"error"`
	Action  string `json:"action"`
	Current int    `json:"current"`
	Limit   int    `json:"limit"`
}

type dreamResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Mood           string    `json:"mood,omitempty"`
	Emotions       []string  `json:"emotions,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Public         bool      `json:"public"`
	ImageURL       string    `json:"image_url,omitempty"`
	Interpretation string    `json:"interpretation,omitempty"`
	DreamedAt      time.Time `json:"dreamed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type dreamPageResponse struct {
	Dreams  []dreamResponse `json:"dreams"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

type createDreamRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Mood        string     `json:"mood,omitempty"`
	Emotions    []string   `json:"emotions,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Public      bool       `json:"public"`
	DreamedAt   *time.Time `json:"dreamed_at,omitempty"`
}

type updateDreamRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Mood        *string    `json:"mood,omitempty"`
	Emotions    *[]string  `json:"emotions,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Public      *bool      `json:"public,omitempty"`
	DreamedAt   *time.Time `json:"dreamed_at,omitempty"`
}

// ─────────────────────────────────────────────
// Dream handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateDream(w http.ResponseWriter, r *http.Request) {
	var req createDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, "title is required")
		return
	}

	in := dreams.CreateDreamInput{
		Title:       req.Title,
		Description: req.Description,
		Mood:        req.Mood,
		Emotions:    req.Emotions,
		Tags:        req.Tags,
		Public:      req.Public,
	}
	if req.DreamedAt != nil {
		in.DreamedAt = *req.DreamedAt
	}

	dream, err := s.dreams.CreateDream(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDreamResponse(dream))
}

func (s *Server) handleGetDream(w http.ResponseWriter, r *http.Request) {
	dream, err := s.dreams.GetDream(r.Context(), domain.DreamID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDreamResponse(dream))
}

func (s *Server) handleUpdateDream(w http.ResponseWriter, r *http.Request) {
	var req updateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	dream, err := s.dreams.UpdateDream(r.Context(), domain.DreamID(chi.URLParam(r, "id")), dreams.UpdateDreamInput{
		Title:       req.Title,
		Description: req.Description,
		Mood:        req.Mood,
		Emotions:    req.Emotions,
		Tags:        req.Tags,
		Public:      req.Public,
		DreamedAt:   req.DreamedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDreamResponse(dream))
}

func (s *Server) handleDeleteDream(w http.ResponseWriter, r *http.Request) {
	if err := s.dreams.DeleteDream(r.Context(), domain.DreamID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDreams(w http.ResponseWriter, r *http.Request) {
	q := domain.DreamQuery{
		Kind:   domain.ListKind(r.URL.Query().Get("kind")),
		UserID: domain.UserID(r.URL.Query().Get("user_id")),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if q.Kind == "" {
		q.Kind = domain.ListPublic
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "page_size must be a non-negative integer")
			return
		}
		q.PageSize = n
	}

	page, err := s.dreams.ListDreams(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dreamPageResponse{
		Dreams:  make([]dreamResponse, 0, len(page.Dreams)),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	}
	for _, d := range page.Dreams {
		resp.Dreams = append(resp.Dreams, toDreamResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAllMine(w http.ResponseWriter, r *http.Request) {
	all, err := s.dreams.ListAllMine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]dreamResponse, 0, len(all))
	for _, d := range all {
		out = append(out, toDreamResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"dreams": out})
}

// ─────────────────────────────────────────────
// Profile handlers
// ─────────────────────────────────────────────

type profileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.dreams.GetProfile(r.Context(), domain.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		badRequest(w, "display_name is required")
		return
	}

	profile, err := s.dreams.UpdateProfile(r.Context(), dreams.UpdateProfileInput{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// ─────────────────────────────────────────────
// Usage handlers
// ─────────────────────────────────────────────

func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.quota.Usage(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	counts := make(map[string]int, len(usage))
	for k, v := range usage {
		counts[string(k)] = v
	}
	limits := make(map[string]int)
	for k, v := range s.quota.Limits() {
		limits[string(k)] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"usage":  counts,
		"limits": limits,
	})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toDreamResponse(d *domain.Dream) dreamResponse {
	return dreamResponse{
		ID:             string(d.ID),
		UserID:         string(d.UserID),
		Title:          d.Title,
		Description:    d.Description,
		Mood:           d.Mood,
		Emotions:       d.Emotions,
		Tags:           d.Tags,
		Public:         d.Public,
		ImageURL:       d.ImageURL,
		Interpretation: d.Interpretation,
		DreamedAt:      d.DreamedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toProfileResponse(p *domain.UserProfile) profileResponse {
	return profileResponse{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		Bio:         p.Bio,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		writeJSON(w, http.StatusTooManyRequests, limitBody{
			Error:   limitErr.Error(),
			Action:  string(limitErr.Action),
			Current: limitErr.Current,
			Limit:   limitErr.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, domain.ErrBadParams):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
