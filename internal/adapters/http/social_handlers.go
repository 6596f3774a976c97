package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/berningb/dream-speak-sub000/internal/app/social"
	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type commentResponse struct {
	ID        string    `json:"id"`
	DreamID   string    `json:"dream_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type friendRequestResponse struct {
	ID          string     `json:"id"`
	FromUserID  string     `json:"from_user_id"`
	ToUserID    string     `json:"to_user_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// ─────────────────────────────────────────────
// Comments
// ─────────────────────────────────────────────

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	comment, err := s.social.AddComment(r.Context(), domain.DreamID(chi.URLParam(r, "id")), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.social.ListComments(r.Context(), domain.DreamID(chi.URLParam(r, "id")), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": out})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.social.DeleteComment(r.Context(), domain.CommentID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Reactions
// ─────────────────────────────────────────────

func parseReactionKind(raw string) (domain.ReactionKind, bool) {
	switch raw {
	case string(domain.ReactionLike):
		return domain.ReactionLike, true
	case string(domain.ReactionFavorite):
		return domain.ReactionFavorite, true
	default:
		return "", false
	}
}

func (s *Server) handleSetReaction(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseReactionKind(chi.URLParam(r, "kind"))
	if !ok {
		badRequest(w, "unknown reaction kind")
		return
	}

	if err := s.social.SetReaction(r.Context(), kind, domain.DreamID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearReaction(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseReactionKind(chi.URLParam(r, "kind"))
	if !ok {
		badRequest(w, "unknown reaction kind")
		return
	}

	if err := s.social.ClearReaction(r.Context(), kind, domain.DreamID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCountReactions(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseReactionKind(chi.URLParam(r, "kind"))
	if !ok {
		badRequest(w, "unknown reaction kind")
		return
	}

	count, err := s.social.CountReactions(r.Context(), kind, domain.DreamID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.social.ListFavoriteDreams(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]dreamResponse, 0, len(favs))
	for _, d := range favs {
		out = append(out, toDreamResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"dreams": out})
}

// ─────────────────────────────────────────────
// Notes
// ─────────────────────────────────────────────

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	note, err := s.social.CreateNote(r.Context(), social.NoteInput{Title: req.Title, Body: req.Body})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	note, err := s.social.UpdateNote(r.Context(), domain.NoteID(chi.URLParam(r, "id")), social.NoteInput{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.social.DeleteNote(r.Context(), domain.NoteID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.social.ListNotes(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": out})
}

// ─────────────────────────────────────────────
// Friends
// ─────────────────────────────────────────────

func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.To == "" {
		badRequest(w, "to is required")
		return
	}

	fr, err := s.social.SendFriendRequest(r.Context(), domain.UserID(req.To))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFriendRequestResponse(fr))
}

func (s *Server) handleRespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	fr, err := s.social.RespondFriendRequest(r.Context(), domain.FriendRequestID(chi.URLParam(r, "id")), req.Accept)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFriendRequestResponse(fr))
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.social.ListFriends(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]string, 0, len(friends))
	for _, id := range friends {
		out = append(out, string(id))
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": out})
}

func (s *Server) handleListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.social.ListPendingRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]friendRequestResponse, 0, len(reqs))
	for _, fr := range reqs {
		out = append(out, toFriendRequestResponse(fr))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        string(c.ID),
		DreamID:   string(c.DreamID),
		UserID:    string(c.UserID),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:        string(n.ID),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toFriendRequestResponse(fr *domain.FriendRequest) friendRequestResponse {
	return friendRequestResponse{
		ID:          string(fr.ID),
		FromUserID:  string(fr.FromUserID),
		ToUserID:    string(fr.ToUserID),
		Status:      string(fr.Status),
		CreatedAt:   fr.CreatedAt,
		RespondedAt: fr.RespondedAt,
	}
}
