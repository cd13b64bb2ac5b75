package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mis/internal/avatar"
	"mis/internal/domain/auth"
	"mis/internal/domain/session"
	"mis/internal/sheets"
	"mis/internal/transport/http/api"
	"mis/internal/transport/http/middleware"
)

type Handler struct {
	Sessions *session.Service

	Secret           string
	TokenTTL         time.Duration
	AvatarServiceURL string
}

func NewHandler(sessions *session.Service, secret string, tokenTTL time.Duration, avatarServiceURL string) *Handler {
	return &Handler{Sessions: sessions, Secret: secret, TokenTTL: tokenTTL, AvatarServiceURL: avatarServiceURL}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string        `json:"token,omitempty"`
	User  *session.User `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Sessions.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		var vErr *session.ValidationError
		var netErr *sheets.NetworkError
		switch {
		case errors.As(err, &vErr):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", vErr.Error(), reqID)
		case errors.Is(err, session.ErrInvalidCredentials):
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		case errors.As(err, &netErr):
			api.Fail(w, http.StatusBadGateway, "sheet_unreachable", "credentials sheet unreachable", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		}
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserKey: user.Key(), Name: user.Name, Role: user.Role}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "could not issue token", reqID)
		return
	}

	api.Success(w, sessionResponse{Token: token, User: user}, reqID)
}

// HandleSession rehydrates the caller's persisted record. A corrupt
// record has already been discarded by the service, so the client can
// simply log in again.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	userCtx, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	user, err := h.Sessions.Restore(r.Context(), userCtx.UserKey)
	if err != nil {
		var cErr *session.CorruptSessionError
		switch {
		case errors.Is(err, session.ErrNoSession), errors.As(err, &cErr):
			api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired, log in again", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "session_failed", "session restore failed", reqID)
		}
		return
	}

	api.Success(w, sessionResponse{User: user}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	userCtx, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Sessions.Logout(r.Context(), userCtx.UserKey); err != nil {
		api.Fail(w, http.StatusInternalServerError, "logout_failed", "logout failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"loggedOut": true}, reqID)
}

type avatarResponse struct {
	Candidates []string `json:"candidates"`
	Initials   string   `json:"initials"`
	Generated  string   `json:"generated"`
}

// HandleAvatar resolves a raw image cell into its candidate URLs so the
// client can walk the fallback chain, ending at a generated avatar.
func (h *Handler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	raw := r.URL.Query().Get("raw")
	name := r.URL.Query().Get("name")

	api.Success(w, avatarResponse{
		Candidates: avatar.Resolve(raw),
		Initials:   avatar.Initials(name),
		Generated:  avatar.GeneratedURL(h.AvatarServiceURL, name),
	}, reqID)
}
