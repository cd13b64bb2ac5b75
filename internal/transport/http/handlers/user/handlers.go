package userhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mis/internal/domain/dashboard"
	"mis/internal/domain/kpikra"
	"mis/internal/domain/session"
	"mis/internal/transport/http/api"
	"mis/internal/transport/http/middleware"
)

type Handler struct {
	Sessions  *session.Service
	Dashboard *dashboard.Service
	Kpi       *kpikra.Service
}

func NewHandler(sessions *session.Service, dash *dashboard.Service, kpi *kpikra.Service) *Handler {
	return &Handler{Sessions: sessions, Dashboard: dash, Kpi: kpi}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/kpikra", h.HandleKpiKra)
	r.Post("/designation", h.HandleChangeDesignation)
	r.Post("/designation-brief", h.HandleDesignationBrief)
}

// current resolves the acting user from the persisted session record.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*session.User, bool) {
	reqID := middleware.GetRequestID(r.Context())
	userCtx, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return nil, false
	}

	user, err := h.Sessions.Current(r.Context(), userCtx.UserKey)
	if err != nil {
		var cErr *session.CorruptSessionError
		if errors.Is(err, session.ErrNoSession) || errors.As(err, &cErr) {
			api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired, log in again", reqID)
		} else {
			api.Fail(w, http.StatusInternalServerError, "session_failed", "session load failed", reqID)
		}
		return nil, false
	}
	return user, true
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := h.current(w, r)
	if !ok {
		return
	}

	overview, err := h.Dashboard.UserDashboard(r.Context(), user.Name)
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "sheet_unreachable", "dashboard fetch failed", reqID)
		return
	}
	api.Success(w, overview, reqID)
}

// HandleKpiKra is the user-scoped view: the active designation is the
// only filter, regardless of query parameters.
func (h *Handler) HandleKpiKra(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := h.current(w, r)
	if !ok {
		return
	}

	view, err := h.Kpi.View(r.Context(), kpikra.Query{Designation: user.Designation})
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "sheet_unreachable", "kpi fetch failed", reqID)
		return
	}
	api.Success(w, view, reqID)
}

type changeDesignationRequest struct {
	Designation string `json:"designation"`
}

func (h *Handler) HandleChangeDesignation(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := h.current(w, r)
	if !ok {
		return
	}

	var payload changeDesignationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Sessions.ChangeDesignation(r.Context(), user, payload.Designation); err != nil {
		var vErr *session.ValidationError
		if errors.As(err, &vErr) {
			api.Fail(w, http.StatusBadRequest, "invalid_designation", "designation not assigned to user", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "change_failed", "designation change failed", reqID)
		return
	}
	api.Success(w, user, reqID)
}

type briefRequest struct {
	Brief string `json:"brief"`
}

func (h *Handler) HandleDesignationBrief(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := h.current(w, r)
	if !ok {
		return
	}

	var payload briefRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Kpi.SubmitBrief(r.Context(), user.Name, user.Designation, payload.Brief); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_brief", err.Error(), reqID)
		return
	}
	api.Accepted(w, map[string]bool{"queued": true}, reqID)
}
