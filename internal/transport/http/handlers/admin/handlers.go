package adminhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mis/internal/domain/commitment"
	"mis/internal/domain/dashboard"
	"mis/internal/domain/kpikra"
	"mis/internal/domain/report"
	"mis/internal/sheets"
	"mis/internal/transport/http/api"
	"mis/internal/transport/http/middleware"
)

type Handler struct {
	Dashboard   *dashboard.Service
	Kpi         *kpikra.Service
	Reports     *report.Service
	Commitments *commitment.Service
}

func NewHandler(dash *dashboard.Service, kpi *kpikra.Service, reports *report.Service, commitments *commitment.Service) *Handler {
	return &Handler{Dashboard: dash, Kpi: kpi, Reports: reports, Commitments: commitments}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/today-tasks", h.HandleTodayTasks)
	r.Get("/pending-tasks", h.HandlePendingTasks)
	r.Get("/kpikra", h.HandleKpiKra)
	r.Get("/report", h.HandleReport)
	r.Get("/report/pdf", h.HandleReportPDF)
	r.Get("/report/xlsx", h.HandleReportXLSX)
	r.Post("/commitments", h.HandleSubmitCommitments)
	r.Get("/commitments/history", h.HandleCommitmentHistory)
	r.Delete("/commitments/{id}", h.HandleRemoveCommitment)
	r.Get("/commitments/drafts", h.HandleLoadDrafts)
	r.Put("/commitments/drafts", h.HandleSaveDrafts)
}

func dashboardFilters(r *http.Request) dashboard.Filters {
	q := r.URL.Query()
	return dashboard.Filters{
		Name:       q.Get("name"),
		Department: q.Get("department"),
		FMS:        q.Get("fms"),
	}
}

func failFetch(w http.ResponseWriter, err error, reqID string) {
	var emptyErr *sheets.EmptyError
	var netErr *sheets.NetworkError
	switch {
	case errors.As(err, &emptyErr):
		api.Fail(w, http.StatusNotFound, "sheet_empty", "sheet returned no rows", reqID)
	case errors.As(err, &netErr):
		api.Fail(w, http.StatusBadGateway, "sheet_unreachable", "sheet fetch failed", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "fetch_failed", "data fetch failed", reqID)
	}
}

// HandleDashboard serves the aggregated overview. With ?cached=1 a
// stored snapshot for the designation is preferred when present.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	designation := r.URL.Query().Get("designation")

	if r.URL.Query().Get("cached") == "1" && designation != "" {
		if cached, err := h.Dashboard.CachedOverview(r.Context(), designation); err == nil && cached != nil {
			api.Success(w, cached, reqID)
			return
		}
	}

	overview, err := h.Dashboard.Overview(r.Context(), designation, dashboardFilters(r))
	if err != nil {
		failFetch(w, err, reqID)
		return
	}
	api.Success(w, overview, reqID)
}

func (h *Handler) HandleTodayTasks(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	summary, err := h.Dashboard.TodayTasks(r.Context(), user.UserKey, dashboardFilters(r))
	if err != nil {
		failFetch(w, err, reqID)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) HandlePendingTasks(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	rows, err := h.Dashboard.PendingTasks(r.Context(), user.UserKey, dashboardFilters(r))
	if err != nil {
		failFetch(w, err, reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) HandleKpiKra(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	view, err := h.Kpi.View(r.Context(), kpikra.Query{
		Designation: q.Get("designation"),
		Department:  q.Get("department"),
		Name:        q.Get("name"),
	})
	if err != nil {
		failFetch(w, err, reqID)
		return
	}
	api.Success(w, view, reqID)
}

func reportCriteria(r *http.Request) (report.Criteria, error) {
	q := r.URL.Query()
	c := report.Criteria{
		Name:       q.Get("name"),
		Department: q.Get("department"),
		FMS:        q.Get("fms"),
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c, fmt.Errorf("invalid from date %q", from)
		}
		c.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c, fmt.Errorf("invalid to date %q", to)
		}
		c.To = t
	}
	return c, nil
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	criteria, err := reportCriteria(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), reqID)
		return
	}
	rows, err := h.Reports.Rows(r.Context(), criteria)
	if err != nil {
		failFetch(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{
		"rows":    rows,
		"summary": report.Summarize(rows),
	}, reqID)
}

func (h *Handler) HandleReportPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	criteria, err := reportCriteria(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), reqID)
		return
	}
	rows, err := h.Reports.Rows(r.Context(), criteria)
	if err != nil {
		failFetch(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	if err := h.Reports.WritePDF(r.Context(), w, "Performance Report", rows); err != nil {
		// Headers are gone; nothing left to do but log via middleware.
		return
	}
}

func (h *Handler) HandleReportXLSX(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	criteria, err := reportCriteria(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", err.Error(), reqID)
		return
	}
	rows, err := h.Reports.Rows(r.Context(), criteria)
	if err != nil {
		failFetch(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	_ = h.Reports.WriteXLSX(w, rows)
}

type submitCommitmentsRequest struct {
	Items []commitment.Item `json:"items"`
}

func (h *Handler) HandleSubmitCommitments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitCommitmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	entries, err := h.Commitments.SubmitBatch(r.Context(), user.UserKey, payload.Items)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "submit_failed", err.Error(), reqID)
		return
	}
	api.Accepted(w, entries, reqID)
}

func (h *Handler) HandleCommitmentHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	history, err := h.Commitments.History(r.Context(), user.UserKey, r.URL.Query().Get("name"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "history load failed", reqID)
		return
	}
	api.Success(w, history, reqID)
}

func (h *Handler) HandleRemoveCommitment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Commitments.Remove(r.Context(), user.UserKey, chi.URLParam(r, "id")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "remove_failed", "remove failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"removed": true}, reqID)
}

func (h *Handler) HandleLoadDrafts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	drafts, err := h.Commitments.LoadDrafts(r.Context(), user.UserKey)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "drafts_failed", "drafts load failed", reqID)
		return
	}
	if drafts == nil {
		drafts = map[string]int{}
	}
	api.Success(w, drafts, reqID)
}

func (h *Handler) HandleSaveDrafts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var drafts map[string]int
	if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if err := h.Commitments.SaveDrafts(r.Context(), user.UserKey, drafts); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_draft", err.Error(), reqID)
		return
	}
	api.Success(w, map[string]bool{"saved": true}, reqID)
}
