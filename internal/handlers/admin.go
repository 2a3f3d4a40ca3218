package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/asltutor/apiserver/internal/logging"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Submission filter query parameters.
const (
	paramSubmission = "submission"
	paramUser       = "user"
	paramQuiz       = "quiz"
	paramModule     = "module"
	paramLimit      = "limit"
	paramDays       = "days"
)

// AdminHandler serves the privileged reporting endpoints.
type AdminHandler struct {
	stats       *services.StatsService
	submissions *services.SubmissionService
	export      *services.ExportService
}

// NewAdminHandler constructs an AdminHandler with the provided services.
func NewAdminHandler(
	stats *services.StatsService,
	submissions *services.SubmissionService,
	export *services.ExportService,
) *AdminHandler {
	return &AdminHandler{
		stats:       stats,
		submissions: submissions,
		export:      export,
	}
}

// AdminRouter registers admin routes on r behind the given middlewares.
// Every route requires all of them to pass.
func AdminRouter(
	r chi.Router,
	stats *services.StatsService,
	submissions *services.SubmissionService,
	export *services.ExportService,
	gate ...func(http.Handler) http.Handler,
) {
	handler := NewAdminHandler(stats, submissions, export)

	r.Use(gate...)
	r.Get("/stats", handler.TopRequested)
	r.Get("/stats/users", handler.UserStats)
	r.Post("/stats/export", handler.ExportStats)
	r.Get("/submissions", handler.Submissions)
}

// TopRequested returns the most requested words missing from the dictionary.
func (h *AdminHandler) TopRequested(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, paramLimit, services.DefaultTopRequested)

	entries, err := h.stats.TopRequested(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error(r.Context(), "failed to load top requested words", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// UserStats returns user and submission population counts.
func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, paramDays, services.DefaultWindowDays)

	stats, err := h.stats.UserStats(r.Context(), days)
	if err != nil {
		logging.FromContext(r.Context()).Error(r.Context(), "failed to load user stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportStats uploads a stats snapshot to object storage.
func (h *AdminHandler) ExportStats(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, paramLimit, services.DefaultTopRequested)
	days := queryInt(r, paramDays, services.DefaultWindowDays)

	key, err := h.export.Export(r.Context(), limit, days)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		logging.FromContext(r.Context()).Error(r.Context(), "failed to export stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export stats")
		return
	}

	logging.FromContext(r.Context()).Info(r.Context(), "stats exported", zap.String("key", key))
	writeJSON(w, http.StatusCreated, ExportResponse{Key: key})
}

// Submissions resolves the submission filters of the query string into a
// single submission or a list of submissions.
func (h *AdminHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.FilterRequest{
		SubmissionID: strings.TrimSpace(q.Get(paramSubmission)),
		Username:     strings.TrimSpace(q.Get(paramUser)),
		QuizID:       strings.TrimSpace(q.Get(paramQuiz)),
		ModuleID:     strings.TrimSpace(q.Get(paramModule)),
	}

	res, err := h.submissions.Resolve(r.Context(), req)
	if err != nil {
		status, message := resolveErrorStatus(req, err)
		if status == http.StatusInternalServerError {
			logging.FromContext(r.Context()).Error(r.Context(), "failed to resolve submissions", zap.Error(err))
		}
		writeError(w, status, message)
		return
	}

	if res.Single != nil {
		writeJSON(w, http.StatusOK, res.Single)
		return
	}
	writeJSON(w, http.StatusOK, res.Items)
}

func resolveErrorStatus(req services.FilterRequest, err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidIdentifier):
		return http.StatusBadRequest, services.ErrInvalidIdentifier.Error()
	case errors.Is(err, services.ErrConflictingFilters):
		return http.StatusBadRequest, services.ErrConflictingFilters.Error()
	case errors.Is(err, services.ErrNoFilterSpecified):
		return http.StatusPreconditionFailed, services.ErrNoFilterSpecified.Error()
	case errors.Is(err, store.ErrNotFound):
		if req.SubmissionID != "" {
			return http.StatusNotFound, "submission not found"
		}
		return http.StatusNotFound, "user not found"
	default:
		return http.StatusInternalServerError, "failed to resolve submissions"
	}
}

type ExportResponse struct {
	Key string `json:"key"`
}
