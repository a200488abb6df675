// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-rank-tracker/internal/model"
)

const dateLayout = "2006-01-02"

// Reader is the slice of the store the read API depends on.
type Reader interface {
	TopRepositories(ctx context.Context) ([]model.Repository, error)
	RepoActivity(ctx context.Context, fullName string, since, until *time.Time) ([]model.ActivityRecord, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db     Reader
	logger *slog.Logger
}

// activityResponseItem is the JSON shape of one activity row.
type activityResponseItem struct {
	Date    string   `json:"date"`
	Commits int      `json:"commits"`
	Authors []string `json:"authors"`
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db Reader, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:     db,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/api/repos", func(r chi.Router) {
		r.Get("/top100", h.getTopRepos)
		r.Get("/{owner}/{repo}", h.getRepoActivity)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getTopRepos returns every tracked repository ordered by current position.
// GET /api/repos/top100
func (h *Handler) getTopRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.db.TopRepositories(r.Context())
	if err != nil {
		h.logger.Error("Failed to get top repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if repos == nil {
		repos = []model.Repository{}
	}
	respondWithJSON(w, http.StatusOK, repos)
}

// getRepoActivity returns the stored activity rows for one repository,
// optionally bounded by inclusive since/until dates.
// GET /api/repos/{owner}/{repo}?since=YYYY-MM-DD&until=YYYY-MM-DD
func (h *Handler) getRepoActivity(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	fullName := owner + "/" + repo

	since, ok := parseDateParam(w, r, "since")
	if !ok {
		return
	}
	until, ok := parseDateParam(w, r, "until")
	if !ok {
		return
	}

	records, err := h.db.RepoActivity(r.Context(), fullName, since, until)
	if err != nil {
		h.logger.Error("Failed to get repository activity", "repo", fullName, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]activityResponseItem, 0, len(records))
	for _, rec := range records {
		response = append(response, activityResponseItem{
			Date:    rec.Date.Format(dateLayout),
			Commits: rec.Commits,
			Authors: rec.Authors,
		})
	}
	respondWithJSON(w, http.StatusOK, response)
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. It writes a 400
// response and returns ok=false when the value is present but malformed.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid '"+name+"' parameter. Expected format: YYYY-MM-DD.")
		return nil, false
	}
	return &parsed, true
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, detail string) {
	respondWithJSON(w, status, map[string]string{"detail": detail})
}
