package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/services"
)

// queryInt reads an integer query parameter, falling back when absent or
// malformed. Services clamp to their own bounds.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func StatsSummaryHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := quota.Summary(r.Context())
		if err != nil {
			logging.Error("Stats summary failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, summary)
	}
}

func RecentSessionsHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := quota.Recent(r.Context(), queryInt(r, "limit", 20))
		if err != nil {
			logging.Error("Recent sessions failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

func LeaderboardHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := quota.Leaderboard(r.Context(), queryInt(r, "limit", 10))
		if err != nil {
			logging.Error("Leaderboard failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

func ProgressHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := quota.Progress(r.Context(),
			queryInt(r, "page", 1),
			queryInt(r, "limit", 25),
			r.URL.Query().Get("search"))
		if err != nil {
			logging.Error("Progress page failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, page)
	}
}

func QuotaSummaryHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := quota.QuotaSummary(r.Context())
		if err != nil {
			logging.Error("Quota summary failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, summary)
	}
}

func QuotaListHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := quota.QuotaList(r.Context())
		if err != nil {
			logging.Error("Quota list failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

func QuotaUserHandler(quota *services.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
		if err != nil || userID <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		row, err := quota.QuotaUser(r.Context(), userID)
		if err != nil {
			logging.Error("Quota user failed", "error", err, "user_id", userID)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, row)
	}
}
