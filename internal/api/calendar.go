package api

import (
	"net/http"
	"time"

	"surfari/boardwalk/internal/auth"
	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/services"
)

// ListSessionsHandler returns the claim board for one week. The weekStart
// query parameter picks the week; absent, the current week is shown.
func ListSessionsHandler(calendar *services.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := time.Now()
		if raw := r.URL.Query().Get("weekStart"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "weekStart must be RFC3339")
				return
			}
			ref = parsed
		}

		slots, err := calendar.ListWeek(r.Context(), ref)
		if err != nil {
			logging.Error("Calendar list failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &slots)
	}
}

// PublishSessionsHandler fills upcoming weeks with claimable slots.
// Publishing an already-published week is a no-op for existing slots.
func PublishSessionsHandler(calendar *services.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.PublishRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid publish payload")
			return
		}

		startRef := time.Now()
		if req.StartISO != "" {
			parsed, err := time.Parse(time.RFC3339, req.StartISO)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "startISO must be RFC3339")
				return
			}
			startRef = parsed
		}

		result, err := calendar.Publish(r.Context(), startRef, req.Weeks, req.Title, req.MaxTrainers)
		if err != nil {
			logging.Error("Calendar publish failed", "error", err)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}

func ClaimSessionHandler(calendar *services.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.ClaimRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid claim payload")
			return
		}

		session := auth.GetSession(r.Context())
		if session == nil {
			respondWithError(w, http.StatusUnauthorized, "missing session")
			return
		}

		err = calendar.Claim(r.Context(), req.SessionID, constants.ClaimRole(req.Role), session.DiscordID)
		if err != nil {
			logging.Warn("Claim rejected",
				"error", err, "session_id", req.SessionID, "discord_id", session.DiscordID)
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &dtos.ClaimResult{OK: true})
	}
}

func UnclaimSessionHandler(calendar *services.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.ClaimRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid unclaim payload")
			return
		}

		session := auth.GetSession(r.Context())
		if session == nil {
			respondWithError(w, http.StatusUnauthorized, "missing session")
			return
		}

		err = calendar.Unclaim(r.Context(), req.SessionID, constants.ClaimRole(req.Role), session.DiscordID)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &dtos.ClaimResult{OK: true})
	}
}
