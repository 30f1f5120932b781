package api

import (
	"net/http"

	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/services"
)

// SessionStartHandler opens (or reopens) a live session row for a player.
// The game retries on failure, so starts must be idempotent.
func SessionStartHandler(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.SessionStartRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid session start payload")
			return
		}

		if err := ledger.Start(r.Context(), req.UserID, req.ServerID, req.PlaceID); err != nil {
			logging.Error("Session start failed", "error", err, "user_id", req.UserID)
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &dtos.IngestAck{OK: true})
	}
}

func SessionHeartbeatHandler(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.SessionHeartbeatRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid heartbeat payload")
			return
		}

		if err := ledger.Heartbeat(r.Context(), req.UserID, req.ServerID); err != nil {
			logging.Error("Heartbeat failed", "error", err, "user_id", req.UserID)
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &dtos.IngestAck{OK: true})
	}
}

// SessionEndHandler closes a live session and archives its minutes. Ending
// a session that is not live still answers OK with archived=false, the
// game fires end pings best-effort and may double-send.
func SessionEndHandler(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAndValidate[dtos.SessionEndRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid session end payload")
			return
		}

		result, err := ledger.End(r.Context(), req.UserID, req.ServerID)
		if err != nil {
			logging.Error("Session end failed", "error", err, "user_id", req.UserID)
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, result)
	}
}
