package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hackgods/vitalpoint-assistant/internal/assistant"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	redisclient "github.com/hackgods/vitalpoint-assistant/internal/redis"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

const maxChatBody = 16 << 10

func chatHandler(svc ChatService, sessions *SessionCookies, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if strings.TrimSpace(req.UserInput) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "userInput is required")
			return
		}

		sessionID, err := sessions.Resolve(w, r)
		if err != nil {
			logger.Error("resolve session", "error", err, "request_id", GetRequestID(r.Context()))
			writeError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}

		reply, err := svc.ProcessTurn(r.Context(), sessionID, req.UserInput)
		if err != nil {
			handleChatError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ChatResponse{Response: reply.Text})
	}
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "turn_in_progress", "another message for this session is still being processed")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func doctorsHandler(dir *directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DoctorsResponse{Doctors: dir.All()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
