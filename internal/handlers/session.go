package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/npcforge/dialogue-engine/internal/engine"
	"github.com/npcforge/dialogue-engine/internal/logger"
)

// SessionHandler handles session lifecycle requests.
// DELETE /v1/session/{playerID}/{npcName} discards a session's
// drift and emotion state so the next turn starts fresh.
type SessionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSessionHandler(eng *engine.Engine, log *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		logger: log,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	log := logger.WithRequestID(h.logger, uuid.NewString())

	if r.Method != http.MethodDelete {
		log.Warn("Method not allowed for session endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only DELETE is supported at /v1/session.")
		return
	}

	playerID, npcName, ok := parseSessionPath(r.URL.Path)
	if !ok {
		writeError(w, log, http.StatusBadRequest, "Expected path /v1/session/{player_id}/{npc_name}.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.engine.EndSession(ctx, playerID, npcName); err != nil {
		logger.WithError(log, err).Error("Failed to end session",
			"player_id", playerID,
			"npc_name", npcName)
		writeError(w, log, http.StatusInternalServerError, "Failed to end session. Please try again.")
		return
	}

	log.Info("Session ended", "player_id", playerID, "npc_name", npcName)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ended"}); err != nil {
		logger.WithError(log, err).Error("Error encoding session response")
	}
}

func parseSessionPath(path string) (playerID, npcName string, ok bool) {
	rest := strings.TrimPrefix(path, "/v1/session/")
	if rest == path {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
