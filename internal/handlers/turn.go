package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/npcforge/dialogue-engine/internal/engine"
	"github.com/npcforge/dialogue-engine/internal/logger"
	"github.com/npcforge/dialogue-engine/pkg/chat"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// DefaultTurnTimeout bounds one full turn, including every provider call.
const DefaultTurnTimeout = 60 * time.Second

// TurnHandler handles dialogue turn requests.
type TurnHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewTurnHandler creates a new turn handler.
func NewTurnHandler(eng *engine.Engine, log *slog.Logger) *TurnHandler {
	return &TurnHandler{
		engine: eng,
		logger: log,
	}
}

// ServeHTTP handles HTTP requests for dialogue turns.
func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	log := logger.WithRequestID(h.logger, uuid.NewString())

	if r.Method != http.MethodPost {
		log.Warn("Method not allowed for turn endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported at /v1/turn.")
		return
	}

	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' and 'npc_name' fields.")
		return
	}

	if err := req.Validate(); err != nil {
		log.Warn("Invalid turn request", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	log.Info("Turn endpoint accessed",
		"player_id", req.PlayerID,
		"npc_name", req.NPCName,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), DefaultTurnTimeout)
	defer cancel()

	resp, err := h.engine.Run(ctx, req)
	if err != nil {
		logger.WithError(log, err).Error("Turn failed")
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, log, status, "Failed to process turn. Please try again.")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WithError(log, err).Error("Error encoding turn response")
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.WithError(log, err).Error("Error encoding error response")
	}
}
