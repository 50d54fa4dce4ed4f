package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/llmarena/chessmatch-backend/internal/entity"
	"github.com/llmarena/chessmatch-backend/internal/eventbus"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	StartGame(w http.ResponseWriter, r *http.Request)
	ListGames(w http.ResponseWriter, r *http.Request)
	StreamEvents(w http.ResponseWriter, r *http.Request)
	RenderComplete(w http.ResponseWriter, r *http.Request)
}

type orchestrator interface {
	StartGame(ctx context.Context) (string, error)
}

type eventStream interface {
	Subscribe(gameID string) (<-chan eventbus.Event, func())
}

type gameIndex interface {
	List() []entity.GameSummary
	Exists(id string) bool
}

type renderGate interface {
	Acknowledge(gameID string, moveCount int)
}

type handlers struct {
	logger       *slog.Logger
	appCtx       context.Context
	orchestrator orchestrator
	stream       eventStream
	games        gameIndex
	gate         renderGate
}

// NewHandlers - appCtx outlives individual requests; game loops started from
// a request keep running after that request's context is gone.
func NewHandlers(
	appCtx context.Context,
	logger *slog.Logger,
	orchestrator orchestrator,
	stream eventStream,
	games gameIndex,
	gate renderGate,
) Handlers {
	return &handlers{
		logger:       logger.With("component", "rest"),
		appCtx:       appCtx,
		orchestrator: orchestrator,
		stream:       stream,
		games:        games,
		gate:         gate,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// StartGame - mints a game and starts its loop asynchronously.
func (that *handlers) StartGame(w http.ResponseWriter, _ *http.Request) {
	log := that.logger.With("method", "StartGame")

	gameID, err := that.orchestrator.StartGame(that.appCtx)
	if err != nil {
		log.Error("failed to initialize game", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to initialize game"})
		return
	}

	log.Info("game started", "game_id", gameID)
	writeJSON(w, http.StatusOK, map[string]string{"gameId": gameID})
}

func (that *handlers) ListGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, that.games.List())
}

// StreamEvents - the long-lived server-to-client push channel. Once the
// stream has begun, internal failures surface only as in-band error events.
func (that *handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "StreamEvents")

	gameID := r.PathValue("id")
	if !that.games.Exists(gameID) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := that.stream.Subscribe(gameID)
	defer cancel()

	log.Info("observer connected", "game_id", gameID)

	for {
		select {
		case event, open := <-events:
			if !open {
				log.Info("stream finished", "game_id", gameID)
				return
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				log.Warn("observer write failed", "game_id", gameID, "error", err)
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			log.Info("observer disconnected", "game_id", gameID)
			return
		}
	}
}

type renderCompleteRequest struct {
	GameID    string `json:"gameId"`
	MoveCount int    `json:"moveCount"`
}

// RenderComplete - the render-acknowledgment entry point. Idempotent: stale
// move counts are absorbed by the gate.
func (that *handlers) RenderComplete(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "RenderComplete")

	var req renderCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed render notification", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to process render notification"})
		return
	}

	that.gate.Acknowledge(req.GameID, req.MoveCount)
	log.Debug("render acknowledged", "game_id", req.GameID, "move", req.MoveCount)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(payload)
}
