package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/llmarena/chessmatch-backend/internal/config"
	"github.com/llmarena/chessmatch-backend/internal/entity"
	"github.com/llmarena/chessmatch-backend/internal/eventbus"
	"github.com/llmarena/chessmatch-backend/internal/extraction"
	"github.com/llmarena/chessmatch-backend/internal/prompt"
	"github.com/llmarena/chessmatch-backend/internal/registry"
)

const noReasoning = "No reasoning provided"

type llmService interface {
	Generate(ctx context.Context, endpoint, prompt string) (string, error)
}

type eventPublisher interface {
	Publish(gameID, eventType string, payload any)
}

type renderGate interface {
	MarkWaiting(gameID string)
	AwaitRender(ctx context.Context, gameID string, moveNumber int, timeout time.Duration)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
}

// Orchestrator drives full matches between two model-backed players: it
// prompts the player to move, extracts and validates the move, advances the
// game and publishes the ordered event stream observers consume.
type Orchestrator struct {
	logger   *slog.Logger
	registry *registry.Registry
	bus      eventPublisher
	gate     renderGate
	llm      llmService
	repo     gameRepo

	endpoints map[string]string
	names     []string
	settings  config.Game
}

func NewOrchestrator(
	logger *slog.Logger,
	reg *registry.Registry,
	bus eventPublisher,
	gate renderGate,
	llm llmService,
	repo gameRepo,
	players []config.Player,
	settings config.Game,
) *Orchestrator {
	endpoints := make(map[string]string, len(players))
	names := make([]string, 0, len(players))
	for _, player := range players {
		endpoints[player.Name] = player.Endpoint
		names = append(names, player.Name)
	}

	return &Orchestrator{
		logger:    logger.With("component", "orchestrator"),
		registry:  reg,
		bus:       bus,
		gate:      gate,
		llm:       llm,
		repo:      repo,
		endpoints: endpoints,
		names:     names,
		settings:  settings,
	}
}

// StartGame - mints a new game and starts its turn loop asynchronously.
// The passed context should outlive the request that triggered the start.
func (that *Orchestrator) StartGame(ctx context.Context) (string, error) {
	entry, err := that.registry.Create(that.names)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	go that.run(ctx, entry)

	return entry.Game.ID, nil
}

// run - the turn-taking loop. Failures inside a turn never escape: they
// become a terminal status plus an event, and every game ends with exactly
// one game-over event.
func (that *Orchestrator) run(ctx context.Context, entry *registry.Entry) {
	game, engine := entry.Game, entry.Engine
	log := that.logger.With("method", "run", "game_id", game.ID)

	that.bus.Publish(game.ID, eventbus.EventConnectionTest, map[string]any{
		"message": "SSE connection established",
	})
	that.pause(ctx)

	that.bus.Publish(game.ID, eventbus.EventGameStart, map[string]any{
		"message": "Game started",
		"players": game.Players,
	})
	that.pause(ctx)

	gameOver := false
	for !gameOver && game.IsInProgress() && game.MoveCounter < that.settings.MoveCeiling {
		entry.Mutate(func(g *entity.Game) { g.MoveCounter++ })
		currentPlayer := game.CurrentPlayer()
		log.Info("requesting move", "player", currentPlayer, "move", game.MoveCounter)

		that.bus.Publish(game.ID, eventbus.EventThinking, map[string]any{"player": currentPlayer})

		response, err := that.llm.Generate(ctx, that.endpoints[currentPlayer], prompt.Build(game.MoveTokens(), currentPlayer))
		if err != nil {
			log.Error("model endpoint failed", "player", currentPlayer, "error", err)
			that.bus.Publish(game.ID, eventbus.EventError, map[string]any{
				"player":  currentPlayer,
				"message": "Error processing move: " + err.Error(),
			})
			entry.Mutate(func(g *entity.Game) { g.Status = entity.StatusError })
			break
		}

		reasoning := extraction.Reasoning(response)
		if strings.TrimSpace(reasoning) == "" {
			reasoning = noReasoning
		}

		that.bus.Publish(game.ID, eventbus.EventResponse, map[string]any{
			"player":   currentPlayer,
			"response": response,
		})
		that.bus.Publish(game.ID, eventbus.EventReasoning, map[string]any{
			"player":    currentPlayer,
			"reasoning": reasoning,
		})

		move, found := extraction.Move(response)
		if !found {
			log.Warn("no move token in response", "player", currentPlayer)
			that.bus.Publish(game.ID, eventbus.EventError, map[string]any{
				"player":  currentPlayer,
				"message": "Invalid Move",
			})
			entry.Mutate(func(g *entity.Game) { g.Status = entity.StatusError })
			break
		}

		if !engine.ApplyMove(move) {
			log.Warn("illegal move", "player", currentPlayer, "move", move)
			that.bus.Publish(game.ID, eventbus.EventIllegalMove, map[string]any{
				"player": currentPlayer,
				"move":   move,
			})
			entry.Mutate(func(g *entity.Game) { g.Status = entity.StatusIllegalMove })
			break
		}

		entry.Mutate(func(g *entity.Game) {
			g.RecordMove(entity.MoveRecord{
				Player:        currentPlayer,
				Move:          move,
				Reasoning:     reasoning,
				Response:      response,
				PositionAfter: engine.FEN(),
				Timestamp:     time.Now(),
			})
		})

		// A move that ends the game is still emitted as a normal move event;
		// the terminal determination stops the loop on the next iteration.
		gameOver = engine.IsTerminal()

		that.bus.Publish(game.ID, eventbus.EventMove, map[string]any{
			"player":     currentPlayer,
			"move":       move,
			"reasoning":  reasoning,
			"fen":        engine.FEN(),
			"moveNumber": game.MoveCounter,
		})

		entry.Mutate(func(g *entity.Game) { g.AdvanceTurn() })

		that.gate.MarkWaiting(game.ID)
		that.gate.AwaitRender(ctx, game.ID, game.MoveCounter, that.settings.RenderTimeout.Std())

		that.saveSnapshot(ctx, game)
	}

	that.finish(ctx, entry, gameOver)
}

// finish - computes the result summary and emits the single terminal
// game-over event.
func (that *Orchestrator) finish(ctx context.Context, entry *registry.Entry, gameOver bool) {
	game, engine := entry.Game, entry.Engine
	log := that.logger.With("method", "finish", "game_id", game.ID)

	entry.Mutate(func(g *entity.Game) {
		switch {
		case g.Status == entity.StatusIllegalMove:
			// The turn was not flipped before the loop broke, so the opponent
			// of the offender wins by forfeit.
			g.Winner = g.Opponent()
			g.Result = fmt.Sprintf("%s wins by illegal move", g.Winner)
		case gameOver:
			// Any rules-terminal state credits the last mover, stalemate
			// included. The turn already flipped after the final accepted
			// move, so the last mover is the opponent of the player now to
			// move.
			g.Status = engine.TerminalStatus()
			g.Winner = g.Opponent()
			g.Result = fmt.Sprintf("Game over: %s wins", g.Winner)
		case g.Status == entity.StatusError:
			// Unparseable responses and endpoint failures stop the game
			// without awarding a forfeit win.
			g.Result = "Game stopped due to error"
		default:
			g.Status = entity.StatusTimedOut
			g.Result = "Game stopped after maximum moves"
		}
	})

	responses := make(map[string]string, len(game.MoveLog))
	reasonings := make(map[string]string, len(game.MoveLog))
	for i, record := range game.MoveLog {
		key := strconv.Itoa(i)
		responses[key] = record.Response
		reasonings[key] = record.Reasoning
	}

	that.bus.Publish(game.ID, eventbus.EventGameOver, map[string]any{
		"result":     game.Result,
		"moves":      game.MoveTokens(),
		"responses":  responses,
		"reasonings": reasonings,
		"finalFen":   engine.FEN(),
	})

	that.saveSnapshot(ctx, game)
	log.Info("game finished", "status", game.Status, "result", game.Result)
}

// saveSnapshot - archives the game state, best effort.
func (that *Orchestrator) saveSnapshot(ctx context.Context, game *entity.Game) {
	if that.repo == nil {
		return
	}

	if err := that.repo.CreateOrUpdate(ctx, game); err != nil {
		that.logger.Error("failed to archive game snapshot", "game_id", game.ID, "error", err)
	}
}

func (that *Orchestrator) pause(ctx context.Context) {
	if that.settings.StartDelay <= 0 {
		return
	}

	select {
	case <-time.After(that.settings.StartDelay.Std()):
	case <-ctx.Done():
	}
}
