package rendersync

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type gateState struct {
	lastCompletedMove int
	waiting           bool
	notify            chan struct{}
}

// Gate paces the game loop to an observer's rendering progress. The
// orchestrator declares it will wait, the render layer acknowledges rendered
// moves, and AwaitRender blocks with a hard upper bound so the loop can
// never deadlock on a missing observer.
//
// Gate state is created lazily per game and lives for the process lifetime.
type Gate struct {
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]*gateState
}

func New(logger *slog.Logger) *Gate {
	return &Gate{
		logger: logger.With("component", "rendersync"),
		states: make(map[string]*gateState),
	}
}

// MarkWaiting - declares that the orchestrator will block until the next
// acknowledgment for this game.
func (that *Gate) MarkWaiting(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state(gameID).waiting = true
}

// Acknowledge - records that the observer has finished rendering up to
// moveCount. Counts at or below the last-known value are a no-op, so the
// rendered position can never regress.
func (that *Gate) Acknowledge(gameID string, moveCount int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	state := that.state(gameID)
	if moveCount <= state.lastCompletedMove {
		return
	}

	state.lastCompletedMove = moveCount
	state.waiting = false
	close(state.notify)
	state.notify = make(chan struct{})
}

// AwaitRender - blocks until the gate is not waiting, the acknowledged move
// number reaches moveNumber, or timeout elapses. A timed-out wait clears the
// waiting flag and returns normally.
func (that *Gate) AwaitRender(ctx context.Context, gameID string, moveNumber int, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		that.mu.Lock()
		state := that.state(gameID)
		if !state.waiting || state.lastCompletedMove >= moveNumber {
			that.mu.Unlock()
			return
		}
		notify := state.notify
		that.mu.Unlock()

		select {
		case <-notify:
		case <-deadline.C:
			that.logger.Warn("timed out waiting for render acknowledgment", "game_id", gameID, "move", moveNumber)
			that.clearWaiting(gameID)
			return
		case <-ctx.Done():
			that.clearWaiting(gameID)
			return
		}
	}
}

// LastCompletedMove - returns the highest acknowledged move number.
func (that *Gate) LastCompletedMove(gameID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state(gameID).lastCompletedMove
}

// IsWaiting - reports whether the orchestrator is blocked on this game.
func (that *Gate) IsWaiting(gameID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state(gameID).waiting
}

func (that *Gate) clearWaiting(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state(gameID).waiting = false
}

// state - must be called with the mutex held.
func (that *Gate) state(gameID string) *gateState {
	existing, ok := that.states[gameID]
	if !ok {
		existing = &gateState{notify: make(chan struct{})}
		that.states[gameID] = existing
	}

	return existing
}
