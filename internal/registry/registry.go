package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/llmarena/chessmatch-backend/internal/apperror"
	"github.com/llmarena/chessmatch-backend/internal/entity"
	"github.com/llmarena/chessmatch-backend/internal/rules"
)

// Entry couples a game with its own rules engine instance. Engines are never
// shared between games, so simultaneous matches cannot leak position state
// into each other.
//
// Game state is written by the orchestrator goroutine while listing reads it
// from request goroutines, so writes go through Mutate and summaries are
// taken under the same lock.
type Entry struct {
	mu     sync.RWMutex
	Game   *entity.Game
	Engine *rules.Engine
}

// Mutate - runs fn with exclusive access to the game state.
func (that *Entry) Mutate(fn func(*entity.Game)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fn(that.Game)
}

// Summary - snapshots the game for listing.
func (that *Entry) Summary() entity.GameSummary {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.Game.Summary()
}

// Registry is the process-wide index of active and finished games,
// constructed once at startup and injected wherever per-game state is
// needed.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*Entry
}

func New() *Registry {
	return &Registry{games: make(map[string]*Entry)}
}

// Create - mints a new game with a fresh rules engine.
func (that *Registry) Create(players []string) (*Entry, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrTwoPlayersExact, len(players))
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	entry := &Entry{
		Game:   entity.NewGame(uuid.NewString(), players),
		Engine: rules.NewEngine(),
	}
	that.games[entry.Game.ID] = entry

	return entry, nil
}

func (that *Registry) Get(id string) (*Entry, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return entry, nil
}

// Exists - reports whether a game id is known to the registry.
func (that *Registry) Exists(id string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.games[id]
	return ok
}

// List - returns summaries of every known game, finished ones included.
func (that *Registry) List() []entity.GameSummary {
	that.mu.RLock()
	defer that.mu.RUnlock()

	summaries := make([]entity.GameSummary, 0, len(that.games))
	for _, entry := range that.games {
		summaries = append(summaries, entry.Summary())
	}

	return summaries
}

func (that *Registry) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)
}
