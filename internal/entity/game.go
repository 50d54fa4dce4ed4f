package entity

import (
	"time"
)

const (
	StatusInProgress  = "in_progress"
	StatusCheckmate   = "checkmate"
	StatusStalemate   = "stalemate"
	StatusDraw        = "draw"
	StatusIllegalMove = "illegal_move"
	StatusError       = "error"
	StatusTimedOut    = "timed_out"
)

// MoveRecord is a single accepted ply. Rejected attempts are never recorded
// here, they only appear on the event stream.
type MoveRecord struct {
	Player        string    `json:"player"`
	Move          string    `json:"move"`
	Reasoning     string    `json:"reasoning"`
	Response      string    `json:"response"`
	PositionAfter string    `json:"position_after"`
	Timestamp     time.Time `json:"timestamp"`
}

// Game represents one orchestrated match between two players.
type Game struct {
	ID                 string       `json:"id"`
	Players            []string     `json:"players"`
	Status             string       `json:"status"`
	Winner             string       `json:"winner,omitempty"`
	Result             string       `json:"result,omitempty"`
	CurrentPlayerIndex int          `json:"current_player_index"`
	MoveLog            []MoveRecord `json:"move_log"`
	MoveCounter        int          `json:"move_counter"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func NewGame(id string, players []string) *Game {
	now := time.Now()

	return &Game{
		ID:        id,
		Players:   players,
		Status:    StatusInProgress,
		MoveLog:   []MoveRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Game) CurrentPlayer() string {
	return that.Players[that.CurrentPlayerIndex]
}

func (that *Game) Opponent() string {
	return that.Players[(that.CurrentPlayerIndex+1)%2]
}

// AdvanceTurn - flips the turn to the other player.
func (that *Game) AdvanceTurn() {
	that.CurrentPlayerIndex = (that.CurrentPlayerIndex + 1) % 2
}

// MoveTokens - returns the accepted move tokens in play order.
func (that *Game) MoveTokens() []string {
	tokens := make([]string, 0, len(that.MoveLog))
	for _, record := range that.MoveLog {
		tokens = append(tokens, record.Move)
	}

	return tokens
}

func (that *Game) RecordMove(record MoveRecord) {
	that.MoveLog = append(that.MoveLog, record)
	that.UpdatedAt = time.Now()
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsTerminal() bool {
	return !that.IsInProgress()
}

// Summary - returns the listing view of the game.
func (that *Game) Summary() GameSummary {
	return GameSummary{
		ID:         that.ID,
		Players:    that.Players,
		Status:     that.Status,
		MovesCount: len(that.MoveLog),
		Winner:     that.Winner,
		CreatedAt:  that.CreatedAt,
	}
}

// GameSummary is the listing view of a game.
type GameSummary struct {
	ID         string    `json:"id"`
	Players    []string  `json:"players"`
	Status     string    `json:"status"`
	MovesCount int       `json:"moves_count"`
	Winner     string    `json:"winner,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
