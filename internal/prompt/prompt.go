package prompt

import (
	"fmt"
	"strings"
)

// ReasoningMarker introduces the free-text justification section the players
// are asked to append after their move.
const ReasoningMarker = "Reasoning:"

const defaultPlayerName = "Player"

const responseFormat = `First provide your move, then on a new line after "` +
	ReasoningMarker + `" explain why you're making this move and your strategic thinking. ` +
	`Your response will have two parts: 1) The move itself 2) Your reasoning.`

// Build - builds the next-move prompt for a player from the accepted move
// history. An empty history asks for an opening move.
func Build(moves []string, playerName string) string {
	if playerName == "" {
		playerName = defaultPlayerName
	}

	if len(moves) == 0 {
		return fmt.Sprintf("You are %s. Suggest a strong opening move in chess. %s", playerName, responseFormat)
	}

	return fmt.Sprintf("You are %s. Given the chess moves so far: %s, suggest the next chess move. %s",
		playerName, strings.Join(moves, ", "), responseFormat)
}
