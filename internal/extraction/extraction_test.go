package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	t.Run("Extracts a plain pawn move", func(t *testing.T) {
		// Given: a response that opens with a pawn square
		response := "e4\nReasoning: controls the center"

		// When: extracting the move
		move, found := Move(response)

		// Then: the pawn square is returned
		require.True(t, found)
		assert.Equal(t, "e4", move)
	})

	t.Run("Extracts a piece move", func(t *testing.T) {
		// Given: a response with a knight move in prose
		move, found := Move("I will play Nf3 to develop my knight.")

		// Then: the piece move is found
		require.True(t, found)
		assert.Equal(t, "Nf3", move)
	})

	t.Run("Extracts a piece capture", func(t *testing.T) {
		move, found := Move("Taking the pawn with Nxe5 looks strong.")

		require.True(t, found)
		assert.Equal(t, "Nxe5", move)
	})

	t.Run("Extracts a pawn capture", func(t *testing.T) {
		move, found := Move("The capture exd5 opens the file.")

		require.True(t, found)
		assert.Equal(t, "exd5", move)
	})

	t.Run("Extracts castling", func(t *testing.T) {
		move, found := Move("Time to castle: O-O-O and the rook joins the attack.")

		require.True(t, found)
		assert.Equal(t, "O-O-O", move)
	})

	t.Run("Pawn square inside a piece token is not matched", func(t *testing.T) {
		// Given: a queen move whose destination square must not be read as a
		// standalone pawn move
		move, found := Move("Qh5")

		// Then: the piece move wins
		require.True(t, found)
		assert.Equal(t, "Qh5", move)
	})

	t.Run("Earlier pattern takes priority over later patterns", func(t *testing.T) {
		// Given: both a pawn square and a piece move in the same text
		move, found := Move("After Nf3 I expect e5 from my opponent.")

		// Then: the plain pawn-square pattern is tried first
		require.True(t, found)
		assert.Equal(t, "e5", move)
	})

	t.Run("Returns no move for unrecognizable text", func(t *testing.T) {
		// Given: a response without any move syntax
		move, found := Move("I pass")

		// Then: no move is found
		assert.False(t, found)
		assert.Empty(t, move)
	})

	t.Run("Returns no move for empty text", func(t *testing.T) {
		_, found := Move("")

		assert.False(t, found)
	})
}

func TestReasoning(t *testing.T) {
	t.Run("Returns text after the reasoning marker", func(t *testing.T) {
		// Given: a response with the marker
		response := "e4\nReasoning: controls the center"

		// When: extracting the reasoning
		reasoning := Reasoning(response)

		// Then: the trimmed marker suffix is returned
		assert.Equal(t, "controls the center", reasoning)
	})

	t.Run("Falls back to text after the move token", func(t *testing.T) {
		// Given: a response without the marker but with trailing prose
		reasoning := Reasoning("e4 because it controls the center")

		// Then: everything after the move is returned
		assert.Equal(t, "because it controls the center", reasoning)
	})

	t.Run("Falls back to the whole response when no move is found", func(t *testing.T) {
		// Given: a response with no move syntax at all
		reasoning := Reasoning("I pass")

		// Then: the literal input is returned
		assert.Equal(t, "I pass", reasoning)
	})

	t.Run("Falls back to the whole response when nothing follows the move", func(t *testing.T) {
		reasoning := Reasoning("e4")

		assert.Equal(t, "e4", reasoning)
	})
}
