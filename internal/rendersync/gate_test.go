package rendersync

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGate() *Gate {
	return New(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestGate_AwaitRender(t *testing.T) {
	t.Run("Returns immediately when not in a waiting state", func(t *testing.T) {
		// Given: a gate that was never marked waiting
		gate := newTestGate()

		// When: awaiting a render
		start := time.Now()
		gate.AwaitRender(context.Background(), "g1", 1, time.Second)

		// Then: the call does not block
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("Returns immediately when the move was already acknowledged", func(t *testing.T) {
		// Given: a waiting gate whose move is already rendered
		gate := newTestGate()
		gate.Acknowledge("g1", 3)
		gate.MarkWaiting("g1")

		start := time.Now()
		gate.AwaitRender(context.Background(), "g1", 2, time.Second)

		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("Times out within the bound and clears the waiting flag", func(t *testing.T) {
		// Given: a waiting gate with no acknowledgment coming
		gate := newTestGate()
		gate.MarkWaiting("g1")

		// When: awaiting with a 50ms timeout
		start := time.Now()
		gate.AwaitRender(context.Background(), "g1", 1, 50*time.Millisecond)
		elapsed := time.Since(start)

		// Then: the wait is abandoned within ~50-150ms and the flag is cleared
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 150*time.Millisecond)
		assert.False(t, gate.IsWaiting("g1"))
	})

	t.Run("An acknowledgment releases the waiter", func(t *testing.T) {
		// Given: a blocked waiter
		gate := newTestGate()
		gate.MarkWaiting("g1")

		done := make(chan struct{})
		go func() {
			gate.AwaitRender(context.Background(), "g1", 1, 5*time.Second)
			close(done)
		}()

		// When: the render layer acknowledges the move
		time.Sleep(20 * time.Millisecond)
		gate.Acknowledge("g1", 1)

		// Then: the waiter returns well before its timeout
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("waiter was not released by the acknowledgment")
		}
	})

	t.Run("Context cancellation unblocks the waiter", func(t *testing.T) {
		gate := newTestGate()
		gate.MarkWaiting("g1")

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			gate.AwaitRender(ctx, "g1", 1, 5*time.Second)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("waiter was not released by cancellation")
		}
		assert.False(t, gate.IsWaiting("g1"))
	})
}

func TestGate_Acknowledge(t *testing.T) {
	t.Run("Stale acknowledgments never regress the counter", func(t *testing.T) {
		// Given: acknowledgments arriving out of order
		gate := newTestGate()
		gate.Acknowledge("g1", 5)
		gate.Acknowledge("g1", 3)

		// Then: the highest value wins
		assert.Equal(t, 5, gate.LastCompletedMove("g1"))
	})

	t.Run("Concurrent out of order acknowledgments settle on the maximum", func(t *testing.T) {
		// Given: concurrent acknowledgment calls for the same game
		gate := newTestGate()

		var wg sync.WaitGroup
		for _, count := range []int{3, 5, 4, 1, 2} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				gate.Acknowledge("g1", count)
			}()
		}
		wg.Wait()

		// Then: the last completed move is 5, never a lower value
		assert.Equal(t, 5, gate.LastCompletedMove("g1"))
	})

	t.Run("Games have independent render states", func(t *testing.T) {
		gate := newTestGate()
		gate.Acknowledge("g1", 7)

		assert.Equal(t, 0, gate.LastCompletedMove("g2"))
	})
}
