package eventbus

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	EventConnectionTest = "connection-test"
	EventGameStart      = "game-start"
	EventThinking       = "thinking"
	EventResponse       = "response"
	EventReasoning      = "reasoning"
	EventMove           = "move"
	EventIllegalMove    = "illegal-move"
	EventError          = "error"
	EventGameOver       = "game-over"
)

// fallbackPayload replaces event data that failed to serialize so the stream
// is never broken by a malformed frame.
const fallbackPayload = `{"error":"Failed to format event data","parseError":true}`

const emptyPayload = `{"empty":true}`

const subscriberBuffer = 64

// Event is one immutable frame of a game's stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type topic struct {
	history []Event
	subs    map[int]chan Event
	nextID  int
	closed  bool
}

// Bus fans typed game events out to subscribers. Events of one game are
// delivered to every subscriber in publish order, at most once each; a
// subscriber that cannot keep up is disconnected rather than skipped.
type Bus struct {
	logger *slog.Logger

	mu     sync.Mutex
	topics map[string]*topic
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger.With("component", "eventbus"),
		topics: make(map[string]*topic),
	}
}

// Publish - appends an event to the game's stream and fans it out. The
// game-over event is terminal: it closes the stream for every subscriber.
func (that *Bus) Publish(gameID, eventType string, payload any) {
	event := Event{Type: eventType, Data: marshalPayload(payload)}

	that.mu.Lock()
	defer that.mu.Unlock()

	currentTopic := that.topic(gameID)
	if currentTopic.closed {
		that.logger.Warn("publish on closed stream dropped", "game_id", gameID, "event", eventType)
		return
	}

	currentTopic.history = append(currentTopic.history, event)

	for id, ch := range currentTopic.subs {
		select {
		case ch <- event:
		default:
			// Slow subscriber: disconnecting keeps delivered events ordered
			// and duplicate free instead of silently dropping frames.
			that.logger.Warn("disconnecting slow subscriber", "game_id", gameID)
			close(ch)
			delete(currentTopic.subs, id)
		}
	}

	if eventType == EventGameOver {
		currentTopic.closed = true
		for id, ch := range currentTopic.subs {
			close(ch)
			delete(currentTopic.subs, id)
		}
	}
}

// Subscribe - returns an ordered stream of the game's events, starting with
// a replay of everything already published. The channel is closed after the
// terminal event or when the cancel function is called.
func (that *Bus) Subscribe(gameID string) (<-chan Event, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	currentTopic := that.topic(gameID)

	ch := make(chan Event, len(currentTopic.history)+subscriberBuffer)
	for _, event := range currentTopic.history {
		ch <- event
	}

	if currentTopic.closed {
		close(ch)
		return ch, func() {}
	}

	id := currentTopic.nextID
	currentTopic.nextID++
	currentTopic.subs[id] = ch

	cancel := func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if sub, ok := currentTopic.subs[id]; ok {
			close(sub)
			delete(currentTopic.subs, id)
		}
	}

	return ch, cancel
}

// topic - must be called with the mutex held.
func (that *Bus) topic(gameID string) *topic {
	existing, ok := that.topics[gameID]
	if !ok {
		existing = &topic{subs: make(map[int]chan Event)}
		that.topics[gameID] = existing
	}

	return existing
}

func marshalPayload(payload any) json.RawMessage {
	if payload == nil {
		return json.RawMessage(emptyPayload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage(fallbackPayload)
	}

	return data
}
