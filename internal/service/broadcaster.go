package service

import (
	"bigbrain/internal/model"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAdmin(sessionID string, msgType string, payload interface{})
	BroadcastToPlayer(sessionID, playerID string, msgType string, payload interface{})
	BroadcastToAllPlayers(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// EventPublisher delivers events to an external queue
type EventPublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// publishBuffer is how many events may wait for the publisher
const publishBuffer = 256

// Notifier fans session events out to the optional broadcaster and publisher.
// Publishing runs on its own goroutine so a slow broker never delays a request.
type Notifier struct {
	broadcaster Broadcaster
	publisher   EventPublisher
	queue       string
	log         zerolog.Logger

	mu     sync.RWMutex
	outbox chan model.SessionEvent
	done   chan struct{}
	closed bool
}

// NewNotifier creates a notifier with no sinks
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{log: log}
}

// SetBroadcaster injects the WebSocket hub
func (n *Notifier) SetBroadcaster(b Broadcaster) {
	n.broadcaster = b
}

// SetPublisher injects a queue publisher and the queue to publish to
func (n *Notifier) SetPublisher(p EventPublisher, queue string) {
	n.publisher = p
	n.queue = queue
	n.outbox = make(chan model.SessionEvent, publishBuffer)
	n.done = make(chan struct{})
	go n.publishLoop()
}

// Close flushes queued events to the publisher and stops publishing
func (n *Notifier) Close() {
	if n == nil || n.outbox == nil {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.outbox)
	n.mu.Unlock()
	<-n.done
}

// Emit delivers ev to every configured sink. Safe on a nil Notifier.
func (n *Notifier) Emit(ev model.SessionEvent) {
	if n == nil {
		return
	}
	if n.broadcaster != nil {
		n.broadcaster.BroadcastToAdmin(ev.SessionID, string(ev.Type), ev)
		if ev.Type != model.EventPlayerJoined {
			n.broadcaster.BroadcastToAllPlayers(ev.SessionID, string(ev.Type), ev)
		}
		if ev.Type == model.EventSessionEnded {
			n.broadcaster.DisconnectSession(ev.SessionID)
		}
	}
	if n.outbox == nil {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.outbox <- ev:
	default:
		n.log.Warn().Str("type", string(ev.Type)).Str("session", ev.SessionID).Msg("publish queue full, dropping session event")
	}
}

func (n *Notifier) publishLoop() {
	defer close(n.done)
	for ev := range n.outbox {
		n.publish(ev)
	}
}

func (n *Notifier) publish(ev model.SessionEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Msg("failed to encode session event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.publisher.Publish(ctx, n.queue, body); err != nil {
		n.log.Warn().Err(err).Str("type", string(ev.Type)).Str("session", ev.SessionID).Msg("failed to publish session event")
	}
}
