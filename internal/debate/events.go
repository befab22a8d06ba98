package debate

import (
	"sync"

	"github.com/neo/rapbattle_backend/internal/audio"
	"github.com/neo/rapbattle_backend/internal/judge"
	"github.com/neo/rapbattle_backend/internal/types"
)

// Snapshot is an immutable value describing a session's observable state.
// Clients only ever see snapshots, never live session state.
type Snapshot struct {
	SessionID        string       `json:"session_id"`
	Pro              string       `json:"pro"`
	Con              string       `json:"con"`
	Topic            types.Topic  `json:"topic"`
	Phase            types.Phase  `json:"phase"`
	CurrentTurn      int          `json:"current_turn"`
	TotalTurns       int          `json:"total_turns"`
	IsProTurn        bool         `json:"is_pro_turn"`
	CurrentTurnText  string       `json:"current_turn_text,omitempty"`
	CurrentTurnAudio *audio.Clip  `json:"current_turn_audio,omitempty"`
	History          []string     `json:"history"`
	Winner           string       `json:"winner,omitempty"`
	Reasoning        string       `json:"reasoning,omitempty"`
	Rubric           *judge.Rubric `json:"rubric,omitempty"`
	ErrorMessage     string       `json:"error_message,omitempty"`
}

// snapshotBuffer caps the number of undelivered snapshots per session.
const snapshotBuffer = 4

// EventChannel is a per-session ordered stream of snapshots. When the
// client falls behind, the oldest non-terminal snapshot is dropped; the
// latest snapshot and any terminal snapshot are never dropped. The
// channel closes after the terminal snapshot is delivered.
type EventChannel struct {
	mu      sync.Mutex
	queue   []Snapshot
	closing bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
	out    chan Snapshot
}

func newEventChannel() *EventChannel {
	ec := &EventChannel{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Snapshot),
	}
	go ec.pump()
	return ec
}

// C is the stream clients receive snapshots on.
func (ec *EventChannel) C() <-chan Snapshot {
	return ec.out
}

// publish enqueues a snapshot, applying the drop policy when full. A
// terminal snapshot marks the channel for closure once drained.
func (ec *EventChannel) publish(s Snapshot) {
	ec.mu.Lock()
	if ec.closing {
		ec.mu.Unlock()
		return
	}

	if len(ec.queue) >= snapshotBuffer {
		for i := 0; i < len(ec.queue)-1; i++ {
			if !ec.queue[i].Phase.Terminal() {
				ec.queue = append(ec.queue[:i], ec.queue[i+1:]...)
				break
			}
		}
	}
	ec.queue = append(ec.queue, s)
	if s.Phase.Terminal() {
		ec.closing = true
	}
	ec.mu.Unlock()

	select {
	case ec.notify <- struct{}{}:
	default:
	}
}

// abort tears the channel down without waiting for the client to drain
// it. Used on registry disposal of sessions nobody is reading.
func (ec *EventChannel) abort() {
	ec.once.Do(func() { close(ec.done) })
}

func (ec *EventChannel) pump() {
	defer close(ec.out)
	for {
		ec.mu.Lock()
		if len(ec.queue) == 0 {
			closing := ec.closing
			ec.mu.Unlock()
			if closing {
				return
			}
			select {
			case <-ec.notify:
				continue
			case <-ec.done:
				return
			}
		}
		s := ec.queue[0]
		ec.queue = ec.queue[1:]
		ec.mu.Unlock()

		select {
		case ec.out <- s:
		case <-ec.done:
			return
		}
	}
}
