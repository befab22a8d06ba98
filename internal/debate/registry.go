package debate

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neo/rapbattle_backend/internal/audio"
	"github.com/neo/rapbattle_backend/internal/llm"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/neo/rapbattle_backend/internal/persona"
	"github.com/neo/rapbattle_backend/internal/types"
)

// Registry tracks live debate sessions by opaque ID and disposes of
// terminal sessions after a TTL.
type Registry struct {
	llm    llm.Client
	tts    audio.Synthesizer
	store  persona.Store
	voices *audio.VoiceTable
	cfg    Config
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[string]*Orchestrator

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRegistry creates a registry wiring new sessions to the shared
// collaborators. ttl governs how long terminal sessions linger.
func NewRegistry(llmClient llm.Client, tts audio.Synthesizer, store persona.Store, voices *audio.VoiceTable, cfg Config, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Registry{
		llm:      llmClient,
		tts:      tts,
		store:    store,
		voices:   voices,
		cfg:      cfg,
		ttl:      ttl,
		sessions: make(map[string]*Orchestrator),
		stop:     make(chan struct{}),
	}
}

// StartDebate creates a session, starts the debate and returns the
// session ID together with its event stream.
func (r *Registry) StartDebate(pro, con string, topic types.Topic) (string, *EventChannel, error) {
	id := uuid.New().String()
	orch := NewOrchestrator(id, r.llm, r.tts, r.store, r.voices, r.cfg)

	events, err := orch.StartDebate(pro, con, topic)
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	r.sessions[id] = orch
	r.mu.Unlock()

	logging.LogBattleEvent("session_registered", id, map[string]interface{}{
		"pro": pro,
		"con": con,
	})
	return id, events, nil
}

// Get returns the orchestrator for a session ID.
func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orch, ok := r.sessions[id]
	return orch, ok
}

// AckAudio forwards a playback ack to the session.
func (r *Registry) AckAudio(id string) error {
	orch, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	orch.AckAudio()
	return nil
}

// Cancel forwards a cancellation to the session. Unknown IDs are a no-op
// so the call stays idempotent across disposal.
func (r *Registry) Cancel(id string) {
	if orch, ok := r.Get(id); ok {
		orch.Cancel()
	}
}

// Remove cancels and forgets a session immediately.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	orch, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		orch.Cancel()
		if events := orch.Events(); events != nil {
			events.abort()
		}
		logging.LogBattleEvent("session_removed", id, nil)
	}
}

// StartPeriodicCleanup sweeps expired terminal sessions until Close.
func (r *Registry) StartPeriodicCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.CleanupExpired()
			case <-r.stop:
				return
			}
		}
	}()
}

// CleanupExpired removes sessions that have been terminal longer than
// the TTL.
func (r *Registry) CleanupExpired() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []string
	for id, orch := range r.sessions {
		if at, terminal := orch.TerminalSince(); terminal && at.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.Remove(id)
	}
}

// Close cancels every session and stops the cleanup loop.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Remove(id)
	}
}
