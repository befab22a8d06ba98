package debate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neo/rapbattle_backend/internal/audio"
	"github.com/neo/rapbattle_backend/internal/judge"
	"github.com/neo/rapbattle_backend/internal/llm"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/neo/rapbattle_backend/internal/persona"
	"github.com/neo/rapbattle_backend/internal/prompt"
	"github.com/neo/rapbattle_backend/internal/types"
)

// Config tunes one orchestrator. Zero values fall back to defaults.
type Config struct {
	TotalTurns       int
	MaxTurnChars     int
	Temperature      float64
	JudgeTemperature float64
	LLMTimeout       time.Duration
	TTSTimeout       time.Duration
	NoAudioGrace     time.Duration
}

// DefaultConfig returns the standard three-round battle configuration.
func DefaultConfig() Config {
	return Config{
		TotalTurns:       prompt.TotalTurns,
		MaxTurnChars:     400,
		Temperature:      0.9,
		JudgeTemperature: 0.2,
		LLMTimeout:       60 * time.Second,
		TTSTimeout:       30 * time.Second,
		NoAudioGrace:     time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TotalTurns <= 0 {
		c.TotalTurns = d.TotalTurns
	}
	if c.MaxTurnChars <= 0 {
		c.MaxTurnChars = d.MaxTurnChars
	}
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.JudgeTemperature <= 0 {
		c.JudgeTemperature = d.JudgeTemperature
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = d.LLMTimeout
	}
	if c.TTSTimeout <= 0 {
		c.TTSTimeout = d.TTSTimeout
	}
	if c.NoAudioGrace <= 0 {
		c.NoAudioGrace = d.NoAudioGrace
	}
	return c
}

// placeholderVerse stands in for a turn whose generation permanently
// failed; the debate keeps going.
const placeholderVerse = "Yo, my mic just cut out right when I was about to spit fire… gimme the next round."

// ackGate is the one-shot rendezvous the client fulfills when audio
// playback ends.
type ackGate struct {
	once sync.Once
	ch   chan struct{}
}

func newAckGate() *ackGate {
	return &ackGate{ch: make(chan struct{})}
}

func (g *ackGate) set() {
	g.once.Do(func() { close(g.ch) })
}

// Result is the final outcome of a finished debate.
type Result struct {
	Winner    string        `json:"winner"`
	Reasoning string        `json:"reasoning"`
	Rubric    *judge.Rubric `json:"rubric,omitempty"`
}

// Orchestrator drives one debate session as a single goroutine. All
// session state is owned by that goroutine; AckAudio and Cancel are the
// only externally reachable mutations.
type Orchestrator struct {
	id     string
	llm    llm.Client
	tts    audio.Synthesizer
	store  persona.Store
	voices *audio.VoiceTable
	cfg    Config

	mu          sync.Mutex
	phase       types.Phase
	pro, con    string
	topic       types.Topic
	history     []string
	currentTurn int
	isProTurn   bool
	currentText string
	currentClip *audio.Clip
	result      *Result
	errMsg      string
	pending     *ackGate
	running     bool
	terminalAt  time.Time

	cancel     context.CancelFunc
	cancelOnce *sync.Once
	events     *EventChannel

	retries atomic.Int64
}

// NewOrchestrator wires an orchestrator to its collaborators. The debate
// does not start until StartDebate is called.
func NewOrchestrator(id string, llmClient llm.Client, tts audio.Synthesizer, store persona.Store, voices *audio.VoiceTable, cfg Config) *Orchestrator {
	return &Orchestrator{
		id:     id,
		llm:    llmClient,
		tts:    tts,
		store:  store,
		voices: voices,
		cfg:    cfg.withDefaults(),
		phase:  types.PhaseIdle,
	}
}

// ID returns the session identifier.
func (o *Orchestrator) ID() string {
	return o.id
}

// StartDebate validates the matchup and launches the debate loop. A
// session already running rejects the call; a terminal session is
// re-initialized.
func (o *Orchestrator) StartDebate(pro, con string, topic types.Topic) (*EventChannel, error) {
	if pro == con {
		return nil, fmt.Errorf("pro and con personas must differ: %s", pro)
	}
	if err := persona.ValidateName(pro); err != nil {
		return nil, err
	}
	if err := persona.ValidateName(con); err != nil {
		return nil, err
	}
	if _, err := types.NewTopic(topic.Title, topic.Description); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, fmt.Errorf("debate %s already in progress", o.id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.cancelOnce = &sync.Once{}
	o.events = newEventChannel()
	o.phase = types.PhaseIdle
	o.pro, o.con = pro, con
	o.topic = topic
	o.history = nil
	o.currentTurn = 0
	o.isProTurn = true
	o.currentText = ""
	o.currentClip = nil
	o.result = nil
	o.errMsg = ""
	o.pending = nil
	o.running = true
	o.terminalAt = time.Time{}
	events := o.events
	o.mu.Unlock()

	logging.LogBattleEvent("debate_started", o.id, map[string]interface{}{
		"pro":   pro,
		"con":   con,
		"topic": topic.Title,
	})

	o.publishSnapshot()
	go o.run(ctx)
	return events, nil
}

// Events returns the current event channel, nil before the first start.
func (o *Orchestrator) Events() *EventChannel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events
}

// AckAudio unblocks the playback rendezvous for the current turn. An ack
// arriving while no audio is pending is out of order: warned and ignored.
func (o *Orchestrator) AckAudio() {
	o.mu.Lock()
	gate := o.pending
	o.pending = nil
	o.mu.Unlock()

	if gate == nil {
		logging.Warn("Out-of-order audio ack ignored", map[string]interface{}{
			"session_id": o.id,
		})
		return
	}
	gate.set()
}

// Cancel aborts the debate. Idempotent; any in-flight external call is
// cancelled and the pending playback wait is freed.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	once := o.cancelOnce
	cancel := o.cancel
	o.mu.Unlock()
	if once == nil {
		return
	}
	once.Do(func() {
		logging.LogBattleEvent("debate_cancelled", o.id, nil)
		cancel()
	})
}

// RetryCount reports how many transient retries this session performed.
func (o *Orchestrator) RetryCount() int {
	return int(o.retries.Load())
}

// Snapshot returns a value copy of the current observable state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

// TerminalSince reports when the session reached a terminal phase.
func (o *Orchestrator) TerminalSince() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.terminalAt.IsZero() {
		return time.Time{}, false
	}
	return o.terminalAt, true
}

// snapshot builds a value copy; callers hold o.mu.
func (o *Orchestrator) snapshot() Snapshot {
	history := make([]string, len(o.history))
	copy(history, o.history)

	var rubric *judge.Rubric
	var winner, reasoning string
	if o.result != nil {
		winner = o.result.Winner
		reasoning = o.result.Reasoning
		if o.result.Rubric != nil {
			r := *o.result.Rubric
			rubric = &r
		}
	}

	return Snapshot{
		SessionID:        o.id,
		Pro:              o.pro,
		Con:              o.con,
		Topic:            o.topic,
		Phase:            o.phase,
		CurrentTurn:      o.currentTurn,
		TotalTurns:       o.cfg.TotalTurns,
		IsProTurn:        o.isProTurn,
		CurrentTurnText:  o.currentText,
		CurrentTurnAudio: o.currentClip,
		History:          history,
		Winner:           winner,
		Reasoning:        reasoning,
		Rubric:           rubric,
		ErrorMessage:     o.errMsg,
	}
}

func (o *Orchestrator) publishSnapshot() {
	o.mu.Lock()
	s := o.snapshot()
	events := o.events
	o.mu.Unlock()
	if events != nil {
		events.publish(s)
	}
}

func (o *Orchestrator) setPhase(p types.Phase) {
	o.mu.Lock()
	o.phase = p
	if p.Terminal() {
		o.terminalAt = time.Now()
		o.running = false
	}
	o.mu.Unlock()
}

// run is the debate loop. It is the sole mutator of turn state while the
// session is active.
func (o *Orchestrator) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in debate loop", map[string]interface{}{
				"session_id": o.id,
				"panic":      r,
			})
			o.mu.Lock()
			o.errMsg = fmt.Sprintf("internal error: %v", r)
			o.mu.Unlock()
			o.setPhase(types.PhaseFailed)
			o.publishSnapshot()
		}
	}()

	for {
		if ctx.Err() != nil {
			o.finishCancelled()
			return
		}

		active, opponent, isPro, turn := o.beginTurn()
		logging.LogTurnEvent("turn_started", o.id, turn, map[string]interface{}{
			"persona": active,
			"round":   prompt.Round(turn),
		})
		o.publishSnapshot()

		text, generated := o.generateTurnText(ctx, active, opponent, isPro, turn)
		if ctx.Err() != nil {
			o.finishCancelled()
			return
		}

		o.mu.Lock()
		o.currentText = text
		o.currentClip = nil
		o.mu.Unlock()

		o.setPhase(types.PhaseSynthesizingAudio)
		o.publishSnapshot()

		// A placeholder turn behaves as if synthesis returned nothing.
		var clip *audio.Clip
		if generated {
			clip = o.synthesizeTurnAudio(ctx, text, active)
			if ctx.Err() != nil {
				o.finishCancelled()
				return
			}
		}

		if clip != nil && len(clip.Data) > 0 {
			gate := newAckGate()
			o.mu.Lock()
			o.pending = gate
			o.currentClip = clip
			o.phase = types.PhaseAwaitingPlaybackAck
			o.mu.Unlock()
			o.publishSnapshot()

			select {
			case <-gate.ch:
				logging.LogTurnEvent("playback_acked", o.id, turn, nil)
			case <-ctx.Done():
				o.finishCancelled()
				return
			}
		} else {
			// Nothing for the client to play: publish the text-only
			// snapshot and advance after the grace delay.
			o.publishSnapshot()
			if err := sleepWithContext(ctx, o.cfg.NoAudioGrace); err != nil {
				o.finishCancelled()
				return
			}
		}

		if o.commitTurn(text) {
			break
		}
	}

	o.judgeDebate(ctx)
}

// beginTurn advances into GeneratingText and returns the turn's cast.
func (o *Orchestrator) beginTurn() (active, opponent string, isPro bool, turn int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = types.PhaseGeneratingText
	o.currentTurn++
	o.currentText = ""
	o.currentClip = nil
	if o.isProTurn {
		active, opponent = o.pro, o.con
	} else {
		active, opponent = o.con, o.pro
	}
	return active, opponent, o.isProTurn, o.currentTurn
}

// generateTurnText calls the LLM with retries. On permanent failure it
// returns the placeholder verse and false so synthesis is skipped.
func (o *Orchestrator) generateTurnText(ctx context.Context, active, opponent string, isPro bool, turn int) (string, bool) {
	o.mu.Lock()
	topic := o.topic
	history := make([]string, len(o.history))
	copy(history, o.history)
	o.mu.Unlock()

	system, msgs := prompt.ForTurn(active, opponent, topic, isPro, turn, o.cfg.MaxTurnChars, history)

	var text string
	err := llm.WithRetry(ctx, "turn", o.observeRetry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
		defer cancel()
		out, err := o.llm.Complete(callCtx, system, msgs, llm.Options{
			Temperature: o.cfg.Temperature,
			MaxChars:    o.cfg.MaxTurnChars,
		})
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		if llm.KindOf(err) == llm.KindCancelled {
			return "", false
		}
		logging.Error("Turn generation failed, using placeholder", map[string]interface{}{
			"session_id": o.id,
			"turn":       turn,
			"error":      err.Error(),
		})
		return placeholderVerse, false
	}

	return llm.Truncate(text, o.cfg.MaxTurnChars), true
}

// synthesizeTurnAudio calls TTS with retries. Failures degrade to a
// text-only turn; they never abort the debate.
func (o *Orchestrator) synthesizeTurnAudio(ctx context.Context, text, active string) *audio.Clip {
	voice := o.voices.VoiceFor(active)

	var clip *audio.Clip
	err := llm.WithRetry(ctx, "tts", o.observeRetry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.TTSTimeout)
		defer cancel()
		out, err := o.tts.Synthesize(callCtx, text, voice.String())
		if err != nil {
			return err
		}
		clip = out
		return nil
	})
	if err != nil {
		if llm.KindOf(err) != llm.KindCancelled {
			logging.Error("Audio synthesis failed, continuing without audio", map[string]interface{}{
				"session_id": o.id,
				"error":      err.Error(),
			})
		}
		return nil
	}
	return clip
}

// commitTurn records the spoken text and flips the speaker. Returns true
// once the final turn is committed.
func (o *Orchestrator) commitTurn(text string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, text)
	o.isProTurn = !o.isProTurn
	o.pending = nil
	return o.currentTurn >= o.cfg.TotalTurns
}

// judgeDebate runs the judge call, classifies the verdict, records the
// outcome for a real winner and publishes the final snapshot.
func (o *Orchestrator) judgeDebate(ctx context.Context) {
	o.setPhase(types.PhaseJudging)
	o.publishSnapshot()

	o.mu.Lock()
	pro, con := o.pro, o.con
	topic := o.topic
	history := make([]string, len(o.history))
	copy(history, o.history)
	o.mu.Unlock()

	system, msgs := prompt.ForJudge(pro, con, topic, history)

	var raw string
	err := llm.WithRetry(ctx, "judge", o.observeRetry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
		defer cancel()
		out, err := o.llm.Complete(callCtx, system, msgs, llm.Options{
			Temperature: o.cfg.JudgeTemperature,
		})
		if err != nil {
			return err
		}
		raw = out
		return nil
	})

	var verdict judge.Verdict
	switch {
	case err != nil && llm.KindOf(err) == llm.KindCancelled:
		o.finishCancelled()
		return
	case err != nil:
		logging.Error("Judge call failed", map[string]interface{}{
			"session_id": o.id,
			"error":      err.Error(),
		})
		verdict = judge.Verdict{
			Winner:    types.WinnerErrorJudging,
			Reasoning: "The judge was unavailable for this battle.",
		}
	default:
		verdict = judge.Parse(raw, pro, con)
	}

	if !types.IsSentinelWinner(verdict.Winner) {
		loser := con
		if verdict.Winner == con {
			loser = pro
		}
		if err := o.store.RecordOutcome(verdict.Winner, loser); err != nil {
			// Stats are best-effort; the result is still published.
			logging.Error("Failed to record outcome", map[string]interface{}{
				"session_id": o.id,
				"winner":     verdict.Winner,
				"error":      err.Error(),
			})
		}
	}

	o.mu.Lock()
	o.result = &Result{
		Winner:    verdict.Winner,
		Reasoning: verdict.Reasoning,
		Rubric:    verdict.Rubric,
	}
	o.mu.Unlock()

	logging.LogBattleEvent("debate_finished", o.id, map[string]interface{}{
		"winner": verdict.Winner,
	})

	o.setPhase(types.PhaseFinished)
	o.publishSnapshot()
}

// finishCancelled publishes the terminal cancelled snapshot. The event
// channel closes once it is delivered.
func (o *Orchestrator) finishCancelled() {
	o.mu.Lock()
	o.pending = nil
	o.currentClip = nil
	o.mu.Unlock()
	o.setPhase(types.PhaseCancelled)
	o.publishSnapshot()
}

func (o *Orchestrator) observeRetry(attempt int, err error) {
	o.retries.Add(1)
	logging.Warn("Retrying transient failure", map[string]interface{}{
		"session_id": o.id,
		"attempt":    attempt,
		"error":      err.Error(),
	})
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
