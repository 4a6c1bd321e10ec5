// Package game runs one timed play-through: a shuffled queue of content items
// judged authentic-or-generated against a countdown, with streak scoring and a
// qualification-gated bonus round.
package game

import (
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/internal/random"
	"log/slog"
	"sync"
	"time"
)

// State is the phase of a session.
type State string

const (
	StateRunning State = "running"
	StateBonus   State = "bonus"
	StateEnded   State = "ended"
)

const (
	basePoints         = 100
	doubleStreak       = 3
	quadStreak         = 7
	bonusQualifyStreak = 5
	bonusPoints        = 1000
	bonusSeconds       = 10
	// presentationDelay is the feedback pause after an answer before the next
	// item is shown. It is a display concern, not a scoring rule.
	presentationDelay = 1500 * time.Millisecond
)

// Answer is the immutable outcome of one round. Answers are appended in
// submission order and never reordered.
type Answer struct {
	ItemID           string
	GuessedAuthentic bool
	Correct          bool
	Points           int
}

// Config carries the per-session parameters. InitialStreak and ForceBonus are
// debug knobs for manual verification and bypass normal qualification.
type Config struct {
	Duration      time.Duration
	InitialStreak int
	ForceBonus    bool
	// OnEnd is invoked exactly once with the final ordered answer log when
	// the session reaches its natural end. Abandoned sessions never fire it.
	OnEnd func(answers []Answer)
	// OnTick observes the main countdown once per second, for live clock
	// displays. Optional.
	OnTick func(remaining int)
	// OnBonus observes the bonus countdown: once with the full window when
	// the session enters the bonus round, then once per second. Optional.
	OnBonus func(remaining int)
}

// bonusState is the sub-state of the two-item bonus round.
type bonusState struct {
	// choices in display order, one authentic and one generated.
	choices [2]content.Item
	// generatedID identifies the only winning selection.
	generatedID string
	remaining   int
	resolved    bool
	won         bool
	timer       clock.Timer
}

// Session is the controller for one game. All transitions happen under one
// mutex; timer callbacks re-check state so a stale fire against a superseded
// session is a no-op.
type Session struct {
	mu     sync.Mutex
	clk    clock.Clock
	rnd    random.Source
	logger *slog.Logger
	cfg    Config

	items      []content.Item
	idx        int
	remaining  int
	score      int
	streak     int
	qualified  bool
	attempted  bool
	processing bool
	state      State
	ended      bool
	answers    []Answer
	bonus      *bonusState

	tickTimer    clock.Timer
	advanceTimer clock.Timer
}

// New starts a session over the given items. The queue is shuffled through
// the injected random source before play begins.
func New(clk clock.Clock, rnd random.Source, logger *slog.Logger, items []content.Item, cfg Config) (*Session, error) {
	if len(items) == 0 {
		return nil, errors.New("session needs at least one item")
	}
	if cfg.Duration <= 0 {
		return nil, errors.New("session needs a positive duration")
	}

	queue := make([]content.Item, len(items))
	copy(queue, items)
	rnd.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	s := &Session{
		clk:       clk,
		rnd:       rnd,
		logger:    logger.With("source", "GameSession"),
		cfg:       cfg,
		items:     queue,
		remaining: int(cfg.Duration / time.Second),
		streak:    cfg.InitialStreak,
		qualified: cfg.InitialStreak >= bonusQualifyStreak,
		state:     StateRunning,
	}

	var fire func()
	s.mu.Lock()
	if cfg.ForceBonus {
		s.qualified = true
		s.enterBonusLocked()
		fire = s.observeBonusLocked(bonusSeconds)
	} else {
		s.scheduleTickLocked()
	}
	s.mu.Unlock()
	if fire != nil {
		fire()
	}

	return s, nil
}

func multiplier(streak int) int {
	switch {
	case streak >= quadStreak:
		return 4
	case streak >= doubleStreak:
		return 2
	default:
		return 1
	}
}

// SubmitAnswer records the player's judgment of the current item. Calls are
// ignored outside the running state and while a prior answer is still being
// presented, so duplicate submissions can never double-score a round.
func (s *Session) SubmitAnswer(guessedAuthentic bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.processing || s.idx >= len(s.items) {
		return
	}

	item := s.items[s.idx]
	answer := Answer{
		ItemID:           item.ID,
		GuessedAuthentic: guessedAuthentic,
	}
	if guessedAuthentic == item.Authentic {
		s.streak++
		if s.streak >= bonusQualifyStreak {
			// Qualification latches for the rest of the session.
			s.qualified = true
		}
		answer.Correct = true
		answer.Points = basePoints * multiplier(s.streak)
		s.score += answer.Points
	} else {
		s.streak = 0
	}
	s.answers = append(s.answers, answer)

	s.processing = true
	s.advanceTimer = s.clk.AfterFunc(presentationDelay, s.advance)
}

// advance moves to the next item after the presentation pause. On the last
// item it forces the clock to zero so the end evaluation runs.
func (s *Session) advance() {
	s.mu.Lock()
	var fire func()
	if s.state == StateRunning && !s.ended {
		s.processing = false
		if s.idx+1 < len(s.items) {
			s.idx++
		} else {
			s.remaining = 0
			fire = s.evaluateEndLocked()
		}
	}
	s.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (s *Session) scheduleTickLocked() {
	s.tickTimer = s.clk.AfterFunc(time.Second, s.onTick)
}

// onTick decrements the main countdown. It runs only in the running state;
// the clock keeps advancing in real time regardless of any in-flight
// presentation pause or asynchronous import/export work.
func (s *Session) onTick() {
	s.mu.Lock()
	if s.state != StateRunning || s.ended {
		s.mu.Unlock()
		return
	}
	s.remaining--
	remaining := s.remaining
	observe := s.cfg.OnTick

	var fire func()
	if s.remaining <= 0 {
		fire = s.evaluateEndLocked()
	} else {
		s.scheduleTickLocked()
	}
	s.mu.Unlock()

	if observe != nil {
		observe(remaining)
	}
	if fire != nil {
		fire()
	}
}

// evaluateEndLocked decides between the bonus round and the end of the
// session when the main clock runs out. It returns the end callback to be
// invoked after the mutex is released, or nil.
func (s *Session) evaluateEndLocked() func() {
	if s.qualified && !s.attempted && s.hasBothKindsLocked() {
		s.enterBonusLocked()
		return s.observeBonusLocked(bonusSeconds)
	}
	return s.endLocked()
}

func (s *Session) hasBothKindsLocked() bool {
	var authentic, generated bool
	for _, item := range s.items {
		if item.Authentic {
			authentic = true
		} else {
			generated = true
		}
	}
	return authentic && generated
}

// enterBonusLocked starts the two-item bonus round: one authentic and one
// generated item from the session pool, shown in random order under an
// independent countdown.
func (s *Session) enterBonusLocked() {
	s.attempted = true
	s.state = StateBonus
	if s.tickTimer != nil {
		s.tickTimer.Stop()
	}

	authentic := s.pickLocked(true)
	generated := s.pickLocked(false)
	choices := [2]content.Item{authentic, generated}
	if s.rnd.IntN(2) == 1 {
		choices[0], choices[1] = choices[1], choices[0]
	}

	s.bonus = &bonusState{
		choices:     choices,
		generatedID: generated.ID,
		remaining:   bonusSeconds,
	}
	s.bonus.timer = s.clk.AfterFunc(time.Second, s.onBonusTick)
}

// pickLocked picks a random item with the wanted authenticity, falling back
// to any item when the pool has none.
func (s *Session) pickLocked(authentic bool) content.Item {
	var pool []content.Item
	for _, item := range s.items {
		if item.Authentic == authentic {
			pool = append(pool, item)
		}
	}
	if len(pool) == 0 {
		pool = s.items
	}
	return pool[s.rnd.IntN(len(pool))]
}

// observeBonusLocked returns the OnBonus invocation for the given countdown
// value, to be run after the mutex is released, or nil.
func (s *Session) observeBonusLocked(remaining int) func() {
	observe := s.cfg.OnBonus
	if observe == nil {
		return nil
	}
	return func() {
		observe(remaining)
	}
}

// onBonusTick decrements the bonus countdown. Expiry without a selection
// forces a failure outcome with no answer record.
func (s *Session) onBonusTick() {
	s.mu.Lock()
	if s.state != StateBonus || s.ended || s.bonus == nil {
		s.mu.Unlock()
		return
	}
	s.bonus.remaining--
	remaining := s.bonus.remaining
	if remaining > 0 {
		s.bonus.timer = s.clk.AfterFunc(time.Second, s.onBonusTick)
	} else if !s.bonus.resolved {
		s.bonus.resolved = true
		s.bonus.won = false
	}
	fire := s.observeBonusLocked(remaining)
	s.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// SubmitBonusAnswer selects one of the two displayed items. Only selecting
// the generated item succeeds. The result is set at most once; later calls
// and the tick racing a click are no-ops.
func (s *Session) SubmitBonusAnswer(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBonus || s.bonus == nil || s.bonus.resolved {
		return
	}
	if itemID != s.bonus.choices[0].ID && itemID != s.bonus.choices[1].ID {
		return
	}

	s.bonus.resolved = true
	s.bonus.won = itemID == s.bonus.generatedID
	if s.bonus.timer != nil {
		s.bonus.timer.Stop()
	}

	answer := Answer{
		ItemID:           itemID,
		GuessedAuthentic: false,
	}
	if s.bonus.won {
		answer.Correct = true
		answer.Points = bonusPoints
		s.score += bonusPoints
	}
	s.answers = append(s.answers, answer)
}

// Finish ends the session after a bonus result has been set. The bonus round
// never transitions to ended on its own; the caller advances explicitly.
func (s *Session) Finish() {
	s.mu.Lock()
	var fire func()
	if s.state == StateBonus && s.bonus != nil && s.bonus.resolved {
		fire = s.endLocked()
	}
	s.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Abandon tears the session down without emitting the end callback. All
// pending timers are cancelled so stale callbacks cannot mutate a superseded
// session.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.state = StateEnded
	s.stopTimersLocked()
}

// endLocked transitions to ended and returns the OnEnd invocation, to be run
// after the mutex is released.
func (s *Session) endLocked() func() {
	if s.ended {
		return nil
	}
	s.ended = true
	s.state = StateEnded
	s.stopTimersLocked()

	callback := s.cfg.OnEnd
	if callback == nil {
		return nil
	}
	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)
	return func() {
		callback(answers)
	}
}

func (s *Session) stopTimersLocked() {
	if s.tickTimer != nil {
		s.tickTimer.Stop()
	}
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
	}
	if s.bonus != nil && s.bonus.timer != nil {
		s.bonus.timer.Stop()
	}
}
