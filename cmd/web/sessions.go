package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/spotfake/internal/broker"
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/game"
	"github.com/myrjola/spotfake/internal/idle"
	"github.com/myrjola/spotfake/internal/random"
)

const gameIDSessionKey = "gameID"

// tickEvent is pushed to the SSE stream on every countdown tick and state
// change. The client re-fetches the game view when the state changes.
type tickEvent struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining"`
}

const (
	eventStateWarning = "warning"
	eventStateExpired = "expired"
)

// liveSession pairs one running game with its idle watchdog. results is
// populated when the game reaches its natural end.
type liveSession struct {
	game     *game.Session
	watchdog *idle.Watchdog

	mu      sync.Mutex
	results []game.Answer
	ended   bool
	expired bool
}

// gameHub owns the in-memory game state of the server, keyed by a per-browser
// game ID stored in the session cookie. Game progress is deliberately not
// persisted; an expired or abandoned game is simply gone.
type gameHub struct {
	mu       sync.Mutex
	clk      clock.Clock
	rnd      random.Source
	logger   *slog.Logger
	ticks    *broker.Broker[string, tickEvent]
	sessions map[string]*liveSession
}

func newGameHub(clk clock.Clock, rnd random.Source, logger *slog.Logger) *gameHub {
	return &gameHub{
		clk:      clk,
		rnd:      rnd,
		logger:   logger,
		ticks:    broker.New[string, tickEvent](),
		sessions: map[string]*liveSession{},
	}
}

// Start replaces any previous game under the ID with a fresh one.
func (h *gameHub) Start(id string, items []content.Item, duration time.Duration, forceBonus bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if previous, ok := h.sessions[id]; ok {
		previous.game.Abandon()
		previous.watchdog.Stop()
		h.ticks.CloseTopic(id)
	}

	live := &liveSession{}
	session, err := game.New(h.clk, h.rnd, h.logger, items, game.Config{
		Duration:   duration,
		ForceBonus: forceBonus,
		OnEnd: func(answers []game.Answer) {
			live.mu.Lock()
			live.results = answers
			live.ended = true
			live.mu.Unlock()
			// The watchdog stays on duty for the results and review
			// screens, starting from a fresh idle window.
			live.watchdog.Restart()
			h.ticks.Publish(id, tickEvent{State: string(game.StateEnded)})
			h.ticks.CloseTopic(id)
		},
		OnTick: func(remaining int) {
			h.ticks.Publish(id, tickEvent{State: string(game.StateRunning), Remaining: remaining})
		},
		OnBonus: func(remaining int) {
			h.ticks.Publish(id, tickEvent{State: string(game.StateBonus), Remaining: remaining})
		},
	})
	if err != nil {
		return err
	}
	live.game = session
	live.watchdog = idle.New(h.clk, h.logger,
		func() {
			h.ticks.Publish(id, tickEvent{State: eventStateWarning})
		},
		func() {
			h.expire(id, live)
		})
	live.watchdog.Start()

	h.sessions[id] = live
	return nil
}

// Get returns the live session for the ID, or nil when none exists.
func (h *gameHub) Get(id string) *liveSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

// Abandon discards the game under the ID without emitting results.
func (h *gameHub) Abandon(id string) {
	h.mu.Lock()
	live, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	live.game.Abandon()
	live.watchdog.Stop()
	h.ticks.CloseTopic(id)
}

func (h *gameHub) expire(id string, live *liveSession) {
	live.mu.Lock()
	endedNaturally := live.ended
	live.expired = true
	live.mu.Unlock()

	if endedNaturally {
		// The player walked away from the results or review screen. The
		// game is over and its topic closed; just drop the session so the
		// next request lands on home.
		h.logger.Info("evicting idle finished game", slog.String("game_id", id))
	} else {
		h.logger.Info("expiring idle game", slog.String("game_id", id))
		live.game.Abandon()
		h.ticks.Publish(id, tickEvent{State: eventStateExpired})
		h.ticks.CloseTopic(id)
	}

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Results returns the final answer log once the game has ended naturally.
func (s *liveSession) Results() ([]game.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.ended
}
