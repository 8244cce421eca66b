package launcher

import (
	"context"
	"sync"
	"time"

	"github.com/asobiba/minigames/internal/engine"
	"github.com/asobiba/minigames/internal/games"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

// Session wraps one running game. All input is serialised through its mutex,
// so a timer and a player may drive the same session.
type Session struct {
	mu      sync.Mutex
	id      string
	spec    games.GameSpec
	game    games.Session
	rng     *engine.Stream
	started time.Time
	ended   time.Time
	status  Status
	score   int
	// settled is set when the game ended itself during the current call.
	settled bool
	// settle reports a self-ended game to the launcher, outside mu.
	settle func(s *Session, score int, at time.Time)
}

// View is the render payload for a session.
type View struct {
	ID         string         `json:"id"`
	Game       games.GameSpec `json:"game"`
	Status     Status         `json:"status"`
	Finished   bool           `json:"finished"`
	Score      int            `json:"score"`
	ClientSeed string         `json:"client_seed"`
	Nonce      uint64         `json:"nonce"`
	StartedAt  time.Time      `json:"started_at"`
	State      any            `json:"state"`
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Spec returns the game metadata.
func (s *Session) Spec() games.GameSpec { return s.spec }

// Apply feeds one action to the game and returns the resulting view. A game
// that ends itself finishes the session with its final score.
func (s *Session) Apply(a games.Action) (View, error) {
	s.mu.Lock()
	if s.status != StatusActive {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrSessionEnded
	}
	err := s.game.Apply(a)
	v := s.viewLocked()
	s.unlockAndSettle()
	return v, err
}

// Tick advances a timer-driven game by one step. ok is false for games
// without a timer or sessions no longer active.
func (s *Session) Tick() (v View, ok bool) {
	s.mu.Lock()
	t, isTicker := s.game.(games.Ticker)
	if !isTicker || s.status != StatusActive || s.game.Finished() {
		v = s.viewLocked()
		s.mu.Unlock()
		return v, false
	}
	t.Tick()
	v = s.viewLocked()
	s.unlockAndSettle()
	return v, true
}

// gameOver runs inside game.Apply or game.Tick with mu held. The session
// stops taking input at once; the launcher hears about it after unlock.
func (s *Session) gameOver(score int) {
	if s.status != StatusActive {
		return
	}
	s.status = StatusFinished
	s.score = score
	s.ended = time.Now()
	s.settled = true
}

func (s *Session) unlockAndSettle() {
	settled, score, at := s.settled, s.score, s.ended
	s.settled = false
	s.mu.Unlock()
	if settled && s.settle != nil {
		s.settle(s, score, at)
	}
}

// Run ticks the session until ctx is done or the session ends. A game with
// its own TickMS ignores every. emit receives each frame.
func (s *Session) Run(ctx context.Context, every time.Duration, emit func(View)) {
	if s.spec.TickMS > 0 {
		every = time.Duration(s.spec.TickMS) * time.Millisecond
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, ok := s.Tick()
			if !ok {
				return
			}
			emit(v)
			if v.Finished {
				return
			}
		}
	}
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	score := s.game.Score()
	if s.status != StatusActive {
		score = s.score
	}
	return View{
		ID:         s.id,
		Game:       s.spec,
		Status:     s.status,
		Finished:   s.status != StatusActive || s.game.Finished(),
		Score:      score,
		ClientSeed: s.rng.Seeds().Client,
		Nonce:      s.rng.Nonce(),
		StartedAt:  s.started,
		State:      s.game.Snapshot(),
	}
}

// end closes the session. A finished session keeps the game's score, an
// abandoned one scores 0. ok is false if the session had already ended.
func (s *Session) end(status Status, at time.Time) (score int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return s.score, false
	}
	if status == StatusFinished {
		s.score = s.game.Score()
	}
	s.status = status
	s.ended = at
	return s.score, true
}
