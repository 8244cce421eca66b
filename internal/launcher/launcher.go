// Package launcher runs mini-game sessions and keeps the cumulative score.
package launcher

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/asobiba/minigames/internal/engine"
	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/othello"
	"github.com/asobiba/minigames/internal/store"
)

var (
	// ErrUnknownGame is returned by Start for an unregistered game id.
	ErrUnknownGame = errors.New("launcher: unknown game")
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("launcher: session not found")
	// ErrSessionEnded is returned for input to a finished or abandoned session.
	ErrSessionEnded = errors.New("launcher: session already ended")
)

const historySize = 100

// Recorder persists ended sessions. *store.SQLiteDB satisfies it.
type Recorder interface {
	SaveResult(r *store.Result) error
}

type totaler interface {
	TotalScore() (int, error)
}

// Stats summarises the launcher's score keeping.
type Stats struct {
	Played  int             `json:"played"`
	Total   int             `json:"total"`
	Average decimal.Decimal `json:"average"`
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger replaces the default stdout logger.
func WithLogger(l *log.Logger) Option {
	return func(ln *Launcher) { ln.logger = l }
}

// WithServerSeed fixes the server seed used for every session stream.
func WithServerSeed(seed string) Option {
	return func(ln *Launcher) { ln.serverSeed = seed }
}

// WithOthelloStrategy sets the factory for the strategy behind Othello's
// "ai" action.
func WithOthelloStrategy(fn func() othello.Strategy) Option {
	return func(ln *Launcher) { ln.strategy = fn }
}

// SetOthelloStrategy swaps the strategy factory for sessions started from now
// on. nil restores Greedy.
func (l *Launcher) SetOthelloStrategy(fn func() othello.Strategy) {
	l.mu.Lock()
	l.strategy = fn
	l.mu.Unlock()
}

// Launcher owns the running sessions and the cumulative score.
type Launcher struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	total      int
	played     int
	playedSum  int
	ended      []string
	history    []store.Result
	nonce      uint64
	serverSeed string
	recorder   Recorder
	strategy   func() othello.Strategy
	listeners  []func(store.Result)
	logger     *log.Logger
}

// New creates a launcher. recorder may be nil. When the recorder can sum
// its ledger the cumulative total starts from there.
func New(recorder Recorder, opts ...Option) *Launcher {
	l := &Launcher{
		sessions: make(map[string]*Session),
		recorder: recorder,
		logger:   log.New(os.Stdout, "[LAUNCHER] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.serverSeed == "" {
		l.serverSeed = engine.RandomSeed()
	}
	if t, ok := recorder.(totaler); ok {
		total, err := t.TotalScore()
		if err != nil {
			l.logger.Printf("ledger_total_failed err=%v", err)
		} else {
			l.total = total
		}
	}
	return l
}

// OnEnd registers fn to be called after every finished or abandoned session.
func (l *Launcher) OnEnd(fn func(store.Result)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Start opens a session of gameID. An empty clientSeed is replaced by a
// fresh one.
func (l *Launcher) Start(gameID, clientSeed string) (*Session, error) {
	game, ok := games.GetGame(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}
	if clientSeed == "" {
		clientSeed = uuid.New().String()
	}

	l.mu.Lock()
	l.nonce++
	nonce := l.nonce
	seeds := engine.Seeds{Server: l.serverSeed, Client: clientSeed}
	factory := l.strategy
	l.mu.Unlock()

	rng := engine.NewStream(seeds, nonce)
	gs := game.New(rng)
	sess := &Session{
		id:      uuid.New().String(),
		spec:    game.Spec(),
		game:    gs,
		rng:     rng,
		started: time.Now(),
		status:  StatusActive,
		settle:  l.settle,
	}

	if st, ok := gs.(interface{ SetStrategy(othello.Strategy) }); ok && factory != nil {
		strategy := factory()
		st.SetStrategy(strategy)
		// Recording strategies hear about the end of each game.
		if ender, ok := strategy.(interface{ GameEnded(othello.Result) }); ok {
			if hook, ok := gs.(interface{ OnGameEnd(func(othello.Result)) }); ok {
				hook.OnGameEnd(ender.GameEnded)
			}
		}
	}
	if ender, ok := gs.(games.Ender); ok {
		ender.OnGameOver(sess.gameOver)
	}

	l.mu.Lock()
	l.sessions[sess.id] = sess
	l.mu.Unlock()

	l.logger.Printf("session_started id=%s game=%s nonce=%d", sess.id, gameID, nonce)
	return sess, nil
}

// Session looks up a session by id.
func (l *Launcher) Session(id string) (*Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sess, ok := l.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Active lists the views of sessions still in play, oldest first.
func (l *Launcher) Active() []View {
	l.mu.RLock()
	list := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		list = append(list, s)
	}
	l.mu.RUnlock()

	views := make([]View, 0, len(list))
	for _, s := range list {
		if v := s.View(); v.Status == StatusActive {
			views = append(views, v)
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].StartedAt.Before(views[j].StartedAt) })
	return views
}

// Finish ends the session and adds its score to the cumulative total. A
// session can be finished or abandoned only once; games that end themselves
// are finished by the launcher as soon as they report game over.
func (l *Launcher) Finish(id string) (store.Result, error) {
	return l.end(id, StatusFinished)
}

// Abandon ends the session with a score of 0.
func (l *Launcher) Abandon(id string) (store.Result, error) {
	return l.end(id, StatusAbandoned)
}

func (l *Launcher) end(id string, status Status) (store.Result, error) {
	sess, err := l.Session(id)
	if err != nil {
		return store.Result{}, err
	}

	now := time.Now()
	score, ok := sess.end(status, now)
	if !ok {
		return store.Result{}, fmt.Errorf("%w: %s", ErrSessionEnded, id)
	}

	return l.record(sess, status, score, now), nil
}

// settle finishes a session whose game reported its own end.
func (l *Launcher) settle(sess *Session, score int, at time.Time) {
	l.record(sess, StatusFinished, score, at)
}

// record persists an ended session, adds score to the total and notifies
// the listeners.
func (l *Launcher) record(sess *Session, status Status, score int, at time.Time) store.Result {
	outcome := store.OutcomeFinished
	if status == StatusAbandoned {
		outcome = store.OutcomeAbandoned
	}
	res := store.Result{
		SessionID:  sess.id,
		Game:       sess.spec.ID,
		Score:      score,
		Outcome:    outcome,
		ServerSeed: sess.rng.Seeds().Server,
		ClientSeed: sess.rng.Seeds().Client,
		Nonce:      sess.rng.Nonce(),
		DurationMS: at.Sub(sess.started).Milliseconds(),
		CreatedAt:  at.UTC(),
	}

	if l.recorder != nil {
		if err := l.recorder.SaveResult(&res); err != nil {
			l.logger.Printf("result_save_failed id=%s err=%v", sess.id, err)
		}
	}

	l.mu.Lock()
	l.total += score
	l.played++
	l.playedSum += score
	l.history = append([]store.Result{res}, l.history...)
	if len(l.history) > historySize {
		l.history = l.history[:historySize]
	}
	l.ended = append(l.ended, sess.id)
	if len(l.ended) > historySize {
		delete(l.sessions, l.ended[0])
		l.ended = l.ended[1:]
	}
	listeners := append([]func(store.Result){}, l.listeners...)
	total := l.total
	l.mu.Unlock()

	l.logger.Printf("session_ended id=%s game=%s outcome=%s score=%d total=%d", sess.id, res.Game, outcome, score, total)
	for _, fn := range listeners {
		fn(res)
	}
	return res
}

// Total is the cumulative score.
func (l *Launcher) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// History returns up to limit recently ended sessions, newest first.
// limit <= 0 returns everything kept.
func (l *Launcher) History(limit int) []store.Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]store.Result, limit)
	copy(out, l.history[:limit])
	return out
}

// Stats returns the cumulative total together with the count and average
// score of sessions ended by this launcher, rounded to two places.
func (l *Launcher) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := Stats{Played: l.played, Total: l.total, Average: decimal.Zero}
	if l.played > 0 {
		st.Average = decimal.NewFromInt(int64(l.playedSum)).Div(decimal.NewFromInt(int64(l.played))).Round(2)
	}
	return st
}
