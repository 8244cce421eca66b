package bindings

import (
	"context"
	"errors"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/store"
)

// ErrNoLedger is returned by result queries when the database failed to open.
var ErrNoLedger = errors.New("score ledger unavailable")

// ListGames returns the launcher menu.
func (a *App) ListGames() []games.GameSpec {
	return games.ListGames()
}

// StartGame opens a session. Timer games start ticking immediately and
// push frames as game:frame events.
func (a *App) StartGame(gameID, clientSeed string) (launcher.View, error) {
	sess, err := a.launcher.Start(gameID, clientSeed)
	if err != nil {
		return launcher.View{}, err
	}
	if sess.Spec().Kind == games.KindTimer {
		a.watch(sess)
	}
	return sess.View(), nil
}

// Act sends one action to a session. The view is returned even when the
// action is rejected so the frontend can redraw.
func (a *App) Act(sessionID string, action games.Action) (launcher.View, error) {
	sess, err := a.launcher.Session(sessionID)
	if err != nil {
		return launcher.View{}, err
	}
	return sess.Apply(action)
}

// GetSession returns a session's current view.
func (a *App) GetSession(sessionID string) (launcher.View, error) {
	sess, err := a.launcher.Session(sessionID)
	if err != nil {
		return launcher.View{}, err
	}
	return sess.View(), nil
}

// FinishGame ends a session and adds its score to the total.
func (a *App) FinishGame(sessionID string) (store.Result, error) {
	return a.launcher.Finish(sessionID)
}

// AbandonGame ends a session with no score.
func (a *App) AbandonGame(sessionID string) (store.Result, error) {
	return a.launcher.Abandon(sessionID)
}

// Score returns the cumulative score and averages.
func (a *App) Score() launcher.Stats {
	return a.launcher.Stats()
}

// History returns recently ended sessions, newest first.
func (a *App) History(limit int) []store.Result {
	return a.launcher.History(limit)
}

// Results pages the persisted ledger.
func (a *App) Results(q store.ResultsQuery) (*store.ResultsList, error) {
	if a.db == nil {
		return nil, ErrNoLedger
	}
	return a.db.ListResults(q)
}

// GameStats summarises the ledger per game.
func (a *App) GameStats() ([]store.GameStat, error) {
	if a.db == nil {
		return nil, ErrNoLedger
	}
	return a.db.GameStats()
}

// watch drives a timer session until it ends or the app stops watching it.
func (a *App) watch(sess *launcher.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	a.watchMu.Lock()
	a.watches[sess.ID()] = cancel
	a.watchMu.Unlock()

	go func() {
		defer a.stopWatch(sess.ID())
		sess.Run(ctx, a.cfg.SnakeTick, func(v launcher.View) {
			a.emit(a.ctx, EventFrame, v)
		})
	}()
}

func (a *App) stopWatch(id string) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if cancel, ok := a.watches[id]; ok {
		cancel()
		delete(a.watches, id)
	}
}
