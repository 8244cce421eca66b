package bindings

import (
	"errors"
	"strings"

	"github.com/asobiba/minigames/internal/scripting"
	"github.com/asobiba/minigames/internal/scriptstore"
)

// ErrNoScriptLibrary is returned when the script tables could not be opened.
var ErrNoScriptLibrary = errors.New("script library unavailable")

// ListScripts returns the stored Othello strategies.
func (a *App) ListScripts() ([]scriptstore.Script, error) {
	if a.scripts == nil {
		return nil, ErrNoScriptLibrary
	}
	return a.scripts.ListScripts()
}

// SaveScript stores source under name after checking that it defines choose().
func (a *App) SaveScript(name, source string) (*scriptstore.Script, error) {
	if a.scripts == nil {
		return nil, ErrNoScriptLibrary
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("script name is required")
	}
	if _, err := scripting.NewStrategy(source, scripting.WithCallTimeout(a.cfg.ScriptTimeout)); err != nil {
		return nil, err
	}
	return a.scripts.SaveScript(name, source)
}

// DeleteScript removes a stored script and its runs.
func (a *App) DeleteScript(name string) error {
	if a.scripts == nil {
		return ErrNoScriptLibrary
	}
	return a.scripts.DeleteScript(name)
}

// UseScript makes the named script play Othello's "ai" moves in new
// sessions. An empty name restores Greedy.
func (a *App) UseScript(name string) error {
	if name == "" {
		a.launcher.SetOthelloStrategy(nil)
		return nil
	}
	if a.scripts == nil {
		return ErrNoScriptLibrary
	}
	factory, err := a.scripts.Factory(name, a.logger, scripting.WithCallTimeout(a.cfg.ScriptTimeout), scripting.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.launcher.SetOthelloStrategy(factory)
	a.logger.Printf("strategy_changed script=%q", name)
	return nil
}

// ScriptRuns lists the games a script has played, newest first.
func (a *App) ScriptRuns(name string, limit, offset int) ([]scriptstore.Run, error) {
	if a.scripts == nil {
		return nil, ErrNoScriptLibrary
	}
	runs, _, err := a.scripts.ListRuns(name, limit, offset)
	return runs, err
}

// RunMoves pages through the moves of one run.
func (a *App) RunMoves(runID string, page, perPage int) (*scriptstore.MovesPage, error) {
	if a.scripts == nil {
		return nil, ErrNoScriptLibrary
	}
	return a.scripts.GetRunMoves(runID, page, perPage)
}
