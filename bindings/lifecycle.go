package bindings

import (
	"context"
	"fmt"

	"github.com/asobiba/minigames/internal/api"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scripting"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

// Startup opens the score ledger, builds the launcher and starts the local
// API. A failing ledger or API is logged and the app keeps running without it.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.cfg.EnsureDataDir()

	var rec launcher.Recorder
	db, err := store.NewSQLiteDB(a.cfg.DBPath)
	if err == nil {
		err = db.Migrate()
	}
	if err != nil {
		a.logger.Printf("ledger_open_failed path=%s err=%v", a.cfg.DBPath, err)
	} else {
		a.db, rec = db, db
	}

	ss, err := scriptstore.New(a.cfg.DBPath)
	if err == nil {
		err = ss.Migrate()
	}
	if err != nil {
		a.logger.Printf("script_library_open_failed path=%s err=%v", a.cfg.DBPath, err)
	} else {
		a.scripts = ss
	}

	opts := []launcher.Option{launcher.WithServerSeed(a.cfg.ServerSeed)}
	if a.cfg.OthelloScript != "" {
		factory, err := scripting.Factory(a.cfg.OthelloScript, scripting.WithCallTimeout(a.cfg.ScriptTimeout))
		if err != nil {
			a.logger.Printf("othello_script_failed path=%s err=%v", a.cfg.OthelloScript, err)
		} else {
			opts = append(opts, launcher.WithOthelloStrategy(factory))
		}
	}
	a.launcher = launcher.New(rec, opts...)
	a.launcher.OnEnd(func(r store.Result) {
		a.stopWatch(r.SessionID)
		a.emit(a.ctx, EventGameEnd, r)
	})

	apiOpts := []api.Option{api.WithTick(a.cfg.SnakeTick)}
	if a.scripts != nil {
		apiOpts = append(apiOpts, api.WithScriptStore(a.scripts))
	}
	server := api.NewServer(a.launcher, a.db, apiOpts...)
	a.listener = api.NewListener(server, a.cfg.APIAddr())
	if err := a.listener.Start(); err != nil {
		a.logger.Printf("api_start_failed addr=%s err=%v", a.cfg.APIAddr(), err)
		a.listener = nil
	}

	a.logger.Printf("startup db=%s api=%s total=%d", a.cfg.DBPath, a.APIURL(), a.launcher.Total())
}

// Shutdown stops watches, the API, the script library and the ledger.
func (a *App) Shutdown(ctx context.Context) error {
	a.watchMu.Lock()
	for id, cancel := range a.watches {
		cancel()
		delete(a.watches, id)
	}
	a.watchMu.Unlock()

	var firstErr error
	if a.listener != nil {
		if err := a.listener.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("api shutdown: %w", err)
		}
	}
	if a.scripts != nil {
		if err := a.scripts.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close script library: %w", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close ledger: %w", err)
		}
	}
	return firstErr
}

// APIURL is the base URL of the local API, or empty when it is not running.
func (a *App) APIURL() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.URL()
}
