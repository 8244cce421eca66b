// Package bindings exposes the launcher to the Wails frontend.
package bindings

import (
	"context"
	"log"
	"os"
	"sync"

	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/asobiba/minigames/internal/api"
	"github.com/asobiba/minigames/internal/config"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

// Frontend event names.
const (
	EventGameEnd = "game:end"
	EventFrame   = "game:frame"
)

// Emitter delivers an event to the frontend.
type Emitter func(ctx context.Context, name string, data ...interface{})

// App is the Wails-bound launcher.
type App struct {
	ctx      context.Context
	cfg      config.Config
	db       store.DB
	scripts  *scriptstore.Store
	launcher *launcher.Launcher
	listener *api.Listener
	emit     Emitter
	logger   *log.Logger

	watchMu sync.Mutex
	watches map[string]context.CancelFunc
}

// New creates the app. Nothing is opened until Startup.
func New(cfg config.Config) *App {
	return &App{
		cfg:     cfg,
		emit:    wruntime.EventsEmit,
		logger:  log.New(os.Stdout, "[APP] ", log.LstdFlags|log.Lshortfile),
		watches: make(map[string]context.CancelFunc),
	}
}
