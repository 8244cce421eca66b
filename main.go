// Command minigames is the desktop launcher for the mini-game collection.
package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/asobiba/minigames/bindings"
	"github.com/asobiba/minigames/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

const rulesURL = "https://en.wikipedia.org/wiki/Reversi"

var (
	appCtx   context.Context
	appCtxMu sync.RWMutex
)

// buildWindowsOptions configures Windows-specific application settings
func buildWindowsOptions() *windows.Options {
	return &windows.Options{
		BackdropType: windows.Mica,
		Theme:        windows.SystemDefault,
		CustomTheme: &windows.ThemeSettings{
			DarkModeTitleBar:   windows.RGB(27, 38, 54),
			DarkModeTitleText:  windows.RGB(226, 232, 240),
			DarkModeBorder:     windows.RGB(51, 65, 85),
			LightModeTitleBar:  windows.RGB(248, 250, 252),
			LightModeTitleText: windows.RGB(15, 23, 42),
			LightModeBorder:    windows.RGB(226, 232, 240),
		},
		DisablePinchZoom: true,
		ZoomFactor:       1.0,
		WindowClassName:  "MinigamesWindow",
	}
}

// buildMacOptions configures macOS-specific application settings
func buildMacOptions() *mac.Options {
	return &mac.Options{
		TitleBar: mac.TitleBarDefault(),
		About: &mac.AboutInfo{
			Title:   "Minigames",
			Message: "Othello, Snake, Blackjack and friends in one launcher.\n\nBuilt with Wails",
		},
	}
}

// buildLinuxOptions configures Linux-specific application settings
func buildLinuxOptions() *linux.Options {
	return &linux.Options{
		WebviewGpuPolicy: linux.WebviewGpuPolicyOnDemand,
		ProgramName:      "minigames",
	}
}

func main() {
	log.Printf("Starting Minigames (Go %s)...", runtime.Version())

	cfg := config.Load()
	if !cfg.SeedConfigured() {
		log.Println("MINIGAMES_SERVER_SEED not set; using a random server seed")
	}
	app := bindings.New(cfg)

	startup := func(ctx context.Context) {
		app.Startup(ctx)
		setAppContext(ctx)
	}

	beforeClose := func(ctx context.Context) (prevent bool) {
		if err := app.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		setAppContext(nil)
		log.Println("Application is closing")
		return false
	}

	if err := wails.Run(&options.App{
		Title:             "Minigames",
		Width:             1024,
		Height:            768,
		MinWidth:          800,
		MinHeight:         600,
		WindowStartState:  options.Normal,
		HideWindowOnClose: false,
		BackgroundColour:  &options.RGBA{R: 27, G: 38, B: 54, A: 255},

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup:     startup,
		OnBeforeClose: beforeClose,
		OnDomReady: func(ctx context.Context) {
			log.Println("DOM is ready")
		},
		OnShutdown: func(ctx context.Context) {
			log.Println("Application shutdown complete")
		},

		Menu: buildAppMenu(cfg),
		Bind: []interface{}{app},

		LogLevel:           logger.INFO,
		LogLevelProduction: logger.ERROR,

		EnableDefaultContextMenu:         false,
		EnableFraudulentWebsiteDetection: false,

		ErrorFormatter: func(err error) any {
			if err == nil {
				return nil
			}
			return err.Error()
		},

		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "5d0c7a62-1f3e-4b8e-9a27-minigames",
			OnSecondInstanceLaunch: func(data options.SecondInstanceData) {
				log.Printf("Second instance launch prevented. Args: %v", data.Args)
			},
		},

		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     false,
			DisableWebViewDrop: true,
		},

		Windows: buildWindowsOptions(),
		Mac:     buildMacOptions(),
		Linux:   buildLinuxOptions(),
	}); err != nil {
		log.Printf("Error running Wails app: %v", err)
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log.Println("Application exited normally")
}

func buildAppMenu(cfg config.Config) *menu.Menu {
	rootMenu := menu.NewMenu()

	if runtime.GOOS == "darwin" {
		if appMenu := menu.AppMenu(); appMenu != nil {
			rootMenu.Append(appMenu)
		}
	}

	fileMenu := menu.NewMenu()
	fileMenu.AddText("Open Data Directory", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			openPathInExplorer(ctx, filepath.Dir(cfg.DBPath))
		})
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.Quit(ctx)
		})
	})
	rootMenu.Append(menu.SubMenu("File", fileMenu))

	viewMenu := menu.NewMenu()
	viewMenu.AddText("Reload Frontend", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.WindowReloadApp(ctx)
		})
	})
	viewMenu.AddText("Toggle Fullscreen", keys.Combo("f", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			toggleFullscreen(ctx)
		})
	})
	rootMenu.Append(menu.SubMenu("View", viewMenu))

	helpMenu := menu.NewMenu()
	helpMenu.AddText("Othello Rules", nil, func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.BrowserOpenURL(ctx, rulesURL)
		})
	})
	rootMenu.Append(menu.SubMenu("Help", helpMenu))

	return rootMenu
}

func openPathInExplorer(ctx context.Context, path string) {
	if path == "" {
		return
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Printf("resolve path %s failed: %v", path, err)
		abs = path
	}

	wruntime.BrowserOpenURL(ctx, fileURI(abs))
}

func fileURI(path string) string {
	clean := filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(clean) > 0 && clean[0] != '/' {
		clean = "/" + clean
	}

	u := url.URL{Scheme: "file", Path: clean}
	return u.String()
}

func toggleFullscreen(ctx context.Context) {
	if wruntime.WindowIsFullscreen(ctx) {
		wruntime.WindowUnfullscreen(ctx)
		return
	}
	wruntime.WindowFullscreen(ctx)
}

func setAppContext(ctx context.Context) {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()
	appCtx = ctx
}

func withAppContext(action func(context.Context)) {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()
	if ctx == nil {
		log.Println("application context not initialised; ignoring menu action")
		return
	}
	action(ctx)
}
