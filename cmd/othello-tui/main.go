// Command othello-tui plays Othello in the terminal against the built-in
// greedy opponent, a JavaScript strategy file or a script from the library.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/asobiba/minigames/internal/config"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/othello"
	"github.com/asobiba/minigames/internal/scripting"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

func main() {
	cfg := config.Load()
	color := flag.String("color", "dark", "your colour: dark moves first, light moves second")
	script := flag.String("script", cfg.OthelloScript, "JavaScript strategy for the computer")
	stored := flag.String("stored", "", "name of a script saved in the strategy library")
	record := flag.Bool("record", true, "add finished games to the score ledger")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	// The terminal belongs to tview; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log: %v", err)
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out, "[TUI] ", log.LstdFlags|log.Lshortfile)

	var human othello.Cell
	if err := human.UnmarshalText([]byte(strings.TrimSpace(*color))); err != nil || human == othello.Empty {
		log.Fatalf("invalid -color %q", *color)
	}

	var rec launcher.Recorder
	if *record {
		cfg.EnsureDataDir()
		db, err := store.NewSQLiteDB(cfg.DBPath)
		if err == nil {
			err = db.Migrate()
		}
		if err != nil {
			logger.Printf("ledger_open_failed path=%s err=%v", cfg.DBPath, err)
		} else {
			defer db.Close()
			rec = db
		}
	}

	opts := []launcher.Option{launcher.WithLogger(logger), launcher.WithServerSeed(cfg.ServerSeed)}
	opponent := "greedy"
	if *script != "" {
		factory, err := scripting.Factory(*script, scripting.WithCallTimeout(cfg.ScriptTimeout), scripting.WithLogger(logger))
		if err != nil {
			log.Fatalf("load script: %v", err)
		}
		opts = append(opts, launcher.WithOthelloStrategy(factory))
		opponent = *script
	}

	if *stored != "" {
		cfg.EnsureDataDir()
		ss, err := scriptstore.New(cfg.DBPath)
		if err == nil {
			err = ss.Migrate()
		}
		if err != nil {
			log.Fatalf("open script library: %v", err)
		}
		defer ss.Close()
		factory, err := ss.Factory(*stored, logger, scripting.WithCallTimeout(cfg.ScriptTimeout), scripting.WithLogger(logger))
		if err != nil {
			log.Fatalf("load stored script: %v", err)
		}
		opts = append(opts, launcher.WithOthelloStrategy(factory))
		opponent = *stored
	}

	ui := newUI(launcher.New(rec, opts...), human, opponent, logger)
	if err := ui.run(); err != nil {
		log.Fatalf("ui: %v", err)
	}
}
