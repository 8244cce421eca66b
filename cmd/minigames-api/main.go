// Command minigames-api serves the launcher over HTTP without the desktop shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asobiba/minigames/internal/api"
	"github.com/asobiba/minigames/internal/config"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scripting"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

func main() {
	cfg := config.Load()
	flag.StringVar(&cfg.APIHost, "host", cfg.APIHost, "listen host")
	flag.IntVar(&cfg.APIPort, "port", cfg.APIPort, "listen port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "score ledger path (:memory: for none on disk)")
	flag.StringVar(&cfg.OthelloScript, "othello-script", cfg.OthelloScript, "JavaScript Othello strategy")
	flag.Parse()

	logger := log.New(os.Stdout, "[MAIN] ", log.LstdFlags|log.Lshortfile)
	if err := run(cfg, logger); err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Println("server run stopped successfully")
}

func run(cfg config.Config, logger *log.Logger) error {
	if cfg.DBPath != ":memory:" {
		cfg.EnsureDataDir()
	}
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}

	scripts, err := scriptstore.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open script library: %w", err)
	}
	defer scripts.Close()
	if err := scripts.Migrate(); err != nil {
		return fmt.Errorf("migrate script library: %w", err)
	}

	opts := []launcher.Option{launcher.WithServerSeed(cfg.ServerSeed)}
	if cfg.OthelloScript != "" {
		factory, err := scripting.Factory(cfg.OthelloScript, scripting.WithCallTimeout(cfg.ScriptTimeout))
		if err != nil {
			return fmt.Errorf("load othello script: %w", err)
		}
		opts = append(opts, launcher.WithOthelloStrategy(factory))
	}
	if !cfg.SeedConfigured() {
		logger.Println("MINIGAMES_SERVER_SEED not set; using a random server seed")
	}

	l := launcher.New(db, opts...)
	ln := api.NewListener(api.NewServer(l, db, api.WithTick(cfg.SnakeTick), api.WithScriptStore(scripts)), cfg.APIAddr())
	if err := ln.Start(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Printf("serving url=%s db=%s total=%d", ln.URL(), cfg.DBPath, l.Total())

	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	sig := <-done
	logger.Printf("handled signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ln.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
