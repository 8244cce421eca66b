package scriptstore

import (
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/asobiba/minigames/internal/othello"
	"github.com/asobiba/minigames/internal/scripting"
)

const defaultFlushSize = 8

// RunRecorder wraps a strategy, buffers every choice it makes and flushes
// them to the store in batches. GameEnded flushes the tail and stores the
// result.
type RunRecorder struct {
	store     *Store
	runID     string
	inner     othello.Strategy
	logger    *log.Logger
	mu        sync.Mutex
	buffer    []Move
	ply       int
	flushSize int
	pending   sync.WaitGroup
}

// NewRunRecorder records inner's choices under runID.
func NewRunRecorder(store *Store, runID string, inner othello.Strategy, flushSize int) *RunRecorder {
	if flushSize <= 0 {
		flushSize = defaultFlushSize
	}
	return &RunRecorder{
		store:     store,
		runID:     runID,
		inner:     inner,
		logger:    log.New(os.Stdout, "[SCRIPTSTORE] ", log.LstdFlags|log.Lshortfile),
		buffer:    make([]Move, 0, flushSize),
		flushSize: flushSize,
	}
}

// RunID returns the run being recorded.
func (r *RunRecorder) RunID() string { return r.runID }

// Choose delegates to the wrapped strategy and records what it picked.
func (r *RunRecorder) Choose(b othello.Board, side othello.Cell, moves []othello.Point) (othello.Point, error) {
	p, err := r.inner.Choose(b, side, moves)
	if err != nil {
		return p, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ply++
	r.buffer = append(r.buffer, Move{
		RunID:     r.runID,
		Ply:       r.ply,
		Side:      side.String(),
		Col:       p.Col,
		Row:       p.Row,
		Options:   len(moves),
		Legal:     slices.Contains(moves, p),
		CreatedAt: time.Now().UTC(),
	})
	if len(r.buffer) >= r.flushSize {
		r.flushLocked()
	}
	return p, nil
}

// GameEnded flushes outstanding moves and stores the final tally.
func (r *RunRecorder) GameEnded(res othello.Result) {
	r.Flush()
	if err := r.store.EndRun(r.runID, res); err != nil {
		r.logger.Printf("end_run_failed run_id=%s err=%v", r.runID, err)
	}
}

// Flush persists buffered moves and waits for in-flight batches.
func (r *RunRecorder) Flush() {
	r.mu.Lock()
	r.flushLocked()
	r.mu.Unlock()
	r.pending.Wait()
}

func (r *RunRecorder) flushLocked() {
	if len(r.buffer) == 0 {
		return
	}
	moves := make([]Move, len(r.buffer))
	copy(moves, r.buffer)
	r.buffer = r.buffer[:0]

	// Insert in the background so the engine is not blocked on disk.
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		if err := r.store.InsertMovesBatch(r.runID, moves); err != nil {
			r.logger.Printf("flush_moves_failed run_id=%s count=%d err=%v", r.runID, len(moves), err)
		}
	}()
}

// Factory returns a strategy factory for the stored script name. Every call
// compiles a fresh runtime and opens a new run; a script that no longer
// compiles falls back to Greedy and a run that cannot be opened plays
// unrecorded.
func (s *Store) Factory(name string, logger *log.Logger, opts ...scripting.StrategyOption) (func() othello.Strategy, error) {
	script, err := s.GetScript(name)
	if err != nil {
		return nil, err
	}
	if _, err := scripting.NewStrategy(script.Source, opts...); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[SCRIPTSTORE] ", log.LstdFlags|log.Lshortfile)
	}

	return func() othello.Strategy {
		st, err := scripting.NewStrategy(script.Source, opts...)
		if err != nil {
			logger.Printf("script_compile_failed name=%s err=%v", name, err)
			return othello.Greedy{}
		}
		runID, err := s.CreateRun(script.ID)
		if err != nil {
			logger.Printf("run_create_failed name=%s err=%v", name, err)
			return st
		}
		rec := NewRunRecorder(s, runID, st, defaultFlushSize)
		rec.logger = logger
		return rec
	}, nil
}
