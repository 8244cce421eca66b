// Package scan replays seeded mini-games across a nonce range and reports the
// nonces whose final score meets a target. It is the verification side of the
// launcher's seeded randomness: any (server seed, client seed, nonce) triple
// reproduces the same session.
package scan

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asobiba/minigames/internal/engine"
	"github.com/asobiba/minigames/internal/games"
)

// TargetOp is a comparison applied to each replayed score.
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// MaxRange caps the number of nonces a single request may replay.
const MaxRange = 1_000_000

const batchSize = 1024

// Request describes one scan.
type Request struct {
	Game       string         `json:"game"`
	Seeds      engine.Seeds   `json:"seeds"`
	NonceStart uint64         `json:"nonce_start"`
	NonceEnd   uint64         `json:"nonce_end"`
	Actions    []games.Action `json:"actions,omitempty"` // replayed in order; defaults per game
	TargetOp   TargetOp       `json:"target_op"`
	TargetVal  int            `json:"target_val"`
	TargetVal2 int            `json:"target_val2,omitempty"` // upper bound for between/outside
	Limit      int            `json:"limit,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// Hit is a nonce whose replayed score matched.
type Hit struct {
	Nonce uint64 `json:"nonce"`
	Score int    `json:"score"`
	State any    `json:"state"`
}

// Summary holds aggregate statistics over every evaluated nonce.
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	HitsFound      int     `json:"hits_found"`
	MinScore       int     `json:"min_score"`
	MaxScore       int     `json:"max_score"`
	MeanScore      float64 `json:"mean_score"`
	Failed         uint64  `json:"failed,omitempty"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

// Result is the outcome of a scan. Hits are ordered by nonce.
type Result struct {
	Hits    []Hit   `json:"hits"`
	Summary Summary `json:"summary"`
	Echo    Request `json:"echo"`
}

// defaultActions plays a game through to a score without player judgement.
var defaultActions = map[string][]games.Action{
	"omikuji":     {{Type: "draw"}},
	"roulette":    {{Type: "spin"}, {Type: "spin"}, {Type: "spin"}},
	"blackjack":   {{Type: "stand"}},
	"numberguess": {{Type: "guess", Number: 50}},
	"janken": {
		{Type: "throw", Choice: "rock"}, {Type: "throw", Choice: "rock"}, {Type: "throw", Choice: "rock"},
		{Type: "throw", Choice: "rock"}, {Type: "throw", Choice: "rock"},
	},
}

// DefaultActions returns the replay used when a request names none.
func DefaultActions(game string) []games.Action {
	return append([]games.Action(nil), defaultActions[game]...)
}

// TargetEvaluator checks a score against the request's target.
type TargetEvaluator struct {
	op   TargetOp
	val1 int
	val2 int
}

// NewTargetEvaluator validates op and returns an evaluator.
func NewTargetEvaluator(op TargetOp, val1, val2 int) (*TargetEvaluator, error) {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpBetween, OpOutside:
	case "":
		op = OpGreaterEqual
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
	return &TargetEvaluator{op: op, val1: val1, val2: val2}, nil
}

// Matches reports whether score satisfies the target.
func (te *TargetEvaluator) Matches(score int) bool {
	switch te.op {
	case OpEqual:
		return score == te.val1
	case OpGreater:
		return score > te.val1
	case OpGreaterEqual:
		return score >= te.val1
	case OpLess:
		return score < te.val1
	case OpLessEqual:
		return score <= te.val1
	case OpBetween:
		return score >= te.val1 && score <= te.val2
	case OpOutside:
		return score < te.val1 || score > te.val2
	default:
		return false
	}
}

// Replay plays one seeded session through actions and returns it. Action
// errors stop the replay and are returned alongside the partial session.
func Replay(game games.Game, seeds engine.Seeds, nonce uint64, actions []games.Action) (games.Session, error) {
	sess := game.New(engine.NewStream(seeds, nonce))
	for i, a := range actions {
		if err := sess.Apply(a); err != nil {
			return sess, fmt.Errorf("action %d (%s): %w", i, a.Type, err)
		}
	}
	return sess, nil
}

type job struct {
	start, end uint64
}

type counters struct {
	evaluated atomic.Uint64
	failed    atomic.Uint64
	sum       atomic.Int64
	min       atomic.Int64
	max       atomic.Int64
}

func (c *counters) observe(score int) {
	c.evaluated.Add(1)
	c.sum.Add(int64(score))
	s := int64(score)
	for {
		cur := c.min.Load()
		if s >= cur || c.min.CompareAndSwap(cur, s) {
			break
		}
	}
	for {
		cur := c.max.Load()
		if s <= cur || c.max.CompareAndSwap(cur, s) {
			break
		}
	}
}

// Scanner fans nonce batches out over a fixed worker pool.
type Scanner struct {
	workerCount int
}

// NewScanner sizes the pool from GOMAXPROCS.
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.GOMAXPROCS(0)}
}

// WithWorkers overrides the pool size; n < 1 is treated as 1.
func (s *Scanner) WithWorkers(n int) *Scanner {
	s.workerCount = max(1, n)
	return s
}

// Scan replays every nonce in [NonceStart, NonceEnd]. A timeout or cancelled
// context returns the hits found so far with Summary.TimedOut set.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	game, ok := games.GetGame(req.Game)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, req.Game)
	}
	if game.Spec().Kind == games.KindTimer {
		return nil, fmt.Errorf("%w: %s", ErrTimerGame, req.Game)
	}
	if !req.Seeds.Valid() {
		return nil, ErrInvalidSeeds
	}
	if req.NonceEnd < req.NonceStart {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, req.NonceStart, req.NonceEnd)
	}
	if req.NonceEnd-req.NonceStart >= MaxRange {
		return nil, fmt.Errorf("%w: at most %d nonces", ErrRangeTooLarge, MaxRange)
	}
	actions := req.Actions
	if len(actions) == 0 {
		actions = DefaultActions(req.Game)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: %s needs explicit actions", ErrNoActions, req.Game)
	}
	evaluator, err := NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2)
	if err != nil {
		return nil, err
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	// Stops workers once Limit hits are in.
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	jobs := make(chan job, s.workerCount*2)
	hits := make(chan Hit, 256)
	stats := &counters{}
	stats.min.Store(math.MaxInt64)
	stats.max.Store(math.MinInt64)

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				for nonce := j.start; ; nonce++ {
					if ctx.Err() != nil {
						return
					}
					sess, err := Replay(game, req.Seeds, nonce, actions)
					if err != nil {
						stats.failed.Add(1)
					} else {
						score := sess.Score()
						stats.observe(score)
						if evaluator.Matches(score) {
							select {
							case hits <- Hit{Nonce: nonce, Score: score, State: sess.Snapshot()}:
							case <-ctx.Done():
								return
							}
						}
					}
					if nonce == j.end {
						break
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for cur := req.NonceStart; ; {
			end := cur + batchSize - 1
			if end < cur || end > req.NonceEnd {
				end = req.NonceEnd
			}
			select {
			case jobs <- job{start: cur, end: end}:
			case <-ctx.Done():
				return
			}
			if end == req.NonceEnd {
				return
			}
			cur = end + 1
		}
	}()

	go func() {
		wg.Wait()
		close(hits)
	}()

	var collected []Hit
	for h := range hits {
		if req.Limit > 0 && len(collected) >= req.Limit {
			continue
		}
		collected = append(collected, h)
		if req.Limit > 0 && len(collected) >= req.Limit {
			stop()
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Nonce < collected[j].Nonce })

	sum := Summary{
		TotalEvaluated: stats.evaluated.Load(),
		HitsFound:      len(collected),
		Failed:         stats.failed.Load(),
	}
	if sum.TotalEvaluated > 0 {
		sum.MinScore = int(stats.min.Load())
		sum.MaxScore = int(stats.max.Load())
		sum.MeanScore = float64(stats.sum.Load()) / float64(sum.TotalEvaluated)
	}
	limitReached := req.Limit > 0 && len(collected) >= req.Limit
	if !limitReached && ctx.Err() != nil {
		sum.TimedOut = true
	}

	return &Result{Hits: collected, Summary: sum, Echo: req}, nil
}
