package launcher

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/othello"
	"github.com/asobiba/minigames/internal/store"
)

type mockRecorder struct {
	mu      sync.Mutex
	results []store.Result
	total   int
	fail    bool
}

func (m *mockRecorder) SaveResult(r *store.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.results = append(m.results, *r)
	return nil
}

func (m *mockRecorder) TotalScore() (int, error) {
	return m.total, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestLauncher(rec Recorder, opts ...Option) *Launcher {
	opts = append([]Option{WithLogger(quietLogger()), WithServerSeed("test_server")}, opts...)
	return New(rec, opts...)
}

func TestStartUnknownGame(t *testing.T) {
	l := newTestLauncher(nil)
	if _, err := l.Start("pachinko", ""); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Expected ErrUnknownGame, got %v", err)
	}
}

func TestSessionLookup(t *testing.T) {
	l := newTestLauncher(nil)
	sess, err := l.Start("othello", "client")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	got, err := l.Session(sess.ID())
	if err != nil || got != sess {
		t.Errorf("Session lookup failed: %v", err)
	}
	if _, err := l.Session("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	v := sess.View()
	if v.Status != StatusActive || v.Game.ID != "othello" || v.ClientSeed != "client" || v.Nonce != 1 {
		t.Errorf("Unexpected view %+v", v)
	}
	if len(l.Active()) != 1 {
		t.Errorf("Expected 1 active session, got %d", len(l.Active()))
	}
}

func TestFinishAddsScoreOnce(t *testing.T) {
	rec := &mockRecorder{}
	l := newTestLauncher(rec)

	var ended []store.Result
	l.OnEnd(func(r store.Result) { ended = append(ended, r) })

	sess, _ := l.Start("omikuji", "")
	if _, err := sess.Apply(games.Action{Type: "draw"}); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	res, err := l.Finish(sess.ID())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if res.Score != 1 || res.Outcome != store.OutcomeFinished || res.Game != "omikuji" {
		t.Errorf("Unexpected result %+v", res)
	}
	if l.Total() != 1 {
		t.Errorf("Expected total 1, got %d", l.Total())
	}

	if _, err := l.Finish(sess.ID()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded on second finish, got %v", err)
	}
	if _, err := l.Abandon(sess.ID()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded on abandon after finish, got %v", err)
	}
	if _, err := sess.Apply(games.Action{Type: "draw"}); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded for input after finish, got %v", err)
	}
	if l.Total() != 1 {
		t.Errorf("Total changed after repeated end: %d", l.Total())
	}

	if len(rec.results) != 1 || rec.results[0].ServerSeedHash == "" && rec.results[0].ServerSeed == "" {
		t.Errorf("Expected one recorded result with seed data, got %+v", rec.results)
	}
	if len(ended) != 1 {
		t.Errorf("Expected one end notification, got %d", len(ended))
	}
	if len(l.Active()) != 0 {
		t.Error("Finished session still listed as active")
	}
	if v := sess.View(); v.Status != StatusFinished || v.Score != 1 {
		t.Errorf("Unexpected final view %+v", v)
	}
}

func TestAbandonScoresZero(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("tictactoe", "")
	for _, c := range []int{0, 3, 1, 4, 2} {
		if _, err := sess.Apply(games.Action{Type: "place", Index: c}); err != nil {
			t.Fatalf("place failed: %v", err)
		}
	}
	if v := sess.View(); v.Score != 10 {
		t.Fatalf("Expected running score 10, got %d", v.Score)
	}

	res, err := l.Abandon(sess.ID())
	if err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if res.Score != 0 || res.Outcome != store.OutcomeAbandoned {
		t.Errorf("Unexpected abandon result %+v", res)
	}
	if l.Total() != 0 {
		t.Errorf("Abandon changed the total to %d", l.Total())
	}
}

func TestHistoryAndStats(t *testing.T) {
	l := newTestLauncher(nil)

	omikuji, _ := l.Start("omikuji", "")
	_, _ = omikuji.Apply(games.Action{Type: "draw"})
	_, _ = l.Finish(omikuji.ID())

	ttt, _ := l.Start("tictactoe", "")
	for _, c := range []int{0, 3, 1, 4, 2} {
		_, _ = ttt.Apply(games.Action{Type: "place", Index: c})
	}
	_, _ = l.Finish(ttt.ID())

	hist := l.History(0)
	if len(hist) != 2 || hist[0].Game != "tictactoe" || hist[1].Game != "omikuji" {
		t.Errorf("Unexpected history %+v", hist)
	}
	if len(l.History(1)) != 1 {
		t.Error("History limit ignored")
	}

	st := l.Stats()
	if st.Played != 2 || st.Total != 11 {
		t.Errorf("Unexpected stats %+v", st)
	}
	if st.Average.String() != "5.5" {
		t.Errorf("Expected average 5.5, got %s", st.Average)
	}
}

func TestTotalStartsFromLedger(t *testing.T) {
	l := newTestLauncher(&mockRecorder{total: 120})
	if l.Total() != 120 {
		t.Errorf("Expected total 120 from the ledger, got %d", l.Total())
	}
	if st := l.Stats(); st.Played != 0 || !st.Average.IsZero() {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestRecorderFailureKeepsTotal(t *testing.T) {
	l := newTestLauncher(&mockRecorder{fail: true})
	sess, _ := l.Start("omikuji", "")
	_, _ = sess.Apply(games.Action{Type: "draw"})

	if _, err := l.Finish(sess.ID()); err != nil {
		t.Fatalf("Finish should not fail on a recorder error: %v", err)
	}
	if l.Total() != 1 {
		t.Errorf("Expected total 1, got %d", l.Total())
	}
}

func TestNoncesIncrease(t *testing.T) {
	l := newTestLauncher(nil)
	a, _ := l.Start("numberguess", "same")
	b, _ := l.Start("numberguess", "same")

	if a.View().Nonce != 1 || b.View().Nonce != 2 {
		t.Errorf("Expected nonces 1 and 2, got %d and %d", a.View().Nonce, b.View().Nonce)
	}
}

func TestOthelloStrategyOption(t *testing.T) {
	last := func() othello.Strategy {
		return othello.StrategyFunc(func(_ othello.Board, _ othello.Cell, moves []othello.Point) (othello.Point, error) {
			return moves[len(moves)-1], nil
		})
	}
	l := newTestLauncher(nil, WithOthelloStrategy(last))
	sess, _ := l.Start("othello", "")

	v, err := sess.Apply(games.Action{Type: "ai"})
	if err != nil {
		t.Fatalf("ai failed: %v", err)
	}
	state := v.State.(games.OthelloView)
	if state.LastMove == nil || state.LastMove.At != (othello.Point{Col: 4, Row: 5}) {
		t.Errorf("Expected configured strategy to play (4,5), got %+v", state.LastMove)
	}
}

func TestSetOthelloStrategy(t *testing.T) {
	l := newTestLauncher(nil)
	first, _ := l.Start("othello", "")

	l.SetOthelloStrategy(func() othello.Strategy {
		return othello.StrategyFunc(func(_ othello.Board, _ othello.Cell, moves []othello.Point) (othello.Point, error) {
			return moves[len(moves)-1], nil
		})
	})
	second, _ := l.Start("othello", "")

	v1, _ := first.Apply(games.Action{Type: "ai"})
	v2, _ := second.Apply(games.Action{Type: "ai"})
	if at := v1.State.(games.OthelloView).LastMove.At; at != (othello.Point{Col: 3, Row: 2}) {
		t.Errorf("Expected the earlier session to keep Greedy, got %v", at)
	}
	if at := v2.State.(games.OthelloView).LastMove.At; at != (othello.Point{Col: 4, Row: 5}) {
		t.Errorf("Expected the new strategy, got %v", at)
	}

	l.SetOthelloStrategy(nil)
	third, _ := l.Start("othello", "")
	v3, _ := third.Apply(games.Action{Type: "ai"})
	if at := v3.State.(games.OthelloView).LastMove.At; at != (othello.Point{Col: 3, Row: 2}) {
		t.Errorf("Expected Greedy after reset, got %v", at)
	}
}

func TestTickOnlyForTimerGames(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("memory", "")
	if _, ok := sess.Tick(); ok {
		t.Error("Memory should not tick")
	}
}

func TestRunDrivesSnakeToCrash(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("snake", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var frames []View
	sess.Run(ctx, time.Millisecond, func(v View) { frames = append(frames, v) })

	if len(frames) != 20 {
		t.Fatalf("Expected 20 frames before hitting the wall, got %d", len(frames))
	}
	if !frames[len(frames)-1].Finished {
		t.Error("Last frame should be the crash")
	}
	if _, ok := sess.Tick(); ok {
		t.Error("Crashed snake kept ticking")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("snake", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sess.Run(ctx, time.Hour, func(View) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run ignored cancellation")
	}
}

func TestConcurrentInput(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("snake", "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dirs := []string{"down", "right"}
			for j := 0; j < 10; j++ {
				_, _ = sess.Apply(games.Action{Type: "turn", Choice: dirs[(i+j)%2]})
				sess.Tick()
			}
		}(i)
	}
	wg.Wait()

	if v := sess.View(); v.Status != StatusActive {
		t.Errorf("Unexpected status %s", v.Status)
	}
}

func TestWithSQLiteLedger(t *testing.T) {
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	l := newTestLauncher(db)
	sess, _ := l.Start("omikuji", "")
	_, _ = sess.Apply(games.Action{Type: "draw"})
	res, err := l.Finish(sess.ID())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	saved, err := db.GetResult(res.ID)
	if err != nil {
		t.Fatalf("Result not in ledger: %v", err)
	}
	if saved.SessionID != sess.ID() || saved.Score != 1 {
		t.Errorf("Unexpected saved result %+v", saved)
	}

	again := newTestLauncher(db)
	if again.Total() != 1 {
		t.Errorf("Expected a new launcher to resume total 1, got %d", again.Total())
	}
}

func playOthelloOut(t *testing.T, sess *Session) View {
	t.Helper()
	var v View
	for i := 0; i < 100; i++ {
		var err error
		v, err = sess.Apply(games.Action{Type: "ai"})
		if err != nil {
			t.Fatalf("ai move %d failed: %v", i, err)
		}
		if v.Finished {
			return v
		}
	}
	t.Fatal("Greedy self-play did not finish")
	return v
}

func TestOthelloGameOverSettlesSession(t *testing.T) {
	rec := &mockRecorder{}
	l := newTestLauncher(rec)

	var ended []store.Result
	l.OnEnd(func(r store.Result) { ended = append(ended, r) })

	sess, _ := l.Start("othello", "")
	v := playOthelloOut(t, sess)

	state := v.State.(games.OthelloView)
	if state.Result == nil || v.Score != state.Result.Score || v.Score == 0 {
		t.Fatalf("Expected the final score in the view, got %d (%+v)", v.Score, state.Result)
	}
	if v.Status != StatusFinished {
		t.Errorf("Expected finished status, got %s", v.Status)
	}
	if len(ended) != 1 || ended[0].Score != v.Score || ended[0].Outcome != store.OutcomeFinished {
		t.Fatalf("Expected one end notification with score %d, got %+v", v.Score, ended)
	}
	if l.Total() != v.Score {
		t.Errorf("Expected total %d, got %d", v.Score, l.Total())
	}
	if len(rec.results) != 1 {
		t.Errorf("Expected one saved result, got %d", len(rec.results))
	}
	if len(l.Active()) != 0 {
		t.Error("Settled session still listed as active")
	}
}

func TestOthelloScoreSurvivesRestartAndFinish(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("othello", "")
	score := playOthelloOut(t, sess).Score

	if _, err := sess.Apply(games.Action{Type: "restart"}); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded on restart, got %v", err)
	}
	if _, err := l.Finish(sess.ID()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded on finish, got %v", err)
	}
	if _, err := l.Abandon(sess.ID()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded on abandon, got %v", err)
	}

	if l.Total() != score {
		t.Errorf("Expected total %d kept, got %d", score, l.Total())
	}
	if v := sess.View(); v.Score != score {
		t.Errorf("Expected view score %d, got %d", score, v.Score)
	}
	if h := l.History(0); len(h) != 1 || h[0].Score != score {
		t.Errorf("Expected one history entry with %d, got %+v", score, h)
	}
}

func TestAbandonedSessionReportsFinished(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("othello", "")
	if _, err := sess.Apply(games.Action{Type: "ai"}); err != nil {
		t.Fatalf("ai failed: %v", err)
	}

	if _, err := l.Abandon(sess.ID()); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	v := sess.View()
	if !v.Finished || v.Status != StatusAbandoned {
		t.Errorf("Expected abandoned session to read finished, got finished=%v status=%s", v.Finished, v.Status)
	}
}

func TestTimerGameOverSettlesSession(t *testing.T) {
	rec := &mockRecorder{}
	l := newTestLauncher(rec)
	var ended []store.Result
	l.OnEnd(func(r store.Result) { ended = append(ended, r) })

	sess, _ := l.Start("reflex", "")
	ticks := 0
	for {
		v, ok := sess.Tick()
		if !ok {
			break
		}
		ticks++
		if ticks > 1000 {
			t.Fatal("Reflex round never ended")
		}
		if v.Finished && v.Status != StatusFinished {
			t.Fatalf("Finished frame with status %s", v.Status)
		}
	}

	if v := sess.View(); v.Status != StatusFinished || !v.Finished {
		t.Errorf("Expected a settled session, got %+v", v)
	}
	if len(ended) != 1 || ended[0].Game != "reflex" {
		t.Fatalf("Expected one end notification, got %+v", ended)
	}
	if _, err := l.Finish(sess.ID()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Expected ErrSessionEnded, got %v", err)
	}
}

func TestRunUsesGamePace(t *testing.T) {
	l := newTestLauncher(nil)
	sess, _ := l.Start("clicker", "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	frames := 0
	sess.Run(ctx, time.Millisecond, func(View) { frames++ })
	if frames != 0 {
		t.Errorf("Clicker ticks once a second, got %d frames in 50ms", frames)
	}
}
