package store

import (
	"errors"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestSaveAndGetResult(t *testing.T) {
	db := newTestDB(t)

	r := &Result{
		SessionID:  "session-1",
		Game:       "othello",
		Score:      40,
		Outcome:    OutcomeFinished,
		ServerSeed: "server",
		ClientSeed: "client",
		Nonce:      3,
		DurationMS: 1500,
	}
	if err := db.SaveResult(r); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	if r.ID == "" {
		t.Error("Expected an ID to be assigned")
	}
	if r.ServerSeedHash == "" || r.ServerSeedHash == "server" {
		t.Errorf("Expected hashed server seed, got %q", r.ServerSeedHash)
	}

	got, err := db.GetResult(r.ID)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}
	if got.Game != "othello" || got.Score != 40 || got.Outcome != OutcomeFinished {
		t.Errorf("Unexpected result %+v", got)
	}
	if got.ServerSeedHash != r.ServerSeedHash || got.ClientSeed != "client" || got.Nonce != 3 {
		t.Errorf("Seed data not round-tripped: %+v", got)
	}
	if got.DurationMS != 1500 {
		t.Errorf("Expected duration 1500, got %d", got.DurationMS)
	}
	if got.ServerSeed != "" {
		t.Error("Plain server seed must not be stored")
	}
}

func TestGetResultNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetResult("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveResultRejectsDuplicateSession(t *testing.T) {
	db := newTestDB(t)

	first := &Result{SessionID: "dup", Game: "janken", Score: 10, Outcome: OutcomeFinished}
	if err := db.SaveResult(first); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}
	second := &Result{SessionID: "dup", Game: "janken", Score: 10, Outcome: OutcomeFinished}
	if err := db.SaveResult(second); err == nil {
		t.Error("Expected a session to be recorded only once")
	}
}

func TestListResults(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	results := []*Result{
		{SessionID: "s1", Game: "othello", Score: 40, Outcome: OutcomeFinished, CreatedAt: base},
		{SessionID: "s2", Game: "snake", Score: 30, Outcome: OutcomeFinished, CreatedAt: base.Add(time.Minute)},
		{SessionID: "s3", Game: "othello", Score: 0, Outcome: OutcomeAbandoned, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range results {
		if err := db.SaveResult(r); err != nil {
			t.Fatalf("Failed to save result %s: %v", r.SessionID, err)
		}
	}

	all, err := db.ListResults(ResultsQuery{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if all.TotalCount != 3 || len(all.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d/%d", all.TotalCount, len(all.Results))
	}
	if all.Results[0].SessionID != "s3" || all.Results[2].SessionID != "s1" {
		t.Errorf("Expected newest first, got %s..%s", all.Results[0].SessionID, all.Results[2].SessionID)
	}

	othello, err := db.ListResults(ResultsQuery{Game: "othello", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("Failed to list othello results: %v", err)
	}
	if othello.TotalCount != 2 {
		t.Errorf("Expected 2 othello results, got %d", othello.TotalCount)
	}
	for _, r := range othello.Results {
		if r.Game != "othello" {
			t.Errorf("Filter leaked game %s", r.Game)
		}
	}

	page, err := db.ListResults(ResultsQuery{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("Failed to list page 2: %v", err)
	}
	if len(page.Results) != 1 || page.TotalPages != 2 {
		t.Errorf("Expected 1 result on page 2 of 2, got %d of %d", len(page.Results), page.TotalPages)
	}

	defaults, err := db.ListResults(ResultsQuery{})
	if err != nil {
		t.Fatalf("Failed to list with defaults: %v", err)
	}
	if defaults.Page != 1 || defaults.PerPage != 50 {
		t.Errorf("Expected defaults 1/50, got %d/%d", defaults.Page, defaults.PerPage)
	}
}

func TestListResultsEmpty(t *testing.T) {
	db := newTestDB(t)

	list, err := db.ListResults(ResultsQuery{Game: "memory"})
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if list.Results == nil || len(list.Results) != 0 || list.TotalPages != 0 {
		t.Errorf("Expected empty non-nil page, got %+v", list)
	}
}

func TestTotalScoreAndStats(t *testing.T) {
	db := newTestDB(t)

	total, err := db.TotalScore()
	if err != nil {
		t.Fatalf("TotalScore failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected 0 on an empty ledger, got %d", total)
	}

	for i, r := range []Result{
		{Game: "othello", Score: 40},
		{Game: "othello", Score: 35},
		{Game: "omikuji", Score: 1},
	} {
		r.SessionID = string(rune('a' + i))
		r.Outcome = OutcomeFinished
		if err := db.SaveResult(&r); err != nil {
			t.Fatalf("Failed to save result: %v", err)
		}
	}

	total, err = db.TotalScore()
	if err != nil {
		t.Fatalf("TotalScore failed: %v", err)
	}
	if total != 76 {
		t.Errorf("Expected total 76, got %d", total)
	}

	stats, err := db.GameStats()
	if err != nil {
		t.Fatalf("GameStats failed: %v", err)
	}
	want := []GameStat{
		{Game: "omikuji", Played: 1, Total: 1, Best: 1},
		{Game: "othello", Played: 2, Total: 75, Best: 40},
	}
	if len(stats) != len(want) {
		t.Fatalf("Expected %d stats, got %d", len(want), len(stats))
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}
