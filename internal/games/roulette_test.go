package games

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRouletteLanding(t *testing.T) {
	tests := []struct {
		rotation string
		want     int
	}{
		{"0", 0},
		{"44.99", 0},
		{"45", 1},
		{"359.5", 7},
		{"820", 2},
		{"3600", 0},
	}
	for _, tt := range tests {
		if got := rouletteLanding(decimal.RequireFromString(tt.rotation)); got != tt.want {
			t.Errorf("rouletteLanding(%s) = %d, want %d", tt.rotation, got, tt.want)
		}
	}
}

func TestSpinDegrees(t *testing.T) {
	tests := []struct {
		turns, extra float64
		want         string
	}{
		{0, 0, "1800"},
		{0.5, 0, "2700"},
		{0, 0.25, "1890"},
	}
	for _, tt := range tests {
		got := spinDegrees(tt.turns, tt.extra)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("spinDegrees(%v, %v) = %s, want %s", tt.turns, tt.extra, got, tt.want)
		}
	}

	top := spinDegrees(0.9999999, 0.9999999)
	if top.GreaterThanOrEqual(decimal.NewFromInt(11 * 360)) {
		t.Errorf("Spin exceeded 11 turns: %s", top)
	}
}

func TestRouletteThreeSpins(t *testing.T) {
	s := (&RouletteGame{}).New(testStream())

	for i := 0; i < rouletteSpins; i++ {
		if s.Score() != 0 {
			t.Errorf("Score before the last spin should be 0, got %d", s.Score())
		}
		if err := s.Apply(Action{Type: "spin"}); err != nil {
			t.Fatalf("spin %d failed: %v", i, err)
		}
	}

	view := s.Snapshot().(RouletteView)
	if len(view.Spins) != 3 || view.Remaining != 0 {
		t.Fatalf("Unexpected view %+v", view)
	}
	last := view.Spins[2]
	if last.Value < 1 || last.Value > 8 || last.Value != last.Segment+1 {
		t.Errorf("Unexpected final spin %+v", last)
	}
	if !s.Finished() || s.Score() != last.Value {
		t.Errorf("Expected score %d, got %d", last.Value, s.Score())
	}
	if err := s.Apply(Action{Type: "spin"}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished, got %v", err)
	}
}
