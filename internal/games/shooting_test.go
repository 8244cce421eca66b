package games

import (
	"errors"
	"testing"
)

func newShooting() *ShootingSession {
	return (&ShootingGame{}).New(testStream()).(*ShootingSession)
}

func TestShootingMoveAndFire(t *testing.T) {
	s := newShooting()

	_ = s.Apply(Action{Type: "move", Number: 5000})
	if s.shipX != ShootingWidth-shootingShipWidth {
		t.Errorf("Expected ship clamped to the edge, got %d", s.shipX)
	}
	_ = s.Apply(Action{Type: "move", Number: 100})
	if err := s.Apply(Action{Type: "fire"}); err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	if len(s.bullets) != 1 || s.bullets[0] != (GridPoint{123, shootingGunY}) {
		t.Errorf("Expected a bullet at (123,%d), got %v", shootingGunY, s.bullets)
	}
}

func TestShootingHitScores(t *testing.T) {
	tests := []struct {
		name  string
		boss  bool
		score int
	}{
		{"normal", false, shootingEnemyScore},
		{"boss", true, shootingBossScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newShooting()
			s.enemies = []ShootingEnemy{{X: 100, Y: 200, Boss: tt.boss}}
			s.bullets = []GridPoint{{X: 110, Y: 230}}

			s.Tick()
			if s.score != tt.score {
				t.Errorf("Expected %d points, got %d", tt.score, s.score)
			}
			for _, e := range s.enemies {
				if e.X == 100 {
					t.Error("Hit enemy still on screen")
				}
			}
			if len(s.bullets) != 0 {
				t.Error("Bullet survived the hit")
			}
		})
	}
}

func TestShootingLivesAndGameOver(t *testing.T) {
	s := newShooting()
	var ends []int
	s.OnGameOver(func(score int) { ends = append(ends, score) })
	s.score = 40
	s.lives = 1
	s.enemies = []ShootingEnemy{{X: 10, Y: ShootingHeight + 1}}

	s.Tick()
	if !s.Finished() {
		t.Fatal("Expected the last life to end the game")
	}
	if len(ends) != 1 || ends[0] != 40 {
		t.Errorf("Expected one game over with 40, got %v", ends)
	}
	s.Tick()
	if len(ends) != 1 {
		t.Error("Game over reported twice")
	}
	if err := s.Apply(Action{Type: "fire"}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished, got %v", err)
	}
	if s.Snapshot().(ShootingView).Lives != 0 {
		t.Error("Expected zero lives in the view")
	}
}

func TestShootingSpawnsFasterWithLevel(t *testing.T) {
	s := newShooting()
	if s.spawnEvery() != 50 {
		t.Errorf("Expected a spawn every 50 ticks at level 1, got %d", s.spawnEvery())
	}
	s.level = 5
	if s.spawnEvery() != 10 {
		t.Errorf("Expected a spawn every 10 ticks at level 5, got %d", s.spawnEvery())
	}

	s.level = 1
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	if len(s.enemies) != 1 || s.enemies[0].Y != -shootingEnemySize {
		t.Errorf("Expected one fresh enemy after a second, got %+v", s.enemies)
	}
}
