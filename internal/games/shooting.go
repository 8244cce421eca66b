package games

import (
	"fmt"
	"slices"

	"github.com/asobiba/minigames/internal/engine"
)

// ShootingGame is a vertical shooter. Enemies fall from the top; each one
// that reaches the bottom costs a life and the game ends with the third.
type ShootingGame struct{}

const (
	ShootingWidth      = 800
	ShootingHeight     = 600
	shootingTickMS     = 20
	shootingShipWidth  = 50
	shootingEnemySize  = 30
	shootingGunY       = ShootingHeight - 100
	shootingBulletStep = 10
	shootingLives      = 3
	shootingBossChance = 0.1
	shootingEnemyScore = 10
	shootingBossScore  = 50
	shootingLevelScore = 100
)

// Spec returns metadata about Shooting.
func (g *ShootingGame) Spec() GameSpec {
	return GameSpec{
		ID:          "shooting",
		Name:        "Shooting",
		Kind:        KindTimer,
		Description: "Shoot the falling enemies; three that get past end the game.",
		TickMS:      shootingTickMS,
	}
}

// New centres the ship with three lives.
func (g *ShootingGame) New(rng *engine.Stream) Session {
	s := &ShootingSession{rng: rng}
	s.reset()
	return s
}

// ShootingEnemy is one falling enemy. Bosses fall slower and pay more.
type ShootingEnemy struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Boss bool `json:"boss"`
}

// ShootingSession is one run.
type ShootingSession struct {
	rng     *engine.Stream
	shipX   int
	bullets []GridPoint
	enemies []ShootingEnemy
	score   int
	level   int
	lives   int
	ticks   int
	onOver  func(score int)
}

func (s *ShootingSession) reset() {
	s.shipX = (ShootingWidth - shootingShipWidth) / 2
	s.bullets = nil
	s.enemies = nil
	s.score = 0
	s.level = 1
	s.lives = shootingLives
	s.ticks = 0
}

// OnGameOver implements Ender.
func (s *ShootingSession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

// Apply handles "move" (number = ship x), "fire" and "restart".
func (s *ShootingSession) Apply(a Action) error {
	switch a.Type {
	case "move":
		if s.Finished() {
			return fmt.Errorf("%w: ship destroyed", ErrFinished)
		}
		s.shipX = min(max(a.Number, 0), ShootingWidth-shootingShipWidth)
		return nil
	case "fire":
		if s.Finished() {
			return fmt.Errorf("%w: ship destroyed", ErrFinished)
		}
		s.bullets = append(s.bullets, GridPoint{X: s.shipX + shootingShipWidth/2 - 2, Y: shootingGunY})
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: shooting %q", ErrUnsupportedAction, a.Type)
	}
}

// spawnEvery is the spawn interval in ticks, one second divided by level.
func (s *ShootingSession) spawnEvery() int {
	return max(1, 1000/s.level/shootingTickMS)
}

// Tick moves bullets and enemies, resolves hits and spawns enemies.
func (s *ShootingSession) Tick() {
	if s.Finished() {
		return
	}
	s.ticks++

	s.bullets = slices.DeleteFunc(s.bullets, func(b GridPoint) bool { return b.Y < -15 })
	for i := range s.bullets {
		s.bullets[i].Y -= shootingBulletStep
	}

	s.enemies = slices.DeleteFunc(s.enemies, func(e ShootingEnemy) bool {
		if e.Y > ShootingHeight {
			s.lives--
			return true
		}
		return false
	})
	for i := range s.enemies {
		if s.enemies[i].Boss {
			s.enemies[i].Y++
		} else {
			s.enemies[i].Y += 2
		}
	}

	s.collide()
	if s.score >= s.level*shootingLevelScore {
		s.level++
	}
	if s.ticks%s.spawnEvery() == 0 {
		s.enemies = append(s.enemies, ShootingEnemy{
			X:    s.rng.Intn(ShootingWidth - shootingEnemySize),
			Y:    -shootingEnemySize,
			Boss: s.rng.Float() < shootingBossChance,
		})
	}

	if s.Finished() && s.onOver != nil {
		s.onOver(s.score)
	}
}

// collide removes every enemy hit by a bullet along with that bullet.
func (s *ShootingSession) collide() {
	for i := len(s.enemies) - 1; i >= 0; i-- {
		e := s.enemies[i]
		j := slices.IndexFunc(s.bullets, func(b GridPoint) bool {
			return b.X >= e.X && b.X <= e.X+shootingEnemySize &&
				b.Y >= e.Y && b.Y <= e.Y+shootingEnemySize
		})
		if j < 0 {
			continue
		}
		s.bullets = slices.Delete(s.bullets, j, j+1)
		s.enemies = slices.Delete(s.enemies, i, i+1)
		if e.Boss {
			s.score += shootingBossScore
		} else {
			s.score += shootingEnemyScore
		}
	}
}

// ShootingView is one rendered frame.
type ShootingView struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	ShipX   int             `json:"ship_x"`
	Bullets []GridPoint     `json:"bullets"`
	Enemies []ShootingEnemy `json:"enemies"`
	Score   int             `json:"score"`
	Level   int             `json:"level"`
	Lives   int             `json:"lives"`
}

// Snapshot implements Session.
func (s *ShootingSession) Snapshot() any {
	return ShootingView{
		Width:   ShootingWidth,
		Height:  ShootingHeight,
		ShipX:   s.shipX,
		Bullets: append([]GridPoint(nil), s.bullets...),
		Enemies: append([]ShootingEnemy(nil), s.enemies...),
		Score:   s.score,
		Level:   s.level,
		Lives:   max(s.lives, 0),
	}
}

// Finished reports whether every life is gone.
func (s *ShootingSession) Finished() bool {
	return s.lives <= 0
}

// Score implements Session.
func (s *ShootingSession) Score() int {
	return s.score
}
