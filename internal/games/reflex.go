package games

import (
	"fmt"
	"slices"

	"github.com/asobiba/minigames/internal/engine"
)

// ReflexGame spawns short-lived targets for 30 seconds. Hitting targets in a
// row builds a combo bonus; red forbidden targets cost points and the combo.
type ReflexGame struct{}

const (
	ReflexWidth       = 800
	ReflexHeight      = 600
	reflexTickMS      = 500
	reflexTicks       = 30 * 1000 / reflexTickMS
	reflexTargetLife  = 2000 / reflexTickMS // ticks
	reflexForbidden   = 0.2
	reflexPenalty     = 5
	reflexLevelPoints = 50
)

// Spec returns metadata about Reflex.
func (g *ReflexGame) Spec() GameSpec {
	return GameSpec{
		ID:          "reflex",
		Name:        "Reflex",
		Kind:        KindTimer,
		Description: "Hit targets before they vanish; avoid the red ones.",
		TickMS:      reflexTickMS,
	}
}

// New starts an empty field at level 1.
func (g *ReflexGame) New(rng *engine.Stream) Session {
	s := &ReflexSession{rng: rng}
	s.reset()
	return s
}

// ReflexTarget is one target on the field.
type ReflexTarget struct {
	ID        int  `json:"id"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Size      int  `json:"size"`
	Points    int  `json:"points"`
	Forbidden bool `json:"forbidden"`
	born      int
}

// ReflexSession is one 30 second round.
type ReflexSession struct {
	rng      *engine.Stream
	targets  []ReflexTarget
	nextID   int
	ticks    int
	score    int
	level    int
	combo    int
	maxCombo int
	over     bool
	onOver   func(score int)
}

func (s *ReflexSession) reset() {
	s.targets = nil
	s.ticks = 0
	s.score = 0
	s.level = 1
	s.combo = 0
	s.maxCombo = 0
	s.over = false
}

// OnGameOver implements Ender.
func (s *ReflexSession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

// Tick expires old targets, maybe spawns one, and runs the clock.
func (s *ReflexSession) Tick() {
	if s.over {
		return
	}
	s.ticks++
	s.targets = slices.DeleteFunc(s.targets, func(t ReflexTarget) bool {
		return s.ticks-t.born >= reflexTargetLife
	})
	if s.rng.Float() < 0.3+float64(s.level)*0.05 {
		s.spawn()
	}
	if s.ticks >= reflexTicks {
		s.over = true
		if s.onOver != nil {
			s.onOver(s.score)
		}
	}
}

// spawn adds a target. Targets shrink and pay less as the level rises.
func (s *ReflexSession) spawn() {
	size := max(30, 70-s.level*5)
	t := ReflexTarget{
		ID:        s.nextID,
		Size:      size,
		Points:    max(1, 5-s.level/2),
		Forbidden: s.rng.Float() < reflexForbidden,
		born:      s.ticks,
	}
	t.X = s.rng.Intn(ReflexWidth - size)
	t.Y = s.rng.Intn(ReflexHeight - size)
	s.nextID++
	s.targets = append(s.targets, t)
}

// Apply handles "hit" (index = target id), "reset_combo" and "restart".
func (s *ReflexSession) Apply(a Action) error {
	switch a.Type {
	case "hit":
		if s.over {
			return fmt.Errorf("%w: time is up", ErrFinished)
		}
		return s.hit(a.Index)
	case "reset_combo":
		s.combo = 0
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: reflex %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *ReflexSession) hit(id int) error {
	i := slices.IndexFunc(s.targets, func(t ReflexTarget) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: target %d is gone", ErrInvalidAction, id)
	}
	t := s.targets[i]
	s.targets = slices.Delete(s.targets, i, i+1)

	if t.Forbidden {
		s.combo = 0
		s.score = max(0, s.score-reflexPenalty)
		return nil
	}
	s.combo++
	s.maxCombo = max(s.maxCombo, s.combo)
	// Each combo step adds 10% to the target's value.
	s.score += t.Points * (10 + s.combo) / 10
	if s.score >= s.level*reflexLevelPoints {
		s.level++
	}
	return nil
}

// ReflexView is one rendered frame.
type ReflexView struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Targets  []ReflexTarget `json:"targets"`
	Score    int            `json:"score"`
	Level    int            `json:"level"`
	Combo    int            `json:"combo"`
	MaxCombo int            `json:"max_combo"`
	TimeLeft int            `json:"time_left"`
}

// Snapshot implements Session.
func (s *ReflexSession) Snapshot() any {
	return ReflexView{
		Width:    ReflexWidth,
		Height:   ReflexHeight,
		Targets:  append([]ReflexTarget(nil), s.targets...),
		Score:    s.score,
		Level:    s.level,
		Combo:    s.combo,
		MaxCombo: s.maxCombo,
		TimeLeft: (reflexTicks - s.ticks) * reflexTickMS / 1000,
	}
}

// Finished implements Session.
func (s *ReflexSession) Finished() bool {
	return s.over
}

// Score implements Session.
func (s *ReflexSession) Score() int {
	return s.score
}
