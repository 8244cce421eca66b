package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// PongGame is two-player pong on a 600×400 court, first to five points.
type PongGame struct{}

const (
	PongWidth     = 600
	PongHeight    = 400
	PongPaddle    = 80
	pongPaddleMax = PongHeight - PongPaddle
	pongBallMax   = PongHeight - 20
	pongLeftX     = 10 // paddle faces the ball bounces off
	pongRightX    = PongWidth - 30
	pongSpeed     = 5
	pongWinPoints = 5
)

var pongServe = GridPoint{X: 290, Y: 190}

// Spec returns metadata about Pong.
func (g *PongGame) Spec() GameSpec {
	return GameSpec{
		ID:          "pong",
		Name:        "Pong",
		Kind:        KindTimer,
		Description: "Two paddles, one ball; the first player to five points wins.",
		TickMS:      20,
	}
}

// New centres both paddles and serves toward the right.
func (g *PongGame) New(_ *engine.Stream) Session {
	s := &PongSession{}
	s.reset()
	return s
}

// PongSession is one match.
type PongSession struct {
	left, right int // paddle tops
	ball        GridPoint
	vel         GridPoint
	scoreLeft   int
	scoreRight  int
	ticks       int
}

func (s *PongSession) reset() {
	s.left, s.right = pongPaddleMax/2, pongPaddleMax/2
	s.ball = pongServe
	s.vel = GridPoint{X: pongSpeed, Y: pongSpeed}
	s.scoreLeft, s.scoreRight = 0, 0
	s.ticks = 0
}

// Apply handles "paddle" (choice left or right, number = paddle top),
// "step" and "restart".
func (s *PongSession) Apply(a Action) error {
	switch a.Type {
	case "paddle":
		if s.Finished() {
			return fmt.Errorf("%w: match over", ErrFinished)
		}
		y := min(max(a.Number, 0), pongPaddleMax)
		switch a.Choice {
		case "left":
			s.left = y
		case "right":
			s.right = y
		default:
			return fmt.Errorf("%w: paddle %q", ErrInvalidAction, a.Choice)
		}
		return nil
	case "step":
		if s.Finished() {
			return fmt.Errorf("%w: match over", ErrFinished)
		}
		s.Tick()
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: pong %q", ErrUnsupportedAction, a.Type)
	}
}

// Tick moves the ball one step, bouncing off walls and paddles.
func (s *PongSession) Tick() {
	if s.Finished() {
		return
	}
	s.ticks++
	next := GridPoint{X: s.ball.X + s.vel.X, Y: s.ball.Y + s.vel.Y}

	if next.Y <= 0 || next.Y >= pongBallMax {
		s.vel.Y = -s.vel.Y
	}
	if next.X <= pongLeftX && next.Y >= s.left && next.Y <= s.left+PongPaddle {
		s.vel.X = -s.vel.X
		next.X = pongLeftX
	}
	if next.X >= pongRightX && next.Y >= s.right && next.Y <= s.right+PongPaddle {
		s.vel.X = -s.vel.X
		next.X = pongRightX
	}

	switch {
	case next.X < 0:
		s.scoreRight++
		s.serve(pongSpeed)
	case next.X > PongWidth:
		s.scoreLeft++
		s.serve(-pongSpeed)
	default:
		s.ball = next
	}
}

// serve puts the ball back in the middle heading toward dx.
func (s *PongSession) serve(dx int) {
	s.ball = pongServe
	s.vel = GridPoint{X: dx, Y: pongSpeed}
}

// PongView is one rendered frame.
type PongView struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Left       int       `json:"left"`
	Right      int       `json:"right"`
	Ball       GridPoint `json:"ball"`
	ScoreLeft  int       `json:"score_left"`
	ScoreRight int       `json:"score_right"`
	Winner     string    `json:"winner,omitempty"`
	Tick       int       `json:"tick"`
}

// Snapshot implements Session.
func (s *PongSession) Snapshot() any {
	v := PongView{
		Width:      PongWidth,
		Height:     PongHeight,
		Left:       s.left,
		Right:      s.right,
		Ball:       s.ball,
		ScoreLeft:  s.scoreLeft,
		ScoreRight: s.scoreRight,
		Tick:       s.ticks,
	}
	if s.Finished() {
		v.Winner = "left"
		if s.scoreRight > s.scoreLeft {
			v.Winner = "right"
		}
	}
	return v
}

// Finished reports whether either side reached five points.
func (s *PongSession) Finished() bool {
	return s.scoreLeft >= pongWinPoints || s.scoreRight >= pongWinPoints
}

// Score is the better side's points × 10.
func (s *PongSession) Score() int {
	return max(s.scoreLeft, s.scoreRight) * 10
}
