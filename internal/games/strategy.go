package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// StrategyGame is a two-player territory game on a 5×5 grid. Players take
// turns claiming a cell next to their own land; resource cells pay 2 and
// taking enemy land steals 1. After 20 turns the richer player wins.
type StrategyGame struct{}

const (
	StrategySide      = 5
	StrategyTurns     = 20
	strategyResources = 3
	strategyResource  = 2
	strategySteal     = 1
)

// Spec returns metadata about Strategy.
func (g *StrategyGame) Spec() GameSpec {
	return GameSpec{
		ID:          "strategy",
		Name:        "Strategy",
		Kind:        KindTurn,
		Description: "Expand your territory and collect resources over 20 turns.",
	}
}

// New gives each player two opposite corners and scatters three resources.
func (g *StrategyGame) New(rng *engine.Stream) Session {
	s := &StrategySession{rng: rng}
	s.reset()
	return s
}

// StrategyCell is one grid cell. Owner is 0 for neutral land.
type StrategyCell struct {
	Owner    int  `json:"owner"`
	Resource bool `json:"resource"`
}

// StrategySession is one match between players 1 and 2.
type StrategySession struct {
	rng       *engine.Stream
	grid      [StrategySide][StrategySide]StrategyCell // [row][col]
	player    int
	resources [3]int // by player; index 0 unused
	turn      int
	over      bool
	onOver    func(score int)
}

func (s *StrategySession) reset() {
	s.grid = [StrategySide][StrategySide]StrategyCell{}
	last := StrategySide - 1
	s.grid[0][0].Owner, s.grid[last][last].Owner = 1, 1
	s.grid[0][last].Owner, s.grid[last][0].Owner = 2, 2
	for placed := 0; placed < strategyResources; {
		c := &s.grid[s.rng.Intn(StrategySide)][s.rng.Intn(StrategySide)]
		if c.Owner == 0 && !c.Resource {
			c.Resource = true
			placed++
		}
	}
	s.player = 1
	s.resources = [3]int{}
	s.turn = 1
	s.over = false
}

// OnGameOver implements Ender.
func (s *StrategySession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

// selectable lists the cells the player to move may claim: any cell next to
// their land that they do not own, in row-major order.
func (s *StrategySession) selectable() []GridPoint {
	var out []GridPoint
	for y := 0; y < StrategySide; y++ {
		for x := 0; x < StrategySide; x++ {
			if s.claimable(x, y) {
				out = append(out, GridPoint{X: x, Y: y})
			}
		}
	}
	return out
}

func (s *StrategySession) claimable(x, y int) bool {
	if x < 0 || x >= StrategySide || y < 0 || y >= StrategySide || s.grid[y][x].Owner == s.player {
		return false
	}
	for _, d := range [4]GridPoint{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
		nx, ny := x+d.X, y+d.Y
		if nx >= 0 && nx < StrategySide && ny >= 0 && ny < StrategySide && s.grid[ny][nx].Owner == s.player {
			return true
		}
	}
	return false
}

// Apply handles "claim" (column, row) and "restart".
func (s *StrategySession) Apply(a Action) error {
	switch a.Type {
	case "claim":
		if s.over {
			return fmt.Errorf("%w: match over", ErrFinished)
		}
		return s.claim(a.Column, a.Row)
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: strategy %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *StrategySession) claim(x, y int) error {
	if !s.claimable(x, y) {
		return fmt.Errorf("%w: cell (%d,%d) is not claimable", ErrInvalidAction, x, y)
	}
	c := &s.grid[y][x]
	if c.Resource {
		s.resources[s.player] += strategyResource
		c.Resource = false
	}
	if c.Owner != 0 {
		s.resources[s.player] += strategySteal
		s.resources[c.Owner] = max(0, s.resources[c.Owner]-strategySteal)
	}
	c.Owner = s.player

	if s.turn >= StrategyTurns {
		s.over = true
		if s.onOver != nil {
			s.onOver(s.Score())
		}
		return nil
	}
	s.player = 3 - s.player
	s.turn++
	return nil
}

// StrategyView is the render view.
type StrategyView struct {
	Grid       [StrategySide][StrategySide]StrategyCell `json:"grid"`
	Player     int                                      `json:"player"`
	Turn       int                                      `json:"turn"`
	MaxTurns   int                                      `json:"max_turns"`
	Resources  [2]int                                   `json:"resources"`
	Selectable []GridPoint                              `json:"selectable"`
	Winner     string                                   `json:"winner,omitempty"` // "player1", "player2" or "draw"
}

// Snapshot implements Session.
func (s *StrategySession) Snapshot() any {
	v := StrategyView{
		Grid:      s.grid,
		Player:    s.player,
		Turn:      s.turn,
		MaxTurns:  StrategyTurns,
		Resources: [2]int{s.resources[1], s.resources[2]},
	}
	if !s.over {
		v.Selectable = s.selectable()
		return v
	}
	switch p1, p2 := s.resources[1], s.resources[2]; {
	case p1 > p2:
		v.Winner = "player1"
	case p2 > p1:
		v.Winner = "player2"
	default:
		v.Winner = "draw"
	}
	return v
}

// Finished implements Session.
func (s *StrategySession) Finished() bool {
	return s.over
}

// Score is the richer player's resources once the match is over, else 0.
func (s *StrategySession) Score() int {
	if !s.over {
		return 0
	}
	return max(s.resources[1], s.resources[2])
}
