package games

import (
	"errors"
	"sort"
	"sync"

	"github.com/asobiba/minigames/internal/engine"
)

var (
	// ErrUnsupportedAction is returned for an action type the game does not handle.
	ErrUnsupportedAction = errors.New("games: unsupported action")
	// ErrFinished is returned for input after the session has ended.
	ErrFinished = errors.New("games: session finished")
	// ErrInvalidAction is returned when an action carries out-of-range input.
	ErrInvalidAction = errors.New("games: invalid action")
)

// Kind says how a game advances.
type Kind string

const (
	KindTurn    Kind = "turn"    // advances on player input
	KindTimer   Kind = "timer"   // advances on a periodic tick
	KindInstant Kind = "instant" // a single draw
)

// GameSpec describes a registered game.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	// TickMS is the pace of a timer game. Zero leaves it to the shell.
	TickMS int `json:"tick_ms,omitempty"`
}

// Action is the input envelope shared by every game. Each game reads only
// the fields its action types need.
type Action struct {
	Type   string `json:"type"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
	Index  int    `json:"index"`
	Choice string `json:"choice,omitempty"`
	Number int    `json:"number"`
}

// Session is one running game. Sessions are not safe for concurrent use;
// the launcher serialises calls.
type Session interface {
	// Apply feeds one input event. Rejected input leaves the session as it was.
	Apply(a Action) error
	// Snapshot returns a JSON-serialisable render view.
	Snapshot() any
	// Finished reports whether the game reached its natural end.
	Finished() bool
	// Score is what the session reports to the launcher if ended now.
	Score() int
}

// Ticker is implemented by timer-driven sessions (snake, clicker, pong,
// reflex, typing, shooting, puzzle).
type Ticker interface {
	Tick()
}

// Ender is implemented by sessions that end on their own. fn receives the
// final score once per completed game, from inside Apply or Tick.
type Ender interface {
	OnGameOver(fn func(score int))
}

// Game creates sessions of one kind of mini-game.
type Game interface {
	Spec() GameSpec
	New(rng *engine.Stream) Session
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Game)
)

// RegisterGame adds a game to the registry, replacing any game with the same ID.
func RegisterGame(game Game) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[game.Spec().ID] = game
}

// GetGame retrieves a game by ID.
func GetGame(id string) (Game, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	game, ok := registry[id]
	return game, ok
}

// ListGames returns the specs of all registered games sorted by ID.
func ListGames() []GameSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]GameSpec, 0, len(registry))
	for _, g := range registry {
		specs = append(specs, g.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

func init() {
	RegisterGame(&OthelloGame{})
	RegisterGame(&TicTacToeGame{})
	RegisterGame(&BlackjackGame{})
	RegisterGame(&JankenGame{})
	RegisterGame(&NumberGuessGame{})
	RegisterGame(&MemoryGame{})
	RegisterGame(&RouletteGame{})
	RegisterGame(&SnakeGame{})
	RegisterGame(&OmikujiGame{})
	RegisterGame(&ClickerGame{})
	RegisterGame(&PongGame{})
	RegisterGame(&ReflexGame{})
	RegisterGame(&TypingGame{})
	RegisterGame(&ShootingGame{})
	RegisterGame(&PuzzleGame{})
	RegisterGame(&StrategyGame{})
}
