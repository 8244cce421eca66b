package games

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asobiba/minigames/internal/engine"
)

// TypingGame drops words down a 600 pixel field for 60 seconds. Typing a
// falling word scores it; consecutive words build a combo bonus.
type TypingGame struct{}

const (
	TypingHeight      = 600
	TypingWidth       = 600
	typingTickMS      = 100
	typingTicks       = 60 * 1000 / typingTickMS
	typingSpawnEvery  = 1000 / typingTickMS // ticks
	typingLevelPoints = 50
)

var typingWords = []string{
	"hello", "goodbye", "thanks", "morning", "goodnight",
	"programming", "typing", "game", "computer", "internet",
	"keyboard", "mouse", "display", "software", "hardware",
	"algorithm", "database", "network", "security", "cloud",
	"application", "system", "server", "client", "protocol",
	"framework", "library", "interface", "design", "performance",
}

// Spec returns metadata about Typing.
func (g *TypingGame) Spec() GameSpec {
	return GameSpec{
		ID:          "typing",
		Name:        "Typing",
		Kind:        KindTimer,
		Description: "Type the falling words before they hit the floor.",
		TickMS:      typingTickMS,
	}
}

// New starts an empty field at level 1.
func (g *TypingGame) New(rng *engine.Stream) Session {
	s := &TypingSession{rng: rng}
	s.reset()
	return s
}

// TypingWord is one falling word.
type TypingWord struct {
	ID     int     `json:"id"`
	Text   string  `json:"text"`
	X      int     `json:"x"`
	Y      float64 `json:"y"`
	Speed  float64 `json:"speed"` // pixels per tick
	Points int     `json:"points"`
}

// TypingSession is one 60 second round.
type TypingSession struct {
	rng      *engine.Stream
	words    []TypingWord
	nextID   int
	ticks    int
	score    int
	level    int
	combo    int
	maxCombo int
	typed    int
	attempts int
	missed   int
	over     bool
	onOver   func(score int)
}

func (s *TypingSession) reset() {
	s.words = nil
	s.ticks = 0
	s.score = 0
	s.level = 1
	s.combo = 0
	s.maxCombo = 0
	s.typed = 0
	s.attempts = 0
	s.missed = 0
	s.over = false
}

// OnGameOver implements Ender.
func (s *TypingSession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

// Tick drops every word, clears the ones that landed, and spawns once a
// second.
func (s *TypingSession) Tick() {
	if s.over {
		return
	}
	s.ticks++
	for i := range s.words {
		s.words[i].Y += s.words[i].Speed
	}
	s.words = slices.DeleteFunc(s.words, func(w TypingWord) bool {
		if w.Y >= TypingHeight {
			s.missed++
			return true
		}
		return false
	})
	if s.ticks%typingSpawnEvery == 0 && s.rng.Float() < 0.3+float64(s.level)*0.05 {
		s.spawn()
	}
	if s.ticks >= typingTicks {
		s.over = true
		if s.onOver != nil {
			s.onOver(s.score)
		}
	}
}

// spawn adds a word. Words fall faster and pay less as the level rises.
func (s *TypingSession) spawn() {
	perFrame := max(1, 3-float64(s.level)*0.2)
	w := TypingWord{
		ID:     s.nextID,
		Text:   typingWords[s.rng.Intn(len(typingWords))],
		X:      s.rng.Intn(TypingWidth),
		Speed:  perFrame * typingTickMS / 16,
		Points: max(1, 5-s.level/2),
	}
	s.nextID++
	s.words = append(s.words, w)
}

// Apply handles "type" (choice = the typed word) and "restart". A word that
// matches nothing on screen is a miss, not an error.
func (s *TypingSession) Apply(a Action) error {
	switch a.Type {
	case "type":
		if s.over {
			return fmt.Errorf("%w: time is up", ErrFinished)
		}
		text := strings.TrimSpace(a.Choice)
		if text == "" {
			return fmt.Errorf("%w: empty word", ErrInvalidAction)
		}
		s.submit(text)
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: typing %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *TypingSession) submit(text string) {
	s.attempts++
	i := slices.IndexFunc(s.words, func(w TypingWord) bool { return w.Text == text })
	if i < 0 {
		s.combo = 0
		return
	}
	w := s.words[i]
	s.words = slices.Delete(s.words, i, i+1)

	s.typed++
	s.combo++
	s.maxCombo = max(s.maxCombo, s.combo)
	s.score += w.Points * (10 + s.combo) / 10
	if s.score >= s.level*typingLevelPoints {
		s.level++
	}
}

// TypingView is one rendered frame.
type TypingView struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Words    []TypingWord `json:"words"`
	Score    int          `json:"score"`
	Level    int          `json:"level"`
	Combo    int          `json:"combo"`
	MaxCombo int          `json:"max_combo"`
	Missed   int          `json:"missed"`
	WPM      int          `json:"wpm"`
	Accuracy int          `json:"accuracy"` // percent of submissions that hit a word
	TimeLeft int          `json:"time_left"`
}

// Snapshot implements Session.
func (s *TypingSession) Snapshot() any {
	v := TypingView{
		Width:    TypingWidth,
		Height:   TypingHeight,
		Words:    append([]TypingWord(nil), s.words...),
		Score:    s.score,
		Level:    s.level,
		Combo:    s.combo,
		MaxCombo: s.maxCombo,
		Missed:   s.missed,
		Accuracy: 100,
		TimeLeft: (typingTicks - s.ticks) * typingTickMS / 1000,
	}
	if s.attempts > 0 {
		v.Accuracy = s.typed * 100 / s.attempts
	}
	if s.ticks > 0 {
		v.WPM = s.typed * 60 * 1000 / (s.ticks * typingTickMS)
	}
	return v
}

// Finished implements Session.
func (s *TypingSession) Finished() bool {
	return s.over
}

// Score implements Session.
func (s *TypingSession) Score() int {
	return s.score
}
