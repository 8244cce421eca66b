package main

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/othello"
)

type ui struct {
	app      *tview.Application
	board    *tview.Table
	status   *tview.TextView
	layout   *tview.Flex
	launcher *launcher.Launcher
	sess     *launcher.Session
	human    othello.Cell
	opponent string
	thinking atomic.Bool
	logger   *log.Logger
}

func newUI(l *launcher.Launcher, human othello.Cell, opponent string, logger *log.Logger) *ui {
	u := &ui{
		app:      tview.NewApplication(),
		board:    tview.NewTable(),
		status:   tview.NewTextView(),
		launcher: l,
		human:    human,
		opponent: opponent,
		logger:   logger,
	}

	u.board.SetSelectable(true, true).
		SetBorders(true).
		SetBorder(true).
		SetTitleAlign(tview.AlignLeft).
		SetTitleColor(tcell.ColorGreen).
		SetBorderColor(tcell.ColorGreen)
	u.board.SetSelectedFunc(u.place)

	u.status.SetDynamicColors(true).SetBorder(true).SetTitle(" Score ")
	u.layout = tview.NewFlex().
		AddItem(u.board, 0, 1, true).
		AddItem(u.status, 40, 1, false)
	return u
}

func (u *ui) run() error {
	u.newGame()
	u.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			u.quit()
			return nil
		}
		return ev
	})
	u.app.SetRoot(u.layout, true).SetFocus(u.board)
	return u.app.Run()
}

func (u *ui) newGame() {
	sess, err := u.launcher.Start("othello", "")
	if err != nil {
		u.logger.Printf("start_failed err=%v", err)
		return
	}
	u.sess = sess
	u.draw()
	u.advance()
}

func (u *ui) state() games.OthelloView {
	return u.sess.View().State.(games.OthelloView)
}

func (u *ui) place(row, col int) {
	if u.thinking.Load() {
		return
	}
	st := u.state()
	if st.Result != nil || st.Turn != u.human {
		return
	}
	if _, err := u.sess.Apply(games.Action{Type: "place", Column: col, Row: row}); err != nil {
		u.logger.Printf("place_rejected col=%d row=%d err=%v", col, row, err)
		return
	}
	u.draw()
	u.advance()
}

// advance lets the computer move while it is its turn, then checks for the end.
func (u *ui) advance() {
	st := u.state()
	if st.Result != nil {
		u.gameOver()
		return
	}
	if st.Turn == u.human {
		return
	}

	u.thinking.Store(true)
	go func() {
		if _, err := u.sess.Apply(games.Action{Type: "ai"}); err != nil {
			u.logger.Printf("ai_move_failed err=%v", err)
		}
		u.thinking.Store(false)
		u.app.QueueUpdateDraw(func() {
			u.draw()
			u.advance()
		})
	}()
}

func (u *ui) draw() {
	st := u.state()
	legal := make(map[othello.Point]bool, len(st.Legal))
	for _, p := range st.Legal {
		legal[p] = true
	}

	for r := 0; r < othello.Size; r++ {
		for c := 0; c < othello.Size; c++ {
			cell := tview.NewTableCell(pieceSymbol(st.Board[r][c])).SetAlign(tview.AlignCenter)
			if st.Board[r][c] == othello.Empty && st.Turn == u.human && legal[othello.Point{Col: c, Row: r}] {
				cell.SetText(" · ").SetTextColor(tcell.ColorGreen)
			}
			u.board.SetCell(r, c, cell)
		}
	}

	turn := "your"
	if st.Turn != u.human {
		turn = "computer's"
	}
	u.board.SetTitle(fmt.Sprintf(" Othello - %s turn ", turn))

	text := fmt.Sprintf("Dark:  %d\nLight: %d\n\nYou play %s\nOpponent: %s\nTotal score: %d\n",
		st.Dark, st.Light, u.human, u.opponent, u.launcher.Total())
	if n := len(st.Passes); n > 0 {
		last := st.Passes[n-1]
		text += fmt.Sprintf("\n[yellow]%s passed[-]\n", last.Side)
	}
	text += "\nEnter: place  q: quit"
	u.status.SetText(text)
}

// gameOver shows the result. The launcher has already banked the score.
func (u *ui) gameOver() {
	v := u.sess.View()
	st := v.State.(games.OthelloView)
	outcome := outcomeText(*st.Result, u.human)

	modal := tview.NewModal().
		SetText(fmt.Sprintf("Game over\n%s\nDark %d - Light %d\nScore %d, total %d",
			outcome, st.Dark, st.Light, v.Score, u.launcher.Total())).
		AddButtons([]string{"New Game", "Quit"}).
		SetDoneFunc(func(_ int, label string) {
			if label == "New Game" {
				u.app.SetRoot(u.layout, true).SetFocus(u.board)
				u.newGame()
				return
			}
			u.app.Stop()
		})
	u.app.SetRoot(modal, false).SetFocus(modal)
}

func (u *ui) quit() {
	if u.sess != nil {
		if _, err := u.launcher.Abandon(u.sess.ID()); err == nil {
			u.logger.Printf("abandoned session_id=%s", u.sess.ID())
		}
	}
	u.app.Stop()
}

func pieceSymbol(c othello.Cell) string {
	switch c {
	case othello.Dark:
		return " ⚫ "
	case othello.Light:
		return " ⚪ "
	default:
		return "    "
	}
}

func outcomeText(r othello.Result, human othello.Cell) string {
	switch r.Winner {
	case othello.Empty:
		return "Draw"
	case human:
		return "You win!"
	default:
		return "You lose."
	}
}
