package console

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/krishanu7/battleship-engine/internal/game"
)

const (
	maxMessages = 4
	maxInput    = 3

	boardTop    = 2
	enemyOffset = 30
	prompt      = "> "
)

var (
	styleText  = tcell.StyleDefault
	styleTitle = tcell.StyleDefault.Bold(true)
	styleWater = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleShip  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHit   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleMiss  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// App plays one game between the human at the terminal and the computer.
type App struct {
	screen   tcell.Screen
	game     *game.Game
	sound    *Speaker
	input    []rune
	messages []string
	over     bool
}

func New(screen tcell.Screen, g *game.Game, sound *Speaker) *App {
	return &App{
		screen:   screen,
		game:     g,
		sound:    sound,
		messages: []string{"Fire at a coordinate like B5, or press Enter to let the computer aim"},
	}
}

// Run draws and handles events until the player quits. Log output is
// discarded meanwhile so it cannot scribble over the screen.
func (a *App) Run() {
	defer quietLog()()

	a.Draw()
	for {
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !a.handleKey(ev.Key(), ev.Rune()) {
				return
			}
		case *tcell.EventResize:
			a.screen.Sync()
		case nil:
			return
		}
		a.Draw()
	}
}

// handleKey returns false when the player quits.
func (a *App) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		a.submit()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}
	case tcell.KeyRune:
		if !a.over && len(a.input) < maxInput {
			a.input = append(a.input, r)
		}
	}
	return true
}

func (a *App) submit() {
	line := strings.TrimSpace(string(a.input))
	a.input = a.input[:0]
	if a.over {
		return
	}
	if !game.ValidInput(line) {
		a.say("That is not a coordinate, try something like B5")
		return
	}

	resp := a.game.PlayerMove(line)
	a.say(resp.Message)
	a.playSound(resp)
	if resp.InvalidMove {
		return
	}
	if resp.WarOver {
		a.end()
		return
	}

	ai := a.game.AiMove()
	a.say(ai.Message)
	a.playSound(ai)
	if ai.WarOver {
		a.end()
	}
}

func (a *App) end() {
	a.over = true
	if a.game.Winner() == "PLAYER" {
		a.say("You sank the enemy fleet! Press Esc to quit")
	} else {
		a.say("Your fleet is lost. Press Esc to quit")
	}
}

func (a *App) playSound(resp game.MoveResponse) {
	if a.sound == nil || resp.Report == nil {
		return
	}
	switch {
	case resp.Report.IsShipDestroyed:
		a.sound.Sink()
	case resp.Report.IsHit:
		a.sound.Hit()
	default:
		a.sound.Miss()
	}
}

func (a *App) say(msg string) {
	a.messages = append(a.messages, msg)
	if len(a.messages) > maxMessages {
		a.messages = a.messages[len(a.messages)-maxMessages:]
	}
}

func (a *App) Over() bool {
	return a.over
}

func (a *App) Draw() {
	a.screen.Clear()

	g := a.game
	header := fmt.Sprintf("BATTLESHIP  %s  your ships: %d  enemy ships: %d",
		g.Difficulty, g.Player1.ShipsRemaining(), g.AiPlayer.ShipsRemaining())
	drawText(a.screen, 0, 0, styleTitle, header)

	drawGrid(a.screen, 0, boardTop, "Your fleet", g.Player1.FleetGrid())
	drawGrid(a.screen, enemyOffset, boardTop, "Enemy waters", g.Player1.TargetGrid())

	y := boardTop + len(g.Player1.FleetGrid()) + 3
	for _, msg := range a.messages {
		drawText(a.screen, 0, y, styleText, msg)
		y++
	}
	y++
	drawText(a.screen, 0, y, styleTitle, prompt+string(a.input))
	a.screen.ShowCursor(len(prompt)+len(a.input), y)
	a.screen.Show()
}

func drawGrid(s tcell.Screen, x, y int, title string, grid game.Grid) {
	drawText(s, x, y, styleTitle, title)
	for col := range grid[0] {
		drawText(s, x+3+col*2, y+1, styleText, game.ColumnLabel(col+1))
	}
	for row, cells := range grid {
		drawText(s, x, y+2+row, styleText, fmt.Sprintf("%2d", row+1))
		for col, cell := range cells {
			s.SetContent(x+3+col*2, y+2+row, cell.Rune(), nil, cellStyle(cell))
		}
	}
}

func cellStyle(c game.CellState) tcell.Style {
	switch c {
	case game.CellShip:
		return styleShip
	case game.CellHit:
		return styleHit
	case game.CellMiss:
		return styleMiss
	default:
		return styleWater
	}
}

// quietLog sends log output to io.Discard until the returned func runs.
func quietLog() (restore func()) {
	prev := log.Writer()
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(prev) }
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
