package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	BoardSizeX = 10
	BoardSizeY = 10

	// AiMove rolls in [0, intelligenceRange) against the difficulty's
	// intelligence to choose between a calculated and a random launch.
	intelligenceRange = 10
)

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

var difficultyNames = map[Difficulty]string{
	Easy:   "EASY",
	Medium: "MEDIUM",
	Hard:   "HARD",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

func (d Difficulty) Intelligence() int {
	switch d {
	case Medium:
		return 5
	case Hard:
		return 8
	default:
		return 3
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	for d, name := range difficultyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return d, nil
		}
	}
	return Easy, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

type MoveResponse struct {
	Message     string        `json:"message"`
	WarOver     bool          `json:"war_over"`
	InvalidMove bool          `json:"invalid_move"`
	Report      *StrikeReport `json:"report,omitempty"`
}

type Game struct {
	Player1    *Player
	AiPlayer   *Player
	Difficulty Difficulty

	intelligence int
	rng          *rand.Rand
}

// NewGame builds both players on 10x10 boards with the standard fleet
// deployed at random.
func NewGame(difficulty Difficulty, rng *rand.Rand) (*Game, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(difficulty))
	}

	g := &Game{
		Difficulty:   difficulty,
		intelligence: difficulty.Intelligence(),
		rng:          rng,
	}

	var err error
	if g.Player1, err = g.initialisePlayer(); err != nil {
		return nil, fmt.Errorf("failed to initialise player: %w", err)
	}
	if g.AiPlayer, err = g.initialisePlayer(); err != nil {
		return nil, fmt.Errorf("failed to initialise ai player: %w", err)
	}
	return g, nil
}

func (g *Game) initialisePlayer() (*Player, error) {
	board, err := GenerateBoard(BoardSizeX, BoardSizeY, g.rng)
	if err != nil {
		return nil, err
	}
	player := NewPlayer(board, g.rng)
	if err := DeployFleet(player, g.rng); err != nil {
		return nil, err
	}
	return player, nil
}

// DeployFleet adds one ship per FleetConfig entry to player and places each
// at a random anchor with a random orientation.
func DeployFleet(player *Player, rng *rand.Rand) error {
	for _, spec := range FleetConfig {
		ship := NewWarship(spec.Length, string(spec.Type), spec.ID)
		player.AddShip(ship)

		dir := Horizontal
		if rng.Intn(2) == 0 {
			dir = Vertical
		}
		if err := player.Board.DeployShip(ship, dir, nil); err != nil {
			return fmt.Errorf("failed to deploy %s: %w", spec.Type, err)
		}
	}
	return nil
}

func (g *Game) Over() bool {
	return g.Player1.IsDefeated() || g.AiPlayer.IsDefeated()
}

// Winner is "PLAYER", "AI" or empty while the war goes on.
func (g *Game) Winner() string {
	switch {
	case g.AiPlayer.IsDefeated():
		return "PLAYER"
	case g.Player1.IsDefeated():
		return "AI"
	default:
		return ""
	}
}

// PlayerMove fires the human player's launch. An empty label asks the engine
// to pick a calculated target.
func (g *Game) PlayerMove(label string) MoveResponse {
	if g.Over() {
		return MoveResponse{Message: "The war is already over", WarOver: true, InvalidMove: true}
	}

	var target *Coordinate
	if strings.TrimSpace(label) != "" {
		c, err := ParseCoordinate(label)
		if err != nil {
			return MoveResponse{Message: "That is not a coordinate, try something like B5", InvalidMove: true}
		}
		if !g.Player1.Board.InBounds(c) {
			return MoveResponse{Message: "The Board is not big enough for ya?! try again please...", InvalidMove: true}
		}
		target = &c
	}

	missile, err := g.Player1.MakeCalculatedLaunch(target)
	if errors.Is(err, ErrRepeatedTarget) {
		return MoveResponse{Message: "MMM...You've tried that move before", InvalidMove: true}
	}
	if err != nil {
		return MoveResponse{Message: "No targets left to launch at", InvalidMove: true}
	}

	return g.resolve("PLAYER", g.Player1, g.AiPlayer, missile)
}

// AiMove fires the computer's retaliation. The higher the difficulty, the
// more often it is a calculated launch.
func (g *Game) AiMove() MoveResponse {
	if g.Over() {
		return MoveResponse{Message: "The war is already over", WarOver: true, InvalidMove: true}
	}

	var (
		missile MissileLaunch
		err     error
	)
	if g.rng.Intn(intelligenceRange) <= g.intelligence {
		missile, err = g.AiPlayer.MakeCalculatedLaunch(nil)
	} else {
		missile, err = g.AiPlayer.MakeRandomLaunch()
	}
	if err != nil {
		return MoveResponse{Message: "AI has no targets left", InvalidMove: true}
	}

	return g.resolve("AI", g.AiPlayer, g.Player1, missile)
}

// resolve runs Launch -> Resolve -> Report between attacker and defender.
func (g *Game) resolve(who string, attacker, defender *Player, missile MissileLaunch) MoveResponse {
	report, err := defender.Incoming(missile)
	if err != nil {
		return MoveResponse{Message: err.Error(), InvalidMove: true}
	}
	attacker.DamageReport(report)

	outcome := "Miss"
	if report.IsHit {
		outcome = "Hit"
	}
	msg := fmt.Sprintf("%s %s on %s", who, outcome, report.GridLabel())
	if report.IsShipDestroyed {
		if ship, err := defender.Ship(report.ShipIDHit); err == nil {
			msg += fmt.Sprintf(", %s destroyed", ship.Name)
		}
	}

	return MoveResponse{Message: msg, WarOver: report.WarOver, Report: &report}
}
