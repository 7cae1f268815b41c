package game

import (
	"fmt"
	"math/rand"
)

// random draws tried before MakeRandomLaunch picks from the remaining cells
const maxRandomLaunchAttempts = 50

type MissileLaunch struct {
	Coordinate Coordinate `json:"coordinate"`
}

func NewMissileLaunch(c Coordinate) MissileLaunch {
	return MissileLaunch{Coordinate: c}
}

type StrikeReport struct {
	Launch          MissileLaunch `json:"launch"`
	IsHit           bool          `json:"is_hit"`
	ShipIDHit       string        `json:"ship_id_hit,omitempty"`
	IsShipDestroyed bool          `json:"is_ship_destroyed"`
	WarOver         bool          `json:"war_over"`
}

func (r StrikeReport) GridLabel() string {
	return FormatCoordinate(r.Launch.Coordinate)
}

// Player owns its board and fleet. The only way another player affects it is
// Incoming; the only way it learns about its own launches is DamageReport.
type Player struct {
	Board *Board
	Ships []*Warship

	// PlayerMoves are reports for launches this player made.
	PlayerMoves []StrikeReport
	// OpponentMoves are reports for launches this player received.
	OpponentMoves []StrikeReport

	rng *rand.Rand
}

func NewPlayer(board *Board, rng *rand.Rand) *Player {
	return &Player{
		Board:         board,
		Ships:         make([]*Warship, 0, len(FleetConfig)),
		PlayerMoves:   make([]StrikeReport, 0),
		OpponentMoves: make([]StrikeReport, 0),
		rng:           rng,
	}
}

func (p *Player) AddShip(ship *Warship) {
	p.Ships = append(p.Ships, ship)
}

func (p *Player) Ship(id string) (*Warship, error) {
	for _, s := range p.Ships {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownShip, id)
}

func (p *Player) HasLaunchedAt(c Coordinate) bool {
	for _, r := range p.PlayerMoves {
		if r.Launch.Coordinate == c {
			return true
		}
	}
	return false
}

// ShipsRemaining counts ships with at least one unhit section.
func (p *Player) ShipsRemaining() int {
	n := 0
	for _, s := range p.Ships {
		if !s.IsDestroyed() {
			n++
		}
	}
	return n
}

func (p *Player) IsDefeated() bool {
	if len(p.Ships) == 0 {
		return false
	}
	for _, s := range p.Ships {
		for _, sec := range s.Sections {
			if !sec.Hit {
				return false
			}
		}
	}
	return true
}

// MakeRandomLaunch targets a uniformly random cell this player has not
// launched at yet.
func (p *Player) MakeRandomLaunch() (MissileLaunch, error) {
	for attempt := 0; attempt < maxRandomLaunchAttempts; attempt++ {
		c := p.Board.RandomCoordinate()
		if !p.HasLaunchedAt(c) {
			return NewMissileLaunch(c), nil
		}
	}

	fired := make(map[Coordinate]struct{}, len(p.PlayerMoves))
	for _, r := range p.PlayerMoves {
		fired[r.Launch.Coordinate] = struct{}{}
	}
	remaining := make([]Coordinate, 0, len(p.Board.Positions)-len(fired))
	for _, pos := range p.Board.Positions {
		if _, ok := fired[pos.Coordinate]; !ok {
			remaining = append(remaining, pos.Coordinate)
		}
	}
	if len(remaining) == 0 {
		return MissileLaunch{}, ErrNoTargetsLeft
	}
	return NewMissileLaunch(remaining[p.rng.Intn(len(remaining))]), nil
}

// MakeCalculatedLaunch fires at target when it is on the board, returning
// ErrRepeatedTarget if it was already used. Without a usable target it hunts:
// every damaged ship that has not been reported destroyed is probed at both
// ends of its line of hits. With nothing to hunt it falls back to a random
// launch.
func (p *Player) MakeCalculatedLaunch(target *Coordinate) (MissileLaunch, error) {
	if target != nil && p.Board.InBounds(*target) {
		if p.HasLaunchedAt(*target) {
			return MissileLaunch{}, fmt.Errorf("%w: %s", ErrRepeatedTarget, FormatCoordinate(*target))
		}
		return NewMissileLaunch(*target), nil
	}

	for _, hits := range p.damagedTargets() {
		candidates := p.huntCandidates(hits)
		if len(candidates) > 0 {
			return NewMissileLaunch(candidates[p.rng.Intn(len(candidates))]), nil
		}
	}
	return p.MakeRandomLaunch()
}

// damagedTargets groups hit coordinates by ship, in order of first hit,
// leaving out ships a report has already declared destroyed.
func (p *Player) damagedTargets() [][]Coordinate {
	order := make([]string, 0)
	hits := make(map[string][]Coordinate)
	destroyed := make(map[string]bool)

	for _, r := range p.PlayerMoves {
		if !r.IsHit || r.ShipIDHit == "" {
			continue
		}
		if _, seen := hits[r.ShipIDHit]; !seen {
			order = append(order, r.ShipIDHit)
		}
		hits[r.ShipIDHit] = append(hits[r.ShipIDHit], r.Launch.Coordinate)
		if r.IsShipDestroyed {
			destroyed[r.ShipIDHit] = true
		}
	}

	targets := make([][]Coordinate, 0, len(order))
	for _, id := range order {
		if !destroyed[id] {
			targets = append(targets, hits[id])
		}
	}
	return targets
}

// huntCandidates returns the unfired cells just past both ends of a line of
// hits. A single hit lies on both axes, giving up to four candidates.
func (p *Player) huntCandidates(hits []Coordinate) []Coordinate {
	minX, maxX := hits[0].X, hits[0].X
	minY, maxY := hits[0].Y, hits[0].Y
	sameX, sameY := true, true
	for _, h := range hits[1:] {
		sameX = sameX && h.X == hits[0].X
		sameY = sameY && h.Y == hits[0].Y
		minX, maxX = min(minX, h.X), max(maxX, h.X)
		minY, maxY = min(minY, h.Y), max(maxY, h.Y)
	}

	options := make([]Coordinate, 0, 4)
	if sameX {
		options = append(options, NewCoordinate(hits[0].X, minY-1), NewCoordinate(hits[0].X, maxY+1))
	}
	if sameY {
		options = append(options, NewCoordinate(minX-1, hits[0].Y), NewCoordinate(maxX+1, hits[0].Y))
	}

	candidates := make([]Coordinate, 0, len(options))
	for _, c := range options {
		if p.Board.InBounds(c) && !p.HasLaunchedAt(c) {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// Incoming resolves an opponent's launch against this player's board and
// remembers it in OpponentMoves.
func (p *Player) Incoming(missile MissileLaunch) (StrikeReport, error) {
	pos := p.Board.Position(missile.Coordinate)
	if pos == nil {
		return StrikeReport{}, fmt.Errorf("%w: %s", ErrOutOfBounds, FormatCoordinate(missile.Coordinate))
	}

	report := StrikeReport{Launch: missile}
	if pos.Occupied {
		ship, err := p.Ship(pos.ShipID)
		if err != nil {
			return StrikeReport{}, fmt.Errorf("failed to resolve strike at %s: %w", FormatCoordinate(missile.Coordinate), err)
		}
		if section := ship.Section(missile.Coordinate); section != nil {
			section.Hit = true
		}
		report.IsHit = true
		report.ShipIDHit = ship.ID
		report.IsShipDestroyed = ship.IsDestroyed()
		report.WarOver = p.IsDefeated()
	}

	p.OpponentMoves = append(p.OpponentMoves, report)
	return report, nil
}

// DamageReport records the outcome of one of this player's own launches.
func (p *Player) DamageReport(report StrikeReport) {
	p.PlayerMoves = append(p.PlayerMoves, report)
}
