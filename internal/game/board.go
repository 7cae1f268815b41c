package game

import (
	"fmt"
	"math/rand"
)

// randomized anchors tried before DeployShip falls back to scanning every cell
const maxDeployAttempts = 100

type BoardPosition struct {
	Coordinate Coordinate `json:"coordinate"`
	Occupied   bool       `json:"occupied"`
	ShipID     string     `json:"ship_id,omitempty"`
}

// Board is a flat list of positions, column-major: all rows of column A,
// then column B, and so on.
type Board struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Positions []*BoardPosition `json:"positions"`

	rng *rand.Rand
}

// GenerateBoard creates every position in [1,width]x[1,height].
func GenerateBoard(width, height int, rng *rand.Rand) (*Board, error) {
	if width < 1 || width > MaxColumns || height < 1 || height > MaxRows {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBoardSize, width, height)
	}
	b := &Board{
		Width:     width,
		Height:    height,
		Positions: make([]*BoardPosition, 0, width*height),
		rng:       rng,
	}
	for x := 1; x <= width; x++ {
		for y := 1; y <= height; y++ {
			b.Positions = append(b.Positions, &BoardPosition{Coordinate: NewCoordinate(x, y)})
		}
	}
	return b, nil
}

func (b *Board) InBounds(c Coordinate) bool {
	return c.X >= 1 && c.X <= b.Width && c.Y >= 1 && c.Y <= b.Height
}

// PositionIndex is the offset of c in a column-major board of the given
// height.
func PositionIndex(c Coordinate, height int) int {
	return (c.X-1)*height + (c.Y - 1)
}

// Index is the offset of c in Positions and Occupancy, or -1 off the board.
func (b *Board) Index(c Coordinate) int {
	if !b.InBounds(c) {
		return -1
	}
	return PositionIndex(c, b.Height)
}

// Position returns nil for coordinates off the board.
func (b *Board) Position(c Coordinate) *BoardPosition {
	if i := b.Index(c); i >= 0 {
		return b.Positions[i]
	}
	return nil
}

func (b *Board) RandomCoordinate() Coordinate {
	return NewCoordinate(b.rng.Intn(b.Width)+1, b.rng.Intn(b.Height)+1)
}

// Occupancy returns one 0/1 entry per position in board order.
func (b *Board) Occupancy() []uint8 {
	bits := make([]uint8, len(b.Positions))
	for i, p := range b.Positions {
		if p.Occupied {
			bits[i] = 1
		}
	}
	return bits
}

// ShipCells maps every occupied label to the ship id occupying it.
func (b *Board) ShipCells() map[string]string {
	cells := make(map[string]string)
	for _, p := range b.Positions {
		if p.Occupied {
			cells[FormatCoordinate(p.Coordinate)] = p.ShipID
		}
	}
	return cells
}

func (b *Board) limit(d Direction) int {
	if d == Vertical {
		return b.Height
	}
	return b.Width
}

// DeployShip places ship along dir starting at at, or at a random anchor when
// at is nil. A footprint running past the board edge is flipped to end just
// before the anchor; an overlapping footprint is mirrored around its start.
// When neither fits a new random anchor is drawn, and after
// maxDeployAttempts every anchor is scanned in both directions.
func (b *Board) DeployShip(ship *Warship, dir Direction, at *Coordinate) error {
	if ship.Deployed() {
		return fmt.Errorf("%w: %s", ErrShipDeployed, ship.ID)
	}
	if ship.Length < 1 || (ship.Length > b.Width && ship.Length > b.Height) {
		return fmt.Errorf("%w: %s has length %d", ErrShipTooLong, ship.ID, ship.Length)
	}
	if at != nil && !b.InBounds(*at) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, FormatCoordinate(*at))
	}

	if ship.Length <= b.limit(dir) {
		for attempt := 0; attempt < maxDeployAttempts; attempt++ {
			anchor := b.RandomCoordinate()
			if attempt == 0 && at != nil {
				anchor = *at
			}
			if footprint, ok := b.resolveFootprint(ship.Length, dir, anchor); ok {
				b.commit(ship, footprint)
				return nil
			}
		}
	}

	for _, d := range []Direction{dir, dir.perpendicular()} {
		if ship.Length > b.limit(d) {
			continue
		}
		for _, p := range b.Positions {
			footprint := b.footprint(p.Coordinate, d, ship.Length)
			if b.isFree(footprint) {
				b.commit(ship, footprint)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrBoardSaturated, ship.ID)
}

func (b *Board) resolveFootprint(length int, dir Direction, anchor Coordinate) ([]Coordinate, bool) {
	start := anchor
	if anchor.along(dir)+length-1 > b.limit(dir) {
		start = anchor.step(dir, -length)
	}
	pos := b.Position(start)
	if pos == nil || pos.Occupied {
		return nil, false
	}

	forward := b.footprint(start, dir, length)
	if b.isFree(forward) {
		return forward, true
	}
	mirrored := b.footprint(start.step(dir, -(length - 1)), dir, length)
	if b.isFree(mirrored) {
		return mirrored, true
	}
	return nil, false
}

// footprint lists length cells from start along dir in ascending order.
// Cells may fall off the board; isFree rejects those.
func (b *Board) footprint(start Coordinate, dir Direction, length int) []Coordinate {
	cells := make([]Coordinate, 0, length)
	for i := 0; i < length; i++ {
		cells = append(cells, start.step(dir, i))
	}
	return cells
}

func (b *Board) isFree(cells []Coordinate) bool {
	for _, c := range cells {
		pos := b.Position(c)
		if pos == nil || pos.Occupied {
			return false
		}
	}
	return true
}

func (b *Board) commit(ship *Warship, footprint []Coordinate) {
	for _, c := range footprint {
		pos := b.Position(c)
		pos.Occupied = true
		pos.ShipID = ship.ID
	}
	ship.UpdatePlacement(footprint)
}
