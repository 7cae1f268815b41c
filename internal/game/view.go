package game

type CellState uint8

const (
	CellWater CellState = iota
	CellShip
	CellHit
	CellMiss
)

func (s CellState) Rune() rune {
	switch s {
	case CellShip:
		return '#'
	case CellHit:
		return 'X'
	case CellMiss:
		return 'o'
	default:
		return '.'
	}
}

func (s CellState) String() string {
	return string(s.Rune())
}

// Grid is indexed [row][column], both 0-based.
type Grid [][]CellState

func newGrid(width, height int) Grid {
	grid := make(Grid, height)
	for y := range grid {
		grid[y] = make([]CellState, width)
	}
	return grid
}

func (g Grid) At(c Coordinate) CellState {
	return g[c.Y-1][c.X-1]
}

// Rows renders each row as a string of cell runes.
func (g Grid) Rows() []string {
	rows := make([]string, 0, len(g))
	for _, row := range g {
		runes := make([]rune, len(row))
		for x, cell := range row {
			runes[x] = cell.Rune()
		}
		rows = append(rows, string(runes))
	}
	return rows
}

// FleetGrid is the player's own board: ships, and the strikes received.
func (p *Player) FleetGrid() Grid {
	grid := newGrid(p.Board.Width, p.Board.Height)
	for _, pos := range p.Board.Positions {
		if pos.Occupied {
			grid[pos.Coordinate.Y-1][pos.Coordinate.X-1] = CellShip
		}
	}
	for _, r := range p.OpponentMoves {
		c := r.Launch.Coordinate
		if r.IsHit {
			grid[c.Y-1][c.X-1] = CellHit
		} else {
			grid[c.Y-1][c.X-1] = CellMiss
		}
	}
	return grid
}

// TargetGrid is what the player knows of the opponent: its own strikes only.
func (p *Player) TargetGrid() Grid {
	grid := newGrid(p.Board.Width, p.Board.Height)
	for _, r := range p.PlayerMoves {
		c := r.Launch.Coordinate
		if r.IsHit {
			grid[c.Y-1][c.X-1] = CellHit
		} else {
			grid[c.Y-1][c.X-1] = CellMiss
		}
	}
	return grid
}
