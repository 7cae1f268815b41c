package game

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MaxColumns is the widest board a single-letter label can address.
const MaxColumns = len(alphabet)

// MaxRows is the tallest board a two-digit label can address.
const MaxRows = 99

var labelPattern = regexp.MustCompile(`^([A-Za-z])(\d{1,2})$`)

type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (d Direction) perpendicular() Direction {
	if d == Vertical {
		return Horizontal
	}
	return Vertical
}

// Coordinate is a 1-based board position. X is the column, Y the row.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// step moves n cells along d. Negative n moves backwards.
func (c Coordinate) step(d Direction, n int) Coordinate {
	if d == Vertical {
		return Coordinate{X: c.X, Y: c.Y + n}
	}
	return Coordinate{X: c.X + n, Y: c.Y}
}

func (c Coordinate) along(d Direction) int {
	if d == Vertical {
		return c.Y
	}
	return c.X
}

func (c Coordinate) String() string {
	return FormatCoordinate(c)
}

// ValidInput reports whether a console line may be handed to the engine:
// either empty (calculated strike) or a single grid label.
func ValidInput(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || labelPattern.MatchString(line)
}

// converts "B5" to Coordinate{X: 2, Y: 5}
func ParseCoordinate(label string) (Coordinate, error) {
	m := labelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	x := strings.IndexByte(alphabet, strings.ToUpper(m[1])[0]) + 1
	y, err := strconv.Atoi(m[2])
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return Coordinate{X: x, Y: y}, nil
}

// converts Coordinate{X: 2, Y: 5} to "B5"
func FormatCoordinate(c Coordinate) string {
	if c.X < 1 || c.X > MaxColumns {
		return fmt.Sprintf("?%d", c.Y)
	}
	return fmt.Sprintf("%c%d", alphabet[c.X-1], c.Y)
}

// ColumnLabel returns the letter used for column x.
func ColumnLabel(x int) string {
	if x < 1 || x > MaxColumns {
		return "?"
	}
	return string(alphabet[x-1])
}
