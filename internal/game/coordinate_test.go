package game

import (
	"errors"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Coordinate
	}{
		{"Upper case", "B5", Coordinate{X: 2, Y: 5}},
		{"Lower case", "b5", Coordinate{X: 2, Y: 5}},
		{"Origin", "A1", Coordinate{X: 1, Y: 1}},
		{"Two digit row", "J10", Coordinate{X: 10, Y: 10}},
		{"Last column", "z99", Coordinate{X: 26, Y: 99}},
		{"Surrounding spaces", " c7 ", Coordinate{X: 3, Y: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.label)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseCoordinateRejectsMalformedLabels(t *testing.T) {
	for _, label := range []string{"", "5B", "AA1", "B100", "B", "B-1", "?3"} {
		t.Run(label, func(t *testing.T) {
			_, err := ParseCoordinate(label)
			if !errors.Is(err, ErrInvalidLabel) {
				t.Errorf("Expected ErrInvalidLabel for %q, got %v", label, err)
			}
		})
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want string
	}{
		{Coordinate{X: 2, Y: 5}, "B5"},
		{Coordinate{X: 1, Y: 10}, "A10"},
		{Coordinate{X: 26, Y: 1}, "Z1"},
	}

	for _, tt := range tests {
		if got := FormatCoordinate(tt.c); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
		back, err := ParseCoordinate(tt.want)
		if err != nil || back != tt.c {
			t.Errorf("Expected %s to parse back to %+v, got %+v (%v)", tt.want, tt.c, back, err)
		}
	}
}

func TestValidInput(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"a1", true},
		{"J10", true},
		{"J100", false},
		{"fire", false},
		{"1A", false},
	}

	for _, tt := range tests {
		if got := ValidInput(tt.line); got != tt.want {
			t.Errorf("ValidInput(%q): expected %v, got %v", tt.line, tt.want, got)
		}
	}
}
