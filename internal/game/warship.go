package game

type ShipType string

const (
	Battleship ShipType = "battleship"
	Cruiser    ShipType = "cruiser"
	Frigate    ShipType = "frigate"
	Destroyer  ShipType = "destroyer"
	Submarine  ShipType = "submarine"
)

type ShipSpec struct {
	Type   ShipType
	ID     string
	Length int
}

// FleetConfig is deployed in this order for both players.
var FleetConfig = []ShipSpec{
	{Type: Battleship, ID: "b5", Length: 5},
	{Type: Cruiser, ID: "c4", Length: 4},
	{Type: Frigate, ID: "f3", Length: 3},
	{Type: Destroyer, ID: "d2", Length: 2},
	{Type: Submarine, ID: "s1", Length: 1},
}

type Section struct {
	Coordinate Coordinate `json:"coordinate"`
	Hit        bool       `json:"hit"`
}

type Warship struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Length   int        `json:"length"`
	Sections []*Section `json:"sections"`
}

func NewWarship(length int, name, id string) *Warship {
	return &Warship{
		ID:       id,
		Name:     name,
		Length:   length,
		Sections: make([]*Section, 0, length),
	}
}

// UpdatePlacement binds one unhit section to each coordinate, replacing any
// previous placement.
func (w *Warship) UpdatePlacement(coords []Coordinate) {
	w.Sections = make([]*Section, 0, len(coords))
	for _, c := range coords {
		w.Sections = append(w.Sections, &Section{Coordinate: c})
	}
}

func (w *Warship) Deployed() bool {
	return len(w.Sections) > 0
}

func (w *Warship) Section(c Coordinate) *Section {
	for _, s := range w.Sections {
		if s.Coordinate == c {
			return s
		}
	}
	return nil
}

func (w *Warship) Hits() int {
	hits := 0
	for _, s := range w.Sections {
		if s.Hit {
			hits++
		}
	}
	return hits
}

// IsDestroyed is false for a ship that was never deployed.
func (w *Warship) IsDestroyed() bool {
	return w.Deployed() && w.Hits() == len(w.Sections)
}
