package game

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestPlayer(t *testing.T, width, height int, seed int64) *Player {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	b, err := GenerateBoard(width, height, rng)
	if err != nil {
		t.Fatalf("Failed to generate board: %v", err)
	}
	return NewPlayer(b, rng)
}

func hitReport(c Coordinate, shipID string, destroyed bool) StrikeReport {
	return StrikeReport{
		Launch:          NewMissileLaunch(c),
		IsHit:           true,
		ShipIDHit:       shipID,
		IsShipDestroyed: destroyed,
	}
}

func TestMakeRandomLaunchNeverRepeats(t *testing.T) {
	p := newTestPlayer(t, 10, 10, 3)
	seen := make(map[Coordinate]bool)

	for i := 0; i < 100; i++ {
		missile, err := p.MakeRandomLaunch()
		if err != nil {
			t.Fatalf("Launch %d: expected a target, got %v", i, err)
		}
		c := missile.Coordinate
		if c.X < 1 || c.X > 10 || c.Y < 1 || c.Y > 10 {
			t.Fatalf("Launch %d out of range: %+v", i, c)
		}
		if seen[c] {
			t.Fatalf("Launch %d repeated %+v", i, c)
		}
		seen[c] = true
		p.DamageReport(StrikeReport{Launch: missile})
	}

	if _, err := p.MakeRandomLaunch(); !errors.Is(err, ErrNoTargetsLeft) {
		t.Errorf("Expected ErrNoTargetsLeft on a fully fired board, got %v", err)
	}
}

func TestMakeCalculatedLaunchWithTarget(t *testing.T) {
	p := newTestPlayer(t, 10, 10, 1)
	target := NewCoordinate(1, 3)

	missile, err := p.MakeCalculatedLaunch(&target)
	if err != nil {
		t.Fatalf("Expected a launch, got %v", err)
	}
	if missile.Coordinate != target {
		t.Errorf("Expected launch at %+v, got %+v", target, missile.Coordinate)
	}

	p.DamageReport(StrikeReport{Launch: missile, IsHit: true})
	if _, err := p.MakeCalculatedLaunch(&target); !errors.Is(err, ErrRepeatedTarget) {
		t.Errorf("Expected ErrRepeatedTarget for a repeated target, got %v", err)
	}
}

func TestMakeCalculatedLaunchHuntsAfterHit(t *testing.T) {
	want := map[Coordinate]bool{
		{2, 3}: true, {4, 3}: true, {3, 2}: true, {3, 4}: true,
	}
	got := make(map[Coordinate]bool)

	for seed := int64(1); seed <= 40; seed++ {
		p := newTestPlayer(t, 10, 10, seed)
		p.DamageReport(hitReport(NewCoordinate(3, 3), "c4", false))

		missile, err := p.MakeCalculatedLaunch(nil)
		if err != nil {
			t.Fatalf("Expected a launch, got %v", err)
		}
		if !want[missile.Coordinate] {
			t.Fatalf("seed %d: expected a neighbour of C3, got %+v", seed, missile.Coordinate)
		}
		got[missile.Coordinate] = true
	}

	if len(got) < 2 {
		t.Errorf("Expected the hunt to pick between neighbours, only saw %v", got)
	}
}

func TestHuntCandidates(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		hits          []Coordinate
		fired         []Coordinate
		want          []Coordinate
	}{
		{
			name: "Horizontal line", width: 10, height: 10,
			hits: []Coordinate{{3, 3}, {4, 3}},
			want: []Coordinate{{2, 3}, {5, 3}},
		},
		{
			name: "Vertical line", width: 10, height: 10,
			hits: []Coordinate{{6, 4}, {6, 6}, {6, 5}},
			want: []Coordinate{{6, 3}, {6, 7}},
		},
		{
			name: "Corner", width: 10, height: 10,
			hits: []Coordinate{{1, 1}},
			want: []Coordinate{{1, 2}, {2, 1}},
		},
		{
			name: "Fired ends are skipped", width: 10, height: 10,
			hits:  []Coordinate{{3, 3}, {4, 3}},
			fired: []Coordinate{{2, 3}},
			want:  []Coordinate{{5, 3}},
		},
		{
			name: "Horizontal bound uses width", width: 12, height: 5,
			hits: []Coordinate{{10, 2}, {11, 2}},
			want: []Coordinate{{9, 2}, {12, 2}},
		},
		{
			name: "Vertical bound uses height", width: 12, height: 5,
			hits: []Coordinate{{7, 4}, {7, 5}},
			want: []Coordinate{{7, 3}},
		},
		{
			name: "Scattered hits give nothing", width: 10, height: 10,
			hits: []Coordinate{{2, 2}, {3, 3}},
			want: []Coordinate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(t, tt.width, tt.height, 1)
			for _, c := range tt.fired {
				p.DamageReport(StrikeReport{Launch: NewMissileLaunch(c)})
			}
			for _, c := range tt.hits {
				p.DamageReport(hitReport(c, "b5", false))
			}

			got := p.huntCandidates(tt.hits)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			wanted := make(map[Coordinate]bool)
			for _, c := range tt.want {
				wanted[c] = true
			}
			for _, c := range got {
				if !wanted[c] {
					t.Errorf("Unexpected candidate %+v", c)
				}
			}
		})
	}
}

func TestMakeCalculatedLaunchIgnoresDestroyedShips(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		p := newTestPlayer(t, 10, 10, seed)
		p.DamageReport(hitReport(NewCoordinate(1, 1), "d2", false))
		p.DamageReport(hitReport(NewCoordinate(2, 1), "d2", true))
		p.DamageReport(hitReport(NewCoordinate(8, 8), "f3", false))

		missile, err := p.MakeCalculatedLaunch(nil)
		if err != nil {
			t.Fatalf("Expected a launch, got %v", err)
		}
		c := missile.Coordinate
		dx, dy := c.X-8, c.Y-8
		if dx*dx+dy*dy != 1 {
			t.Fatalf("seed %d: expected a neighbour of H8, got %+v", seed, c)
		}
	}
}

func TestMakeCalculatedLaunchSkipsExhaustedTargets(t *testing.T) {
	p := newTestPlayer(t, 10, 10, 5)
	p.DamageReport(hitReport(NewCoordinate(1, 1), "s1", false))
	p.DamageReport(StrikeReport{Launch: NewMissileLaunch(NewCoordinate(2, 1))})
	p.DamageReport(StrikeReport{Launch: NewMissileLaunch(NewCoordinate(1, 2))})
	p.DamageReport(hitReport(NewCoordinate(5, 5), "c4", false))

	missile, err := p.MakeCalculatedLaunch(nil)
	if err != nil {
		t.Fatalf("Expected a launch, got %v", err)
	}
	c := missile.Coordinate
	dx, dy := c.X-5, c.Y-5
	if dx*dx+dy*dy != 1 {
		t.Errorf("Expected a neighbour of E5 once A1 is boxed in, got %+v", c)
	}
}

func TestIncoming(t *testing.T) {
	p := newTestPlayer(t, 10, 10, 1)
	ship := NewWarship(3, "frigate", "f3")
	p.AddShip(ship)
	anchor := NewCoordinate(5, 5)
	if err := p.Board.DeployShip(ship, Horizontal, &anchor); err != nil {
		t.Fatalf("Failed to deploy: %v", err)
	}

	miss, err := p.Incoming(NewMissileLaunch(NewCoordinate(1, 1)))
	if err != nil {
		t.Fatalf("Expected a report, got %v", err)
	}
	if miss.IsHit || miss.ShipIDHit != "" || miss.IsShipDestroyed || miss.WarOver {
		t.Errorf("Expected a clean miss, got %+v", miss)
	}

	hit, err := p.Incoming(NewMissileLaunch(NewCoordinate(6, 5)))
	if err != nil {
		t.Fatalf("Expected a report, got %v", err)
	}
	if !hit.IsHit || hit.ShipIDHit != "f3" || hit.IsShipDestroyed {
		t.Errorf("Expected a hit on f3, got %+v", hit)
	}
	if !ship.Section(NewCoordinate(6, 5)).Hit {
		t.Error("Expected the section at F5 to be marked hit")
	}
	if len(p.OpponentMoves) != 2 {
		t.Errorf("Expected 2 received strikes, got %d", len(p.OpponentMoves))
	}

	if _, err := p.Incoming(NewMissileLaunch(NewCoordinate(0, 5))); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if len(p.OpponentMoves) != 2 {
		t.Errorf("Expected an off-board strike not to be recorded, got %d moves", len(p.OpponentMoves))
	}
}

func TestCalculatedLaunchesDestroyShip(t *testing.T) {
	defender := newTestPlayer(t, 10, 10, 1)
	ship := NewWarship(3, "frigate", "f3")
	defender.AddShip(ship)
	anchor := NewCoordinate(5, 5)
	if err := defender.Board.DeployShip(ship, Horizontal, &anchor); err != nil {
		t.Fatalf("Failed to deploy: %v", err)
	}

	attacker := newTestPlayer(t, 10, 10, 2)
	first, err := defender.Incoming(NewMissileLaunch(NewCoordinate(5, 5)))
	if err != nil {
		t.Fatalf("Failed to resolve first strike: %v", err)
	}
	attacker.DamageReport(first)

	var final StrikeReport
	for i := 0; i < 100 && !final.IsShipDestroyed; i++ {
		missile, err := attacker.MakeCalculatedLaunch(nil)
		if err != nil {
			t.Fatalf("Expected a launch, got %v", err)
		}
		report, err := defender.Incoming(missile)
		if err != nil {
			t.Fatalf("Failed to resolve strike: %v", err)
		}
		attacker.DamageReport(report)
		final = report
	}

	if !final.IsShipDestroyed {
		t.Fatal("Expected the frigate to be destroyed")
	}
	if !final.WarOver {
		t.Error("Expected war over once the only ship is destroyed")
	}
	if !defender.IsDefeated() || defender.ShipsRemaining() != 0 {
		t.Error("Expected the defender to be defeated")
	}

	// hunting stops once a ship is reported destroyed
	if len(attacker.damagedTargets()) != 0 {
		t.Errorf("Expected no damaged targets, got %v", attacker.damagedTargets())
	}
}

func TestIncomingIsIdempotentOnDestroyedShip(t *testing.T) {
	p := newTestPlayer(t, 10, 10, 1)
	ship := NewWarship(1, "submarine", "s1")
	p.AddShip(ship)
	other := NewWarship(2, "destroyer", "d2")
	p.AddShip(other)
	subAt, dAt := NewCoordinate(2, 2), NewCoordinate(8, 8)
	if err := p.Board.DeployShip(ship, Vertical, &subAt); err != nil {
		t.Fatalf("Failed to deploy: %v", err)
	}
	if err := p.Board.DeployShip(other, Vertical, &dAt); err != nil {
		t.Fatalf("Failed to deploy: %v", err)
	}

	missile := NewMissileLaunch(subAt)
	for i := 0; i < 2; i++ {
		report, err := p.Incoming(missile)
		if err != nil {
			t.Fatalf("Failed to resolve strike: %v", err)
		}
		if !report.IsShipDestroyed {
			t.Errorf("Strike %d: expected submarine destroyed", i)
		}
		if report.WarOver {
			t.Errorf("Strike %d: expected war to continue while d2 floats", i)
		}
	}
	if p.ShipsRemaining() != 1 {
		t.Errorf("Expected 1 ship remaining, got %d", p.ShipsRemaining())
	}
}
