package match

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/merkle"
)

type EventType string

const (
	EventMatchCreated EventType = "match_created"
	EventStrike       EventType = "strike"
	EventMatchOver    EventType = "match_over"
)

// Event is published for every state change a spectator can see. It never
// carries ship positions before the match is over.
type Event struct {
	Type          EventType `json:"type"`
	MatchID       string    `json:"matchId"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Attacker      string    `json:"attacker,omitempty"`
	Coordinate    string    `json:"coordinate,omitempty"`
	Result        string    `json:"result,omitempty"`
	ShipDestroyed string    `json:"shipDestroyed,omitempty"`
	Winner        string    `json:"winner,omitempty"`
	Forfeit       bool      `json:"forfeit,omitempty"`
	Commitment    string    `json:"commitment,omitempty"`
	Reveal        *Reveal   `json:"reveal,omitempty"`
	At            int64     `json:"at"`

	// Proof opens the struck cell of the computer's board against
	// Commitment. Set on player strikes only.
	Proof *merkle.Opening `json:"proof,omitempty"`
}

// Reveal opens the fleet commitment published when the match started.
type Reveal struct {
	Salt   string            `json:"salt"`
	Layout string            `json:"layout"`
	Ships  map[string]string `json:"ships"`
}

type Match struct {
	ID         string
	PlayerID   uuid.NullUUID
	ClientIP   net.IP
	CreatedAt  time.Time
	Game       *game.Game
	Commitment []byte

	salt     []byte
	tree     *merkle.Tree
	finished bool
	mu       sync.Mutex
}

type CreateRequest struct {
	Difficulty game.Difficulty
	PlayerID   uuid.NullUUID
	ClientIP   net.IP
}

type TurnResult struct {
	MatchID string             `json:"match_id"`
	Player  game.MoveResponse  `json:"player"`
	Ai      *game.MoveResponse `json:"ai,omitempty"`
	WarOver bool               `json:"war_over"`
	Winner  string             `json:"winner,omitempty"`
	Reveal  *Reveal            `json:"reveal,omitempty"`
}

type View struct {
	MatchID        string   `json:"match_id"`
	Difficulty     string   `json:"difficulty"`
	Commitment     string   `json:"commitment"`
	Fleet          []string `json:"fleet"`
	Target         []string `json:"target"`
	ShipsRemaining int      `json:"ships_remaining"`
	EnemyRemaining int      `json:"enemy_remaining"`
	PlayerShots    int      `json:"player_shots"`
	OpponentShots  int      `json:"opponent_shots"`
}
