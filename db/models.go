package db

import (
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // Hashed password
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Result is one finished match against the computer.
type Result struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	MatchID     string        `json:"match_id" db:"match_id"`
	PlayerID    uuid.NullUUID `json:"player_id" db:"player_id"`
	Difficulty  string        `json:"difficulty" db:"difficulty"`
	Winner      string        `json:"winner" db:"winner"`
	PlayerShots int           `json:"player_shots" db:"player_shots"`
	AiShots     int           `json:"ai_shots" db:"ai_shots"`
	ClientIP    pqtype.Inet   `json:"-" db:"client_ip"`
	FinishedAt  time.Time     `json:"finished_at" db:"finished_at"`
}

// InetFromIP wraps ip for an INET column; nil stays NULL.
func InetFromIP(ip net.IP) pqtype.Inet {
	if ip == nil {
		return pqtype.Inet{}
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return pqtype.Inet{IPNet: net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, Valid: true}
}
