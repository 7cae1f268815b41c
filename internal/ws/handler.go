package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/match"
	"github.com/krishanu7/battleship-engine/internal/merkle"
	wsPkg "github.com/krishanu7/battleship-engine/pkg/websocket"
)

const (
	MessageMatchCreated = "match_created"
	MessageTurnResult   = "turn_result"
	MessageMatchOver    = "match_over"
	MessageError        = "error"
)

type inbound struct {
	Type       string `json:"type"`
	Coordinate string `json:"coordinate"`
}

type outbound struct {
	Type       string            `json:"type"`
	MatchID    string            `json:"matchId,omitempty"`
	Difficulty string            `json:"difficulty,omitempty"`
	Commitment string            `json:"commitment,omitempty"`
	Message    string            `json:"message,omitempty"`
	Result     *match.TurnResult `json:"result,omitempty"`
	Winner     string            `json:"winner,omitempty"`
	Reveal     *match.Reveal     `json:"reveal,omitempty"`
}

// Handler serves one game against the computer per websocket connection.
type Handler struct {
	matches    *match.Service
	auth       match.Authenticator
	difficulty game.Difficulty
}

func NewHandler(matches *match.Service, auth match.Authenticator, difficulty game.Difficulty) *Handler {
	return &Handler{
		matches:    matches,
		auth:       auth,
		difficulty: difficulty,
	}
}

func (h *Handler) ServePlay(w http.ResponseWriter, r *http.Request) {
	difficulty := h.difficulty
	if v := r.URL.Query().Get("difficulty"); v != "" {
		d, err := game.ParseDifficulty(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		difficulty = d
	}

	var req match.CreateRequest
	if h.auth != nil {
		playerID, err := h.auth.UserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		req.PlayerID = playerID
	}
	req.Difficulty = difficulty
	req.ClientIP = match.ClientIP(r)

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed: %v", err)
		return
	}

	// the connection outlives the request once hijacked
	ctx := context.WithoutCancel(r.Context())

	m, err := h.matches.Create(ctx, req)
	if err != nil {
		log.Printf("Failed to create match: %v", err)
		conn.Close()
		return
	}

	client := wsPkg.NewClient(m.ID, conn)
	go func() {
		if err := client.WritePump(); err != nil {
			log.Printf("Write error for match %s: %v", m.ID, err)
		}
	}()
	defer close(client.Send)

	log.Printf("Player connected to match %s", m.ID)
	send(client, outbound{
		Type:       MessageMatchCreated,
		MatchID:    m.ID,
		Difficulty: difficulty.String(),
		Commitment: merkle.EncodeHex(m.Commitment),
	})
	h.play(ctx, client, m.ID)
}

// play reads moves until the war is over, the player forfeits or the
// connection drops. A dropped connection forfeits the match.
func (h *Handler) play(ctx context.Context, c *wsPkg.Client, matchID string) {
	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			log.Printf("Read error for match %s: %v", matchID, err)
			if _, err := h.matches.Forfeit(ctx, matchID); err != nil {
				log.Printf("Failed to forfeit match %s: %v", matchID, err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			send(c, outbound{Type: MessageError, MatchID: matchID, Message: "invalid message"})
			continue
		}

		switch in.Type {
		case "move":
			result, err := h.matches.Move(ctx, matchID, in.Coordinate)
			if err != nil {
				send(c, outbound{Type: MessageError, MatchID: matchID, Message: err.Error()})
				return
			}
			send(c, outbound{Type: MessageTurnResult, MatchID: matchID, Result: result})
			if result.WarOver {
				send(c, outbound{Type: MessageMatchOver, MatchID: matchID, Winner: result.Winner, Reveal: result.Reveal})
				return
			}
		case "forfeit":
			reveal, err := h.matches.Forfeit(ctx, matchID)
			if err != nil {
				send(c, outbound{Type: MessageError, MatchID: matchID, Message: err.Error()})
				return
			}
			send(c, outbound{Type: MessageMatchOver, MatchID: matchID, Winner: "AI", Reveal: reveal})
			return
		default:
			send(c, outbound{Type: MessageError, MatchID: matchID, Message: "unknown message type " + in.Type})
		}
	}
}

func send(c *wsPkg.Client, v outbound) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal %s: %v", v.Type, err)
		return
	}
	select {
	case c.Send <- payload:
	default:
		log.Printf("Dropping %s for client %s", v.Type, c.ID)
	}
}
