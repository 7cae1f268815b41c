package match

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/merkle"
)

// Authenticator resolves the optional player behind a request.
type Authenticator interface {
	UserFromRequest(r *http.Request) (uuid.NullUUID, error)
}

type Handler struct {
	service    *Service
	auth       Authenticator
	difficulty game.Difficulty
}

// NewHandler serves matches at difficulty unless a request names one. auth
// may be nil, in which case every match is anonymous.
func NewHandler(service *Service, auth Authenticator, difficulty game.Difficulty) *Handler {
	return &Handler{
		service:    service,
		auth:       auth,
		difficulty: difficulty,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMatchNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("Match request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// ClientIP is the remote address of r without its port, or nil.
func ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// Create handles POST /api/v1/matches. The body is optional.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	difficulty := h.difficulty
	if req.Difficulty != "" {
		d, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		difficulty = d
	}

	var playerID uuid.NullUUID
	if h.auth != nil {
		id, err := h.auth.UserFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		playerID = id
	}

	m, err := h.service.Create(r.Context(), CreateRequest{
		Difficulty: difficulty,
		PlayerID:   playerID,
		ClientIP:   ClientIP(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		MatchID    string `json:"match_id"`
		Difficulty string `json:"difficulty"`
		Commitment string `json:"commitment"`
	}{
		MatchID:    m.ID,
		Difficulty: difficulty.String(),
		Commitment: merkle.EncodeHex(m.Commitment),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Move handles POST /api/v1/matches/{id}/moves. An empty coordinate asks
// for a calculated strike.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coordinate string `json:"coordinate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	result, err := h.service.Move(r.Context(), r.PathValue("id"), req.Coordinate)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Player.InvalidMove {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (h *Handler) Forfeit(w http.ResponseWriter, r *http.Request) {
	reveal, err := h.service.Forfeit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Winner string  `json:"winner"`
		Reveal *Reveal `json:"reveal"`
	}{
		Winner: "AI",
		Reveal: reveal,
	})
}
