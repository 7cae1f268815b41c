package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/internal/match"
	wsPkg "github.com/krishanu7/battleship-engine/pkg/websocket"
)

// WatchHandler lets spectators follow a running match. Events reach them
// through the hub, fed by NotificationWorker.
type WatchHandler struct {
	Hub     *wsPkg.Hub
	matches *match.Service
}

func NewWatchHandler(hub *wsPkg.Hub, matches *match.Service) *WatchHandler {
	return &WatchHandler{
		Hub:     hub,
		matches: matches,
	}
}

func (h *WatchHandler) ServeWatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		http.Error(w, "matchId is required", http.StatusBadRequest)
		return
	}
	if _, err := h.matches.Get(matchID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Watch upgrade failed: %v", err)
		return
	}

	client := wsPkg.NewClient(uuid.NewString(), conn)
	h.Hub.Join(matchID, client)
	go func() {
		if err := client.WritePump(); err != nil {
			log.Printf("Write error for spectator %s: %v", client.ID, err)
		}
	}()

	// spectators only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Hub.Leave(client)
	close(client.Send)
}
