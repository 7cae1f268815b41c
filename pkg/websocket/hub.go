package websocket

import (
	"sync"
)

// Hub holds one room per match; rooms are created on first join and dropped
// when their last client leaves.
type Hub struct {
	rooms map[string]*Room
	mu    sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
	}
}

func (h *Hub) Join(roomID string, c *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		room = NewRoom(roomID)
		h.rooms[roomID] = room
	}
	room.AddClient(c)
	return room
}

func (h *Hub) Leave(c *Client) {
	if c.Room == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.Room.RemoveClient(c) == 0 {
		delete(h.rooms, c.Room.ID)
	}
}

func (h *Hub) GetRoom(roomID string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[roomID]
	return room, exists
}

// Broadcast sends message to every client watching roomID.
func (h *Hub) Broadcast(roomID string, message []byte) int {
	room, exists := h.GetRoom(roomID)
	if !exists {
		return 0
	}
	return room.Broadcast("", message)
}
