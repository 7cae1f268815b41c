package websocket

import (
	"log"
	"sync"
)

type Room struct {
	ID      string
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[string]*Client),
	}
}

func (r *Room) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c.ID] = c
	c.Room = r
	log.Printf("Client %s joined room %s", c.ID, r.ID)
}

func (r *Room) RemoveClient(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, c.ID)
	log.Printf("Client %s left room %s", c.ID, r.ID)
	return len(r.clients)
}

func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast never blocks: a client whose buffer is full misses the message.
func (r *Room) Broadcast(senderID string, message []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sent := 0
	for id, client := range r.clients {
		if id == senderID {
			continue
		}
		select {
		case client.Send <- message:
			sent++
		default:
			log.Printf("Dropping message for slow client %s in room %s", id, r.ID)
		}
	}
	return sent
}
