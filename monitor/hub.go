package monitor

import (
	"encoding/json"
	"log"

	sync "github.com/sasha-s/go-deadlock"
)

var defaultMaxClients = 200

type sender interface {
	Send([]byte) error
	String() string
}

// Hub fans heartbeats out to every connected client and remembers the last
// heartbeat seen on each topic.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[sender]bool
	clientQ   chan bool
	latestMu  sync.Mutex
	latest    map[string]json.RawMessage
}

// NewHub returns a hub accepting up to maxClients clients; more block in
// plugin until others drop.  maxClients <= 0 means the default.
func NewHub(maxClients int) *Hub {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	return &Hub{
		clients: make(map[sender]bool),
		clientQ: make(chan bool, maxClients),
		latest:  make(map[string]json.RawMessage),
	}
}

func (h *Hub) plugin(s sender) {
	// block here when clientQ is full
	h.clientQ <- true

	h.clientsMu.Lock()
	h.clients[s] = true
	h.clientsMu.Unlock()
}

func (h *Hub) unplug(s sender) {
	h.clientsMu.Lock()
	delete(h.clients, s)
	h.clientsMu.Unlock()

	<-h.clientQ
}

// Len is the number of plugged-in clients
func (h *Hub) Len() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// broadcast payload, received on topic, to all clients
func (h *Hub) broadcast(topic string, payload []byte) {
	if json.Valid(payload) {
		h.latestMu.Lock()
		h.latest[topic] = append(json.RawMessage(nil), payload...)
		h.latestMu.Unlock()
	}

	// send outside the lock; a slow client must not hold up plugin/unplug
	h.clientsMu.RLock()
	clients := make([]sender, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if err := c.Send(payload); err != nil {
			log.Printf("Send to %s failed: %s", c, err)
		}
	}
}

// state is the last heartbeat per topic, as a JSON object
func (h *Hub) state() ([]byte, error) {
	h.latestMu.Lock()
	defer h.latestMu.Unlock()
	return json.Marshal(h.latest)
}
