package realtime

import (
	"strconv"
	"sync"

	"groupchat/internal/applog"
)

// RoomID is the wire name of a room. Rooms map 1:1 onto groups: the id is
// the decimal group key, there is no separate naming layer.
type RoomID string

func RoomForGroup(groupID uint) RoomID {
	return RoomID(strconv.FormatUint(uint64(groupID), 10))
}

func (r RoomID) GroupID() (uint, bool) {
	id, err := strconv.ParseUint(string(r), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Hub tracks which connected client sits in which rooms and fans payloads
// out to them. A client may sit in any number of rooms at once.
type Hub struct {
	mu    sync.RWMutex
	rooms map[RoomID]map[*Client]bool

	logger applog.Logger
}

func NewHub(logger applog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[RoomID]map[*Client]bool),
		logger: logger,
	}
}

func (h *Hub) Join(client *Client, room RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

func (h *Hub) Leave(client *Client, room RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client, room)
}

// Disconnect pulls the client out of every delivery set. Called when the
// connection dies, no notices are broadcast.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.rooms {
		h.removeLocked(client, room)
	}
}

func (h *Hub) removeLocked(client *Client, room RoomID) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// BroadcastToRoom queues the payload on every client currently in the room,
// the sender included. A client with a full send buffer misses the payload
// rather than stalling the rest of the room.
func (h *Hub) BroadcastToRoom(room RoomID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- payload:
		default:
			h.logger.Logf("Dropped a payload for a slow client in room %s", room)
		}
	}
}

func (h *Hub) InRoom(client *Client, room RoomID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.rooms[room][client]
}

func (h *Hub) RoomSize(room RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}
