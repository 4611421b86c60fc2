package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"groupchat/internal/applog"
	"groupchat/internal/service"
)

// Wire format: every frame is an envelope naming the event it carries.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinData struct {
	Username string `json:"username"`
	Room     RoomID `json:"room"`
}

type leaveData struct {
	Username string `json:"username"`
	Room     RoomID `json:"room"`
}

type messageData struct {
	Room RoomID `json:"room"`
	Msg  string `json:"msg"`
}

// messagePayload is what a room hears. Notices carry only Msg; chat
// messages add the author and the persisted timestamp.
type messagePayload struct {
	Msg       string `json:"msg"`
	Username  string `json:"username,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type errorPayload struct {
	Msg string `json:"msg"`
}

const timestampLayout = "2006-01-02 15:04:05"

func encodeEvent(event string, data any) []byte {
	raw, _ := json.Marshal(data)
	payload, _ := json.Marshal(Event{Event: event, Data: raw})
	return payload
}

// Dispatcher routes incoming frames to the join/leave/message handlers.
type Dispatcher struct {
	hub     *Hub
	history service.HistoryService
	groups  service.GroupService
	logger  applog.Logger
}

func NewDispatcher(hub *Hub, history service.HistoryService, groups service.GroupService, logger applog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:     hub,
		history: history,
		groups:  groups,
		logger:  logger,
	}
}

func (d *Dispatcher) Logf(format string, v ...any) {
	d.logger.Logf(format, v...)
}

func (d *Dispatcher) Dispatch(client *Client, raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		d.sendError(client, "invalid event")
		return
	}

	switch event.Event {
	case "join":
		d.handleJoin(client, event.Data)
	case "leave":
		d.handleLeave(client, event.Data)
	case "message":
		d.handleMessage(client, event.Data)
	default:
		d.sendError(client, fmt.Sprintf("unknown event %q", event.Event))
	}
}

func (d *Dispatcher) handleJoin(client *Client, raw json.RawMessage) {
	var data joinData
	if err := json.Unmarshal(raw, &data); err != nil {
		d.sendError(client, "invalid join event")
		return
	}

	groupID, ok := data.Room.GroupID()
	if !ok {
		d.sendError(client, fmt.Sprintf("no such room %q", data.Room))
		return
	}

	group, err := d.groups.GetGroup(groupID)
	if err != nil {
		d.sendError(client, fmt.Sprintf("no such room %q", data.Room))
		return
	}

	// The realtime join runs the same gate as the page-load path; a
	// passkey-protected room only admits members.
	allowed, err := d.groups.CanView(group, client.user.ID)
	if err != nil {
		d.sendError(client, "could not check room access")
		return
	}
	if !allowed {
		d.Logf("User %d was denied realtime access to room %s", client.user.ID, data.Room)
		d.sendError(client, "you are not a member of this room")
		return
	}

	d.hub.Join(client, data.Room)
	d.hub.BroadcastToRoom(data.Room, encodeEvent("message", messagePayload{
		Msg: data.Username + " has entered the room.",
	}))
}

func (d *Dispatcher) handleLeave(client *Client, raw json.RawMessage) {
	var data leaveData
	if err := json.Unmarshal(raw, &data); err != nil {
		d.sendError(client, "invalid leave event")
		return
	}

	d.hub.Leave(client, data.Room)
	d.hub.BroadcastToRoom(data.Room, encodeEvent("message", messagePayload{
		Msg: data.Username + " has left the room.",
	}))
}

func (d *Dispatcher) handleMessage(client *Client, raw json.RawMessage) {
	var data messageData
	if err := json.Unmarshal(raw, &data); err != nil {
		d.sendError(client, "invalid message event")
		return
	}

	groupID, ok := data.Room.GroupID()
	if !ok {
		d.sendError(client, fmt.Sprintf("no such room %q", data.Room))
		return
	}

	// Persist first. The room only ever hears messages that made it into
	// history, so a reload replays exactly what was delivered.
	message, err := d.history.Append(data.Msg, client.user.ID, groupID)
	if err != nil {
		d.Logf("Message persist failed for user %d in room %s {%v}", client.user.ID, data.Room, err)
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidInput) {
			d.sendError(client, err.Error())
		} else {
			d.sendError(client, "your message could not be saved")
		}
		return
	}

	d.hub.BroadcastToRoom(data.Room, encodeEvent("message", messagePayload{
		Msg:       client.user.Username + ": " + message.Content,
		Username:  client.user.Username,
		Timestamp: message.CreatedAt.Format(timestampLayout),
	}))
}

// sendError goes to the one client only, never the room.
func (d *Dispatcher) sendError(client *Client, msg string) {
	select {
	case client.send <- encodeEvent("error", errorPayload{Msg: msg}):
	default:
	}
}
