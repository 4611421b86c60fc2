package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"groupchat/internal/entity"
	"groupchat/internal/service"
)

// MockHistoryService records appends and can be told to fail.
type MockHistoryService struct {
	appendErr error
	appended  []string
}

func (m *MockHistoryService) Append(content string, authorID, groupID uint) (*entity.Message, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.appended = append(m.appended, content)
	return &entity.Message{
		ID:        uint(len(m.appended)),
		Content:   content,
		UserID:    authorID,
		GroupID:   groupID,
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *MockHistoryService) List(groupID uint) ([]*entity.Message, error) { return nil, nil }
func (m *MockHistoryService) Clear(groupID uint) error                     { return nil }

// MockGroupService admits the user ids listed in viewers.
type MockGroupService struct {
	group   *entity.Group
	viewers map[uint]bool
}

func (m *MockGroupService) GetGroup(id uint) (*entity.Group, error) {
	if m.group == nil || m.group.ID != id {
		return nil, fmt.Errorf("%w: group %d", service.ErrNotFound, id)
	}
	return m.group, nil
}

func (m *MockGroupService) CanView(group *entity.Group, userID uint) (bool, error) {
	return m.viewers[userID], nil
}

func (m *MockGroupService) CreateGroup(name string, ownerID uint, passkey string) (*entity.Group, error) {
	return nil, nil
}
func (m *MockGroupService) ListGroups() ([]*entity.Group, error)                   { return nil, nil }
func (m *MockGroupService) VerifyPasskey(group *entity.Group, candidate string) bool { return true }
func (m *MockGroupService) RequestMembership(groupID, userID uint, passkey string) error {
	return nil
}
func (m *MockGroupService) CanModerate(group *entity.Group, userID uint) bool { return false }
func (m *MockGroupService) EnterGroup(groupID, userID uint, passkey string) (*service.GroupView, error) {
	return nil, nil
}
func (m *MockGroupService) ClearHistory(groupID, actingUserID uint, passkey string) (*service.ClearReport, error) {
	return nil, nil
}

func newTestDispatcher(history *MockHistoryService, groups *MockGroupService) (*Hub, *Dispatcher) {
	hub := NewHub(&MockLogger{})
	return hub, NewDispatcher(hub, history, groups, &MockLogger{})
}

func mustFrame(t *testing.T, event string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Could not marshal the test frame: %v", err)
	}
	frame, err := json.Marshal(Event{Event: event, Data: raw})
	if err != nil {
		t.Fatalf("Could not marshal the test frame: %v", err)
	}
	return frame
}

func recvEvent(t *testing.T, client *Client) (string, messagePayload) {
	t.Helper()
	select {
	case raw := <-client.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("Unparseable frame %s: %v", raw, err)
		}
		var payload messagePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			t.Fatalf("Unparseable payload %s: %v", event.Data, err)
		}
		return event.Event, payload
	default:
		t.Fatalf("Expected a queued frame")
		return "", messagePayload{}
	}
}

func assertSilent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.send:
		t.Errorf("Expected %s to hear nothing, got %s", client.user.Username, raw)
	default:
	}
}

func TestJoinBroadcastsEntryNotice(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng"},
		viewers: map[uint]bool{1: true, 2: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	bob := NewClient(nil, hub, dispatcher, entity.User{ID: 2, Username: "bob"})
	dispatcher.Dispatch(alice, mustFrame(t, "join", joinData{Username: "alice", Room: "7"}))
	recvEvent(t, alice) // alice's own entry notice

	dispatcher.Dispatch(bob, mustFrame(t, "join", joinData{Username: "bob", Room: "7"}))

	// Everyone in the room hears it, the joiner included.
	for _, client := range []*Client{alice, bob} {
		event, payload := recvEvent(t, client)
		if event != "message" {
			t.Errorf("GOT[%s], EXPECTED[message]", event)
		}
		if payload.Msg != "bob has entered the room." {
			t.Errorf("GOT[%s], EXPECTED[bob has entered the room.]", payload.Msg)
		}
	}

	if !hub.InRoom(bob, "7") {
		t.Errorf("Expected bob to be in the room")
	}
}

func TestJoinDeniedGoesToSenderOnly(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng", PasskeyHash: "x"},
		viewers: map[uint]bool{1: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	dispatcher.Dispatch(alice, mustFrame(t, "join", joinData{Username: "alice", Room: "7"}))
	recvEvent(t, alice)

	mallory := NewClient(nil, hub, dispatcher, entity.User{ID: 9, Username: "mallory"})
	dispatcher.Dispatch(mallory, mustFrame(t, "join", joinData{Username: "mallory", Room: "7"}))

	event, _ := recvEvent(t, mallory)
	if event != "error" {
		t.Errorf("GOT[%s], EXPECTED[error]", event)
	}
	if hub.InRoom(mallory, "7") {
		t.Errorf("Expected the denied user to stay out of the room")
	}
	// The room never learns about the attempt.
	assertSilent(t, alice)
}

func TestJoinUnknownRoom(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{viewers: map[uint]bool{}}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	dispatcher.Dispatch(alice, mustFrame(t, "join", joinData{Username: "alice", Room: "99"}))

	event, _ := recvEvent(t, alice)
	if event != "error" {
		t.Errorf("GOT[%s], EXPECTED[error]", event)
	}
	if hub.InRoom(alice, "99") {
		t.Errorf("Expected no membership in a room that does not exist")
	}
}

func TestLeaveBroadcastsExitNotice(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng"},
		viewers: map[uint]bool{1: true, 2: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	bob := NewClient(nil, hub, dispatcher, entity.User{ID: 2, Username: "bob"})
	hub.Join(alice, "7")
	hub.Join(bob, "7")

	dispatcher.Dispatch(bob, mustFrame(t, "leave", leaveData{Username: "bob", Room: "7"}))

	if hub.InRoom(bob, "7") {
		t.Errorf("Expected bob to be out of the room")
	}
	_, payload := recvEvent(t, alice)
	if payload.Msg != "bob has left the room." {
		t.Errorf("GOT[%s], EXPECTED[bob has left the room.]", payload.Msg)
	}
}

func TestMessagePersistsThenBroadcasts(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng"},
		viewers: map[uint]bool{1: true, 2: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	bob := NewClient(nil, hub, dispatcher, entity.User{ID: 2, Username: "bob"})
	hub.Join(alice, "7")
	hub.Join(bob, "7")

	dispatcher.Dispatch(alice, mustFrame(t, "message", messageData{Room: "7", Msg: "hi all"}))

	if len(history.appended) != 1 || history.appended[0] != "hi all" {
		t.Fatalf("Expected the message to be persisted. GOT[%v]", history.appended)
	}

	for _, client := range []*Client{alice, bob} {
		event, payload := recvEvent(t, client)
		if event != "message" {
			t.Errorf("GOT[%s], EXPECTED[message]", event)
		}
		if payload.Msg != "alice: hi all" {
			t.Errorf("GOT[%s], EXPECTED[alice: hi all]", payload.Msg)
		}
		if payload.Username != "alice" {
			t.Errorf("GOT[%s], EXPECTED[alice]", payload.Username)
		}
		if payload.Timestamp != "2026-08-30 12:00:00" {
			t.Errorf("GOT[%s], EXPECTED[2026-08-30 12:00:00]", payload.Timestamp)
		}
	}
}

func TestMessagePersistFailureIsSenderOnly(t *testing.T) {
	history := &MockHistoryService{appendErr: fmt.Errorf("%w: empty message", service.ErrInvalidInput)}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng"},
		viewers: map[uint]bool{1: true, 2: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	bob := NewClient(nil, hub, dispatcher, entity.User{ID: 2, Username: "bob"})
	hub.Join(alice, "7")
	hub.Join(bob, "7")

	dispatcher.Dispatch(alice, mustFrame(t, "message", messageData{Room: "7", Msg: ""}))

	event, payload := recvEvent(t, alice)
	if event != "error" {
		t.Errorf("GOT[%s], EXPECTED[error]", event)
	}
	if payload.Msg == "" {
		t.Errorf("Expected the error to carry a reason")
	}
	// Nothing reaches the room when the write failed.
	assertSilent(t, bob)
}

func TestMessageStorageFailureHidesDetails(t *testing.T) {
	history := &MockHistoryService{appendErr: errors.New("disk io error")}
	groups := &MockGroupService{
		group:   &entity.Group{ID: 7, Name: "Eng"},
		viewers: map[uint]bool{1: true},
	}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	hub.Join(alice, "7")

	dispatcher.Dispatch(alice, mustFrame(t, "message", messageData{Room: "7", Msg: "hi"}))

	event, payload := recvEvent(t, alice)
	if event != "error" {
		t.Errorf("GOT[%s], EXPECTED[error]", event)
	}
	if payload.Msg != "your message could not be saved" {
		t.Errorf("GOT[%s], EXPECTED[your message could not be saved]", payload.Msg)
	}
}

func TestUnknownEvent(t *testing.T) {
	history := &MockHistoryService{}
	groups := &MockGroupService{}
	hub, dispatcher := newTestDispatcher(history, groups)

	alice := NewClient(nil, hub, dispatcher, entity.User{ID: 1, Username: "alice"})
	dispatcher.Dispatch(alice, mustFrame(t, "shout", json.RawMessage(`{}`)))

	event, _ := recvEvent(t, alice)
	if event != "error" {
		t.Errorf("GOT[%s], EXPECTED[error]", event)
	}
}
