package handler

import (
	"fmt"
	"net/http"

	"groupchat/internal/service"
)

type GroupHandler struct {
	groupService service.GroupService
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.ListGroups()
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.CreateGroup(r.FormValue("name"), user.ID, r.FormValue("passkey"))
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("Group %s created!", group.Name),
		"group":   group,
	})
}

// EnterGroup is the page-load path into a room: the passkey gate runs for
// non-members, and a successful entry returns the full history.
func (h *GroupHandler) EnterGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	view, err := h.groupService.EnterGroup(groupID, user.ID, r.FormValue("passkey"))
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *GroupHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	report, err := h.groupService.ClearHistory(groupID, user.ID, r.FormValue("passkey"))
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Chat and file history has been cleared.",
		"report":  report,
	})
}
