package handler

import (
	"net/http"

	"groupchat/internal/service"

	"github.com/gorilla/sessions"
)

type AuthHandler struct {
	authService service.AuthService
	attachments service.AttachmentService
	cookieStore *sessions.CookieStore
}

func NewAuthHandler(authService service.AuthService, attachments service.AttachmentService, cookieStore *sessions.CookieStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		attachments: attachments,
		cookieStore: cookieStore,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(
		r.FormValue("username"),
		r.FormValue("email"),
		r.FormValue("password"),
	)
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Your account has been created! You are now able to log in",
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Login(r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		fail(w, err)
		return
	}

	session, _ := h.cookieStore.Get(r, "auth-session")
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Values["email"] = user.Email
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.cookieStore.Get(r, "auth-session")
	session.Options.MaxAge = -1
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

// Profile returns the account plus the user's own uploads, newest first.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUser(sessionUser.ID)
	if err != nil {
		fail(w, err)
		return
	}

	files, err := h.attachments.ListForUser(user.ID)
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "files": files})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	user, err := h.authService.UpdateProfile(
		sessionUser.ID,
		r.FormValue("username"),
		r.FormValue("email"),
		r.FormValue("password"),
	)
	if err != nil {
		fail(w, err)
		return
	}

	// The session carries the identity fields, so a rename must refresh it.
	session, _ := h.cookieStore.Get(r, "auth-session")
	session.Values["username"] = user.Username
	session.Values["email"] = user.Email
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Your account has been updated!",
		"user":    user,
	})
}
