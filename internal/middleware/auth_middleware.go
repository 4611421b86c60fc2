package middleware

import (
	"context"
	"net/http"

	"groupchat/internal/entity"

	"github.com/gorilla/sessions"
)

func AuthMiddleware(store *sessions.CookieStore, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// A stale or tampered cookie decodes to an empty session, which
		// fails the value checks below.
		session, _ := store.Get(r, "auth-session")

		userID, ok1 := session.Values["user_id"].(uint)
		username, ok2 := session.Values["username"].(string)
		email, ok3 := session.Values["email"].(string)

		if !(ok1 && ok2 && ok3) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user := entity.User{
			ID:       userID,
			Username: username,
			Email:    email,
		}

		ctx := context.WithValue(r.Context(), "user", user)
		r = r.WithContext(ctx)

		next(w, r)
	}
}
