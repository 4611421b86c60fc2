package handler

import (
	"net/http"

	"groupchat/internal/middleware"
	"groupchat/internal/realtime"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

func NewRouter(authHandler *AuthHandler, groupHandler *GroupHandler, fileHandler *FileHandler, realtimeHandler *realtime.Handler, store *sessions.CookieStore) *mux.Router {
	router := mux.NewRouter()

	authed := func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
		return middleware.AuthMiddleware(store, next)
	}

	router.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", authed(authHandler.Logout)).Methods(http.MethodPost)

	router.HandleFunc("/profile", authed(authHandler.Profile)).Methods(http.MethodGet)
	router.HandleFunc("/profile", authed(authHandler.UpdateProfile)).Methods(http.MethodPost)

	router.HandleFunc("/groups", authed(groupHandler.ListGroups)).Methods(http.MethodGet)
	router.HandleFunc("/groups", authed(groupHandler.CreateGroup)).Methods(http.MethodPost)
	router.HandleFunc("/groups/{id:[0-9]+}/enter", authed(groupHandler.EnterGroup)).Methods(http.MethodPost)
	router.HandleFunc("/groups/{id:[0-9]+}/clear", authed(groupHandler.ClearHistory)).Methods(http.MethodPost)

	router.HandleFunc("/groups/{id:[0-9]+}/files", authed(fileHandler.Upload)).Methods(http.MethodPost)
	router.HandleFunc("/files/{id:[0-9]+}", authed(fileHandler.Download)).Methods(http.MethodGet)

	router.HandleFunc("/ws", authed(realtimeHandler.HandleWS)).Methods(http.MethodGet)

	return router
}
