package realtime

import (
	"net/http"

	"groupchat/internal/applog"
	"groupchat/internal/entity"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated HTTP requests into realtime clients. It
// sits behind the session middleware, which put the user on the context.
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	logger     applog.Logger
}

func NewHandler(hub *Hub, dispatcher *Dispatcher, logger applog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(entity.User)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Logf("Websocket upgrade failed {%v}", err)
		return
	}

	client := NewClient(conn, h.hub, h.dispatcher, user)
	h.logger.Logf("User %d opened a realtime connection", user.ID)
	go client.HandleConnection()
}
