package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"groupchat/internal/entity"
	"groupchat/internal/service"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func currentUser(r *http.Request) (entity.User, bool) {
	user, ok := r.Context().Value("user").(entity.User)
	return user, ok
}

func pathID(r *http.Request, name string) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[name], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// statusFor maps the service failure modes onto HTTP statuses; anything
// unrecognized is treated as a server-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWrongPasskey),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNotMember):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}
