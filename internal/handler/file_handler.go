package handler

import (
	"fmt"
	"io"
	"net/http"

	"groupchat/internal/service"
)

// Uploads above this size spill to disk while parsing.
const maxUploadMemory = 32 << 20

type FileHandler struct {
	attachments service.AttachmentService
}

func NewFileHandler(attachments service.AttachmentService) *FileHandler {
	return &FileHandler{attachments: attachments}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "No file part", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file part", http.StatusBadRequest)
		return
	}
	defer part.Close()

	file, err := h.attachments.Store(header.Filename, part, user.ID, groupID)
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "File uploaded successfully!",
		"file":    file,
	})
}

// Download always serves the bytes as an attachment, never inline.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid file id", http.StatusBadRequest)
		return
	}

	file, handle, err := h.attachments.Retrieve(fileID)
	if err != nil {
		fail(w, err)
		return
	}
	defer handle.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	io.Copy(w, handle)
}
