package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"groupchat/internal/applog"
	"groupchat/internal/entity"
	"groupchat/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentService interface {
	// Store sanitizes rawFilename, writes the bytes under a unique name in
	// the upload directory and records the metadata row.
	Store(rawFilename string, r io.Reader, uploaderID, groupID uint) (*entity.File, error)

	// Retrieve returns the metadata and an open handle on the stored bytes.
	// The caller closes the handle.
	Retrieve(fileID uint) (*entity.File, io.ReadCloser, error)

	ListForGroup(groupID uint) ([]*entity.File, error)
	ListForUser(userID uint) ([]*entity.File, error)

	// DeleteAllForGroup removes every stored file and then the metadata rows
	// in one transaction. Disk removal is best effort: failures come back in
	// the report and never abort the rest.
	DeleteAllForGroup(groupID uint) (failures []string, err error)
}

type attachmentService struct {
	uploadDir       string
	fileRepository  repository.FileRepository
	userRepository  repository.UserRepository
	groupRepository repository.GroupRepository
	logger          applog.Logger
}

func NewAttachmentService(uploadDir string, fileRepo repository.FileRepository, userRepo repository.UserRepository, groupRepo repository.GroupRepository, logger applog.Logger) AttachmentService {
	return &attachmentService{
		uploadDir:       uploadDir,
		fileRepository:  fileRepo,
		userRepository:  userRepo,
		groupRepository: groupRepo,
		logger:          logger,
	}
}

func (a *attachmentService) Logf(format string, v ...any) {
	a.logger.Logf(format, v...)
}

// sanitizeFilename strips any directory part and keeps only portable
// characters, so an uploaded name can never escape the upload directory.
func sanitizeFilename(raw string) string {
	name := filepath.Base(strings.ReplaceAll(raw, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func (a *attachmentService) Store(rawFilename string, r io.Reader, uploaderID, groupID uint) (*entity.File, error) {
	if rawFilename == "" {
		return nil, fmt.Errorf("%w: no filename given", ErrInvalidInput)
	}

	safe := sanitizeFilename(rawFilename)
	if safe == "" {
		return nil, fmt.Errorf("%w: filename %q has no usable characters", ErrInvalidInput, rawFilename)
	}

	if _, err := a.userRepository.GetByID(uploaderID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, uploaderID)
	} else if err != nil {
		return nil, err
	}
	if _, err := a.groupRepository.GetByID(groupID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	} else if err != nil {
		return nil, err
	}

	// The uuid prefix keeps two uploads of the same name from clobbering
	// each other on disk.
	storedName := uuid.New().String() + "_" + safe

	dst, err := os.Create(filepath.Join(a.uploadDir, storedName))
	if err != nil {
		return nil, fmt.Errorf("could not create the upload file {%w}", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, fmt.Errorf("could not write the upload {%w}", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	file := &entity.File{
		Filename:   safe,
		StoredName: storedName,
		UserID:     uploaderID,
		GroupID:    groupID,
		CreatedAt:  time.Now(),
	}
	if err := a.fileRepository.Create(file); err != nil {
		os.Remove(filepath.Join(a.uploadDir, storedName))
		return nil, err
	}

	a.Logf("User %d uploaded %q to group %d as %s", uploaderID, safe, groupID, storedName)
	return file, nil
}

func (a *attachmentService) Retrieve(fileID uint) (*entity.File, io.ReadCloser, error) {
	file, err := a.fileRepository.GetByID(fileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: file %d", ErrNotFound, fileID)
	} else if err != nil {
		return nil, nil, err
	}

	handle, err := os.Open(filepath.Join(a.uploadDir, file.StoredName))
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w: stored bytes for file %d are gone", ErrNotFound, fileID)
	} else if err != nil {
		return nil, nil, err
	}

	return file, handle, nil
}

func (a *attachmentService) ListForGroup(groupID uint) ([]*entity.File, error) {
	return a.fileRepository.GetByGroup(groupID)
}

func (a *attachmentService) ListForUser(userID uint) ([]*entity.File, error) {
	return a.fileRepository.GetByUser(userID)
}

func (a *attachmentService) DeleteAllForGroup(groupID uint) ([]string, error) {
	files, err := a.fileRepository.GetByGroup(groupID)
	if err != nil {
		return nil, err
	}

	var failures []string
	for _, file := range files {
		if err := os.Remove(filepath.Join(a.uploadDir, file.StoredName)); err != nil {
			failures = append(failures, fmt.Sprintf("could not delete %s: %v", file.Filename, err))
			a.Logf("Stored file removal failed for %s {%v}", file.StoredName, err)
		}
	}

	if err := a.fileRepository.DeleteByGroup(groupID); err != nil {
		return failures, err
	}

	a.Logf("Purged %d files for group %d (%d disk failures)", len(files), groupID, len(failures))
	return failures, nil
}
