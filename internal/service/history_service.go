package service

import (
	"errors"
	"fmt"
	"time"

	"groupchat/internal/applog"
	"groupchat/internal/entity"
	"groupchat/internal/repository"

	"gorm.io/gorm"
)

// HistoryService is the durable side of the chat: every message is written
// before anyone sees it, and a reload replays from here.
type HistoryService interface {
	// Append stores the message with a server-assigned timestamp and
	// returns it with the author preloaded.
	Append(content string, authorID, groupID uint) (*entity.Message, error)

	// List returns the group's full history, oldest first.
	List(groupID uint) ([]*entity.Message, error)

	Clear(groupID uint) error
}

type historyService struct {
	messageRepository repository.MessageRepository
	userRepository    repository.UserRepository
	groupRepository   repository.GroupRepository
	logger            applog.Logger
}

func NewHistoryService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, groupRepo repository.GroupRepository, logger applog.Logger) HistoryService {
	return &historyService{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		groupRepository:   groupRepo,
		logger:            logger,
	}
}

func (h *historyService) Logf(format string, v ...any) {
	h.logger.Logf(format, v...)
}

func (h *historyService) Append(content string, authorID, groupID uint) (*entity.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	author, err := h.userRepository.GetByID(authorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, authorID)
	} else if err != nil {
		return nil, err
	}

	if _, err := h.groupRepository.GetByID(groupID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	} else if err != nil {
		return nil, err
	}

	message := &entity.Message{
		Content:   content,
		UserID:    authorID,
		GroupID:   groupID,
		CreatedAt: time.Now(),
	}
	if err := h.messageRepository.Create(message); err != nil {
		h.Logf("Message append failed {%v}", err)
		return nil, err
	}
	message.Author = *author

	return message, nil
}

func (h *historyService) List(groupID uint) ([]*entity.Message, error) {
	return h.messageRepository.GetByGroup(groupID)
}

func (h *historyService) Clear(groupID uint) error {
	if err := h.messageRepository.DeleteByGroup(groupID); err != nil {
		return err
	}
	h.Logf("History cleared for group %d", groupID)
	return nil
}
