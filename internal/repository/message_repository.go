package repository

import (
	"groupchat/internal/entity"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *entity.Message) error

	GetByGroup(groupID uint) ([]*entity.Message, error)

	DeleteByGroup(groupID uint) error
}

type SQLiteMessageRepository struct {
	db *gorm.DB
}

func NewSQLiteMessageRepository(db *gorm.DB) MessageRepository {
	return &SQLiteMessageRepository{db}
}

func (repo *SQLiteMessageRepository) Create(message *entity.Message) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(message).Error
	})
}

// GetByGroup returns the full history, oldest first. The id tiebreak keeps
// same-timestamp messages in insert order.
func (repo *SQLiteMessageRepository) GetByGroup(groupID uint) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := repo.db.Preload("Author").
		Where("group_id = ?", groupID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	return messages, err
}

func (repo *SQLiteMessageRepository) DeleteByGroup(groupID uint) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("group_id = ?", groupID).Delete(&entity.Message{}).Error
	})
}
