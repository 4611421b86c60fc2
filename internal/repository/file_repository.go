package repository

import (
	"groupchat/internal/entity"

	"gorm.io/gorm"
)

type FileRepository interface {
	Create(file *entity.File) error

	GetByID(id uint) (*entity.File, error)
	GetByGroup(groupID uint) ([]*entity.File, error)
	GetByUser(userID uint) ([]*entity.File, error)

	DeleteByGroup(groupID uint) error
}

type SQLiteFileRepository struct {
	db *gorm.DB
}

func NewSQLiteFileRepository(db *gorm.DB) FileRepository {
	return &SQLiteFileRepository{db}
}

func (repo *SQLiteFileRepository) Create(file *entity.File) error {
	return repo.db.Create(file).Error
}

func (repo *SQLiteFileRepository) GetByID(id uint) (*entity.File, error) {
	var file entity.File
	err := repo.db.First(&file, id).Error
	return &file, err
}

func (repo *SQLiteFileRepository) GetByGroup(groupID uint) ([]*entity.File, error) {
	var files []*entity.File
	err := repo.db.Where("group_id = ?", groupID).
		Order("created_at DESC").Order("id DESC").
		Find(&files).Error
	return files, err
}

func (repo *SQLiteFileRepository) GetByUser(userID uint) ([]*entity.File, error) {
	var files []*entity.File
	err := repo.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&files).Error
	return files, err
}

func (repo *SQLiteFileRepository) DeleteByGroup(groupID uint) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("group_id = ?", groupID).Delete(&entity.File{}).Error
	})
}
