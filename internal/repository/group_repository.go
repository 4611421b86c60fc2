package repository

import (
	"groupchat/internal/entity"

	"gorm.io/gorm"
)

type GroupRepository interface {
	// Create stores the group together with its initial memberships.
	Create(group *entity.Group) error

	GetByID(id uint) (*entity.Group, error)
	GetAll() ([]*entity.Group, error)

	AddMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
}

type SQLiteGroupRepository struct {
	db *gorm.DB
}

func NewSQLiteGroupRepository(db *gorm.DB) GroupRepository {
	return &SQLiteGroupRepository{db}
}

func (repo *SQLiteGroupRepository) Create(group *entity.Group) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(group).Error
	})
}

func (repo *SQLiteGroupRepository) GetByID(id uint) (*entity.Group, error) {
	var group entity.Group
	err := repo.db.Preload("Members").First(&group, id).Error
	return &group, err
}

func (repo *SQLiteGroupRepository) GetAll() ([]*entity.Group, error) {
	var groups []*entity.Group
	err := repo.db.Order("created_at ASC").Find(&groups).Error
	return groups, err
}

// AddMember inserts a membership row. Appending an existing member is a
// no-op, so repeated grants never produce duplicate rows.
func (repo *SQLiteGroupRepository) AddMember(groupID, userID uint) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		var group entity.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}
		var user entity.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		return tx.Model(&group).Association("Members").Append(&user)
	})
}

func (repo *SQLiteGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := repo.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
