package repository

import (
	"groupchat/internal/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *entity.User) error

	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)

	Update(user *entity.User) error
}

type SQLiteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) UserRepository {
	return &SQLiteUserRepository{db}
}

func (repo *SQLiteUserRepository) Create(user *entity.User) error {
	return repo.db.Create(user).Error
}

func (repo *SQLiteUserRepository) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := repo.db.First(&user, id).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) Update(user *entity.User) error {
	return repo.db.Save(user).Error
}
