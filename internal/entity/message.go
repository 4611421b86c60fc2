package entity

import "time"

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	Content string `gorm:"not null" json:"content"`

	UserID  uint `gorm:"not null;index" json:"user_id"`
	GroupID uint `gorm:"not null;index" json:"group_id"`

	Author User `gorm:"foreignKey:UserID" json:"-"`
}
