package entity

import "time"

type File struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	// Filename is the sanitized name the uploader chose, StoredName the
	// unique name the bytes actually live under on disk.
	Filename   string `gorm:"not null" json:"filename"`
	StoredName string `gorm:"not null;uniqueIndex" json:"-"`

	UserID  uint `gorm:"not null;index" json:"user_id"`
	GroupID uint `gorm:"not null;index" json:"group_id"`
}
