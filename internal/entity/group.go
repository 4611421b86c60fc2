package entity

import (
	"time"
)

type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	Name    string `gorm:"not null;index" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"-"`

	// An empty hash means the group is open to everyone.
	PasskeyHash string `json:"-"`

	Members []User `gorm:"many2many:group_members;" json:"members,omitempty"`
}

func (g *Group) Protected() bool {
	return g.PasskeyHash != ""
}
