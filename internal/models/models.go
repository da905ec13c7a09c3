package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string   `gorm:"primaryKey"                             json:"id"`
	Username     string   `gorm:"uniqueIndex;not null"                   json:"username"`
	PasswordHash string   `gorm:"not null"                               json:"-"`
	Roles        []string `gorm:"serializer:json;not null"               json:"roles"`
	Active       bool     `gorm:"not null;default:true"                  json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasAnyRole reports whether the user holds at least one of required.
// An empty required set denies.
func (u *User) HasAnyRole(required ...string) bool {
	for _, want := range required {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

type Note struct {
	ID        string `gorm:"primaryKey"           json:"id"`
	UserID    string `gorm:"index;not null"       json:"user_id"`
	Title     string `gorm:"not null"             json:"title"`
	Text      string `gorm:"not null"             json:"text"`
	Completed bool   `gorm:"not null;default:false" json:"completed"`
	Ticket    uint   `gorm:"uniqueIndex;not null" json:"ticket"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
