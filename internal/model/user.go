package model

import (
	"time"
)

type UserRole string

const (
	Admin   UserRole = "admin"
	Alumni  UserRole = "alumni"
	Manager UserRole = "manager"
)

func (r UserRole) IsValid() bool {
	switch r {
	case Admin, Alumni, Manager:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('admin','alumni','manager');default:'alumni'" json:"role"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
