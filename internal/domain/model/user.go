package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles
const (
	RoleDefault = 0
	RoleAdmin   = 1
)

// User is an account of the partner-matching platform.
// Tags is stored as a JSON array of tag names, e.g. ["go","backend"].
type User struct {
	ID           int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string                      `gorm:"column:username;size:256" json:"username"`
	UserAccount  string                      `gorm:"column:user_account;size:256;uniqueIndex;not null" json:"user_account"`
	AvatarURL    string                      `gorm:"column:avatar_url;size:1024" json:"avatar_url"`
	Gender       int                         `gorm:"column:gender" json:"gender"`
	UserPassword string                      `gorm:"column:user_password;size:512;not null" json:"-"`
	Phone        string                      `gorm:"column:phone;size:128" json:"phone"`
	Email        string                      `gorm:"column:email;size:512" json:"email"`
	UserStatus   int                         `gorm:"column:user_status;default:0" json:"user_status"`
	UserRole     int                         `gorm:"column:user_role;default:0" json:"user_role"`
	PlanetCode   string                      `gorm:"column:planet_code;size:512;uniqueIndex" json:"planet_code"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "user"
}

// IsAdmin reports whether the user holds the privileged role.
func (u *User) IsAdmin() bool {
	return u != nil && u.UserRole == RoleAdmin
}
