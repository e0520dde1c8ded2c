package model

import "time"

// TeamStatus controls who can see and join a team
type TeamStatus int

const (
	TeamStatusPublic  TeamStatus = 0
	TeamStatusPrivate TeamStatus = 1
	TeamStatusSecret  TeamStatus = 2
)

// Valid reports whether s is one of the known statuses
func (s TeamStatus) Valid() bool {
	return s >= TeamStatusPublic && s <= TeamStatusSecret
}

func (s TeamStatus) String() string {
	switch s {
	case TeamStatusPublic:
		return "public"
	case TeamStatusPrivate:
		return "private"
	case TeamStatusSecret:
		return "secret"
	default:
		return "unknown"
	}
}

// Team limits
const (
	TeamMinCapacity       = 1
	TeamMaxCapacity       = 20
	TeamNameMaxLength     = 20
	TeamDescMaxLength     = 512
	TeamPasswordMaxLength = 32
	// MaxTeamsPerUser bounds both teams owned and memberships held by one user
	MaxTeamsPerUser = 5
)

// Team is a bounded group of users led by UserID.
// Password is only set for SECRET teams and is never serialized.
type Team struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"column:name;size:256;not null" json:"name"`
	Description string     `gorm:"column:description;size:1024" json:"description"`
	MaxNum      int        `gorm:"column:max_num;not null;default:1" json:"max_num"`
	ExpireTime  *time.Time `gorm:"column:expire_time;index" json:"expire_time,omitempty"`
	UserID      int64      `gorm:"column:user_id;not null;index" json:"user_id"`
	Status      TeamStatus `gorm:"column:status;not null;default:0;index" json:"status"`
	Password    string     `gorm:"column:password;size:512" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Team) TableName() string {
	return "team"
}

// IsExpired reports whether the team expired before now. A nil expire time never expires.
func (t *Team) IsExpired(now time.Time) bool {
	return t.ExpireTime != nil && t.ExpireTime.Before(now)
}
