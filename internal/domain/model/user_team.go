package model

import "time"

// UserTeam is a membership of a user in a team
type UserTeam struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_team_team_user,priority:2;index" json:"user_id"`
	TeamID    int64     `gorm:"column:team_id;not null;uniqueIndex:idx_user_team_team_user,priority:1" json:"team_id"`
	JoinTime  time.Time `gorm:"column:join_time;not null" json:"join_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserTeam) TableName() string {
	return "user_team"
}
