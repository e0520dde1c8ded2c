package http

import (
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

type RegisterRequest struct {
	UserAccount   string `json:"user_account" validate:"required"`
	UserPassword  string `json:"user_password" validate:"required"`
	CheckPassword string `json:"check_password" validate:"required"`
	PlanetCode    string `json:"planet_code" validate:"required"`
}

type LoginRequest struct {
	UserAccount  string `json:"user_account" validate:"required"`
	UserPassword string `json:"user_password" validate:"required"`
}

type UpdateUserRequest struct {
	ID        int64    `json:"id" validate:"required,gt=0"`
	Username  *string  `json:"username"`
	AvatarURL *string  `json:"avatar_url" validate:"omitempty,max=1024"`
	Gender    *int     `json:"gender" validate:"omitempty,oneof=0 1"`
	Phone     *string  `json:"phone" validate:"omitempty,max=128"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	Tags      []string `json:"tags" validate:"omitempty,dive,required,max=64"`
}

type IDRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type AddTeamRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	MaxNum      int               `json:"max_num" validate:"required"`
	ExpireTime  *time.Time        `json:"expire_time"`
	Status      *model.TeamStatus `json:"status"`
	Password    string            `json:"password"`
}

type UpdateTeamRequest struct {
	ID          int64             `json:"id" validate:"required,gt=0"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	MaxNum      *int              `json:"max_num"`
	ExpireTime  *time.Time        `json:"expire_time"`
	Status      *model.TeamStatus `json:"status"`
	Password    *string           `json:"password"`
}

type JoinTeamRequest struct {
	TeamID   int64  `json:"team_id" validate:"required,gt=0"`
	Password string `json:"password"`
}

type QuitTeamRequest struct {
	TeamID int64 `json:"team_id" validate:"required,gt=0"`
}
