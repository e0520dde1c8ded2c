package dto

import (
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// TeamQuery holds the optional predicates of a team listing.
// Nil fields are not applied.
type TeamQuery struct {
	ID          *int64
	IDList      []int64
	SearchText  string
	Name        string
	Description string
	MaxNum      *int
	UserID      *int64
	Status      *model.TeamStatus
	Pagination  entity.PaginationParams
}

// TeamFilter is the store-level form of a query after status defaulting
type TeamFilter struct {
	TeamQuery
	// Statuses restricts the status column; empty means any
	Statuses []model.TeamStatus
	// NotExpiredAt excludes teams whose expire time is before this instant; nil disables the check
	NotExpiredAt *time.Time
}

// CreateTeamInput carries the fields of a new team
type CreateTeamInput struct {
	Name        string
	Description string
	MaxNum      int
	ExpireTime  *time.Time
	Status      *model.TeamStatus
	Password    string
}

// UpdateTeamInput is a partial update; nil fields are left unchanged
type UpdateTeamInput struct {
	ID          int64
	Name        *string
	Description *string
	MaxNum      *int
	ExpireTime  *time.Time
	Status      *model.TeamStatus
	Password    *string
}
