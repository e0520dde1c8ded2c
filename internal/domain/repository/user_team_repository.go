package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// UserTeamRepository defines persistence operations for memberships.
type UserTeamRepository interface {
	// Create inserts a membership; returns ErrAlreadyExists on a (team, user) duplicate
	Create(ctx context.Context, membership *model.UserTeam) error
	// Get returns (nil, nil) when the user is not a member
	Get(ctx context.Context, teamID, userID int64) (*model.UserTeam, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*model.UserTeam, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.UserTeam, error)
	CountByTeam(ctx context.Context, teamID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	// CountByTeams returns member counts keyed by team id; teams without members are absent
	CountByTeams(ctx context.Context, teamIDs []int64) (map[int64]int64, error)
	// FindSuccessor returns the earliest-joined member other than excludeUserID, or (nil, nil)
	FindSuccessor(ctx context.Context, teamID, excludeUserID int64) (*model.UserTeam, error)
	Delete(ctx context.Context, teamID, userID int64) error
	DeleteByTeam(ctx context.Context, teamID int64) error
}
