package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// TeamRepository defines persistence operations for teams.
// Lookups by id return (nil, nil) when the team does not exist.
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id int64) (*model.Team, error)
	// Save writes every column of the team, including zero values
	Save(ctx context.Context, team *model.Team) error
	// UpdateLeader sets the leader; returns ErrNoRowsAffected if the team is gone
	UpdateLeader(ctx context.Context, teamID, userID int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.TeamFilter) ([]*model.Team, error)
	CountByOwner(ctx context.Context, userID int64) (int64, error)
}
