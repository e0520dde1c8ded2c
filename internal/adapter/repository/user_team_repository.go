package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userTeamRepository implements the UserTeamRepository interface
type userTeamRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserTeamRepository creates a new membership repository instance
func NewUserTeamRepository(db *gorm.DB, logger *zap.Logger) domainRepo.UserTeamRepository {
	return &userTeamRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userTeamRepository) Create(ctx context.Context, membership *model.UserTeam) error {
	err := conn(ctx, r.db).Create(membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainRepo.ErrAlreadyExists
		}
		r.logger.Error("Failed to create membership",
			zap.Int64("team_id", membership.TeamID),
			zap.Int64("user_id", membership.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *userTeamRepository) Get(ctx context.Context, teamID, userID int64) (*model.UserTeam, error) {
	var membership model.UserTeam
	err := conn(ctx, r.db).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership, nil
}

func (r *userTeamRepository) ListByTeam(ctx context.Context, teamID int64) ([]*model.UserTeam, error) {
	var memberships []*model.UserTeam
	err := conn(ctx, r.db).
		Where("team_id = ?", teamID).
		Order("join_time ASC, id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team memberships: %w", err)
	}
	return memberships, nil
}

func (r *userTeamRepository) ListByUser(ctx context.Context, userID int64) ([]*model.UserTeam, error) {
	var memberships []*model.UserTeam
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("team_id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user memberships: %w", err)
	}
	return memberships, nil
}

func (r *userTeamRepository) CountByTeam(ctx context.Context, teamID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.UserTeam{}).Where("team_id = ?", teamID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

func (r *userTeamRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.UserTeam{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user memberships: %w", err)
	}
	return count, nil
}

// CountByTeams counts members of many teams with one grouped query
func (r *userTeamRepository) CountByTeams(ctx context.Context, teamIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TeamID int64
		Total  int64
	}
	err := conn(ctx, r.db).Model(&model.UserTeam{}).
		Select("team_id, COUNT(*) AS total").
		Where("team_id IN ?", teamIDs).
		Group("team_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members by team: %w", err)
	}

	for _, row := range rows {
		counts[row.TeamID] = row.Total
	}
	return counts, nil
}

func (r *userTeamRepository) FindSuccessor(ctx context.Context, teamID, excludeUserID int64) (*model.UserTeam, error) {
	var membership model.UserTeam
	err := conn(ctx, r.db).
		Where("team_id = ? AND user_id <> ?", teamID, excludeUserID).
		Order("join_time ASC, id ASC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find successor: %w", err)
	}
	return &membership, nil
}

func (r *userTeamRepository) Delete(ctx context.Context, teamID, userID int64) error {
	err := conn(ctx, r.db).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.UserTeam{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

func (r *userTeamRepository) DeleteByTeam(ctx context.Context, teamID int64) error {
	if err := conn(ctx, r.db).Where("team_id = ?", teamID).Delete(&model.UserTeam{}).Error; err != nil {
		return fmt.Errorf("failed to delete team memberships: %w", err)
	}
	return nil
}
