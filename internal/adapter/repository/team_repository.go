package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// teamRepository implements the TeamRepository interface
type teamRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTeamRepository creates a new team repository instance
func NewTeamRepository(db *gorm.DB, logger *zap.Logger) domainRepo.TeamRepository {
	return &teamRepository{
		db:     db,
		logger: logger,
	}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	if err := conn(ctx, r.db).Create(team).Error; err != nil {
		r.logger.Error("Failed to create team", zap.String("name", team.Name), zap.Error(err))
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// GetByID returns (nil, nil) when the team does not exist
func (r *teamRepository) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	var team model.Team
	err := conn(ctx, r.db).Where("id = ?", id).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

func (r *teamRepository) Save(ctx context.Context, team *model.Team) error {
	if err := conn(ctx, r.db).Save(team).Error; err != nil {
		r.logger.Error("Failed to save team", zap.Int64("team_id", team.ID), zap.Error(err))
		return fmt.Errorf("failed to save team: %w", err)
	}
	return nil
}

func (r *teamRepository) UpdateLeader(ctx context.Context, teamID, userID int64) error {
	result := conn(ctx, r.db).Model(&model.Team{}).
		Where("id = ?", teamID).
		Update("user_id", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to update team leader: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNoRowsAffected
	}
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Team{}).Error; err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// List applies every non-empty predicate of the filter, ordered by id
func (r *teamRepository) List(ctx context.Context, f dto.TeamFilter) ([]*model.Team, error) {
	q := conn(ctx, r.db).Model(&model.Team{})

	if f.ID != nil && *f.ID > 0 {
		q = q.Where("id = ?", *f.ID)
	}
	if len(f.IDList) > 0 {
		q = q.Where("id IN ?", f.IDList)
	}
	if text := strings.TrimSpace(f.SearchText); text != "" {
		like := "%" + escapeLike(text) + "%"
		q = q.Where("(name LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\')", like, like)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("name = ?", name)
	}
	if desc := strings.TrimSpace(f.Description); desc != "" {
		q = q.Where("description LIKE ? ESCAPE '\\'", "%"+escapeLike(desc)+"%")
	}
	if f.MaxNum != nil && *f.MaxNum > 0 {
		q = q.Where("max_num = ?", *f.MaxNum)
	}
	if f.UserID != nil && *f.UserID > 0 {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.NotExpiredAt != nil {
		q = q.Where("(expire_time IS NULL OR expire_time > ?)", *f.NotExpiredAt)
	}

	q = q.Order("id ASC")
	if f.Pagination.IsSet() {
		p := f.Pagination
		p.Normalize()
		q = q.Offset(p.Offset()).Limit(p.PageSize)
	}

	var teams []*model.Team
	if err := q.Find(&teams).Error; err != nil {
		r.logger.Error("Failed to list teams", zap.Error(err))
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (r *teamRepository) CountByOwner(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Team{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count owned teams: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
