package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB, logger *zap.Logger) domainRepo.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := conn(ctx, r.db).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainRepo.ErrAlreadyExists
		}
		r.logger.Error("Failed to create user", zap.String("user_account", user.UserAccount), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	return r.first(ctx, "user_account = ?", account)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.db).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ExistsByAccount also counts soft-deleted rows since the unique index still covers them
func (r *userRepository) ExistsByAccount(ctx context.Context, account string) (bool, error) {
	return r.exists(ctx, "user_account = ?", account)
}

func (r *userRepository) ExistsByPlanetCode(ctx context.Context, planetCode string) (bool, error) {
	return r.exists(ctx, "planet_code = ?", planetCode)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Unscoped().Model(&model.User{}).Where(query, arg).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users by ids: %w", err)
	}
	return users, nil
}

func (r *userRepository) Page(ctx context.Context, offset, limit int) ([]*model.User, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*model.User
	err := conn(ctx, r.db).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) SearchByUsername(ctx context.Context, username string) ([]*model.User, error) {
	q := conn(ctx, r.db).Order("id ASC")
	if name := strings.TrimSpace(username); name != "" {
		q = q.Where("username LIKE ? ESCAPE '\\'", "%"+escapeLike(name)+"%")
	}
	var users []*model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// SearchByTags narrows candidates with LIKE on the encoded array, then checks
// exact tag membership in memory. The cast keeps the query valid for jsonb.
func (r *userRepository) SearchByTags(ctx context.Context, tags []string) ([]*model.User, error) {
	q := conn(ctx, r.db).Order("id ASC")
	for _, tag := range tags {
		q = q.Where("CAST(tags AS TEXT) LIKE ? ESCAPE '\\'", "%\""+escapeLike(tag)+"\"%")
	}

	var candidates []*model.User
	if err := q.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to search users by tags: %w", err)
	}

	users := make([]*model.User, 0, len(candidates))
	for _, u := range candidates {
		if hasAllTags(u.Tags, tags) {
			users = append(users, u)
		}
	}
	return users, nil
}

// ListTagged returns every user with at least one tag except excludeID
func (r *userRepository) ListTagged(ctx context.Context, excludeID int64) ([]*model.User, error) {
	var users []*model.User
	err := conn(ctx, r.db).
		Where("id <> ?", excludeID).
		Where("tags IS NOT NULL AND CAST(tags AS TEXT) NOT IN ('null', '[]')").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged users: %w", err)
	}
	return users, nil
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	if err := conn(ctx, r.db).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Where("id = ?", id).Delete(&model.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
