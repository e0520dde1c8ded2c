package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a user; returns ErrAlreadyExists on a unique violation
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByAccount(ctx context.Context, account string) (*model.User, error)
	ExistsByAccount(ctx context.Context, account string) (bool, error)
	ExistsByPlanetCode(ctx context.Context, planetCode string) (bool, error)
	// ListByIDs returns the users found among ids in no particular order
	ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	Page(ctx context.Context, offset, limit int) ([]*model.User, int64, error)
	SearchByUsername(ctx context.Context, username string) ([]*model.User, error)
	// SearchByTags returns users whose tag list contains every given tag
	SearchByTags(ctx context.Context, tags []string) ([]*model.User, error)
	// ListTagged returns users with a non-empty tag list, excluding excludeID
	ListTagged(ctx context.Context, excludeID int64) ([]*model.User, error)
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}
