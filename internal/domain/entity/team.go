package entity

import (
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// TeamVO is a team enriched for display
type TeamVO struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	MaxNum      int              `json:"max_num"`
	ExpireTime  *time.Time       `json:"expire_time,omitempty"`
	UserID      int64            `json:"user_id"`
	Status      model.TeamStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CreateUser  *SafeUser        `json:"create_user"`
	HasJoinNum  int64            `json:"has_join_num"`
	HasJoin     bool             `json:"has_join"`
}

// NewTeamVO copies the public fields of a team. Enrichment is left to the caller.
func NewTeamVO(t *model.Team) TeamVO {
	return TeamVO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		MaxNum:      t.MaxNum,
		ExpireTime:  t.ExpireTime,
		UserID:      t.UserID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
