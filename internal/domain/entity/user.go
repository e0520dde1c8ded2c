package entity

import (
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

// SafeUser is the whitelisted public projection of a user.
// It never carries the password hash, phone or email.
type SafeUser struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	UserAccount string    `json:"user_account"`
	AvatarURL   string    `json:"avatar_url"`
	Gender      int       `json:"gender"`
	UserRole    int       `json:"user_role"`
	UserStatus  int       `json:"user_status"`
	PlanetCode  string    `json:"planet_code"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSafeUser projects a user through the whitelist. Returns nil for nil.
func NewSafeUser(u *model.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		ID:          u.ID,
		Username:    u.Username,
		UserAccount: u.UserAccount,
		AvatarURL:   u.AvatarURL,
		Gender:      u.Gender,
		UserRole:    u.UserRole,
		UserStatus:  u.UserStatus,
		PlanetCode:  u.PlanetCode,
		Tags:        tagsOf(u),
		CreatedAt:   u.CreatedAt,
	}
}

// NewSafeUsers projects a slice of users
func NewSafeUsers(users []*model.User) []*SafeUser {
	out := make([]*SafeUser, 0, len(users))
	for _, u := range users {
		out = append(out, NewSafeUser(u))
	}
	return out
}

// tagsOf never returns nil so the tags field always encodes as an array
func tagsOf(u *model.User) []string {
	if len(u.Tags) == 0 {
		return []string{}
	}
	return append([]string(nil), u.Tags...)
}

// UserPage is one page of sanitized users
type UserPage struct {
	Records    []*SafeUser    `json:"records"`
	Pagination PaginationMeta `json:"pagination"`
}
