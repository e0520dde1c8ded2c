package dto

// UpdateUserInput is a partial profile update; nil fields are left unchanged
type UpdateUserInput struct {
	ID        int64
	Username  *string
	AvatarURL *string
	Gender    *int
	Phone     *string
	Email     *string
	Tags      []string
}
