package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Account rules
const (
	accountMinLength    = 4
	passwordMinLength   = 8
	planetCodeMaxLength = 5
)

// accountForbiddenChars are characters an account name may not contain
const accountForbiddenChars = "`~!@#$%^&*()+=|{}':;\",\\[].<>/?！￥…（）—【】‘；：”“’。，、？"

// Match limits
const (
	matchMinNum = 1
	matchMaxNum = 20
)

// UserService handles accounts, profiles and recommendations
type UserService struct {
	users         domainRepo.UserRepository
	cache         domainRepo.CacheRepository
	bcryptCost    int
	cacheTTL      time.Duration
	cachePageSize int
	leaver        teamLeaver
	logger        *zap.Logger
}

// teamLeaver removes a user from all of their teams
type teamLeaver interface {
	LeaveAll(ctx context.Context, user *model.User) error
}

// UserOption configures the user service
type UserOption func(*UserService)

// WithRecommendCache sets the TTL and the page size of the cached first
// recommendation page. It should match the refresher's configuration.
func WithRecommendCache(ttl time.Duration, pageSize int) UserOption {
	return func(s *UserService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
		if pageSize > 0 {
			s.cachePageSize = pageSize
		}
	}
}

// WithTeamCleanup makes Delete remove the user from every team first
func WithTeamCleanup(m *MembershipService) UserOption {
	return func(s *UserService) {
		if m != nil {
			s.leaver = m
		}
	}
}

// NewUserService creates a new user service. A zero bcryptCost uses bcrypt.DefaultCost.
func NewUserService(users domainRepo.UserRepository, cache domainRepo.CacheRepository, bcryptCost int, logger *zap.Logger, opts ...UserOption) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	s := &UserService{
		users:         users,
		cache:         cache,
		bcryptCost:    bcryptCost,
		cacheTTL:      DefaultRecommendTTL,
		cachePageSize: DefaultRecommendPageSize,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and returns its id
func (s *UserService) Register(ctx context.Context, account, password, checkPassword, planetCode string) (int64, error) {
	if isAnyBlank(account, password, checkPassword, planetCode) {
		return 0, domainErrors.NewValidationError("all fields are required")
	}
	if err := validateCredentials(account, password); err != nil {
		return 0, err
	}
	if password != checkPassword {
		return 0, domainErrors.NewValidationError("passwords do not match")
	}
	if utf8.RuneCountInString(planetCode) > planetCodeMaxLength {
		return 0, domainErrors.NewValidationError("planet code must be at most %d characters", planetCodeMaxLength)
	}

	exists, err := s.users.ExistsByAccount(ctx, account)
	if err != nil {
		return 0, asSystemError("check account", err)
	}
	if exists {
		return 0, domainErrors.NewValidationError("account already registered")
	}
	exists, err = s.users.ExistsByPlanetCode(ctx, planetCode)
	if err != nil {
		return 0, asSystemError("check planet code", err)
	}
	if exists {
		return 0, domainErrors.NewValidationError("planet code already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return 0, domainErrors.NewSystemError("hash password", err)
	}

	user := &model.User{
		Username:     account,
		UserAccount:  account,
		UserPassword: string(hash),
		PlanetCode:   planetCode,
		UserRole:     model.RoleDefault,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domainRepo.ErrAlreadyExists) {
			return 0, domainErrors.NewValidationError("account or planet code already registered")
		}
		return 0, asSystemError("create user", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user.ID, nil
}

// Login checks the credentials and returns the sanitized user
func (s *UserService) Login(ctx context.Context, account, password string) (*entity.SafeUser, error) {
	if isAnyBlank(account, password) {
		return nil, domainErrors.NewValidationError("account and password are required")
	}
	if err := validateCredentials(account, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByAccount(ctx, account)
	if err != nil {
		return nil, asSystemError("get user", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(password)) != nil {
		s.logger.Info("Login failed", zap.String("user_account", account))
		return nil, domainErrors.NewValidationError("account or password is incorrect")
	}
	return entity.NewSafeUser(user), nil
}

// Current loads the user by id; used by the session middleware and /user/current
func (s *UserService) Current(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, asSystemError("get user", err)
	}
	if user == nil {
		return nil, domainErrors.NewUserNotFoundError(userID)
	}
	return user, nil
}

// Recommend returns a page of users. The cached first page is used when it
// matches the requested page. Other pages are always read from the store and
// only the first page is written back. Cache failures never fail the request.
func (s *UserService) Recommend(ctx context.Context, requester *model.User, p entity.PaginationParams) (*entity.UserPage, error) {
	if requester == nil {
		return nil, domainErrors.NewNotAuthenticatedError()
	}
	p.Normalize()
	key := recommendCacheKey(requester.ID)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var page entity.UserPage
		if err := json.Unmarshal([]byte(raw), &page); err == nil &&
			page.Pagination.CurrentPage == p.PageNum && page.Pagination.PerPage == p.PageSize {
			return &page, nil
		}
	} else if !s.cache.IsNotFound(err) {
		s.logger.Warn("Recommendation cache read failed", zap.Int64("user_id", requester.ID), zap.Error(err))
	}

	users, total, err := s.users.Page(ctx, p.Offset(), p.PageSize)
	if err != nil {
		return nil, asSystemError("page users", err)
	}
	page := &entity.UserPage{
		Records:    entity.NewSafeUsers(users),
		Pagination: entity.NewPaginationMeta(p.PageNum, p.PageSize, total),
	}

	if p.PageNum != entity.DefaultPage || p.PageSize != s.cachePageSize {
		return page, nil
	}
	if payload, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.logger.Error("Recommendation cache write failed", zap.Int64("user_id", requester.ID), zap.Error(err))
		}
	}
	return page, nil
}

// Match returns up to num users whose tags are closest to the requester's,
// ranked by edit distance between the tag lists. Ties go to the older account.
// A requester without tags has no matches.
func (s *UserService) Match(ctx context.Context, requester *model.User, num int) ([]*entity.SafeUser, error) {
	if requester == nil {
		return nil, domainErrors.NewNotAuthenticatedError()
	}
	if num < matchMinNum || num > matchMaxNum {
		return nil, domainErrors.NewValidationError("num must be between %d and %d", matchMinNum, matchMaxNum)
	}
	if len(requester.Tags) == 0 {
		return []*entity.SafeUser{}, nil
	}

	candidates, err := s.users.ListTagged(ctx, requester.ID)
	if err != nil {
		return nil, asSystemError("list tagged users", err)
	}

	type scored struct {
		user     *model.User
		distance int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, u := range candidates {
		if len(u.Tags) == 0 {
			continue
		}
		ranked = append(ranked, scored{user: u, distance: tagDistance(requester.Tags, u.Tags)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].user.ID < ranked[j].user.ID
	})
	if len(ranked) > num {
		ranked = ranked[:num]
	}

	users := make([]*model.User, 0, len(ranked))
	for _, r := range ranked {
		users = append(users, r.user)
	}
	return entity.NewSafeUsers(users), nil
}

// tagDistance is the minimum number of tag insertions, deletions and
// substitutions turning a into b
func tagDistance(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// SearchByTags returns users holding every tag
func (s *UserService) SearchByTags(ctx context.Context, tags []string) ([]*entity.SafeUser, error) {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, domainErrors.NewValidationError("at least one tag is required")
	}

	users, err := s.users.SearchByTags(ctx, cleaned)
	if err != nil {
		return nil, asSystemError("search users by tags", err)
	}
	return entity.NewSafeUsers(users), nil
}

// SearchByUsername lists users whose name contains username. Admin only.
func (s *UserService) SearchByUsername(ctx context.Context, username string, requester *model.User) ([]*entity.SafeUser, error) {
	if !requester.IsAdmin() {
		return nil, domainErrors.NewAuthorizationError("admin role required")
	}
	users, err := s.users.SearchByUsername(ctx, username)
	if err != nil {
		return nil, asSystemError("search users", err)
	}
	return entity.NewSafeUsers(users), nil
}

// Update patches a profile. Users may update themselves; admins anyone.
func (s *UserService) Update(ctx context.Context, in dto.UpdateUserInput, requester *model.User) error {
	if requester == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	if in.ID <= 0 {
		return domainErrors.NewValidationError("user id is required")
	}
	if in.ID != requester.ID && !requester.IsAdmin() {
		return domainErrors.NewAuthorizationError("cannot update another user")
	}
	if in.Username == nil && in.AvatarURL == nil && in.Gender == nil && in.Phone == nil && in.Email == nil && in.Tags == nil {
		return domainErrors.NewValidationError("nothing to update")
	}

	user, err := s.users.GetByID(ctx, in.ID)
	if err != nil {
		return asSystemError("get user", err)
	}
	if user == nil {
		return domainErrors.NewUserNotFoundError(in.ID)
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Tags != nil {
		user.Tags = datatypes.JSONSlice[string](in.Tags)
	}

	return asSystemError("save user", s.users.Save(ctx, user))
}

// Delete soft-deletes a user. Admin only. With team cleanup configured the
// user first quits every team, so led teams are handed over or dissolved.
func (s *UserService) Delete(ctx context.Context, userID int64, requester *model.User) error {
	if !requester.IsAdmin() {
		return domainErrors.NewAuthorizationError("admin role required")
	}
	if userID <= 0 {
		return domainErrors.NewValidationError("user id is required")
	}
	if s.leaver != nil {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return asSystemError("get user", err)
		}
		if user == nil {
			return domainErrors.NewUserNotFoundError(userID)
		}
		if err := s.leaver.LeaveAll(ctx, user); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return asSystemError("delete user", err)
	}
	s.logger.Info("User deleted", zap.Int64("user_id", userID), zap.Int64("admin_id", requester.ID))
	return nil
}

// IsAdmin reports whether user holds the admin role
func (s *UserService) IsAdmin(user *model.User) bool {
	return user.IsAdmin()
}

func validateCredentials(account, password string) error {
	if utf8.RuneCountInString(account) < accountMinLength {
		return domainErrors.NewValidationError("account must be at least %d characters", accountMinLength)
	}
	if strings.ContainsAny(account, accountForbiddenChars) {
		return domainErrors.NewValidationError("account must not contain special characters")
	}
	if utf8.RuneCountInString(password) < passwordMinLength {
		return domainErrors.NewValidationError("password must be at least %d characters", passwordMinLength)
	}
	return nil
}

func isAnyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
