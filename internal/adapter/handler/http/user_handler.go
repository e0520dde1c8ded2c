package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/middleware/auth"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
	"go.uber.org/zap"
)

type UserHandler struct {
	users       *usecase.UserService
	sessionName string
	logger      *zap.Logger
}

func NewUserHandler(users *usecase.UserService, sessionName string, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:       users,
		sessionName: sessionName,
		logger:      logger,
	}
}

// Register handles POST /user/register and returns the new user id
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := h.users.Register(c.Request().Context(), req.UserAccount, req.UserPassword, req.CheckPassword, req.PlanetCode)
	if err != nil {
		return err
	}
	return ok(c, id)
}

// Login handles POST /user/login and starts a session
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.Login(c.Request().Context(), req.UserAccount, req.UserPassword)
	if err != nil {
		return err
	}
	if err := auth.Login(c, h.sessionName, user.ID); err != nil {
		return domainErrors.NewSystemError("start session", err)
	}

	h.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return ok(c, user)
}

// Logout handles POST /user/logout
func (h *UserHandler) Logout(c echo.Context) error {
	if _, err := auth.CurrentUser(c); err != nil {
		return err
	}
	if err := auth.Logout(c, h.sessionName); err != nil {
		return domainErrors.NewSystemError("end session", err)
	}
	return ok(c, true)
}

// Current handles GET /user/current
func (h *UserHandler) Current(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	return ok(c, entity.NewSafeUser(user))
}

// Recommend handles GET /user/recommend?page_num=&page_size=
func (h *UserHandler) Recommend(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var p entity.PaginationParams
	if err := echo.QueryParamsBinder(c).Int("page_num", &p.PageNum).Int("page_size", &p.PageSize).BindError(); err != nil {
		return domainErrors.NewValidationError("invalid pagination")
	}
	page, err := h.users.Recommend(c.Request().Context(), user, p)
	if err != nil {
		return err
	}
	return ok(c, page)
}

// Match handles GET /user/match?num=
func (h *UserHandler) Match(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var num int
	if err := echo.QueryParamsBinder(c).Int("num", &num).BindError(); err != nil {
		return domainErrors.NewValidationError("num must be an integer")
	}
	users, err := h.users.Match(c.Request().Context(), user, num)
	if err != nil {
		return err
	}
	return ok(c, users)
}

// SearchByTags handles GET /user/search/tags?tags=a&tags=b (or tags=a,b)
func (h *UserHandler) SearchByTags(c echo.Context) error {
	var tags []string
	for _, raw := range c.QueryParams()["tags"] {
		tags = append(tags, strings.Split(raw, ",")...)
	}
	users, err := h.users.SearchByTags(c.Request().Context(), tags)
	if err != nil {
		return err
	}
	return ok(c, users)
}

// Search handles GET /user/search?username=; admin only
func (h *UserHandler) Search(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	users, err := h.users.SearchByUsername(c.Request().Context(), c.QueryParam("username"), user)
	if err != nil {
		return err
	}
	return ok(c, users)
}

// Update handles POST /user/update
func (h *UserHandler) Update(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err = h.users.Update(c.Request().Context(), dto.UpdateUserInput{
		ID:        req.ID,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Gender:    req.Gender,
		Phone:     req.Phone,
		Email:     req.Email,
		Tags:      req.Tags,
	}, user)
	if err != nil {
		return err
	}
	return ok(c, true)
}

// Delete handles POST /user/delete; admin only
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req IDRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), req.ID, user); err != nil {
		return err
	}
	return ok(c, true)
}
