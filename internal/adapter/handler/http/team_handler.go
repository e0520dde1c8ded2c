package http

import (
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	"github.com/wekeepgrowing/semo-partner/internal/middleware/auth"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teams       *usecase.TeamService
	memberships *usecase.MembershipService
	views       *usecase.TeamViewService
	logger      *zap.Logger
}

func NewTeamHandler(teams *usecase.TeamService, memberships *usecase.MembershipService, views *usecase.TeamViewService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teams:       teams,
		memberships: memberships,
		views:       views,
		logger:      logger,
	}
}

// Add handles POST /team/add
func (h *TeamHandler) Add(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req AddTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.teams.Create(c.Request().Context(), dto.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		MaxNum:      req.MaxNum,
		ExpireTime:  req.ExpireTime,
		Status:      req.Status,
		Password:    req.Password,
	}, user)
	if err != nil {
		return err
	}
	return ok(c, id)
}

// Update handles POST /team/update
func (h *TeamHandler) Update(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req UpdateTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.teams.Update(c.Request().Context(), dto.UpdateTeamInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		MaxNum:      req.MaxNum,
		ExpireTime:  req.ExpireTime,
		Status:      req.Status,
		Password:    req.Password,
	}, user)
	if err != nil {
		return err
	}
	return ok(c, true)
}

// Delete handles POST /team/delete
func (h *TeamHandler) Delete(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req IDRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.teams.Delete(c.Request().Context(), req.ID, user); err != nil {
		return err
	}
	return ok(c, true)
}

// Get handles GET /team/get?id=
func (h *TeamHandler) Get(c echo.Context) error {
	var id int64
	if err := echo.QueryParamsBinder(c).Int64("id", &id).BindError(); err != nil {
		return domainErrors.NewValidationError("id must be a number")
	}
	team, err := h.teams.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, entity.NewTeamVO(team))
}

// List handles GET /team/list
func (h *TeamHandler) List(c echo.Context) error {
	q, err := parseTeamQuery(c)
	if err != nil {
		return err
	}
	q.Pagination = entity.PaginationParams{}

	teams, err := h.views.ListTeams(c.Request().Context(), q, auth.OptionalUser(c))
	if err != nil {
		return err
	}
	return ok(c, teams)
}

// ListPage handles GET /team/list/page; page_num and page_size default to 1 and 20
func (h *TeamHandler) ListPage(c echo.Context) error {
	q, err := parseTeamQuery(c)
	if err != nil {
		return err
	}
	q.Pagination.Normalize()

	teams, err := h.views.ListTeams(c.Request().Context(), q, auth.OptionalUser(c))
	if err != nil {
		return err
	}
	return ok(c, teams)
}

// ListMyCreated handles GET /team/list/my/create
func (h *TeamHandler) ListMyCreated(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	teams, err := h.views.MyCreatedTeams(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return ok(c, teams)
}

// ListMyJoined handles GET /team/list/my/join
func (h *TeamHandler) ListMyJoined(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	teams, err := h.views.MyJoinedTeams(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return ok(c, teams)
}

// Join handles POST /team/join
func (h *TeamHandler) Join(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req JoinTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.memberships.Join(c.Request().Context(), req.TeamID, user, req.Password); err != nil {
		return err
	}
	return ok(c, true)
}

// Quit handles POST /team/quit
func (h *TeamHandler) Quit(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req QuitTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.memberships.Quit(c.Request().Context(), req.TeamID, user); err != nil {
		return err
	}
	return ok(c, true)
}

// parseTeamQuery reads the optional listing filters from the query string
func parseTeamQuery(c echo.Context) (dto.TeamQuery, error) {
	var (
		q                 dto.TeamQuery
		id, userID        int64
		maxNum, status    int
		idList            []int64
		pageNum, pageSize int
	)

	err := echo.QueryParamsBinder(c).
		Int64("id", &id).
		Int64s("id_list", &idList).
		String("search_text", &q.SearchText).
		String("name", &q.Name).
		String("description", &q.Description).
		Int("max_num", &maxNum).
		Int64("user_id", &userID).
		Int("status", &status).
		Int("page_num", &pageNum).
		Int("page_size", &pageSize).
		BindError()
	if err != nil {
		return q, domainErrors.NewValidationError("invalid query parameter")
	}

	if c.QueryParam("id") != "" {
		q.ID = &id
	}
	if c.QueryParam("max_num") != "" {
		q.MaxNum = &maxNum
	}
	if c.QueryParam("user_id") != "" {
		q.UserID = &userID
	}
	if c.QueryParam("status") != "" {
		s := model.TeamStatus(status)
		q.Status = &s
	}
	q.IDList = idList
	q.Pagination = entity.PaginationParams{PageNum: pageNum, PageSize: pageSize}
	return q, nil
}
