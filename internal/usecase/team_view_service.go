package usecase

import (
	"context"

	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
)

// TeamViewService builds enriched, sanitized team listings
type TeamViewService struct {
	teams   domainRepo.TeamRepository
	members domainRepo.UserTeamRepository
	users   domainRepo.UserRepository
	opts    *serviceOptions
	logger  *zap.Logger
}

// NewTeamViewService creates a new team view service
func NewTeamViewService(
	teams domainRepo.TeamRepository,
	members domainRepo.UserTeamRepository,
	users domainRepo.UserRepository,
	logger *zap.Logger,
	opts ...Option,
) *TeamViewService {
	return &TeamViewService{
		teams:   teams,
		members: members,
		users:   users,
		opts:    newServiceOptions(opts),
		logger:  logger,
	}
}

// ListTeams lists non-expired teams of a single status. A missing or unknown status
// means PUBLIC; PRIVATE listings are for admins only.
func (s *TeamViewService) ListTeams(ctx context.Context, q dto.TeamQuery, requester *model.User) ([]entity.TeamVO, error) {
	status := model.TeamStatusPublic
	if q.Status != nil && q.Status.Valid() {
		status = *q.Status
	}
	if status == model.TeamStatusPrivate && !requester.IsAdmin() {
		return nil, domainErrors.NewAuthorizationError("only admins can list private teams")
	}

	now := s.opts.now()
	teams, err := s.teams.List(ctx, dto.TeamFilter{
		TeamQuery:    q,
		Statuses:     []model.TeamStatus{status},
		NotExpiredAt: &now,
	})
	if err != nil {
		return nil, asSystemError("list teams", err)
	}
	return s.enrich(ctx, teams, requester)
}

// MyCreatedTeams lists the non-expired teams the requester currently leads
func (s *TeamViewService) MyCreatedTeams(ctx context.Context, requester *model.User) ([]entity.TeamVO, error) {
	if requester == nil {
		return nil, domainErrors.NewNotAuthenticatedError()
	}

	now := s.opts.now()
	teams, err := s.teams.List(ctx, dto.TeamFilter{
		TeamQuery:    dto.TeamQuery{UserID: &requester.ID},
		NotExpiredAt: &now,
	})
	if err != nil {
		return nil, asSystemError("list created teams", err)
	}
	return s.enrich(ctx, teams, requester)
}

// MyJoinedTeams lists every team the requester is a member of
func (s *TeamViewService) MyJoinedTeams(ctx context.Context, requester *model.User) ([]entity.TeamVO, error) {
	if requester == nil {
		return nil, domainErrors.NewNotAuthenticatedError()
	}

	memberships, err := s.members.ListByUser(ctx, requester.ID)
	if err != nil {
		return nil, asSystemError("list memberships", err)
	}
	if len(memberships) == 0 {
		return []entity.TeamVO{}, nil
	}

	ids := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.TeamID)
	}
	teams, err := s.teams.List(ctx, dto.TeamFilter{TeamQuery: dto.TeamQuery{IDList: ids}})
	if err != nil {
		return nil, asSystemError("list joined teams", err)
	}
	return s.enrich(ctx, teams, requester)
}

// enrich attaches owner, member count and join flag using one batched query each.
// Teams whose owner no longer exists are skipped.
func (s *TeamViewService) enrich(ctx context.Context, teams []*model.Team, requester *model.User) ([]entity.TeamVO, error) {
	result := make([]entity.TeamVO, 0, len(teams))
	if len(teams) == 0 {
		return result, nil
	}

	teamIDs := make([]int64, 0, len(teams))
	ownerIDs := make([]int64, 0, len(teams))
	seenOwner := make(map[int64]struct{}, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
		if _, ok := seenOwner[t.UserID]; !ok {
			seenOwner[t.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, t.UserID)
		}
	}

	owners, err := s.users.ListByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, asSystemError("load team owners", err)
	}
	ownerByID := make(map[int64]*model.User, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = u
	}

	counts, err := s.members.CountByTeams(ctx, teamIDs)
	if err != nil {
		return nil, asSystemError("count team members", err)
	}

	joined := make(map[int64]struct{})
	if requester != nil {
		memberships, err := s.members.ListByUser(ctx, requester.ID)
		if err != nil {
			return nil, asSystemError("list memberships", err)
		}
		for _, m := range memberships {
			joined[m.TeamID] = struct{}{}
		}
	}

	for _, t := range teams {
		owner, ok := ownerByID[t.UserID]
		if !ok {
			s.logger.Debug("Skipping team without owner", zap.Int64("team_id", t.ID), zap.Int64("owner_id", t.UserID))
			continue
		}
		vo := entity.NewTeamVO(t)
		vo.CreateUser = entity.NewSafeUser(owner)
		vo.HasJoinNum = counts[t.ID]
		_, vo.HasJoin = joined[t.ID]
		result = append(result, vo)
	}
	return result, nil
}
