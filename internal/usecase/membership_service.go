package usecase

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
	"go.uber.org/zap"
)

// MembershipService coordinates join and quit. Every change to one team's
// member set runs under that team's lock.
type MembershipService struct {
	teams   domainRepo.TeamRepository
	members domainRepo.UserTeamRepository
	tx      domainRepo.Transactor
	locks   *lockGuard
	opts    *serviceOptions
	logger  *zap.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	teams domainRepo.TeamRepository,
	members domainRepo.UserTeamRepository,
	tx domainRepo.Transactor,
	locker domainRepo.Locker,
	logger *zap.Logger,
	opts ...Option,
) *MembershipService {
	o := newServiceOptions(opts)
	return &MembershipService{
		teams:   teams,
		members: members,
		tx:      tx,
		locks:   &lockGuard{locker: locker, logger: logger, metrics: o.metrics, wait: o.lockWait, lease: o.lockLease},
		opts:    o,
		logger:  logger,
	}
}

// Join adds the requester to the team.
//
// Access checks run first on a possibly stale read. Capacity, quota and
// duplicate checks are repeated under the team lock and the requester's
// user lock, in that order, before the membership is inserted.
func (s *MembershipService) Join(ctx context.Context, teamID int64, requester *model.User, password string) error {
	err := s.join(ctx, teamID, requester, password)
	if err != nil {
		s.opts.metrics.IncMembershipOp("join", domainErrorCode(err))
		return err
	}
	s.opts.metrics.IncMembershipOp("join", "ok")
	return nil
}

func (s *MembershipService) join(ctx context.Context, teamID int64, requester *model.User, password string) error {
	if requester == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	if teamID <= 0 {
		return domainErrors.NewValidationError("team id is required")
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return asSystemError("get team", err)
	}
	if team == nil {
		return domainErrors.NewTeamNotFoundError(teamID)
	}
	if err := s.checkAccess(team, requester, password); err != nil {
		return err
	}

	locks := []string{teamLockKey(teamID), userLockKey(requester.ID)}
	err = s.locks.withLocks(ctx, "join", locks, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return asSystemError("get team", err)
		}
		if team == nil {
			return domainErrors.NewTeamNotFoundError(teamID)
		}

		joined, err := s.members.CountByUser(ctx, requester.ID)
		if err != nil {
			return asSystemError("count memberships", err)
		}
		if joined >= model.MaxTeamsPerUser {
			return domainErrors.NewQuotaExceededError(model.MaxTeamsPerUser)
		}

		count, err := s.members.CountByTeam(ctx, teamID)
		if err != nil {
			return asSystemError("count team members", err)
		}
		if count >= int64(team.MaxNum) {
			return domainErrors.NewTeamFullError(teamID, team.MaxNum)
		}

		existing, err := s.members.Get(ctx, teamID, requester.ID)
		if err != nil {
			return asSystemError("get membership", err)
		}
		if existing != nil {
			return domainErrors.NewAlreadyJoinedError(teamID)
		}

		err = s.members.Create(ctx, &model.UserTeam{TeamID: teamID, UserID: requester.ID, JoinTime: s.opts.now()})
		if errors.Is(err, domainRepo.ErrAlreadyExists) {
			return domainErrors.NewAlreadyJoinedError(teamID)
		}
		return asSystemError("create membership", err)
	})
	if err != nil {
		return err
	}

	s.logger.Info("User joined team", zap.Int64("team_id", teamID), zap.Int64("user_id", requester.ID))
	s.opts.publish(ctx, s.logger, entity.TeamEvent{Type: entity.EventMemberJoined, TeamID: teamID, UserID: requester.ID})
	return nil
}

func (s *MembershipService) checkAccess(team *model.Team, requester *model.User, password string) error {
	if team.IsExpired(s.opts.now()) {
		return domainErrors.NewValidationError("team %d has expired", team.ID)
	}

	switch team.Status {
	case model.TeamStatusPrivate:
		if !requester.IsAdmin() && team.UserID != requester.ID {
			return domainErrors.NewAuthorizationError("private teams cannot be joined")
		}
	case model.TeamStatusSecret:
		if password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(team.Password)) != 1 {
			return domainErrors.NewValidationError("wrong team password")
		}
	}
	return nil
}

// Quit removes the requester from the team.
//
// The last member dissolves the team. A leader leaving a team with other
// members hands leadership to the earliest-joined remaining member.
func (s *MembershipService) Quit(ctx context.Context, teamID int64, requester *model.User) error {
	err := s.quit(ctx, teamID, requester)
	if err != nil {
		s.opts.metrics.IncMembershipOp("quit", domainErrorCode(err))
		return err
	}
	s.opts.metrics.IncMembershipOp("quit", "ok")
	return nil
}

// LeaveAll quits every team the user belongs to, handing over or dissolving
// teams the user leads. Teams removed concurrently are skipped.
func (s *MembershipService) LeaveAll(ctx context.Context, user *model.User) error {
	if user == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	memberships, err := s.members.ListByUser(ctx, user.ID)
	if err != nil {
		return asSystemError("list memberships", err)
	}
	for _, m := range memberships {
		err := s.Quit(ctx, m.TeamID, user)
		if err != nil && !apperrors.HasCode(err, domainErrors.CodeNotFound) && !apperrors.HasCode(err, domainErrors.CodeNotMember) {
			return err
		}
	}
	return nil
}

func (s *MembershipService) quit(ctx context.Context, teamID int64, requester *model.User) error {
	if requester == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	if teamID <= 0 {
		return domainErrors.NewValidationError("team id is required")
	}

	var event entity.TeamEvent
	err := s.locks.withLocks(ctx, "quit", []string{teamLockKey(teamID)}, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return asSystemError("get team", err)
		}
		if team == nil {
			return domainErrors.NewTeamNotFoundError(teamID)
		}

		membership, err := s.members.Get(ctx, teamID, requester.ID)
		if err != nil {
			return asSystemError("get membership", err)
		}
		if membership == nil {
			return domainErrors.NewNotMemberError(teamID)
		}

		count, err := s.members.CountByTeam(ctx, teamID)
		if err != nil {
			return asSystemError("count team members", err)
		}

		switch {
		case count <= 1:
			event = entity.TeamEvent{Type: entity.EventTeamDissolved, TeamID: teamID, UserID: requester.ID}
			return s.dissolve(ctx, teamID, requester.ID)
		case team.UserID == requester.ID:
			successor, err := s.handOver(ctx, teamID, requester.ID)
			event = entity.TeamEvent{Type: entity.EventTeamLeaderChanged, TeamID: teamID, UserID: requester.ID, NewLeader: successor}
			return err
		default:
			event = entity.TeamEvent{Type: entity.EventMemberQuit, TeamID: teamID, UserID: requester.ID}
			return asSystemError("delete membership", s.members.Delete(ctx, teamID, requester.ID))
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("User quit team",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", requester.ID),
		zap.String("outcome", event.Type))
	s.opts.publish(ctx, s.logger, event)
	return nil
}

func (s *MembershipService) dissolve(ctx context.Context, teamID, userID int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.members.Delete(ctx, teamID, userID); err != nil {
			return err
		}
		return s.teams.Delete(ctx, teamID)
	})
	return asSystemError("dissolve team", err)
}

// handOver makes the earliest-joined other member the leader and removes the old leader
func (s *MembershipService) handOver(ctx context.Context, teamID, leaderID int64) (int64, error) {
	successor, err := s.members.FindSuccessor(ctx, teamID, leaderID)
	if err != nil {
		return 0, asSystemError("find successor", err)
	}
	if successor == nil {
		return 0, domainErrors.NewSystemError("team has members but no successor", nil)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.teams.UpdateLeader(ctx, teamID, successor.UserID); err != nil {
			s.logger.Error("Failed to hand over leadership",
				zap.Int64("team_id", teamID),
				zap.Int64("successor_id", successor.UserID),
				zap.Error(err))
			return domainErrors.NewSystemError("update team leader", err)
		}
		return s.members.Delete(ctx, teamID, leaderID)
	})
	if err != nil {
		return 0, asSystemError("hand over leadership", err)
	}
	return successor.UserID, nil
}
