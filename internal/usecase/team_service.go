package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
)

// TeamService manages the lifecycle of teams: create, update, delete and get
type TeamService struct {
	teams   domainRepo.TeamRepository
	members domainRepo.UserTeamRepository
	tx      domainRepo.Transactor
	locks   *lockGuard
	opts    *serviceOptions
	logger  *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	teams domainRepo.TeamRepository,
	members domainRepo.UserTeamRepository,
	tx domainRepo.Transactor,
	locker domainRepo.Locker,
	logger *zap.Logger,
	opts ...Option,
) *TeamService {
	o := newServiceOptions(opts)
	return &TeamService{
		teams:   teams,
		members: members,
		tx:      tx,
		locks:   &lockGuard{locker: locker, logger: logger, metrics: o.metrics, wait: o.lockWait, lease: o.lockLease},
		opts:    o,
		logger:  logger,
	}
}

// Create validates the input, checks the requester's quotas under their user lock
// and stores the team with the leader membership in one transaction.
func (s *TeamService) Create(ctx context.Context, in dto.CreateTeamInput, requester *model.User) (int64, error) {
	if requester == nil {
		return 0, domainErrors.NewNotAuthenticatedError()
	}

	now := s.opts.now()
	team, err := s.newTeam(in, requester.ID, now)
	if err != nil {
		return 0, err
	}

	err = s.locks.withLocks(ctx, "create", []string{userLockKey(requester.ID)}, func(ctx context.Context) error {
		owned, err := s.teams.CountByOwner(ctx, requester.ID)
		if err != nil {
			return asSystemError("count owned teams", err)
		}
		if owned >= model.MaxTeamsPerUser {
			return domainErrors.NewQuotaExceededError(model.MaxTeamsPerUser)
		}

		joined, err := s.members.CountByUser(ctx, requester.ID)
		if err != nil {
			return asSystemError("count memberships", err)
		}
		if joined >= model.MaxTeamsPerUser {
			return domainErrors.NewQuotaExceededError(model.MaxTeamsPerUser)
		}

		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.teams.Create(ctx, team); err != nil {
				return err
			}
			return s.members.Create(ctx, &model.UserTeam{TeamID: team.ID, UserID: requester.ID, JoinTime: now})
		})
	})
	if err != nil {
		s.opts.metrics.IncMembershipOp("create", domainErrorCode(err))
		return 0, asSystemError("create team", err)
	}

	s.logger.Info("Team created",
		zap.Int64("team_id", team.ID),
		zap.Int64("user_id", requester.ID),
		zap.String("status", team.Status.String()))
	s.opts.metrics.IncMembershipOp("create", "ok")
	s.opts.publish(ctx, s.logger, entity.TeamEvent{Type: entity.EventTeamCreated, TeamID: team.ID, UserID: requester.ID})
	return team.ID, nil
}

func (s *TeamService) newTeam(in dto.CreateTeamInput, leaderID int64, now time.Time) (*model.Team, error) {
	if in.MaxNum < model.TeamMinCapacity || in.MaxNum > model.TeamMaxCapacity {
		return nil, domainErrors.NewValidationError("max_num must be between %d and %d", model.TeamMinCapacity, model.TeamMaxCapacity)
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	status := model.TeamStatusPublic
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domainErrors.NewValidationError("unknown team status %d", int(*in.Status))
		}
		status = *in.Status
	}

	password := ""
	if status == model.TeamStatusSecret {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		password = in.Password
	}

	expire, err := validateExpireTime(in.ExpireTime, now)
	if err != nil {
		return nil, err
	}

	return &model.Team{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		MaxNum:      in.MaxNum,
		ExpireTime:  expire,
		UserID:      leaderID,
		Status:      status,
		Password:    password,
	}, nil
}

// Update applies a partial patch. Only the leader or an admin may update.
// The read-modify-write runs under the team lock so it cannot race a join, quit or leader change.
func (s *TeamService) Update(ctx context.Context, in dto.UpdateTeamInput, requester *model.User) error {
	if requester == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	if in.ID <= 0 {
		return domainErrors.NewValidationError("team id is required")
	}

	now := s.opts.now()
	if err := s.validatePatch(in, now); err != nil {
		return err
	}

	capacityChanged := false
	err := s.locks.withLocks(ctx, "update", []string{teamLockKey(in.ID)}, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, in.ID)
		if err != nil {
			return asSystemError("get team", err)
		}
		if team == nil {
			return domainErrors.NewTeamNotFoundError(in.ID)
		}
		if team.UserID != requester.ID && !requester.IsAdmin() {
			return domainErrors.NewAuthorizationError("only the team leader or an admin can update the team")
		}

		if in.MaxNum != nil && *in.MaxNum != team.MaxNum {
			capacityChanged = true
			count, err := s.members.CountByTeam(ctx, team.ID)
			if err != nil {
				return asSystemError("count team members", err)
			}
			if int64(*in.MaxNum) < count {
				return domainErrors.NewValidationError("max_num %d is below the current member count %d", *in.MaxNum, count)
			}
		}

		applyPatch(team, in)
		if team.Status == model.TeamStatusSecret && strings.TrimSpace(team.Password) == "" {
			return domainErrors.NewValidationError("a secret team requires a password")
		}
		return s.teams.Save(ctx, team)
	})
	if err != nil {
		return asSystemError("update team", err)
	}

	s.logger.Info("Team updated", zap.Int64("team_id", in.ID), zap.Int64("user_id", requester.ID))
	if capacityChanged {
		s.opts.publish(ctx, s.logger, entity.TeamEvent{Type: entity.EventTeamCapacityChanged, TeamID: in.ID, UserID: requester.ID})
	}
	return nil
}

func (s *TeamService) validatePatch(in dto.UpdateTeamInput, now time.Time) error {
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return err
		}
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return err
		}
	}
	if in.MaxNum != nil && (*in.MaxNum < model.TeamMinCapacity || *in.MaxNum > model.TeamMaxCapacity) {
		return domainErrors.NewValidationError("max_num must be between %d and %d", model.TeamMinCapacity, model.TeamMaxCapacity)
	}
	if in.Status != nil && !in.Status.Valid() {
		return domainErrors.NewValidationError("unknown team status %d", int(*in.Status))
	}
	if in.Status != nil && *in.Status == model.TeamStatusSecret {
		if in.Password == nil {
			return domainErrors.NewValidationError("a secret team requires a password")
		}
	}
	if in.Password != nil && utf8.RuneCountInString(*in.Password) > model.TeamPasswordMaxLength {
		return domainErrors.NewValidationError("password must be at most %d characters", model.TeamPasswordMaxLength)
	}
	if _, err := validateExpireTime(in.ExpireTime, now); err != nil {
		return err
	}
	return nil
}

// applyPatch copies the non-nil fields. Leaving SECRET clears the password.
func applyPatch(team *model.Team, in dto.UpdateTeamInput) {
	if in.Name != nil {
		team.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		team.Description = *in.Description
	}
	if in.MaxNum != nil {
		team.MaxNum = *in.MaxNum
	}
	if in.ExpireTime != nil {
		expire := in.ExpireTime.UTC()
		team.ExpireTime = &expire
	}
	if in.Status != nil {
		team.Status = *in.Status
	}
	if in.Password != nil && team.Status == model.TeamStatusSecret {
		team.Password = *in.Password
	}
	if team.Status != model.TeamStatusSecret {
		team.Password = ""
	}
}

// Delete removes the team and all of its memberships. Only the leader may delete.
func (s *TeamService) Delete(ctx context.Context, teamID int64, requester *model.User) error {
	if requester == nil {
		return domainErrors.NewNotAuthenticatedError()
	}
	if teamID <= 0 {
		return domainErrors.NewValidationError("team id is required")
	}

	err := s.locks.withLocks(ctx, "delete", []string{teamLockKey(teamID)}, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return asSystemError("get team", err)
		}
		if team == nil {
			return domainErrors.NewTeamNotFoundError(teamID)
		}
		if team.UserID != requester.ID {
			return domainErrors.NewAuthorizationError("only the team leader can delete the team")
		}

		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.members.DeleteByTeam(ctx, teamID); err != nil {
				return err
			}
			return s.teams.Delete(ctx, teamID)
		})
	})
	if err != nil {
		s.opts.metrics.IncMembershipOp("delete", domainErrorCode(err))
		return asSystemError("delete team", err)
	}

	s.logger.Info("Team deleted", zap.Int64("team_id", teamID), zap.Int64("user_id", requester.ID))
	s.opts.metrics.IncMembershipOp("delete", "ok")
	s.opts.publish(ctx, s.logger, entity.TeamEvent{Type: entity.EventTeamDeleted, TeamID: teamID, UserID: requester.ID})
	return nil
}

// Get returns a team by id
func (s *TeamService) Get(ctx context.Context, teamID int64) (*model.Team, error) {
	if teamID <= 0 {
		return nil, domainErrors.NewValidationError("team id is required")
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, asSystemError("get team", err)
	}
	if team == nil {
		return nil, domainErrors.NewTeamNotFoundError(teamID)
	}
	return team, nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domainErrors.NewValidationError("team name is required")
	}
	if utf8.RuneCountInString(name) > model.TeamNameMaxLength {
		return domainErrors.NewValidationError("team name must be at most %d characters", model.TeamNameMaxLength)
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > model.TeamDescMaxLength {
		return domainErrors.NewValidationError("description must be at most %d characters", model.TeamDescMaxLength)
	}
	return nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return domainErrors.NewValidationError("a secret team requires a password")
	}
	if utf8.RuneCountInString(password) > model.TeamPasswordMaxLength {
		return domainErrors.NewValidationError("password must be at most %d characters", model.TeamPasswordMaxLength)
	}
	return nil
}

func validateExpireTime(expire *time.Time, now time.Time) (*time.Time, error) {
	if expire == nil {
		return nil, nil
	}
	if !expire.After(now) {
		return nil, domainErrors.NewValidationError("expire time must be in the future")
	}
	utc := expire.UTC()
	return &utc, nil
}
