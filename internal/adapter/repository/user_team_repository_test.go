package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
)

func TestUserTeamRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserTeamRepository(db, zap.NewNop())

	u := seedUser(t, db, "alice")
	team := seedTeam(t, db, u.ID, "t", model.TeamStatusPublic, nil)

	require.NoError(t, repo.Create(bg, &model.UserTeam{TeamID: team.ID, UserID: u.ID, JoinTime: time.Now()}))
	err := repo.Create(bg, &model.UserTeam{TeamID: team.ID, UserID: u.ID, JoinTime: time.Now()})
	assert.ErrorIs(t, err, domainRepo.ErrAlreadyExists)
}

func TestUserTeamRepository_CountsAndSuccessor(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserTeamRepository(db, zap.NewNop())

	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bobby")
	c := seedUser(t, db, "carol")
	t1 := seedTeam(t, db, a.ID, "t1", model.TeamStatusPublic, nil)
	t2 := seedTeam(t, db, b.ID, "t2", model.TeamStatusPublic, nil)

	base := time.Now().UTC()
	// carol joins before bobby even though her row is inserted later
	require.NoError(t, repo.Create(bg, &model.UserTeam{TeamID: t1.ID, UserID: a.ID, JoinTime: base}))
	require.NoError(t, repo.Create(bg, &model.UserTeam{TeamID: t1.ID, UserID: b.ID, JoinTime: base.Add(2 * time.Minute)}))
	require.NoError(t, repo.Create(bg, &model.UserTeam{TeamID: t1.ID, UserID: c.ID, JoinTime: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(bg, &model.UserTeam{TeamID: t2.ID, UserID: b.ID, JoinTime: base}))

	counts, err := repo.CountByTeams(bg, []int64{t1.ID, t2.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{t1.ID: 3, t2.ID: 1}, counts)

	n, err := repo.CountByUser(bg, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	successor, err := repo.FindSuccessor(bg, t1.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, successor)
	assert.Equal(t, c.ID, successor.UserID)

	none, err := repo.FindSuccessor(bg, t2.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.DeleteByTeam(bg, t1.ID))
	n, err = repo.CountByTeam(bg, t1.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	m, err := repo.Get(bg, t2.ID, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestTransactor_RollbackAndNesting(t *testing.T) {
	db := newTestDB(t)
	tx := repository.NewTransactor(db, zap.NewNop())
	teams := repository.NewTeamRepository(db, zap.NewNop())
	members := repository.NewUserTeamRepository(db, zap.NewNop())

	u := seedUser(t, db, "alice")
	boom := errors.New("boom")

	err := tx.WithinTransaction(bg, func(ctx context.Context) error {
		team := &model.Team{Name: "rolled back", MaxNum: 2, UserID: u.ID}
		if err := teams.Create(ctx, team); err != nil {
			return err
		}
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := members.Create(ctx, &model.UserTeam{TeamID: team.ID, UserID: u.ID, JoinTime: time.Now()}); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	var teamCount, memberCount int64
	require.NoError(t, db.Model(&model.Team{}).Count(&teamCount).Error)
	require.NoError(t, db.Model(&model.UserTeam{}).Count(&memberCount).Error)
	assert.Zero(t, teamCount)
	assert.Zero(t, memberCount)

	err = tx.WithinTransaction(bg, func(ctx context.Context) error {
		return teams.Create(ctx, &model.Team{Name: "committed", MaxNum: 2, UserID: u.ID})
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Team{}).Count(&teamCount).Error)
	assert.Equal(t, int64(1), teamCount)
}
