package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
)

func TestTeamRepository_GetByIDMissing(t *testing.T) {
	repo := repository.NewTeamRepository(newTestDB(t), zap.NewNop())

	team, err := repo.GetByID(bg, 42)
	assert.NoError(t, err)
	assert.Nil(t, team)
}

func TestTeamRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTeamRepository(db, zap.NewNop())

	now := time.Now().UTC()
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	gophers := seedTeam(t, db, owner.ID, "gophers", model.TeamStatusPublic, nil)
	rustaceans := seedTeam(t, db, other.ID, "rustaceans", model.TeamStatusPublic, ptr(now.Add(time.Hour)))
	expired := seedTeam(t, db, owner.ID, "old gophers", model.TeamStatusPublic, ptr(now.Add(-time.Hour)))
	secret := seedTeam(t, db, owner.ID, "hidden", model.TeamStatusSecret, nil)
	private := seedTeam(t, db, other.ID, "private", model.TeamStatusPrivate, nil)

	ids := func(teams []*model.Team) []int64 {
		out := make([]int64, 0, len(teams))
		for _, tm := range teams {
			out = append(out, tm.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter dto.TeamFilter
		want   []int64
	}{
		{
			name:   "no predicates",
			filter: dto.TeamFilter{},
			want:   []int64{gophers.ID, rustaceans.ID, expired.ID, secret.ID, private.ID},
		},
		{
			name:   "public and secret, not expired",
			filter: dto.TeamFilter{Statuses: []model.TeamStatus{model.TeamStatusPublic, model.TeamStatusSecret}, NotExpiredAt: &now},
			want:   []int64{gophers.ID, rustaceans.ID, secret.ID},
		},
		{
			name:   "search text matches name or description",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{SearchText: "gophers"}},
			want:   []int64{gophers.ID, expired.ID},
		},
		{
			name:   "exact name",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{Name: "gophers"}},
			want:   []int64{gophers.ID},
		},
		{
			name:   "owner",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{UserID: &other.ID}},
			want:   []int64{rustaceans.ID, private.ID},
		},
		{
			name:   "id list",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{IDList: []int64{secret.ID, gophers.ID}}},
			want:   []int64{gophers.ID, secret.ID},
		},
		{
			name:   "like wildcards are literal",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{SearchText: "%"}},
			want:   []int64{},
		},
		{
			name:   "pagination",
			filter: dto.TeamFilter{TeamQuery: dto.TeamQuery{Pagination: entity.PaginationParams{PageNum: 2, PageSize: 2}}},
			want:   []int64{expired.ID, secret.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := repo.List(bg, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(teams))
		})
	}
}

func TestTeamRepository_UpdateLeaderAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTeamRepository(db, zap.NewNop())

	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bobby")
	team := seedTeam(t, db, a.ID, "t1", model.TeamStatusPublic, nil)
	seedTeam(t, db, a.ID, "t2", model.TeamStatusPublic, nil)

	count, err := repo.CountByOwner(bg, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.UpdateLeader(bg, team.ID, b.ID))
	got, err := repo.GetByID(bg, team.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.UserID)

	assert.ErrorIs(t, repo.UpdateLeader(bg, 999, b.ID), domainRepo.ErrNoRowsAffected)
}

func TestTeamRepository_SaveClearsPassword(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTeamRepository(db, zap.NewNop())

	owner := seedUser(t, db, "owner")
	team := seedTeam(t, db, owner.ID, "locked", model.TeamStatusSecret, nil)
	team.Password = "s3cret"
	require.NoError(t, repo.Save(bg, team))

	team.Status = model.TeamStatusPublic
	team.Password = ""
	require.NoError(t, repo.Save(bg, team))

	got, err := repo.GetByID(bg, team.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TeamStatusPublic, got.Status)
	assert.Empty(t, got.Password)
}
