package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-partner/internal/domain/dto"
	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
)

// testEnv wires the services over sqlite and miniredis
type testEnv struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	redis   *redis.Client
	teams   domainRepo.TeamRepository
	members domainRepo.UserTeamRepository
	users   domainRepo.UserRepository
	tx      domainRepo.Transactor
	locker  domainRepo.Locker
	cache   domainRepo.CacheRepository
	events  *recordingPublisher
	logger  *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Team{}, &model.UserTeam{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zap.NewNop()
	return &testEnv{
		db:      db,
		mr:      mr,
		redis:   client,
		teams:   repository.NewTeamRepository(db, logger),
		members: repository.NewUserTeamRepository(db, logger),
		users:   repository.NewUserRepository(db, logger),
		tx:      repository.NewTransactor(db, logger),
		locker:  repository.NewRedisLocker(client, logger),
		cache:   repository.NewRedisCacheRepository(client, logger),
		events:  &recordingPublisher{},
		logger:  logger,
	}
}

func (e *testEnv) options(extra ...usecase.Option) []usecase.Option {
	return append([]usecase.Option{usecase.WithPublisher(e.events, "")}, extra...)
}

func (e *testEnv) teamService(opts ...usecase.Option) *usecase.TeamService {
	return usecase.NewTeamService(e.teams, e.members, e.tx, e.locker, e.logger, e.options(opts...)...)
}

func (e *testEnv) membershipService(opts ...usecase.Option) *usecase.MembershipService {
	return usecase.NewMembershipService(e.teams, e.members, e.tx, e.locker, e.logger, e.options(opts...)...)
}

func (e *testEnv) viewService(opts ...usecase.Option) *usecase.TeamViewService {
	return usecase.NewTeamViewService(e.teams, e.members, e.users, e.logger, e.options(opts...)...)
}

func (e *testEnv) seedUser(t *testing.T, account string, role int) *model.User {
	t.Helper()
	u := &model.User{
		Username:     account,
		UserAccount:  account,
		UserPassword: "hash",
		PlanetCode:   account,
		UserRole:     role,
	}
	require.NoError(t, e.users.Create(bg, u))
	return u
}

func (e *testEnv) createTeam(t *testing.T, owner *model.User, name string, maxNum int, status model.TeamStatus, password string) int64 {
	t.Helper()
	id, err := e.teamService().Create(bg, dto.CreateTeamInput{
		Name:     name,
		MaxNum:   maxNum,
		Status:   &status,
		Password: password,
	}, owner)
	require.NoError(t, err)
	return id
}

func (e *testEnv) memberCount(t *testing.T, teamID int64) int64 {
	t.Helper()
	n, err := e.members.CountByTeam(bg, teamID)
	require.NoError(t, err)
	return n
}

// recordingPublisher captures published team events
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.TeamEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := message.(entity.TeamEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func (p *recordingPublisher) last() entity.TeamEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return entity.TeamEvent{}
	}
	return p.events[len(p.events)-1]
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), "error: %v", err)
}

func ptr[T any](v T) *T { return &v }

var bg = context.Background()

// fixedClock returns a clock pinned at a whole second in UTC
func fixedClock() (time.Time, func() time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return now, func() time.Time { return now }
}
