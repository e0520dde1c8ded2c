package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func seedUser(t *testing.T, db *gorm.DB, account string, tags ...string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     account,
		UserAccount:  account,
		UserPassword: "hash",
		PlanetCode:   account,
		Tags:         datatypes.JSONSlice[string](tags),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTeam(t *testing.T, db *gorm.DB, ownerID int64, name string, status model.TeamStatus, expire *time.Time) *model.Team {
	t.Helper()
	team := &model.Team{Name: name, Description: name + " description", MaxNum: 5, UserID: ownerID, Status: status, ExpireTime: expire}
	require.NoError(t, db.Create(team).Error)
	return team
}

func ptr[T any](v T) *T { return &v }

var bg = context.Background()
