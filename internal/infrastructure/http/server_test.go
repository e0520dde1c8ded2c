package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-partner/internal/config"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/database"
	httpserver "github.com/wekeepgrowing/semo-partner/internal/infrastructure/http"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/metrics"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
)

type envelope struct {
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (c *client) login(account string) {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/v1/user/login", map[string]string{
		"user_account": account, "user_password": "password1",
	})
	require.Equal(c.t, http.StatusOK, status, env.Message)
}

func newTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	logger := zap.NewNop()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), &config.DatabaseConfig{MaxOpenConns: 1, LogLevel: "silent"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db, logger) })

	require.NoError(t, database.Migrate(db, logger))
	repos := database.NewRepositories(db, logger)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	locker := repository.NewRedisLocker(rdb, logger)
	cache := repository.NewRedisCacheRepository(rdb, logger)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, reg)
	opts := []usecase.Option{usecase.WithMetrics(collector)}

	memberships := usecase.NewMembershipService(repos.Team, repos.UserTeam, repos.Transactor, locker, logger, opts...)
	services := httpserver.Services{
		Teams:       usecase.NewTeamService(repos.Team, repos.UserTeam, repos.Transactor, locker, logger, opts...),
		Memberships: memberships,
		Views:       usecase.NewTeamViewService(repos.Team, repos.UserTeam, repos.User, logger, opts...),
		Users:       usecase.NewUserService(repos.User, cache, bcrypt.MinCost, logger, usecase.WithTeamCleanup(memberships)),
	}

	cfg := &config.Config{
		Service: config.ServiceConfig{Name: "partner"},
		Session: config.SessionConfig{Name: "partner_session"},
	}
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	return httpserver.NewServer(cfg, logger, services, store, collector).Handler(), db
}

func registerAndLogin(t *testing.T, h http.Handler, account string) *client {
	t.Helper()
	c := &client{t: t, handler: h}
	status, env := c.do(http.MethodPost, "/api/v1/user/register", map[string]string{
		"user_account":   account,
		"user_password":  "password1",
		"check_password": "password1",
		"planet_code":    account[:3],
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	c.login(account)
	return c
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t)
	c := &client{t: t, handler: h}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"partner"}`, rec.Body.String())

	status, env := c.do(http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "partner_http_requests_total")
}

func TestServer_TeamFlow(t *testing.T) {
	h, _ := newTestServer(t)
	alice := registerAndLogin(t, h, "alice")
	bob := registerAndLogin(t, h, "bobby")
	carol := registerAndLogin(t, h, "carol")

	status, env := alice.do(http.MethodPost, "/api/v1/team/add", map[string]interface{}{
		"name": "gophers", "description": "go study", "max_num": 2,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "OK", env.Code)
	var teamID int64
	require.NoError(t, json.Unmarshal(env.Data, &teamID))

	status, _ = bob.do(http.MethodPost, "/api/v1/team/join", map[string]interface{}{"team_id": teamID})
	require.Equal(t, http.StatusOK, status)

	status, env = carol.do(http.MethodPost, "/api/v1/team/join", map[string]interface{}{"team_id": teamID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, domainErrors.CodeTeamFull, env.Code)
	assert.Equal(t, "null", string(env.Data))

	status, env = carol.do(http.MethodGet, "/api/v1/team/list", nil)
	require.Equal(t, http.StatusOK, status)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, float64(2), listed[0]["has_join_num"])
	assert.Equal(t, false, listed[0]["has_join"])
	assert.NotContains(t, string(env.Data), "password")

	status, env = bob.do(http.MethodGet, "/api/v1/team/list/my/join", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, true, listed[0]["has_join"])

	status, _ = alice.do(http.MethodPost, "/api/v1/team/quit", map[string]interface{}{"team_id": teamID})
	require.Equal(t, http.StatusOK, status)

	status, env = bob.do(http.MethodGet, fmt.Sprintf("/api/v1/team/get?id=%d", teamID), nil)
	require.Equal(t, http.StatusOK, status)
	var team map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &team))

	status, env = bob.do(http.MethodGet, "/api/v1/user/current", nil)
	require.Equal(t, http.StatusOK, status)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, me["id"], team["user_id"])

	status, _ = bob.do(http.MethodPost, "/api/v1/team/quit", map[string]interface{}{"team_id": teamID})
	require.Equal(t, http.StatusOK, status)

	status, env = bob.do(http.MethodGet, fmt.Sprintf("/api/v1/team/get?id=%d", teamID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domainErrors.CodeNotFound, env.Code)
}

func TestServer_ErrorEnvelope(t *testing.T) {
	h, _ := newTestServer(t)
	anon := &client{t: t, handler: h}
	alice := registerAndLogin(t, h, "alice")

	tests := []struct {
		name   string
		c      *client
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"anonymous create", anon, http.MethodPost, "/api/v1/team/add", map[string]interface{}{"name": "t", "max_num": 2}, http.StatusUnauthorized, domainErrors.CodeNotAuthenticated},
		{"missing name", alice, http.MethodPost, "/api/v1/team/add", map[string]interface{}{"max_num": 2}, http.StatusBadRequest, domainErrors.CodeValidation},
		{"capacity out of range", alice, http.MethodPost, "/api/v1/team/add", map[string]interface{}{"name": "t", "max_num": 50}, http.StatusBadRequest, domainErrors.CodeValidation},
		{"malformed body", alice, http.MethodPost, "/api/v1/team/join", "{", http.StatusBadRequest, domainErrors.CodeValidation},
		{"non numeric id", alice, http.MethodGet, "/api/v1/team/get?id=abc", nil, http.StatusBadRequest, domainErrors.CodeValidation},
		{"private listing", alice, http.MethodGet, "/api/v1/team/list?status=1", nil, http.StatusForbidden, domainErrors.CodeAuthorization},
		{"match without num", alice, http.MethodGet, "/api/v1/user/match", nil, http.StatusBadRequest, domainErrors.CodeValidation},
		{"match num too large", alice, http.MethodGet, "/api/v1/user/match?num=21", nil, http.StatusBadRequest, domainErrors.CodeValidation},
		{"match needs login", anon, http.MethodGet, "/api/v1/user/match?num=1", nil, http.StatusUnauthorized, domainErrors.CodeNotAuthenticated},
		{"admin search", alice, http.MethodGet, "/api/v1/user/search?username=a", nil, http.StatusForbidden, domainErrors.CodeAuthorization},
		{"wrong password", anon, http.MethodPost, "/api/v1/user/login", map[string]string{"user_account": "alice", "user_password": "password2"}, http.StatusBadRequest, domainErrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := tt.c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestServer_UserEndpoints(t *testing.T) {
	h, db := newTestServer(t)
	alice := registerAndLogin(t, h, "alice")

	status, _ := alice.do(http.MethodPost, "/api/v1/user/update", map[string]interface{}{
		"id": 1, "tags": []string{"go", "backend"},
	})
	require.Equal(t, http.StatusOK, status)

	status, env := alice.do(http.MethodGet, "/api/v1/user/search/tags?tags=go,backend", nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.NotContains(t, string(env.Data), "user_password")

	status, env = alice.do(http.MethodGet, "/api/v1/user/recommend?page_num=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Records    []map[string]interface{} `json:"records"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Pagination.Total)

	require.NoError(t, db.Model(&model.User{}).Where("user_account = ?", "alice").Update("user_role", model.RoleAdmin).Error)
	bob := registerAndLogin(t, h, "bobby")
	status, _ = bob.do(http.MethodPost, "/api/v1/user/update", map[string]interface{}{
		"id": 2, "tags": []string{"go"},
	})
	require.Equal(t, http.StatusOK, status)

	status, env = alice.do(http.MethodGet, "/api/v1/user/match?num=3", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "bobby", users[0]["user_account"])

	status, env = alice.do(http.MethodGet, "/api/v1/user/search?username=bob", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)

	status, _ = alice.do(http.MethodPost, "/api/v1/user/delete", map[string]interface{}{"id": users[0]["id"]})
	require.Equal(t, http.StatusOK, status)

	status, env = bob.do(http.MethodGet, "/api/v1/user/current", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, domainErrors.CodeNotAuthenticated, env.Code)

	status, _ = alice.do(http.MethodPost, "/api/v1/user/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = alice.do(http.MethodGet, "/api/v1/user/current", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
