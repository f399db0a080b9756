package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *utils.JWTManager {
	return utils.NewJWTManager("middleware-secret", time.Hour, 24*time.Hour)
}

func bearer(t *testing.T, m *utils.JWTManager, id uuid.UUID, roles, perms []string) string {
	t.Helper()
	token, err := m.GenerateAccessToken(id, "asha", roles, perms)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router *gin.Engine, method, path, auth string, body string, headers ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := newJWT()
	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.MustGet("user_id").(uuid.UUID).String(),
			"username": c.GetString("username"),
		})
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "Token abc", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "Bearer abc", "").Code)

	id := uuid.New()
	w := serve(router, http.MethodGet, "/me", bearer(t, jwtManager, id, nil, nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"username":"asha"`)
}

func TestRequirePermissionAndRole(t *testing.T) {
	jwtManager := newJWT()
	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.POST("/checkout", RequirePermission(entity.PermCheckout), func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.GET("/users", RequireRole(entity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	cashier := bearer(t, jwtManager, uuid.New(), []string{entity.RoleCashier}, []string{entity.PermCheckout})
	viewer := bearer(t, jwtManager, uuid.New(), []string{entity.RoleUser}, []string{entity.PermViewProducts})
	admin := bearer(t, jwtManager, uuid.New(), []string{entity.RoleAdmin}, nil)

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/checkout", cashier, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/checkout", viewer, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/users", cashier, "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/users", admin, "").Code)
}

type fakeChecker struct {
	check *service.UserCheck
	err   error
}

func (f fakeChecker) CheckUser(context.Context, uuid.UUID) (*service.UserCheck, error) {
	return f.check, f.err
}

func TestRequireApproved(t *testing.T) {
	jwtManager := newJWT()
	token := bearer(t, jwtManager, uuid.New(), nil, nil)

	for name, tc := range map[string]struct {
		checker fakeChecker
		code    int
	}{
		"approved":   {fakeChecker{check: &service.UserCheck{Exists: true, Approved: true}}, http.StatusOK},
		"pending":    {fakeChecker{check: &service.UserCheck{Exists: true}}, http.StatusForbidden},
		"deleted":    {fakeChecker{check: &service.UserCheck{}}, http.StatusUnauthorized},
		"store down": {fakeChecker{err: errors.New("connection refused")}, http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(jwtManager), RequireApproved(tc.checker))
			router.GET("/stats", func(c *gin.Context) { c.Status(http.StatusOK) })

			assert.Equal(t, tc.code, serve(router, http.MethodGet, "/stats", token, "").Code)
		})
	}
}

type memIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
	err  error
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.keys[userID.String()+":"+key], nil
}

func (r *memIdempotencyRepo) Reserve(_ context.Context, k *entity.IdempotencyKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := k.UserID.String() + ":" + k.Key
	if existing, ok := r.keys[id]; ok && !existing.IsExpired() {
		return false, nil
	}
	held := *k
	r.keys[id] = &held
	return true, nil
}

func (r *memIdempotencyRepo) Complete(_ context.Context, k *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	done := *k
	r.keys[k.UserID.String()+":"+k.Key] = &done
	return nil
}

func (r *memIdempotencyRepo) Release(_ context.Context, key string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := userID.String() + ":" + key
	if existing, ok := r.keys[id]; ok && existing.InProgress() {
		delete(r.keys, id)
	}
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(context.Context) error { return nil }

func idempotentRouter(t *testing.T, repo *memIdempotencyRepo, status *int, calls *int) (*gin.Engine, string) {
	t.Helper()
	jwtManager := newJWT()
	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.POST("/checkout", Idempotency(IdempotencyConfig{Repo: repo, Logger: zap.NewNop()}), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return router, bearer(t, jwtManager, uuid.New(), nil, nil)
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	repo := newMemIdempotencyRepo()
	status, calls := http.StatusCreated, 0
	router, token := idempotentRouter(t, repo, &status, &calls)

	first := serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`, IdempotencyKeyHeader, "k1")
	second := serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`, IdempotencyKeyHeader, "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Empty(t, first.Header().Get(ReplayedHeader))

	mismatch := serve(router, http.MethodPost, "/checkout", token, `{"items":[1]}`, IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusUnprocessableEntity, mismatch.Code)
	assert.Equal(t, 1, calls)

	serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`)
	assert.Equal(t, 2, calls, "requests without a key always run")
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	repo := newMemIdempotencyRepo()
	status, calls := http.StatusConflict, 0
	router, token := idempotentRouter(t, repo, &status, &calls)

	serve(router, http.MethodPost, "/checkout", token, `{}`, IdempotencyKeyHeader, "k2")
	status = http.StatusCreated
	w := serve(router, http.MethodPost, "/checkout", token, `{}`, IdempotencyKeyHeader, "k2")

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(ReplayedHeader))
}

func TestIdempotency_StoreDownDoesNotBlock(t *testing.T) {
	repo := newMemIdempotencyRepo()
	repo.err = errors.New("redis: connection refused")
	status, calls := http.StatusCreated, 0
	router, token := idempotentRouter(t, repo, &status, &calls)

	w := serve(router, http.MethodPost, "/checkout", token, `{}`, IdempotencyKeyHeader, "k3")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_ConcurrentRequestWithSameKeyIsRejected(t *testing.T) {
	repo := newMemIdempotencyRepo()
	jwtManager := newJWT()
	token := bearer(t, jwtManager, uuid.New(), nil, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	var once sync.Once

	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.POST("/checkout", Idempotency(IdempotencyConfig{Repo: repo, Logger: zap.NewNop()}), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(entered) })
		<-release
		c.JSON(http.StatusCreated, gin.H{"billNumber": "INV-2026-0001"})
	})

	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		firstDone <- serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`, IdempotencyKeyHeader, "tap")
	}()
	<-entered

	second := serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`, IdempotencyKeyHeader, "tap")
	assert.Equal(t, http.StatusConflict, second.Code)

	close(release)
	first := <-firstDone
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	third := serve(router, http.MethodPost, "/checkout", token, `{"items":[]}`, IdempotencyKeyHeader, "tap")
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get(ReplayedHeader))
	assert.Equal(t, first.Body.String(), third.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Requests: 2, Window: time.Hour})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ping", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ping", "", "").Code)
	w := serve(router, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	rl.cleanup(time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ping", "", "").Code)
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware(zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(router, http.MethodGet, "/ping", "", "", "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", w.Body.String())

	w = serve(router, http.MethodGet, "/ping", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(router, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
