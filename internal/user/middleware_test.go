package user

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maumlog/maumlog-backend/pkg/clock"
	"github.com/maumlog/maumlog-backend/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUserMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(UserIDKey)})
	})
	return r
}

func TestRequireUserMiddleware(t *testing.T) {
	token.SetSecretKey([]byte("0123456789abcdef0123456789abcdef"))
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock := clock.NewMock(now)
	SetClock(mock)
	defer SetClock(clock.System{})

	userID, err := CreateProvisionalUser()
	require.NoError(t, err)
	tok, err := token.IssueSessionToken(userID, time.Hour, now)
	require.NoError(t, err)

	r := newAuthRouter()

	// 有效令牌放行，并把用户ID注入上下文
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)

	// 缺少令牌
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 过期令牌
	mock.Advance(2 * time.Hour)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
