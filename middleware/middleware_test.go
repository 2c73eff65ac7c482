package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicbook/models"
	"clinicbook/services/admin"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions struct {
	valid map[string]*models.AdminSession
	err   error
}

func (s *stubSessions) ValidateSession(_ context.Context, token string) (*models.AdminSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	if sess, ok := s.valid[token]; ok {
		return sess, nil
	}
	return nil, admin.ErrSessionNotFound
}

type stubUsers struct{ known map[primitive.ObjectID]bool }

func (s *stubUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if s.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, nil
}

func serve(mw gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("adminID")+c.GetString("userID"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminSessionMiddleware(t *testing.T) {
	sessions := &stubSessions{valid: map[string]*models.AdminSession{"tok": {AdminID: "a1"}}}
	mw := AdminSessionMiddleware(sessions)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: utils.AdminSessionCookie, Value: "tok"})
	w := serve(mw, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, http.StatusOK, serve(mw, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)

	sessions.err = errors.New("redis down")
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, http.StatusInternalServerError, serve(mw, req).Code)
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	known := primitive.NewObjectID()
	users := &stubUsers{known: map[primitive.ObjectID]bool{known: true}}
	mw := JWTAuthUserMiddleware(users)

	token, err := utils.GenerateToken(known.Hex(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(mw, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, known.Hex(), w.Body.String())

	stranger, err := utils.GenerateToken(primitive.NewObjectID().Hex(), time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+stranger)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)

	expired, err := utils.GenerateToken(known.Hex(), -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)
}

func limitedRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.GET("/probe", RateLimitMiddleware(1), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddlewareIgnoresSpoofedForwarding(t *testing.T) {
	r := limitedRouter(t, nil)

	assert.Equal(t, http.StatusOK, hit(r, "198.51.100.7:4000", "10.0.0.1"))
	// Rotating the header does not buy a fresh limiter.
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "198.51.100.7:4000", "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "198.51.100.7:4001", ""))

	assert.Equal(t, http.StatusOK, hit(r, "198.51.100.8:4000", ""))
}

func TestRateLimitMiddlewareHonoursTrustedProxy(t *testing.T) {
	r := limitedRouter(t, []string{"192.0.2.10"})

	assert.Equal(t, http.StatusOK, hit(r, "192.0.2.10:5000", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "192.0.2.10:5000", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(r, "192.0.2.10:5000", "10.0.0.2"))
}
