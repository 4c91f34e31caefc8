package middleware

import (
	"docdrop/file-api/db"
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/metrics"
	"docdrop/file-api/pkg/security"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = c.GetString("requestID")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 12)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	first := seen

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, seen, w2.Header().Get("X-Request-ID"))
	assert.NotEqual(t, first, w2.Header().Get("X-Request-ID"))
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware(), BodySizeLimiter(8))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if IsBodyTooLarge(err) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusOK)
	})

	tests := []struct {
		name          string
		body          string
		contentLength int64
		code          int
	}{
		{"within limit", "12345678", 8, http.StatusOK},
		{"announced too big", "123456789", 9, http.StatusRequestEntityTooLarge},
		{"unannounced too big", "123456789", -1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
		})
	}

	assert.False(t, IsBodyTooLarge(nil))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("   "))
}

func newSessionRouter(t *testing.T) (*gin.Engine, *internal.Deps) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	conn, err := db.New("sqlite", path)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	tokens, err := security.NewTokenService(security.TokenOpts{Secret: "test-secret"})
	require.NoError(t, err)

	d := &internal.Deps{
		DB:      conn,
		Tokens:  tokens,
		Metrics: metrics.New(),
	}

	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", NewSessionMiddleware(d), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})

	return r, d
}

func TestSessionMiddleware(t *testing.T) {
	r, d := newSessionRouter(t)

	require.NoError(t, d.DB.Create(&model.User{ID: "u1", Email: "bob@example.com", PasswordHash: "x"}).Error)

	session, err := d.Tokens.SessionToken("u1")
	require.NoError(t, err)
	ghost, err := d.Tokens.SessionToken("ghost")
	require.NoError(t, err)
	download, err := d.Tokens.DownloadToken(1, "u1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"valid", "Bearer " + session, http.StatusOK, "bob@example.com"},
		{"bare", session, http.StatusOK, "bob@example.com"},
		{"missing", "", http.StatusUnauthorized, "Token is missing"},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, "Token is invalid"},
		{"wrong purpose", "Bearer " + download, http.StatusUnauthorized, "Token is invalid"},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized, "Token is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}
