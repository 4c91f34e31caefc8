package app

import (
	"bytes"
	"context"
	"docdrop/file-api/config"
	"docdrop/file-api/db"
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/internal/storage"
	"docdrop/file-api/pkg/metrics"
	"docdrop/file-api/pkg/security"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentLink struct {
	Email string
	Link  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentLink
	err  error
}

func (n *recordingNotifier) SendVerificationLink(_ context.Context, email, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentLink{Email: email, Link: link})
	return n.err
}

func (n *recordingNotifier) Sent() []sentLink {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentLink(nil), n.sent...)
}

type testEnv struct {
	t      *testing.T
	deps   *internal.Deps
	router *gin.Engine
	clock  *testClock
	mail   *recordingNotifier
}

func newTestEnv(t *testing.T, mods ...func(*config.Config)) *testEnv {
	t.Helper()

	// db.New refuses to create a missing sqlite file inside docker
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	conn, err := db.New("sqlite", path)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	clock := &testClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}

	tokens, err := security.NewTokenService(security.TokenOpts{
		Secret: "test-secret",
		Now:    clock.Now,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Host: config.HostConfig{
			Port:   8080,
			Domain: "localhost",
		},
		Upload: config.UploadConfig{
			MaxSize:           16 << 20,
			AllowedExtensions: []string{"pptx", "docx", "xlsx"},
		},
	}
	for _, m := range mods {
		m(cfg)
	}

	mail := &recordingNotifier{}

	d := &internal.Deps{
		Config: cfg,
		DB:     conn,
		// Cheap parameters, the real ones make every test take seconds
		Hasher: &security.PasswordHasher{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Tokens:   tokens,
		Storage:  storage.NewLocalFs(afero.NewMemMapFs()),
		Notifier: mail,
		Metrics:  metrics.New(),
	}

	return &testEnv{
		t:      t,
		deps:   d,
		router: NewRouter(d),
		clock:  clock,
		mail:   mail,
	}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.serve(req)
}

func (e *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	b, err := json.Marshal(body)
	require.NoError(e.t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	return e.serve(req)
}

func (e *testEnv) upload(token, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	body, contentType := multipartBody(e.t, "file", filename, content)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.serve(req)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

// createUser inserts a user straight into the database
func (e *testEnv) createUser(id, email, password string, isOps, verified bool) *model.User {
	e.t.Helper()

	hash, err := e.deps.Hasher.Hash(password)
	require.NoError(e.t, err)

	u := &model.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		IsOps:        isOps,
		IsVerified:   verified,
	}
	require.NoError(e.t, e.deps.DB.Create(u).Error)

	return u
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()

	w := e.postJSON("/login", gin.H{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	return decode(e.t, w)["token"].(string)
}

func (e *testEnv) user(email string) model.User {
	e.t.Helper()

	var u model.User
	require.NoError(e.t, e.deps.DB.Where("email = ?", email).First(&u).Error)

	return u
}

func (e *testEnv) fileCount() int64 {
	e.t.Helper()

	var n int64
	require.NoError(e.t, e.deps.DB.Model(model.File{}).Count(&n).Error)

	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())

	return m
}

func readBody(t *testing.T, r io.Reader) []byte {
	t.Helper()

	b, err := io.ReadAll(r)
	require.NoError(t, err)

	return b
}
