package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"spottr/internal/config"
	"spottr/internal/database"
	"spottr/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// apiHarness runs the full route table against an in-memory SQLite store.
type apiHarness struct {
	t   *testing.T
	db  *gorm.DB
	srv *Server
	app *fiber.App
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newHarness(t *testing.T, cfg *config.Config, rdb *redis.Client) *apiHarness {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.JWTSecret = testSecret
	cfg.AllowedOrigins = "http://localhost:5173"

	db := setupTestDB(t)
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &apiHarness{t: t, db: db, srv: srv, app: srv.App()}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (h *apiHarness) do(method, path, token string, body any, out any) int {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

// signup registers a user through the API and returns its token and ID.
func (h *apiHarness) signup(username string) (string, uint) {
	h.t.Helper()
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	status := h.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "Password123",
	}, &resp)
	require.Equal(h.t, http.StatusCreated, status)
	require.NotEmpty(h.t, resp.Token)
	return resp.Token, resp.User.ID
}

func (h *apiHarness) createExercise(name string) *models.ExerciseDefinition {
	h.t.Helper()
	def := &models.ExerciseDefinition{Name: name, Category: models.CategoryLegs, ExerciseType: models.ExerciseTypeStrength}
	require.NoError(h.t, h.db.Create(def).Error)
	return def
}

func (h *apiHarness) createGym(name string) *models.Gym {
	h.t.Helper()
	gym := &models.Gym{Name: name}
	require.NoError(h.t, h.db.Create(gym).Error)
	return gym
}
