package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SCGamer30/jam-match-sub001/internal/config"
	"github.com/SCGamer30/jam-match-sub001/internal/database"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

var serverDBSeq int64

// setupTestServer builds a server over an in-memory database with routes
// mounted. Redis and the AI generator stay unconfigured unless a test
// injects them.
func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:srv%d?mode=memory&cache=shared", atomic.AddInt64(&serverDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		MinBandScore: 60,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app, db
}

// createAccount persists a user with a completed musician profile and
// returns it with a valid bearer token.
func createAccount(t *testing.T, srv *Server, db *gorm.DB, username string, role models.PrimaryRole) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "$2a$04$notactuallyahashbutok.notactuallyahashbutok..",
		Name:             username,
		PrimaryRole:      role,
		Instruments:      models.StringList{string(role)},
		Genres:           models.StringList{"rock"},
		Experience:       models.ExperienceIntermediate,
		Location:         "Austin",
		ProfileCompleted: true,
	}
	require.NoError(t, db.Create(user).Error)

	token, err := srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

func jsonRequest(method, target, token string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}
