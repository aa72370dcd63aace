package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

// stubGenerator returns a canned model response for AI analysis tests.
type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return s.response, s.err
}

func TestCalculateMatches(t *testing.T) {
	srv, app, db := setupTestServer(t)

	t.Run("Incomplete profile rejected", func(t *testing.T) {
		user := &models.User{Username: "unready", Email: "unready@example.com", Password: "hashed", Name: "unready"}
		require.NoError(t, db.Create(user).Error)
		token, err := srv.generateToken(user.ID, user.Username)
		require.NoError(t, err)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/calculate", token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Scores every candidate and forms a band when possible", func(t *testing.T) {
		_, drummerToken := createAccount(t, srv, db, "m-drummer", models.RoleDrummer)
		_, guitaristToken := createAccount(t, srv, db, "m-guitarist", models.RoleGuitarist)
		_, bassistToken := createAccount(t, srv, db, "m-bassist", models.RoleBassist)
		createAccount(t, srv, db, "m-singer", models.RoleSinger)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/calculate", drummerToken, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(3), body["count"])
		assert.NotContains(t, body, "band")

		scores := body["scores"].([]any)
		first := scores[0].(map[string]any)
		assert.Equal(t, float64(80), first["final_score"])
		assert.Contains(t, first["reasoning"], "Compatibility analysis")

		resp, err = app.Test(jsonRequest(http.MethodPost, "/api/matching/calculate", guitaristToken, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = app.Test(jsonRequest(http.MethodPost, "/api/matching/calculate", bassistToken, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body = decodeBody(t, resp)
		require.Contains(t, body, "band")
		band := body["band"].(map[string]any)
		assert.Equal(t, "active", band["status"])
		assert.Equal(t, float64(80), band["avg_compatibility_score"])
	})
}

func TestAIAnalysisEndpoint(t *testing.T) {
	srv, app, db := setupTestServer(t)

	_, token := createAccount(t, srv, db, "ai-drummer", models.RoleDrummer)
	target, _ := createAccount(t, srv, db, "ai-guitarist", models.RoleGuitarist)

	t.Run("Missing user_id", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/ai-analysis", token, map[string]any{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("No generator configured yields bad gateway", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/ai-analysis", token, map[string]any{
			"user_id": target.ID,
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("Blended score returned with generator", func(t *testing.T) {
		srv.SetContentGenerator(&stubGenerator{
			response: `{"score": 90, "reasoning": "tight rhythm section potential"}`,
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/ai-analysis", token, map[string]any{
			"user_id": target.ID,
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		score := body["score"].(map[string]any)
		assert.Equal(t, float64(90), score["ai_score"])
		assert.Equal(t, float64(80), score["algorithmic_score"])
		assert.Equal(t, float64(83), score["final_score"])
		assert.Equal(t, "tight rhythm section potential", score["ai_reasoning"])
	})

	t.Run("Generator failure yields bad gateway", func(t *testing.T) {
		srv.SetContentGenerator(&stubGenerator{err: context.DeadlineExceeded})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/matching/ai-analysis", token, map[string]any{
			"user_id": target.ID,
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}
