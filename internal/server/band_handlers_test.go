package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

// createBandFixture persists an active band with four fresh members.
func createBandFixture(t *testing.T, srv *Server, db *gorm.DB, name string) (*models.Band, map[string]string) {
	t.Helper()

	tokens := map[string]string{}
	ids := map[string]uint{}
	for _, role := range []models.PrimaryRole{models.RoleDrummer, models.RoleGuitarist, models.RoleBassist, models.RoleSinger} {
		user, token := createAccount(t, srv, db, fmt.Sprintf("%s-%s", name, role), role)
		tokens[string(role)] = token
		ids[string(role)] = user.ID
	}

	band := &models.Band{
		Name:          "The " + name + " Collective",
		DrummerID:     ids["drummer"],
		GuitaristID:   ids["guitarist"],
		BassistID:     ids["bassist"],
		SingerID:      ids["singer"],
		Status:        models.BandStatusActive,
		AvgScore:      80,
		FormationDate: time.Now(),
	}
	require.NoError(t, db.Create(band).Error)
	return band, tokens
}

func TestGetBands(t *testing.T) {
	srv, app, db := setupTestServer(t)

	band, tokens := createBandFixture(t, srv, db, "listed")
	_, outsiderToken := createAccount(t, srv, db, "bandless", models.RoleOther)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/bands/", tokens["drummer"], nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["count"])
	got := body["bands"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(band.ID), got["id"])

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/bands/", outsiderToken, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(0), body["count"])
}

func TestGetBand(t *testing.T) {
	srv, app, db := setupTestServer(t)

	band, tokens := createBandFixture(t, srv, db, "detail")
	_, outsiderToken := createAccount(t, srv, db, "curious", models.RoleOther)

	target := fmt.Sprintf("/api/bands/%d", band.ID)

	resp, err := app.Test(jsonRequest(http.MethodGet, target, tokens["singer"], nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	got := body["band"].(map[string]any)
	assert.Equal(t, "The detail Collective", got["name"])
	// Members come embedded on the detail view.
	assert.NotNil(t, got["drummer"])

	// Outsiders cannot tell the band exists.
	resp, err = app.Test(jsonRequest(http.MethodGet, target, outsiderToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/bands/abc", tokens["singer"], nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBandMembers(t *testing.T) {
	srv, app, db := setupTestServer(t)

	band, tokens := createBandFixture(t, srv, db, "roster")

	require.NoError(t, db.Create(&models.CompatibilityScore{
		User1ID:    band.DrummerID,
		User2ID:    band.GuitaristID,
		FinalScore: 77,
	}).Error)

	resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/bands/%d/members", band.ID), tokens["drummer"], nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(4), body["count"])

	byRole := map[string]map[string]any{}
	for _, raw := range body["members"].([]any) {
		m := raw.(map[string]any)
		byRole[m["role"].(string)] = m
	}
	require.Len(t, byRole, 4)

	guitarist := byRole["guitarist"]
	require.Contains(t, guitarist, "score")
	score := guitarist["score"].(map[string]any)
	assert.Equal(t, float64(77), score["final_score"])

	// The caller's own entry has no pairwise score.
	assert.NotContains(t, byRole["drummer"], "score")
}
