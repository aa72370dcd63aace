package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

func TestSendMessage(t *testing.T) {
	srv, app, db := setupTestServer(t)

	band, tokens := createBandFixture(t, srv, db, "chat")
	_, outsiderToken := createAccount(t, srv, db, "eavesdropper", models.RoleOther)

	target := fmt.Sprintf("/api/chat/%d/messages", band.ID)

	t.Run("Member posts a message", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, tokens["bassist"], map[string]any{
			"content": "rehearsal at 7?",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		msg := body["message"].(map[string]any)
		assert.Equal(t, "rehearsal at 7?", msg["content"])
		assert.Equal(t, "text", msg["message_type"])
		assert.Equal(t, float64(band.BassistID), msg["user_id"])
	})

	t.Run("Outsider gets not found", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, outsiderToken, map[string]any{
			"content": "can I sit in?",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Empty message rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, tokens["bassist"], map[string]any{
			"content": "   ",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Oversized message rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, tokens["bassist"], map[string]any{
			"content": strings.Repeat("a", 2001),
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Invalid band ID", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/chat/zero/messages", tokens["bassist"], map[string]any{
			"content": "hello",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetMessages(t *testing.T) {
	srv, app, db := setupTestServer(t)

	band, tokens := createBandFixture(t, srv, db, "scroll")
	target := fmt.Sprintf("/api/chat/%d/messages", band.ID)

	for i := 0; i < 5; i++ {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, tokens["singer"], map[string]any{
			"content": fmt.Sprintf("note %d", i),
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(jsonRequest(http.MethodGet, target+"?limit=2&offset=0", tokens["drummer"], nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(5), body["total"])
	assert.Equal(t, float64(2), body["limit"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)

	// Sender profile rides along for display.
	first := messages[0].(map[string]any)
	sender := first["user"].(map[string]any)
	assert.Equal(t, "scroll-singer", sender["username"])

	// Non-members cannot read history.
	_, outsiderToken := createAccount(t, srv, db, "scroller", models.RoleOther)
	resp, err = app.Test(jsonRequest(http.MethodGet, target, outsiderToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
