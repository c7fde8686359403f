package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHandlers_Flow(t *testing.T) {
	_, app, db := setupTestServer(t)
	alice := createHandlerTestUser(t, db, "alice", "alice@example.com")
	bob := createHandlerTestUser(t, db, "bob", "bob@example.com")
	eve := createHandlerTestUser(t, db, "eve", "eve@example.com")
	aliceToken := mintToken(t, alice.ID)
	bobToken := mintToken(t, bob.ID)
	eveToken := mintToken(t, eve.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chats", map[string]interface{}{
		"otherUserId": bob.ID,
	}, aliceToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var opened struct {
		Data struct {
			ID           uint `json:"id"`
			Participants []struct {
				ID uint `json:"id"`
			} `json:"participants"`
		} `json:"data"`
	}
	decodeBody(t, resp, &opened)
	require.Len(t, opened.Data.Participants, 2)
	chatPath := fmt.Sprintf("/api/v1/chats/%d", opened.Data.ID)

	t.Run("reopening yields the same chat", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/chats", map[string]interface{}{
			"otherUserId": alice.ID,
		}, bobToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var again struct {
			Data struct {
				ID uint `json:"id"`
			} `json:"data"`
		}
		decodeBody(t, resp, &again)
		assert.Equal(t, opened.Data.ID, again.Data.ID)
	})

	t.Run("chat with self is rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/chats", map[string]interface{}{
			"otherUserId": alice.ID,
		}, aliceToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("sends and lists messages", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, chatPath+"/messages", map[string]string{
			"content": "is the bread still available?",
		}, bobToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, app, http.MethodGet, chatPath+"/messages", nil, aliceToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list struct {
			Count int `json:"count"`
			Data  []struct {
				Content string `json:"content"`
				Read    bool   `json:"read"`
			} `json:"data"`
		}
		decodeBody(t, resp, &list)
		require.Equal(t, 1, list.Count)
		assert.False(t, list.Data[0].Read)
	})

	t.Run("outsiders cannot see the chat", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, chatPath, nil, eveToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, app, http.MethodPost, chatPath+"/messages", map[string]string{"content": "hi"}, eveToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("mark as read flips the counterpart's messages", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, chatPath+"/read", nil, aliceToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var marked struct {
			Data struct {
				Updated int64 `json:"updated"`
			} `json:"data"`
		}
		decodeBody(t, resp, &marked)
		assert.Equal(t, int64(1), marked.Data.Updated)
	})

	t.Run("chats listing requires authentication", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/chats", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("lists the caller's chats", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/chats", nil, aliceToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list struct {
			Count int `json:"count"`
		}
		decodeBody(t, resp, &list)
		assert.Equal(t, 1, list.Count)
	})
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	_, app, _ := setupTestServer(t)

	t.Run("garbage token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/chats", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := mintTokenWithClaims(t, map[string]interface{}{
			"iss": "someone-else",
			"aud": "foodloop-client",
			"sub": "1",
		})
		resp := doJSON(t, app, http.MethodGet, "/api/v1/chats", nil, token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
