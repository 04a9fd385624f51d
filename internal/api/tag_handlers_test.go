package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/dto"
)

// createTag creates a tag over the API and returns its ID.
func (ts *testServer) createTag(t *testing.T, token, name string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": name},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.Tag]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

func TestListTags_EmptyInitially(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[[]dto.Tag]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Empty(t, envelope.Data)
}

func TestCreateTag_DefaultColor(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": "VIP"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope testEnvelope[dto.Tag]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "VIP", envelope.Data.Name)
	assert.Equal(t, "#3B82F6", envelope.Data.Color)
}

func TestCreateTag_DuplicateNameConflicts(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	ts.createTag(t, token, "Work")

	// Same name with different casing is still a duplicate.
	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": "work"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestCreateTag_SameNameDifferentUsers(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	ts.createTag(t, tokenA, "Work")
	// Tag names are only unique within one user's account.
	ts.createTag(t, tokenB, "Work")
}

func TestCreateTag_BlankNameRejected(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/tags",
		map[string]any{"name": ""},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteTag(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tagID := ts.createTag(t, token, "Work")

	resp := ts.api.Delete("/api/v1/tags/"+tagID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	listResp := ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	var envelope testEnvelope[[]dto.Tag]
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}

func TestDeleteTag_NotOwnedReturnsNotFound(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	tagID := ts.createTag(t, tokenA, "Work")

	resp := ts.api.Delete("/api/v1/tags/"+tagID, "Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteTag_RemovedFromContacts(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tagID := ts.createTag(t, token, "Work")
	contactID := ts.createContact(t, token, "Jane Doe", "jane@example.com", tagID)

	resp := ts.api.Delete("/api/v1/tags/"+tagID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	getResp := ts.api.Get("/api/v1/contacts/"+contactID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, getResp.Code)

	var envelope testEnvelope[dto.Contact]
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Tags, "deleted tag must not linger on contacts")
}
