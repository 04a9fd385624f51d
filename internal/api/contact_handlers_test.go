package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/dto"
)

// createContact creates a contact over the API and returns its ID.
func (ts *testServer) createContact(t *testing.T, token, name, email string, tagIDs ...string) string {
	t.Helper()

	body := map[string]any{"name": name, "email": email}
	if len(tagIDs) > 0 {
		body["tagIds"] = tagIDs
	}

	resp := ts.api.Post("/api/v1/contacts", body, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.Contact]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

func (ts *testServer) listContacts(t *testing.T, token, query string) testEnvelope[dto.ContactPage] {
	t.Helper()

	resp := ts.api.Get("/api/v1/contacts"+query, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.ContactPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateContact(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/contacts",
		map[string]any{
			"name":    "Jane Doe",
			"email":   "Jane@Example.com",
			"company": "Acme",
		},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.Contact]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "Jane Doe", envelope.Data.Name)
	assert.Equal(t, "jane@example.com", envelope.Data.Email, "emails are stored lowercased")
	assert.Equal(t, "Acme", envelope.Data.Company)
	assert.NotNil(t, envelope.Data.Tags)
}

func TestCreateContact_DuplicateEmailConflicts(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	ts.createContact(t, token, "Jane Doe", "jane@example.com")

	resp := ts.api.Post("/api/v1/contacts",
		map[string]any{"name": "Jane Again", "email": "JANE@example.com"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestCreateContact_SameEmailDifferentUsers(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	ts.createContact(t, tokenA, "Jane Doe", "jane@example.com")
	// Email uniqueness is scoped per user.
	ts.createContact(t, tokenB, "Jane Doe", "jane@example.com")
}

func TestCreateContact_InvalidTagReference(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/contacts",
		map[string]any{
			"name":   "Jane Doe",
			"email":  "jane@example.com",
			"tagIds": []string{"tag_nonexistent"},
		},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateContact_CannotUseOtherUsersTag(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	tagID := ts.createTag(t, tokenA, "Work")

	resp := ts.api.Post("/api/v1/contacts",
		map[string]any{
			"name":   "Jane Doe",
			"email":  "jane@example.com",
			"tagIds": []string{tagID},
		},
		"Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetContact_TenantIsolation(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	contactID := ts.createContact(t, tokenA, "Jane Doe", "jane@example.com")

	resp := ts.api.Get("/api/v1/contacts/"+contactID, "Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusNotFound, resp.Code, "another user's contact must look like it does not exist")
}

func TestListContacts_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	firstID := ts.createContact(t, token, "First", "first@example.com")
	lastID := ts.createContact(t, token, "Last", "last@example.com")

	envelope := ts.listContacts(t, token, "")
	require.Len(t, envelope.Data.Data, 2)

	assert.Equal(t, lastID, envelope.Data.Data[0].ID)
	assert.Equal(t, firstID, envelope.Data.Data[1].ID)
}

func TestListContacts_Pagination(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	for i := 0; i < 23; i++ {
		ts.createContact(t, token,
			fmt.Sprintf("Contact %02d", i),
			fmt.Sprintf("contact%02d@example.com", i))
	}

	seen := make(map[string]bool)
	for page := 1; page <= 5; page++ {
		envelope := ts.listContacts(t, token, fmt.Sprintf("?page=%d&limit=5", page))

		p := envelope.Data.Pagination
		assert.Equal(t, page, p.Page)
		assert.Equal(t, 5, p.Limit)
		assert.Equal(t, 23, p.Total)
		assert.Equal(t, 5, p.TotalPages)

		for _, c := range envelope.Data.Data {
			assert.False(t, seen[c.ID], "contact %s appeared on two pages", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 23, "every contact appears exactly once across pages")

	// Beyond the last page: empty data, same metadata.
	envelope := ts.listContacts(t, token, "?page=6&limit=5")
	assert.Empty(t, envelope.Data.Data)
	assert.Equal(t, 23, envelope.Data.Pagination.Total)
}

func TestListContacts_Search(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	ts.createContact(t, token, "Jane Doe", "jane@acme.com")
	ts.createContact(t, token, "John Smith", "john@other.com")

	envelope := ts.listContacts(t, token, "?search=ACME")
	require.Len(t, envelope.Data.Data, 1, "search is case-insensitive and covers email")
	assert.Equal(t, "Jane Doe", envelope.Data.Data[0].Name)
}

func TestListContacts_TagFilterMatchesAny(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")

	workID := ts.createTag(t, token, "Work")
	gymID := ts.createTag(t, token, "Gym")

	ts.createContact(t, token, "Worker", "worker@example.com", workID)
	ts.createContact(t, token, "Lifter", "lifter@example.com", gymID)
	ts.createContact(t, token, "Neither", "neither@example.com")

	envelope := ts.listContacts(t, token, "?tags="+workID+","+gymID)
	assert.Len(t, envelope.Data.Data, 2, "tag filter is OR, not AND")
}

func TestUpdateContact_Partial(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	contactID := ts.createContact(t, token, "Jane Doe", "jane@example.com")

	resp := ts.api.Put("/api/v1/contacts/"+contactID,
		map[string]any{"company": "Acme"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.Contact]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "Acme", envelope.Data.Company)
	assert.Equal(t, "Jane Doe", envelope.Data.Name, "omitted fields are unchanged")
	assert.Equal(t, "jane@example.com", envelope.Data.Email)
}

func TestUpdateContact_EmailConflict(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	ts.createContact(t, token, "Jane Doe", "jane@example.com")
	otherID := ts.createContact(t, token, "John Smith", "john@example.com")

	resp := ts.api.Put("/api/v1/contacts/"+otherID,
		map[string]any{"email": "jane@example.com"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestDeleteContact(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	contactID := ts.createContact(t, token, "Jane Doe", "jane@example.com")

	resp := ts.api.Delete("/api/v1/contacts/"+contactID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	getResp := ts.api.Get("/api/v1/contacts/"+contactID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, getResp.Code)
}

func TestBulkDelete_SkipsNotOwned(t *testing.T) {
	ts := setupTestServer(t)

	tokenA, _ := ts.createTestUser(t, "sub-alice", "alice@example.com")
	tokenB, _ := ts.createTestUser(t, "sub-bob", "bob@example.com")

	ownedID := ts.createContact(t, tokenA, "Mine", "mine@example.com")
	foreignID := ts.createContact(t, tokenB, "Theirs", "theirs@example.com")

	resp := ts.api.Post("/api/v1/contacts/bulk-delete",
		map[string]any{"ids": []string{ownedID, foreignID, "ct_missing"}},
		"Authorization: Bearer "+tokenA)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BulkDeleteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.DeletedCount)

	// The other user's contact is untouched.
	getResp := ts.api.Get("/api/v1/contacts/"+foreignID, "Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusOK, getResp.Code)
}
