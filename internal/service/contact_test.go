package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/store"
)

func newContactFixture(t *testing.T) (*ContactService, *store.Store) {
	t.Helper()
	s := setupTestStore(t)
	return NewContactService(s, nil, testLogger()), s
}

// seedContact inserts a contact directly, bypassing the service, with a
// controllable creation time.
func seedContact(t *testing.T, s *store.Store, ownerID, name, email string, createdAt time.Time) *domain.Contact {
	t.Helper()
	c := &domain.Contact{
		OwnerID: ownerID,
		Name:    name,
		Email:   email,
	}
	c.ID = id.MustGenerate(id.PrefixContact)
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	require.NoError(t, s.CreateContact(context.Background(), c))
	return c
}

func TestContactCreate_ResolvesTags(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	tag := &domain.Tag{OwnerID: "usr-1", Name: "VIP", Color: "#ff0000"}
	tag.ID = id.MustGenerate(id.PrefixTag)
	tag.InitTimestamps()
	require.NoError(t, s.CreateTag(ctx, tag))

	created, err := svc.Create(ctx, "usr-1", ContactInput{
		Name:   "Ann",
		Email:  "  Ann@X.com ",
		TagIDs: []string{tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", created.Contact.Email)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "VIP", created.Tags[0].Name)
	assert.Equal(t, "#ff0000", created.Tags[0].Color)
}

func TestContactCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newContactFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "usr-1", ContactInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "usr-1", ContactInput{Name: "Ann Again", Email: "ANN@x.com"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	// Same email, different owner.
	_, err = svc.Create(ctx, "usr-2", ContactInput{Name: "Ann", Email: "ann@x.com"})
	assert.NoError(t, err)
}

func TestContactCreate_InvalidTagReference(t *testing.T) {
	svc, _ := newContactFixture(t)

	_, err := svc.Create(context.Background(), "usr-1", ContactInput{
		Name:   "Ann",
		Email:  "ann@x.com",
		TagIDs: []string{"tag-nope"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestContactCreate_RequiredFields(t *testing.T) {
	svc, _ := newContactFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "usr-1", ContactInput{Email: "ann@x.com"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Create(ctx, "usr-1", ContactInput{Name: "Ann", Email: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestContactList_PaginationInvariant(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()
	base := time.Now()

	const n = 23
	for i := 0; i < n; i++ {
		seedContact(t, s, "usr-1", fmt.Sprintf("Contact %02d", i),
			fmt.Sprintf("c%02d@example.com", i), base.Add(time.Duration(i)*time.Minute))
	}

	const limit = 5
	seen := make(map[string]bool)
	total := 0
	for page := 1; ; page++ {
		result, err := svc.List(ctx, "usr-1", ListParams{Page: page, Limit: limit})
		require.NoError(t, err)
		assert.Equal(t, n, result.Pagination.Total)
		assert.Equal(t, 5, result.Pagination.TotalPages)

		for _, item := range result.Contacts {
			assert.False(t, seen[item.Contact.ID], "contact repeated across pages")
			seen[item.Contact.ID] = true
		}
		total += len(result.Contacts)
		if len(result.Contacts) < limit {
			break
		}
	}
	assert.Equal(t, n, total)
}

func TestContactList_NewestFirst(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()
	base := time.Now()

	seedContact(t, s, "usr-1", "Old", "old@example.com", base.Add(-time.Hour))
	seedContact(t, s, "usr-1", "New", "new@example.com", base)

	result, err := svc.List(ctx, "usr-1", ListParams{})
	require.NoError(t, err)
	require.Len(t, result.Contacts, 2)
	assert.Equal(t, "New", result.Contacts[0].Contact.Name)
	assert.Equal(t, "Old", result.Contacts[1].Contact.Name)
}

func TestContactList_ClampsPageAndLimit(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	seedContact(t, s, "usr-1", "Ann", "ann@example.com", time.Now())

	result, err := svc.List(ctx, "usr-1", ListParams{Page: -3, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, DefaultPageLimit, result.Pagination.Limit)

	result, err = svc.List(ctx, "usr-1", ListParams{Page: 1, Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, result.Pagination.Limit)
}

func TestContactList_TagFilterIsOr(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	tagA := &domain.Tag{OwnerID: "usr-1", Name: "A", Color: "#111111"}
	tagA.ID = id.MustGenerate(id.PrefixTag)
	tagA.InitTimestamps()
	require.NoError(t, s.CreateTag(ctx, tagA))
	tagB := &domain.Tag{OwnerID: "usr-1", Name: "B", Color: "#222222"}
	tagB.ID = id.MustGenerate(id.PrefixTag)
	tagB.InitTimestamps()
	require.NoError(t, s.CreateTag(ctx, tagB))

	withA := seedContact(t, s, "usr-1", "HasA", "a@example.com", time.Now())
	withA.TagIDs = []string{tagA.ID}
	require.NoError(t, s.UpdateContact(ctx, withA))

	withB := seedContact(t, s, "usr-1", "HasB", "b@example.com", time.Now())
	withB.TagIDs = []string{tagB.ID}
	require.NoError(t, s.UpdateContact(ctx, withB))

	seedContact(t, s, "usr-1", "None", "none@example.com", time.Now())

	result, err := svc.List(ctx, "usr-1", ListParams{TagIDs: []string{tagA.ID, tagB.ID}})
	require.NoError(t, err)
	assert.Len(t, result.Contacts, 2)
}

func TestContactList_SearchFallback(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	seedContact(t, s, "usr-1", "Annika Larsson", "annika@corp.example", time.Now())
	seedContact(t, s, "usr-1", "Bo Berg", "bo@other.example", time.Now())

	result, err := svc.List(ctx, "usr-1", ListParams{Search: "LARSSON"})
	require.NoError(t, err)
	require.Len(t, result.Contacts, 1)
	assert.Equal(t, "Annika Larsson", result.Contacts[0].Contact.Name)
}

func TestContactList_TenantIsolation(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	seedContact(t, s, "usr-1", "Mine", "mine@example.com", time.Now())
	seedContact(t, s, "usr-2", "Theirs", "theirs@example.com", time.Now())

	result, err := svc.List(ctx, "usr-2", ListParams{})
	require.NoError(t, err)
	require.Len(t, result.Contacts, 1)
	assert.Equal(t, "Theirs", result.Contacts[0].Contact.Name)
}

func TestContactUpdate_PartialFields(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	c := seedContact(t, s, "usr-1", "Ann", "ann@example.com", time.Now())

	company := "Acme"
	updated, err := svc.Update(ctx, "usr-1", c.ID, ContactUpdate{Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Contact.Company)
	assert.Equal(t, "Ann", updated.Contact.Name)
	assert.Equal(t, "ann@example.com", updated.Contact.Email)
}

func TestContactUpdate_EmailConflict(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	seedContact(t, s, "usr-1", "Ann", "ann@example.com", time.Now())
	c := seedContact(t, s, "usr-1", "Bo", "bo@example.com", time.Now())

	email := "Ann@example.com"
	_, err := svc.Update(ctx, "usr-1", c.ID, ContactUpdate{Email: &email})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestContactUpdate_NotOwned(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	c := seedContact(t, s, "usr-1", "Ann", "ann@example.com", time.Now())

	name := "Hijacked"
	_, err := svc.Update(ctx, "usr-2", c.ID, ContactUpdate{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestContactDelete(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	c := seedContact(t, s, "usr-1", "Ann", "ann@example.com", time.Now())

	require.NoError(t, svc.Delete(ctx, "usr-1", c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "usr-1", c.ID), domainerrors.ErrNotFound)
}

func TestContactBulkDelete_SkipsNonOwned(t *testing.T) {
	svc, s := newContactFixture(t)
	ctx := context.Background()

	mine := seedContact(t, s, "usr-1", "Mine", "mine@example.com", time.Now())
	theirs := seedContact(t, s, "usr-2", "Theirs", "theirs@example.com", time.Now())

	deleted, err := svc.BulkDelete(ctx, "usr-1", []string{mine.ID, theirs.ID, "con-missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	// The other owner's contact is untouched.
	_, err = svc.Get(ctx, "usr-2", theirs.ID)
	assert.NoError(t, err)
}
