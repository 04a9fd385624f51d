package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/id"
)

func newTestTag(ownerID, name, color string) *domain.Tag {
	tag := &domain.Tag{
		OwnerID: ownerID,
		Name:    name,
		Color:   color,
	}
	tag.ID = id.MustGenerate(id.PrefixTag)
	tag.InitTimestamps()
	return tag
}

func TestCreateTag_AndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag := newTestTag("usr-1", "VIP", "#ff0000")
	require.NoError(t, s.CreateTag(ctx, tag))

	got, err := s.GetTag(ctx, "usr-1", tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP", got.Name)
	assert.Equal(t, "#ff0000", got.Color)
}

func TestCreateTag_DuplicateNamePerOwner(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTag(ctx, newTestTag("usr-1", "VIP", "#ff0000")))

	// Same owner, name compared case-insensitively.
	assert.ErrorIs(t, s.CreateTag(ctx, newTestTag("usr-1", "vip", "#00ff00")), ErrTagExists)

	// Different owner is fine.
	require.NoError(t, s.CreateTag(ctx, newTestTag("usr-2", "VIP", "#ff0000")))
}

func TestGetTagByName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag := newTestTag("usr-1", "Leads", "#3B82F6")
	require.NoError(t, s.CreateTag(ctx, tag))

	got, err := s.GetTagByName(ctx, "usr-1", "  LEADS ")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)

	_, err = s.GetTagByName(ctx, "usr-2", "Leads")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestListTags_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := newTestTag("usr-1", "Old", "#111111")
	older.CreatedAt = time.Now().Add(-time.Hour)
	older.UpdatedAt = older.CreatedAt
	require.NoError(t, s.CreateTag(ctx, older))

	newer := newTestTag("usr-1", "New", "#222222")
	require.NoError(t, s.CreateTag(ctx, newer))

	tags, err := s.ListTags(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "New", tags[0].Name)
	assert.Equal(t, "Old", tags[1].Name)
}

func TestTagIDSet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := newTestTag("usr-1", "A", "#111111")
	b := newTestTag("usr-1", "B", "#222222")
	require.NoError(t, s.CreateTag(ctx, a))
	require.NoError(t, s.CreateTag(ctx, b))
	require.NoError(t, s.CreateTag(ctx, newTestTag("usr-2", "C", "#333333")))

	ids, err := s.TagIDSet(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{a.ID: true, b.ID: true}, ids)
}

func TestDeleteTag_StripsContactReferences(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag := newTestTag("usr-1", "VIP", "#ff0000")
	keep := newTestTag("usr-1", "Keep", "#00ff00")
	require.NoError(t, s.CreateTag(ctx, tag))
	require.NoError(t, s.CreateTag(ctx, keep))

	c := newTestContact("usr-1", "Ann", "ann@example.com")
	c.TagIDs = []string{tag.ID, keep.ID}
	require.NoError(t, s.CreateContact(ctx, c))

	require.NoError(t, s.DeleteTag(ctx, "usr-1", tag.ID))

	_, err := s.GetTag(ctx, "usr-1", tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)

	got, err := s.GetContact(ctx, "usr-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, got.TagIDs)

	// The name is free for reuse after deletion.
	require.NoError(t, s.CreateTag(ctx, newTestTag("usr-1", "VIP", "#0000ff")))
}

func TestDeleteTag_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.DeleteTag(context.Background(), "usr-1", "tag-missing")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestGetTagsByIDs_SkipsMissing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag := newTestTag("usr-1", "VIP", "#ff0000")
	require.NoError(t, s.CreateTag(ctx, tag))

	tags, err := s.GetTagsByIDs(ctx, "usr-1", []string{tag.ID, "tag-missing"})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)
}
