package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/identity"
)

// stubVerifier maps token strings to fixed claims.
type stubVerifier struct {
	claims map[string]*identity.Claims
}

func (v *stubVerifier) Verify(token string) (*identity.Claims, error) {
	claims, ok := v.claims[token]
	if !ok {
		return nil, domainerrors.Unauthorized("invalid token")
	}
	return claims, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *stubVerifier) {
	t.Helper()
	verifier := &stubVerifier{claims: map[string]*identity.Claims{}}
	return NewAuthService(setupTestStore(t), verifier, testLogger()), verifier
}

func TestSync_CreatesUserOnFirstSight(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{
		Subject:  "auth0|123",
		Email:    "Ann@Example.com",
		Name:     "Ann Larsson",
		Provider: "auth0",
	}

	user, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", user.SubjectID)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann Larsson", user.DisplayName)
	assert.Equal(t, "auth0", user.Provider)
	assert.NotEmpty(t, user.ID)
}

func TestSync_IsIdempotent(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "ann@example.com"}

	first, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)

	second, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSync_UpdatesMutableProfileFields(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "ann@example.com", Name: "Ann"}

	first, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)

	verifier.claims["tok"] = &identity.Claims{
		Subject: "auth0|123",
		Email:   "ann@example.com",
		Name:    "Ann Larsson",
		Picture: "https://img.example/ann.png",
	}
	second, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann Larsson", second.DisplayName)
	assert.Equal(t, "https://img.example/ann.png", second.AvatarURL)
	assert.Equal(t, "auth0|123", second.SubjectID)
}

func TestSync_MergesIntoPlaceholder(t *testing.T) {
	s := setupTestStore(t)
	verifier := &stubVerifier{claims: map[string]*identity.Claims{
		"tok": {Subject: "auth0|123", Email: "ann@example.com"},
	}}
	svc := NewAuthService(s, verifier, testLogger())

	placeholder := &domain.User{Email: "ann@example.com"}
	placeholder.ID = id.MustGenerate(id.PrefixUser)
	placeholder.InitTimestamps()
	require.NoError(t, s.Users.Create(context.Background(), placeholder.ID, placeholder))

	user, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, user.ID)
	assert.Equal(t, "auth0|123", user.SubjectID)
}

func TestSync_FollowsEmailChangeAtProvider(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "old@example.com"}

	first, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)

	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "new@example.com"}
	second, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new@example.com", second.Email)
}

func TestSync_NeverOverwritesLinkedSubject(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "ann@example.com"}

	_, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)

	// A different subject with the same email updates the profile but
	// leaves the existing link intact.
	verifier.claims["tok2"] = &identity.Claims{Subject: "google|999", Email: "ann@example.com"}
	user, err := svc.Sync(context.Background(), "tok2")
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", user.SubjectID)
}

func TestSync_InvalidToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Sync(context.Background(), "bogus")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestSync_TokenWithoutEmail(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123"}

	_, err := svc.Sync(context.Background(), "tok")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestMe_NotFound(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Me(context.Background(), "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.claims["tok"] = &identity.Claims{Subject: "auth0|123", Email: "ann@example.com", Name: "Ann"}

	user, err := svc.Sync(context.Background(), "tok")
	require.NoError(t, err)

	name := "Ann L."
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		DisplayName: &name,
		Preferences: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann L.", updated.DisplayName)
	assert.Equal(t, map[string]any{"theme": "dark"}, updated.Preferences)
	assert.Equal(t, "ann@example.com", updated.Email)
}
