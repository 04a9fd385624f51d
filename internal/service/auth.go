// Package service contains the application services sitting between the
// HTTP handlers and the store.
package service

import (
	"context"
	"log/slog"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/identity"
	"github.com/contactdock/contactdock-server/internal/store"
)

// TokenVerifier verifies identity-provider tokens.
// Abstracted so tests can swap the provider dependency.
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// AuthService maps identity-provider tokens to local user records.
type AuthService struct {
	store    *store.Store
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *store.Store, verifier TokenVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// Sync verifies a provider token and upserts the local user record.
//
// Lookup is email-first: an existing record with a matching email wins,
// merging in the subject if the record is a placeholder. Otherwise the
// subject is looked up directly (the provider may have changed the email).
// Only if neither matches is a new record created.
//
// An existing linked subject id is never overwritten.
func (s *AuthService) Sync(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	email := store.NormalizeEmail(claims.Email)
	if email == "" {
		return nil, domainerrors.Unauthorized("token has no email")
	}

	// 1. By email. Placeholders merge here on their first authenticated sync.
	if user, err := s.store.GetUserByEmail(ctx, email); err == nil {
		merged := user.IsPlaceholder()
		if merged {
			user.SubjectID = claims.Subject
		}
		applyProfileClaims(user, claims)
		user.Touch()

		if err := s.updateWithReindexRetry(ctx, user); err != nil {
			return nil, err
		}

		s.logger.Info("user synced",
			"user_id", user.ID,
			"strategy", syncStrategy(merged, "email"),
		)
		return user, nil
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// 2. By subject. Covers an email change at the provider.
	if user, err := s.store.GetUserBySubject(ctx, claims.Subject); err == nil {
		user.Email = email
		applyProfileClaims(user, claims)
		user.Touch()

		if err := s.updateWithReindexRetry(ctx, user); err != nil {
			return nil, err
		}

		s.logger.Info("user synced", "user_id", user.ID, "strategy", "subject")
		return user, nil
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// 3. First sight: create.
	user := &domain.User{
		SubjectID: claims.Subject,
		Email:     email,
	}
	applyProfileClaims(user, claims)

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.createWithReindexRetry(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created from sync", "user_id", user.ID, "provider", user.Provider)
	return user, nil
}

// Authenticate verifies a provider token and resolves the linked local
// user. Unlike Sync it never writes: a valid token for a subject that has
// not synced yet is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserBySubject(ctx, claims.Subject)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("unknown user, sync required")
		}
		return nil, err
	}
	return user, nil
}

// Me returns the user record for the given id.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate holds the user-editable profile fields.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
	Preferences map[string]any
}

// UpdateProfile applies a partial profile update.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.Preferences != nil {
		user.Preferences = update.Preferences
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, user.ID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyProfileClaims copies mutable profile fields from token claims.
func applyProfileClaims(user *domain.User, claims *identity.Claims) {
	if claims.Name != "" {
		user.DisplayName = claims.Name
	}
	if claims.Picture != "" {
		user.AvatarURL = claims.Picture
	}
	if claims.Provider != "" {
		user.Provider = claims.Provider
	}
}

// createWithReindexRetry creates a user, recovering once from a stale
// uniqueness index by rebuilding the user indexes and retrying.
func (s *AuthService) createWithReindexRetry(ctx context.Context, user *domain.User) error {
	err := s.store.Users.Create(ctx, user.ID, user)
	if !domainerrors.Is(err, store.ErrAlreadyExists) {
		return err
	}

	s.logger.Warn("user create hit uniqueness violation, reindexing and retrying once",
		"user_id", user.ID, "error", err)
	if reindexErr := s.store.ReindexUsers(ctx); reindexErr != nil {
		return reindexErr
	}
	return s.store.Users.Create(ctx, user.ID, user)
}

// updateWithReindexRetry is the update counterpart of createWithReindexRetry.
func (s *AuthService) updateWithReindexRetry(ctx context.Context, user *domain.User) error {
	err := s.store.Users.Update(ctx, user.ID, user)
	if !domainerrors.Is(err, store.ErrAlreadyExists) {
		return err
	}

	s.logger.Warn("user update hit uniqueness violation, reindexing and retrying once",
		"user_id", user.ID, "error", err)
	if reindexErr := s.store.ReindexUsers(ctx); reindexErr != nil {
		return reindexErr
	}
	return s.store.Users.Update(ctx, user.ID, user)
}

func syncStrategy(merged bool, base string) string {
	if merged {
		return "placeholder-merge"
	}
	return base
}
