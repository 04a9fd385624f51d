package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/store"
)

// TagService orchestrates per-user tag operations.
type TagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// Create creates a tag for the owner.
// Name is unique per owner, compared case-insensitively. An omitted color
// falls back to the default.
func (s *TagService) Create(ctx context.Context, ownerID, name, color string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("tag name is required")
	}
	if color == "" {
		color = domain.DefaultTagColor
	}

	tag := &domain.Tag{
		OwnerID: ownerID,
		Name:    name,
		Color:   color,
	}
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}
	tag.ID = tagID
	tag.InitTimestamps()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if domainerrors.Is(err, store.ErrTagExists) {
			return nil, domainerrors.AlreadyExists("a tag with this name already exists")
		}
		return nil, err
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "owner_id", ownerID, "name", tag.Name)
	return tag, nil
}

// List returns all the owner's tags, newest first.
func (s *TagService) List(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, ownerID)
}

// Delete removes a tag and strips it from the owner's contacts.
func (s *TagService) Delete(ctx context.Context, ownerID, tagID string) error {
	if err := s.store.DeleteTag(ctx, ownerID, tagID); err != nil {
		if domainerrors.Is(err, store.ErrTagNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return err
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "owner_id", ownerID)
	return nil
}
