package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/store"
)

// List parameter bounds.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ContactSearcher finds contact IDs matching a substring search.
// Implemented by the Bleve index; when nil the service falls back to an
// in-memory scan.
type ContactSearcher interface {
	FindContactIDs(ctx context.Context, ownerID, text string) ([]string, error)
}

// ContactService orchestrates per-user contact operations.
type ContactService struct {
	store    *store.Store
	searcher ContactSearcher
	logger   *slog.Logger
}

// NewContactService creates a new contact service.
// searcher may be nil, in which case searches scan the store directly.
func NewContactService(store *store.Store, searcher ContactSearcher, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:    store,
		searcher: searcher,
		logger:   logger,
	}
}

// ListParams filter and page a contact listing.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	TagIDs []string
}

// ContactWithTags pairs a contact with its resolved tag references.
type ContactWithTags struct {
	Contact *domain.Contact
	Tags    []domain.TagRef
}

// Pagination describes the returned page window.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// ContactPage is one page of a contact listing.
type ContactPage struct {
	Contacts   []ContactWithTags
	Pagination Pagination
}

// List returns a page of the owner's contacts, filtered by search text and
// tag membership, sorted by creation time with most recent first.
func (s *ContactService) List(ctx context.Context, ownerID string, params ListParams) (*ContactPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contacts, err = s.applySearch(ctx, ownerID, contacts, params.Search)
	if err != nil {
		return nil, err
	}

	// Tag filter: at least one of the requested tags (OR semantics).
	if len(params.TagIDs) > 0 {
		filtered := contacts[:0]
		for _, c := range contacts {
			if c.HasAnyTag(params.TagIDs) {
				filtered = append(filtered, c)
			}
		}
		contacts = filtered
	}

	sortContacts(contacts)

	total := len(contacts)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageContacts := contacts[start:end]

	tagRefs, err := s.tagRefMap(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]ContactWithTags, 0, len(pageContacts))
	for _, c := range pageContacts {
		items = append(items, ContactWithTags{
			Contact: c,
			Tags:    resolveTags(c.TagIDs, tagRefs),
		})
	}

	return &ContactPage{
		Contacts: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get returns a single owned contact with resolved tags.
func (s *ContactService) Get(ctx context.Context, ownerID, contactID string) (*ContactWithTags, error) {
	contact, err := s.store.GetContact(ctx, ownerID, contactID)
	if err != nil {
		if domainerrors.Is(err, store.ErrContactNotFound) {
			return nil, domainerrors.NotFound("contact not found")
		}
		return nil, err
	}
	return s.withTags(ctx, contact)
}

// ContactInput holds the fields of a contact create request.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Notes   string
	TagIDs  []string
}

// Create creates a contact for the owner.
func (s *ContactService) Create(ctx context.Context, ownerID string, input ContactInput) (*ContactWithTags, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.Validation("name is required")
	}
	email := store.NormalizeEmail(input.Email)
	if email == "" {
		return nil, domainerrors.Validation("email is required")
	}

	if err := s.validateTagRefs(ctx, ownerID, input.TagIDs); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		OwnerID: ownerID,
		Name:    name,
		Email:   email,
		Phone:   input.Phone,
		Company: input.Company,
		Notes:   input.Notes,
		TagIDs:  input.TagIDs,
	}
	contactID, err := id.Generate(id.PrefixContact)
	if err != nil {
		return nil, err
	}
	contact.ID = contactID
	contact.InitTimestamps()

	if err := s.store.CreateContact(ctx, contact); err != nil {
		if domainerrors.Is(err, store.ErrContactEmailExists) {
			return nil, domainerrors.AlreadyExists("a contact with this email already exists")
		}
		return nil, err
	}

	s.logger.Info("contact created", "contact_id", contact.ID, "owner_id", ownerID)
	return s.withTags(ctx, contact)
}

// ContactUpdate holds a partial contact update. Nil fields are unchanged.
type ContactUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Notes   *string
	TagIDs  []string
}

// Update applies a partial update to an owned contact.
func (s *ContactService) Update(ctx context.Context, ownerID, contactID string, update ContactUpdate) (*ContactWithTags, error) {
	contact, err := s.store.GetContact(ctx, ownerID, contactID)
	if err != nil {
		if domainerrors.Is(err, store.ErrContactNotFound) {
			return nil, domainerrors.NotFound("contact not found")
		}
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domainerrors.Validation("name cannot be blank")
		}
		contact.Name = name
	}
	if update.Email != nil {
		email := store.NormalizeEmail(*update.Email)
		if email == "" {
			return nil, domainerrors.Validation("email cannot be blank")
		}
		contact.Email = email
	}
	if update.Phone != nil {
		contact.Phone = *update.Phone
	}
	if update.Company != nil {
		contact.Company = *update.Company
	}
	if update.Notes != nil {
		contact.Notes = *update.Notes
	}
	if update.TagIDs != nil {
		if err := s.validateTagRefs(ctx, ownerID, update.TagIDs); err != nil {
			return nil, err
		}
		contact.TagIDs = update.TagIDs
	}
	contact.Touch()

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		if domainerrors.Is(err, store.ErrContactEmailExists) {
			return nil, domainerrors.AlreadyExists("a contact with this email already exists")
		}
		if domainerrors.Is(err, store.ErrContactNotFound) {
			return nil, domainerrors.NotFound("contact not found")
		}
		return nil, err
	}

	return s.withTags(ctx, contact)
}

// Delete removes an owned contact.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID string) error {
	if err := s.store.DeleteContact(ctx, ownerID, contactID); err != nil {
		if domainerrors.Is(err, store.ErrContactNotFound) {
			return domainerrors.NotFound("contact not found")
		}
		return err
	}

	s.logger.Info("contact deleted", "contact_id", contactID, "owner_id", ownerID)
	return nil
}

// BulkDelete removes a set of owned contacts, returning the count actually
// deleted. IDs not owned by the caller are skipped silently.
func (s *ContactService) BulkDelete(ctx context.Context, ownerID string, contactIDs []string) (int, error) {
	deleted, err := s.store.DeleteContacts(ctx, ownerID, contactIDs)
	if err != nil {
		return 0, err
	}

	s.logger.Info("contacts bulk deleted",
		"owner_id", ownerID,
		"requested", len(contactIDs),
		"deleted", deleted,
	)
	return deleted, nil
}

// applySearch filters contacts by a case-insensitive substring search over
// name, email, and company.
func (s *ContactService) applySearch(ctx context.Context, ownerID string, contacts []*domain.Contact, text string) ([]*domain.Contact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return contacts, nil
	}

	if s.searcher == nil {
		filtered := contacts[:0]
		for _, c := range contacts {
			if c.MatchesSearch(text) {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil
	}

	ids, err := s.searcher.FindContactIDs(ctx, ownerID, text)
	if err != nil {
		return nil, err
	}
	matched := make(map[string]bool, len(ids))
	for _, id := range ids {
		matched[id] = true
	}

	filtered := contacts[:0]
	for _, c := range contacts {
		if matched[c.ID] {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// validateTagRefs ensures every referenced tag belongs to the owner.
func (s *ContactService) validateTagRefs(ctx context.Context, ownerID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	valid, err := s.store.TagIDSet(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if !valid[tagID] {
			return domainerrors.Validationf("invalid tag reference: %s", tagID)
		}
	}
	return nil
}

// tagRefMap loads all the owner's tags keyed by id.
func (s *ContactService) tagRefMap(ctx context.Context, ownerID string) (map[string]domain.TagRef, error) {
	tags, err := s.store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]domain.TagRef, len(tags))
	for _, t := range tags {
		refs[t.ID] = t.Ref()
	}
	return refs, nil
}

func (s *ContactService) withTags(ctx context.Context, contact *domain.Contact) (*ContactWithTags, error) {
	tags, err := s.store.GetTagsByIDs(ctx, contact.OwnerID, contact.TagIDs)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, t.Ref())
	}
	return &ContactWithTags{Contact: contact, Tags: refs}, nil
}

// resolveTags maps tag ids to resolved references, skipping dangling ids.
func resolveTags(tagIDs []string, refs map[string]domain.TagRef) []domain.TagRef {
	out := make([]domain.TagRef, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if ref, ok := refs[tagID]; ok {
			out = append(out, ref)
		}
	}
	return out
}

// sortContacts orders by creation time descending, tie-broken on id so
// pagination is stable.
func sortContacts(contacts []*domain.Contact) {
	sort.Slice(contacts, func(i, j int) bool {
		if !contacts[i].CreatedAt.Equal(contacts[j].CreatedAt) {
			return contacts[i].CreatedAt.After(contacts[j].CreatedAt)
		}
		return contacts[i].ID > contacts[j].ID
	})
}
