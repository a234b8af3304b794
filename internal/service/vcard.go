package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/model"
	"github.com/sakif/vcard-backend/internal/repository"
)

// Validation bounds for vCard payloads, matching the limits the API clients
// were built against.
const (
	MaxVCardNameLength    = 100
	MaxJobTitleLength     = 100
	MaxCompanyNameLength  = 100
	MaxHeadingLength      = 255
	MaxContactValueLength = 500
	MaxContactLabelLength = 50
	MaxUsernameLength     = 100
	MaxWebTitleLength     = 200
)

// VCardService orchestrates the vCard aggregate: the root profile plus its
// three child collections, always scoped to the authenticated user.
//
// EVERY operation takes a userID, never a vCard ID, as its entry point. The
// caller's vCard is resolved through the unique user_id mapping, and child
// rows addressed by ID are only touched after the ownership guard confirms
// they hang off that vCard. There is no code path that reads or writes
// another user's data.
type VCardService struct {
	repo   repository.VCardRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewVCardService creates a VCardService.
func NewVCardService(repo repository.VCardRepository, users repository.UserRepository, logger *slog.Logger) *VCardService {
	return &VCardService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// ========== Input DTOs ==========
//
// Create inputs use plain fields (absent optional strings are just empty).
// Update inputs use POINTER fields: nil means "leave unchanged", a non-nil
// pointer (even to an empty string) means "set this". That distinction is
// what makes partial updates a field-wise merge instead of a full overwrite.

// VCardInput is the payload for creating a vCard.
type VCardInput struct {
	Name        string `json:"name"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}

// VCardUpdate is the payload for partially updating a vCard.
type VCardUpdate struct {
	Name        *string `json:"name"`
	JobTitle    *string `json:"jobTitle"`
	CompanyName *string `json:"companyName"`
	Heading     *string `json:"heading"`
	Description *string `json:"description"`
	VideoURL    *string `json:"videoUrl"`
}

// ContactInput is the payload for creating a contact detail.
type ContactInput struct {
	Type      model.ContactType `json:"type"`
	Value     string            `json:"value"`
	Label     string            `json:"label"`
	IsPrimary bool              `json:"isPrimary"`
}

// ContactUpdate is the payload for partially updating a contact detail.
type ContactUpdate struct {
	Type      *model.ContactType `json:"type"`
	Value     *string            `json:"value"`
	Label     *string            `json:"label"`
	IsPrimary *bool              `json:"isPrimary"`
}

// SocialLinkInput is the payload for creating a social link.
type SocialLinkInput struct {
	Platform model.SocialPlatform `json:"platform"`
	URL      string               `json:"url"`
	Username string               `json:"username"`
}

// SocialLinkUpdate is the payload for partially updating a social link.
type SocialLinkUpdate struct {
	Platform *model.SocialPlatform `json:"platform"`
	URL      *string               `json:"url"`
	Username *string               `json:"username"`
}

// WebLinkInput is the payload for creating a web link.
type WebLinkInput struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// WebLinkUpdate is the payload for partially updating a web link.
type WebLinkUpdate struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
	Order *int    `json:"order"`
}

// validWebURL reports whether s parses as an absolute http(s) URL.
// The standard library's url.Parse accepts almost anything, so the scheme
// and host checks do the real work.
func validWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ========== Ownership guard ==========

// authorize is the single authorization gate for child entities.
//
// It resolves the caller's vCard (NotFound "vCard not found" if they have
// none), fetches the target row by ID, and verifies the row hangs off that
// vCard. A row that does not exist and a row that belongs to SOMEONE ELSE'S
// vCard produce the exact same NotFound — an unauthorized caller learns
// nothing about which IDs exist.
//
// The fetch/owner function pair parameterizes the entity kind, so contact
// details, social links, and web links all flow through this one gate rather
// than three slightly divergent copies.
func authorize[T any](
	ctx context.Context,
	s *VCardService,
	userID, id, resource string,
	fetch func(context.Context, string) (*T, error),
	vcardID func(*T) string,
) (*T, error) {
	card, err := s.repo.GetVCardByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	row, err := fetch(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound(resource)
		}
		return nil, err
	}

	if vcardID(row) != card.ID {
		// Exists, but under another user's vCard. Same signal as missing.
		return nil, apperror.NotFound(resource)
	}

	return row, nil
}

// ownedVCard resolves the caller's vCard, for operations that need the root
// but no child row.
func (s *VCardService) ownedVCard(ctx context.Context, userID string) (*model.VCard, error) {
	return s.repo.GetVCardByUserID(ctx, userID)
}

// loadChildren populates the aggregate's three collections with their
// consumer-facing orderings (contacts and social links newest first, web
// links by order ascending).
func (s *VCardService) loadChildren(ctx context.Context, card *model.VCard) error {
	contacts, err := s.repo.ListContacts(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("loading contacts: %w", err)
	}
	socialLinks, err := s.repo.ListSocialLinks(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("loading social links: %w", err)
	}
	webLinks, err := s.repo.ListWebLinks(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("loading web links: %w", err)
	}

	card.Contacts = contacts
	card.SocialLinks = socialLinks
	card.WebLinks = webLinks
	return nil
}

// ========== vCard root operations ==========

func validateVCardFields(name, jobTitle, companyName, heading, videoURL string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxVCardNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxVCardNameLength))
	}
	if len(jobTitle) > MaxJobTitleLength {
		return apperror.ValidationFailed("jobTitle",
			fmt.Sprintf("job title must be %d characters or less", MaxJobTitleLength))
	}
	if len(companyName) > MaxCompanyNameLength {
		return apperror.ValidationFailed("companyName",
			fmt.Sprintf("company name must be %d characters or less", MaxCompanyNameLength))
	}
	if len(heading) > MaxHeadingLength {
		return apperror.ValidationFailed("heading",
			fmt.Sprintf("heading must be %d characters or less", MaxHeadingLength))
	}
	if videoURL != "" && !validWebURL(videoURL) {
		return apperror.ValidationFailed("videoUrl", "video URL is not a valid URL")
	}
	return nil
}

// CreateVCard creates the caller's vCard.
// Fails with Conflict if they already have one — a user owns at most one.
func (s *VCardService) CreateVCard(ctx context.Context, userID string, input VCardInput) (*model.VCard, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateVCardFields(input.Name, input.JobTitle, input.CompanyName, input.Heading, input.VideoURL); err != nil {
		return nil, err
	}

	_, err := s.repo.GetVCardByUserID(ctx, userID)
	if err == nil {
		return nil, apperror.Conflict("User already has a vCard")
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("service/vcard: checking existing vcard: %w", err)
	}

	card := &model.VCard{
		UserID:      userID,
		Name:        input.Name,
		JobTitle:    input.JobTitle,
		CompanyName: input.CompanyName,
		Heading:     input.Heading,
		Description: input.Description,
		VideoURL:    input.VideoURL,
	}
	if err := s.repo.CreateVCard(ctx, card); err != nil {
		s.logger.Error("failed to create vcard",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/vcard: creating vcard: %w", err)
	}

	s.logger.Info("vcard created",
		slog.String("id", card.ID),
		slog.String("userID", userID),
	)

	// A fresh vCard has no children yet — eager-load them anyway so the
	// response carries empty arrays, not nulls.
	card.Contacts = []model.ContactDetail{}
	card.SocialLinks = []model.SocialLink{}
	card.WebLinks = []model.WebLink{}
	return card, nil
}

// GetVCard returns the caller's aggregate with all children loaded.
func (s *VCardService) GetVCard(ctx context.Context, userID string) (*model.VCard, error) {
	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, card); err != nil {
		return nil, fmt.Errorf("service/vcard: %w", err)
	}
	return card, nil
}

// GetCompleteVCard is GetVCard plus the owner's public identity embedded —
// the payload the public preview page renders.
func (s *VCardService) GetCompleteVCard(ctx context.Context, userID string) (*model.VCard, error) {
	card, err := s.GetVCard(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/vcard: loading owner: %w", err)
	}
	public := user.Public()
	card.User = &public

	return card, nil
}

// UpdateVCard applies a partial update to the caller's vCard: only non-nil
// fields of the update are written, everything else keeps its stored value.
// Returns the refreshed aggregate.
func (s *VCardService) UpdateVCard(ctx context.Context, userID string, update VCardUpdate) (*model.VCard, error) {
	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		card.Name = strings.TrimSpace(*update.Name)
	}
	if update.JobTitle != nil {
		card.JobTitle = *update.JobTitle
	}
	if update.CompanyName != nil {
		card.CompanyName = *update.CompanyName
	}
	if update.Heading != nil {
		card.Heading = *update.Heading
	}
	if update.Description != nil {
		card.Description = *update.Description
	}
	if update.VideoURL != nil {
		card.VideoURL = *update.VideoURL
	}

	if err := validateVCardFields(card.Name, card.JobTitle, card.CompanyName, card.Heading, card.VideoURL); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateVCard(ctx, card); err != nil {
		s.logger.Error("failed to update vcard",
			slog.String("id", card.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/vcard: updating vcard: %w", err)
	}

	s.logger.Info("vcard updated", slog.String("id", card.ID))

	if err := s.loadChildren(ctx, card); err != nil {
		return nil, fmt.Errorf("service/vcard: %w", err)
	}
	return card, nil
}

// ========== Contact details ==========

func validateContactFields(typ model.ContactType, value, label string) error {
	if !typ.Valid() {
		return apperror.ValidationFailed("type", "contact type must be MOBILE, EMAIL, or ADDRESS")
	}
	if value == "" {
		return apperror.ValidationFailed("value", "value is required")
	}
	if len(value) > MaxContactValueLength {
		return apperror.ValidationFailed("value",
			fmt.Sprintf("value must be %d characters or less", MaxContactValueLength))
	}
	if len(label) > MaxContactLabelLength {
		return apperror.ValidationFailed("label",
			fmt.Sprintf("label must be %d characters or less", MaxContactLabelLength))
	}
	return nil
}

// AddContact inserts a contact detail under the caller's vCard.
func (s *VCardService) AddContact(ctx context.Context, userID string, input ContactInput) (*model.ContactDetail, error) {
	input.Value = strings.TrimSpace(input.Value)
	if err := validateContactFields(input.Type, input.Value, input.Label); err != nil {
		return nil, err
	}

	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}

	contact := &model.ContactDetail{
		VCardID:   card.ID,
		Type:      input.Type,
		Value:     input.Value,
		Label:     input.Label,
		IsPrimary: input.IsPrimary,
	}
	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("service/vcard: creating contact detail: %w", err)
	}

	s.logger.Info("contact detail added",
		slog.String("id", contact.ID),
		slog.String("vcardID", card.ID),
	)
	return contact, nil
}

// GetContacts lists the caller's contact details, newest first.
func (s *VCardService) GetContacts(ctx context.Context, userID string) ([]model.ContactDetail, error) {
	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.repo.ListContacts(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("service/vcard: listing contact details: %w", err)
	}
	return contacts, nil
}

// UpdateContact applies a partial update to one of the caller's contact
// details, after the ownership guard clears it.
func (s *VCardService) UpdateContact(ctx context.Context, userID, contactID string, update ContactUpdate) (*model.ContactDetail, error) {
	contact, err := authorize(ctx, s, userID, contactID, "Contact detail",
		s.repo.GetContactByID,
		func(c *model.ContactDetail) string { return c.VCardID })
	if err != nil {
		return nil, err
	}

	if update.Type != nil {
		contact.Type = *update.Type
	}
	if update.Value != nil {
		contact.Value = strings.TrimSpace(*update.Value)
	}
	if update.Label != nil {
		contact.Label = *update.Label
	}
	if update.IsPrimary != nil {
		contact.IsPrimary = *update.IsPrimary
	}

	if err := validateContactFields(contact.Type, contact.Value, contact.Label); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("service/vcard: updating contact detail: %w", err)
	}

	s.logger.Info("contact detail updated", slog.String("id", contact.ID))
	return contact, nil
}

// DeleteContact removes one of the caller's contact details.
func (s *VCardService) DeleteContact(ctx context.Context, userID, contactID string) error {
	contact, err := authorize(ctx, s, userID, contactID, "Contact detail",
		s.repo.GetContactByID,
		func(c *model.ContactDetail) string { return c.VCardID })
	if err != nil {
		return err
	}

	if err := s.repo.DeleteContact(ctx, contact.ID); err != nil {
		return fmt.Errorf("service/vcard: deleting contact detail: %w", err)
	}

	s.logger.Info("contact detail deleted", slog.String("id", contact.ID))
	return nil
}

// ========== Social links ==========

func validateSocialLinkFields(platform model.SocialPlatform, linkURL, username string) error {
	if !platform.Valid() {
		return apperror.ValidationFailed("platform", "platform is not a supported social platform")
	}
	if !validWebURL(linkURL) {
		return apperror.ValidationFailed("url", "url is not a valid URL")
	}
	if len(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	return nil
}

// AddSocialLink inserts a social link under the caller's vCard.
func (s *VCardService) AddSocialLink(ctx context.Context, userID string, input SocialLinkInput) (*model.SocialLink, error) {
	if err := validateSocialLinkFields(input.Platform, input.URL, input.Username); err != nil {
		return nil, err
	}

	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}

	link := &model.SocialLink{
		VCardID:  card.ID,
		Platform: input.Platform,
		URL:      input.URL,
		Username: input.Username,
	}
	if err := s.repo.CreateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/vcard: creating social link: %w", err)
	}

	s.logger.Info("social link added",
		slog.String("id", link.ID),
		slog.String("platform", string(link.Platform)),
	)
	return link, nil
}

// GetSocialLinks lists the caller's social links, newest first.
func (s *VCardService) GetSocialLinks(ctx context.Context, userID string) ([]model.SocialLink, error) {
	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListSocialLinks(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("service/vcard: listing social links: %w", err)
	}
	return links, nil
}

// UpdateSocialLink applies a partial update to one of the caller's social links.
func (s *VCardService) UpdateSocialLink(ctx context.Context, userID, linkID string, update SocialLinkUpdate) (*model.SocialLink, error) {
	link, err := authorize(ctx, s, userID, linkID, "Social link",
		s.repo.GetSocialLinkByID,
		func(l *model.SocialLink) string { return l.VCardID })
	if err != nil {
		return nil, err
	}

	if update.Platform != nil {
		link.Platform = *update.Platform
	}
	if update.URL != nil {
		link.URL = *update.URL
	}
	if update.Username != nil {
		link.Username = *update.Username
	}

	if err := validateSocialLinkFields(link.Platform, link.URL, link.Username); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/vcard: updating social link: %w", err)
	}

	s.logger.Info("social link updated", slog.String("id", link.ID))
	return link, nil
}

// DeleteSocialLink removes one of the caller's social links.
func (s *VCardService) DeleteSocialLink(ctx context.Context, userID, linkID string) error {
	link, err := authorize(ctx, s, userID, linkID, "Social link",
		s.repo.GetSocialLinkByID,
		func(l *model.SocialLink) string { return l.VCardID })
	if err != nil {
		return err
	}

	if err := s.repo.DeleteSocialLink(ctx, link.ID); err != nil {
		return fmt.Errorf("service/vcard: deleting social link: %w", err)
	}

	s.logger.Info("social link deleted", slog.String("id", link.ID))
	return nil
}

// ========== Web links ==========

func validateWebLinkFields(title, linkURL string, order int) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxWebTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxWebTitleLength))
	}
	if !validWebURL(linkURL) {
		return apperror.ValidationFailed("url", "url is not a valid URL")
	}
	if order < 0 {
		return apperror.ValidationFailed("order", "order must not be negative")
	}
	return nil
}

// AddWebLink inserts a web link under the caller's vCard. Order defaults to 0
// when the payload omits it; display ordering is order ascending with ties
// kept in insertion order.
func (s *VCardService) AddWebLink(ctx context.Context, userID string, input WebLinkInput) (*model.WebLink, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateWebLinkFields(input.Title, input.URL, input.Order); err != nil {
		return nil, err
	}

	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}

	link := &model.WebLink{
		VCardID: card.ID,
		Title:   input.Title,
		URL:     input.URL,
		Order:   input.Order,
	}
	if err := s.repo.CreateWebLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/vcard: creating web link: %w", err)
	}

	s.logger.Info("web link added",
		slog.String("id", link.ID),
		slog.String("vcardID", card.ID),
	)
	return link, nil
}

// GetWebLinks lists the caller's web links ordered by their order field.
func (s *VCardService) GetWebLinks(ctx context.Context, userID string) ([]model.WebLink, error) {
	card, err := s.ownedVCard(ctx, userID)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListWebLinks(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("service/vcard: listing web links: %w", err)
	}
	return links, nil
}

// UpdateWebLink applies a partial update to one of the caller's web links.
func (s *VCardService) UpdateWebLink(ctx context.Context, userID, linkID string, update WebLinkUpdate) (*model.WebLink, error) {
	link, err := authorize(ctx, s, userID, linkID, "Web link",
		s.repo.GetWebLinkByID,
		func(l *model.WebLink) string { return l.VCardID })
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		link.Title = strings.TrimSpace(*update.Title)
	}
	if update.URL != nil {
		link.URL = *update.URL
	}
	if update.Order != nil {
		link.Order = *update.Order
	}

	if err := validateWebLinkFields(link.Title, link.URL, link.Order); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWebLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/vcard: updating web link: %w", err)
	}

	s.logger.Info("web link updated", slog.String("id", link.ID))
	return link, nil
}

// DeleteWebLink removes one of the caller's web links.
func (s *VCardService) DeleteWebLink(ctx context.Context, userID, linkID string) error {
	link, err := authorize(ctx, s, userID, linkID, "Web link",
		s.repo.GetWebLinkByID,
		func(l *model.WebLink) string { return l.VCardID })
	if err != nil {
		return err
	}

	if err := s.repo.DeleteWebLink(ctx, link.ID); err != nil {
		return fmt.Errorf("service/vcard: deleting web link: %w", err)
	}

	s.logger.Info("web link deleted", slog.String("id", link.ID))
	return nil
}
