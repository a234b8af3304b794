package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/model"
)

// fakeVCardRepo keeps the aggregate in memory. Child slices preserve insertion
// order; the List methods apply the same orderings the SQLite queries do, so
// the service tests exercise the consumer-facing sort contracts too.
type fakeVCardRepo struct {
	cards    map[string]*model.VCard // keyed by vCard ID
	byUser   map[string]string       // userID → vCard ID
	contacts []*model.ContactDetail
	socials  []*model.SocialLink
	webs     []*model.WebLink
	nextID   int
}

func newFakeVCardRepo() *fakeVCardRepo {
	return &fakeVCardRepo{
		cards:  make(map[string]*model.VCard),
		byUser: make(map[string]string),
	}
}

func (f *fakeVCardRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeVCardRepo) CreateVCard(_ context.Context, card *model.VCard) error {
	card.ID = f.id("vcard")
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now
	stored := *card
	f.cards[card.ID] = &stored
	f.byUser[card.UserID] = card.ID
	return nil
}

func (f *fakeVCardRepo) GetVCardByUserID(_ context.Context, userID string) (*model.VCard, error) {
	cardID, ok := f.byUser[userID]
	if !ok {
		return nil, apperror.NotFound("vCard")
	}
	result := *f.cards[cardID]
	return &result, nil
}

func (f *fakeVCardRepo) UpdateVCard(_ context.Context, card *model.VCard) error {
	if _, ok := f.cards[card.ID]; !ok {
		return apperror.NotFound("vCard")
	}
	card.UpdatedAt = time.Now()
	stored := *card
	f.cards[card.ID] = &stored
	return nil
}

func (f *fakeVCardRepo) CreateContact(_ context.Context, contact *model.ContactDetail) error {
	contact.ID = f.id("contact")
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	stored := *contact
	f.contacts = append(f.contacts, &stored)
	return nil
}

func (f *fakeVCardRepo) GetContactByID(_ context.Context, id string) (*model.ContactDetail, error) {
	for _, c := range f.contacts {
		if c.ID == id {
			result := *c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("Contact detail")
}

func (f *fakeVCardRepo) ListContacts(_ context.Context, vcardID string) ([]model.ContactDetail, error) {
	result := []model.ContactDetail{}
	// Newest first: walk the insertion-ordered slice backwards.
	for i := len(f.contacts) - 1; i >= 0; i-- {
		if f.contacts[i].VCardID == vcardID {
			result = append(result, *f.contacts[i])
		}
	}
	return result, nil
}

func (f *fakeVCardRepo) UpdateContact(_ context.Context, contact *model.ContactDetail) error {
	for i, c := range f.contacts {
		if c.ID == contact.ID {
			contact.UpdatedAt = time.Now()
			stored := *contact
			f.contacts[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("Contact detail")
}

func (f *fakeVCardRepo) DeleteContact(_ context.Context, id string) error {
	for i, c := range f.contacts {
		if c.ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Contact detail")
}

func (f *fakeVCardRepo) CreateSocialLink(_ context.Context, link *model.SocialLink) error {
	link.ID = f.id("social")
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now
	stored := *link
	f.socials = append(f.socials, &stored)
	return nil
}

func (f *fakeVCardRepo) GetSocialLinkByID(_ context.Context, id string) (*model.SocialLink, error) {
	for _, l := range f.socials {
		if l.ID == id {
			result := *l
			return &result, nil
		}
	}
	return nil, apperror.NotFound("Social link")
}

func (f *fakeVCardRepo) ListSocialLinks(_ context.Context, vcardID string) ([]model.SocialLink, error) {
	result := []model.SocialLink{}
	for i := len(f.socials) - 1; i >= 0; i-- {
		if f.socials[i].VCardID == vcardID {
			result = append(result, *f.socials[i])
		}
	}
	return result, nil
}

func (f *fakeVCardRepo) UpdateSocialLink(_ context.Context, link *model.SocialLink) error {
	for i, l := range f.socials {
		if l.ID == link.ID {
			link.UpdatedAt = time.Now()
			stored := *link
			f.socials[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("Social link")
}

func (f *fakeVCardRepo) DeleteSocialLink(_ context.Context, id string) error {
	for i, l := range f.socials {
		if l.ID == id {
			f.socials = append(f.socials[:i], f.socials[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Social link")
}

func (f *fakeVCardRepo) CreateWebLink(_ context.Context, link *model.WebLink) error {
	link.ID = f.id("web")
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now
	stored := *link
	f.webs = append(f.webs, &stored)
	return nil
}

func (f *fakeVCardRepo) GetWebLinkByID(_ context.Context, id string) (*model.WebLink, error) {
	for _, l := range f.webs {
		if l.ID == id {
			result := *l
			return &result, nil
		}
	}
	return nil, apperror.NotFound("Web link")
}

func (f *fakeVCardRepo) ListWebLinks(_ context.Context, vcardID string) ([]model.WebLink, error) {
	result := []model.WebLink{}
	for _, l := range f.webs {
		if l.VCardID == vcardID {
			result = append(result, *l)
		}
	}
	// Order ascending, ties in insertion order.
	sort.SliceStable(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

func (f *fakeVCardRepo) UpdateWebLink(_ context.Context, link *model.WebLink) error {
	for i, l := range f.webs {
		if l.ID == link.ID {
			link.UpdatedAt = time.Now()
			stored := *link
			f.webs[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("Web link")
}

func (f *fakeVCardRepo) DeleteWebLink(_ context.Context, id string) error {
	for i, l := range f.webs {
		if l.ID == id {
			f.webs = append(f.webs[:i], f.webs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Web link")
}

// =========================================================================
// HELPERS
// =========================================================================

func newTestVCardService(t *testing.T) *VCardService {
	t.Helper()
	users := newFakeUserRepo()
	// Seed two accounts so ownership tests have a second caller.
	for _, email := range []string{"a@x.com", "b@x.com"} {
		if err := users.Create(context.Background(), &model.User{
			FullName: "Jane Doe",
			Email:    email,
		}); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
	}
	return NewVCardService(newFakeVCardRepo(), users, testLogger())
}

// The two seeded user IDs, in creation order.
const (
	alice = "user-1"
	bob   = "user-2"
)

func createCard(t *testing.T, svc *VCardService, userID string) *model.VCard {
	t.Helper()
	card, err := svc.CreateVCard(context.Background(), userID, VCardInput{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("CreateVCard() error = %v", err)
	}
	return card
}

func strPtr(s string) *string { return &s }

// =========================================================================
// VCARD ROOT
// =========================================================================

func TestCreateVCard_RoundTrip(t *testing.T) {
	svc := newTestVCardService(t)

	created, err := svc.CreateVCard(context.Background(), alice, VCardInput{
		Name:     "Jane Doe",
		JobTitle: "Engineer",
	})
	if err != nil {
		t.Fatalf("CreateVCard() error = %v", err)
	}
	if created.Contacts == nil || created.SocialLinks == nil || created.WebLinks == nil {
		t.Error("fresh vCard has nil child collections; want empty slices")
	}

	got, err := svc.GetVCard(context.Background(), alice)
	if err != nil {
		t.Fatalf("GetVCard() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetVCard ID = %q, want %q", got.ID, created.ID)
	}
	if got.Name != "Jane Doe" || got.JobTitle != "Engineer" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Contacts) != 0 || len(got.SocialLinks) != 0 || len(got.WebLinks) != 0 {
		t.Errorf("expected empty child collections, got %+v", got)
	}
}

func TestCreateVCard_SecondIsConflict(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	_, err := svc.CreateVCard(context.Background(), alice, VCardInput{Name: "Another"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second CreateVCard error = %v, want ErrConflict", err)
	}

	// A different user is unaffected by Alice's card.
	if _, err := svc.CreateVCard(context.Background(), bob, VCardInput{Name: "Bob"}); err != nil {
		t.Errorf("CreateVCard for second user error = %v", err)
	}
}

func TestCreateVCard_Validation(t *testing.T) {
	svc := newTestVCardService(t)

	tests := []struct {
		name  string
		input VCardInput
	}{
		{"empty name", VCardInput{Name: ""}},
		{"name too long", VCardInput{Name: strings101()}},
		{"bad video URL", VCardInput{Name: "Jane", VideoURL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateVCard(context.Background(), alice, tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func strings101() string {
	s := make([]byte, MaxVCardNameLength+1)
	for i := range s {
		s[i] = 'x'
	}
	return string(s)
}

func TestGetVCard_NoneIsNotFound(t *testing.T) {
	svc := newTestVCardService(t)

	_, err := svc.GetVCard(context.Background(), alice)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateVCard_PartialMerge(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	// Only jobTitle in the payload: name must survive untouched.
	updated, err := svc.UpdateVCard(context.Background(), alice, VCardUpdate{
		JobTitle: strPtr("Staff Engineer"),
	})
	if err != nil {
		t.Fatalf("UpdateVCard() error = %v", err)
	}
	if updated.Name != "Jane Doe" {
		t.Errorf("Name = %q after partial update, want %q", updated.Name, "Jane Doe")
	}
	if updated.JobTitle != "Staff Engineer" {
		t.Errorf("JobTitle = %q, want %q", updated.JobTitle, "Staff Engineer")
	}

	// An explicit empty string clears the field — nil and "" are different.
	updated, err = svc.UpdateVCard(context.Background(), alice, VCardUpdate{
		JobTitle: strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateVCard() error = %v", err)
	}
	if updated.JobTitle != "" {
		t.Errorf("JobTitle = %q, want cleared", updated.JobTitle)
	}
}

func TestUpdateVCard_RejectsInvalidResult(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	_, err := svc.UpdateVCard(context.Background(), alice, VCardUpdate{Name: strPtr("")})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("clearing name: error = %v, want ErrValidation", err)
	}

	// Failed update must not have written anything.
	card, _ := svc.GetVCard(context.Background(), alice)
	if card.Name != "Jane Doe" {
		t.Errorf("Name = %q after rejected update, want %q", card.Name, "Jane Doe")
	}
}

func TestGetCompleteVCard_EmbedsOwner(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	card, err := svc.GetCompleteVCard(context.Background(), alice)
	if err != nil {
		t.Fatalf("GetCompleteVCard() error = %v", err)
	}
	if card.User == nil {
		t.Fatal("complete view has no embedded user")
	}
	if card.User.Email != "a@x.com" {
		t.Errorf("embedded email = %q, want %q", card.User.Email, "a@x.com")
	}

	// The plain view must NOT embed the owner.
	plain, _ := svc.GetVCard(context.Background(), alice)
	if plain.User != nil {
		t.Error("plain view unexpectedly embeds the owner")
	}
}

// =========================================================================
// CONTACT DETAILS
// =========================================================================

func TestAddContact_RequiresVCard(t *testing.T) {
	svc := newTestVCardService(t)

	_, err := svc.AddContact(context.Background(), alice, ContactInput{
		Type:  model.ContactEmail,
		Value: "jane@x.com",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestContacts_ListNewestFirst(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	first, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactMobile, Value: "111",
	})
	second, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactEmail, Value: "jane@x.com",
	})

	contacts, err := svc.GetContacts(context.Background(), alice)
	if err != nil {
		t.Fatalf("GetContacts() error = %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	if contacts[0].ID != second.ID || contacts[1].ID != first.ID {
		t.Errorf("contacts not newest first: got [%s %s]", contacts[0].ID, contacts[1].ID)
	}
}

func TestAddContact_InvalidType(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	_, err := svc.AddContact(context.Background(), alice, ContactInput{
		Type: "CARRIER_PIGEON", Value: "coop 3",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateContact_PartialMerge(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)
	contact, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactMobile, Value: "111", Label: "Work",
	})

	updated, err := svc.UpdateContact(context.Background(), alice, contact.ID, ContactUpdate{
		Value: strPtr("222"),
	})
	if err != nil {
		t.Fatalf("UpdateContact() error = %v", err)
	}
	if updated.Value != "222" {
		t.Errorf("Value = %q, want %q", updated.Value, "222")
	}
	if updated.Label != "Work" || updated.Type != model.ContactMobile {
		t.Errorf("partial update clobbered other fields: %+v", updated)
	}
}

func TestDeleteContact(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)
	contact, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactMobile, Value: "111",
	})

	if err := svc.DeleteContact(context.Background(), alice, contact.ID); err != nil {
		t.Fatalf("DeleteContact() error = %v", err)
	}

	contacts, _ := svc.GetContacts(context.Background(), alice)
	if len(contacts) != 0 {
		t.Errorf("got %d contacts after delete, want 0", len(contacts))
	}

	// Deleting again: the row is gone, so NotFound.
	if err := svc.DeleteContact(context.Background(), alice, contact.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("repeat delete error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// OWNERSHIP GUARD
// =========================================================================
//
// The contract: a row that belongs to another user and a row that does not
// exist produce the SAME NotFound, so probing IDs reveals nothing.

func TestOwnership_CrossUserAccessIsNotFound(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)
	createCard(t, svc, bob)

	contact, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactMobile, Value: "111",
	})
	social, _ := svc.AddSocialLink(context.Background(), alice, SocialLinkInput{
		Platform: model.PlatformGitHub, URL: "https://github.com/jane",
	})
	web, _ := svc.AddWebLink(context.Background(), alice, WebLinkInput{
		Title: "Blog", URL: "https://jane.dev",
	})

	tests := []struct {
		name string
		call func() error
	}{
		{"update contact", func() error {
			_, err := svc.UpdateContact(context.Background(), bob, contact.ID, ContactUpdate{Value: strPtr("999")})
			return err
		}},
		{"delete contact", func() error {
			return svc.DeleteContact(context.Background(), bob, contact.ID)
		}},
		{"update social link", func() error {
			_, err := svc.UpdateSocialLink(context.Background(), bob, social.ID, SocialLinkUpdate{URL: strPtr("https://evil.example")})
			return err
		}},
		{"delete social link", func() error {
			return svc.DeleteSocialLink(context.Background(), bob, social.ID)
		}},
		{"update web link", func() error {
			_, err := svc.UpdateWebLink(context.Background(), bob, web.ID, WebLinkUpdate{Title: strPtr("Hijacked")})
			return err
		}},
		{"delete web link", func() error {
			return svc.DeleteWebLink(context.Background(), bob, web.ID)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, apperror.ErrNotFound) {
				t.Fatalf("error = %v, want ErrNotFound", err)
			}

			// Same message as for a genuinely missing ID.
			missing := svc.DeleteContact(context.Background(), bob, "no-such-id")
			var gotApp, missApp *apperror.AppError
			if errors.As(err, &gotApp) && errors.As(missing, &missApp) {
				if tt.name == "update contact" || tt.name == "delete contact" {
					if gotApp.Message != missApp.Message {
						t.Errorf("foreign-row message %q differs from missing-row message %q",
							gotApp.Message, missApp.Message)
					}
				}
			}
		})
	}

	// Nothing was actually modified.
	contacts, _ := svc.GetContacts(context.Background(), alice)
	if len(contacts) != 1 || contacts[0].Value != "111" {
		t.Errorf("cross-user calls modified data: %+v", contacts)
	}
}

func TestOwnership_CallerWithoutVCard(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)
	contact, _ := svc.AddContact(context.Background(), alice, ContactInput{
		Type: model.ContactMobile, Value: "111",
	})

	// Bob has no vCard at all; the guard fails before the row is even looked at.
	_, err := svc.UpdateContact(context.Background(), bob, contact.ID, ContactUpdate{Value: strPtr("999")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SOCIAL LINKS
// =========================================================================

func TestAddSocialLink_Validation(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	tests := []struct {
		name  string
		input SocialLinkInput
	}{
		{"unknown platform", SocialLinkInput{Platform: "MYSPACE", URL: "https://myspace.com/jane"}},
		{"bad URL", SocialLinkInput{Platform: model.PlatformGitHub, URL: "github.com/jane"}},
		{"empty URL", SocialLinkInput{Platform: model.PlatformGitHub}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddSocialLink(context.Background(), alice, tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSocialLinks_UpdateAndList(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	link, err := svc.AddSocialLink(context.Background(), alice, SocialLinkInput{
		Platform: model.PlatformLinkedIn,
		URL:      "https://linkedin.com/in/jane",
		Username: "jane",
	})
	if err != nil {
		t.Fatalf("AddSocialLink() error = %v", err)
	}

	updated, err := svc.UpdateSocialLink(context.Background(), alice, link.ID, SocialLinkUpdate{
		Username: strPtr("jane-doe"),
	})
	if err != nil {
		t.Fatalf("UpdateSocialLink() error = %v", err)
	}
	if updated.Username != "jane-doe" {
		t.Errorf("Username = %q, want %q", updated.Username, "jane-doe")
	}
	if updated.Platform != model.PlatformLinkedIn {
		t.Errorf("partial update clobbered platform: %q", updated.Platform)
	}

	links, err := svc.GetSocialLinks(context.Background(), alice)
	if err != nil {
		t.Fatalf("GetSocialLinks() error = %v", err)
	}
	if len(links) != 1 || links[0].Username != "jane-doe" {
		t.Errorf("list = %+v, want the updated link", links)
	}
}

// =========================================================================
// WEB LINKS
// =========================================================================

func TestWebLinks_OrderAscending(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	// Insert out of order on purpose.
	for _, order := range []int{2, 0, 1} {
		_, err := svc.AddWebLink(context.Background(), alice, WebLinkInput{
			Title: fmt.Sprintf("Link %d", order),
			URL:   "https://example.com",
			Order: order,
		})
		if err != nil {
			t.Fatalf("AddWebLink(order=%d) error = %v", order, err)
		}
	}

	links, err := svc.GetWebLinks(context.Background(), alice)
	if err != nil {
		t.Fatalf("GetWebLinks() error = %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("got %d web links, want 3", len(links))
	}
	for i, l := range links {
		if l.Order != i {
			t.Errorf("links[%d].Order = %d, want %d", i, l.Order, i)
		}
	}
}

func TestWebLinks_Validation(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	tests := []struct {
		name  string
		input WebLinkInput
	}{
		{"empty title", WebLinkInput{URL: "https://example.com"}},
		{"bad URL", WebLinkInput{Title: "Blog", URL: "ftp://example.com"}},
		{"negative order", WebLinkInput{Title: "Blog", URL: "https://example.com", Order: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddWebLink(context.Background(), alice, tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestWebLinks_UpdateOrder(t *testing.T) {
	svc := newTestVCardService(t)
	createCard(t, svc, alice)

	a, _ := svc.AddWebLink(context.Background(), alice, WebLinkInput{Title: "A", URL: "https://a.example", Order: 0})
	b, _ := svc.AddWebLink(context.Background(), alice, WebLinkInput{Title: "B", URL: "https://b.example", Order: 1})

	newOrder := 5
	if _, err := svc.UpdateWebLink(context.Background(), alice, a.ID, WebLinkUpdate{Order: &newOrder}); err != nil {
		t.Fatalf("UpdateWebLink() error = %v", err)
	}

	links, _ := svc.GetWebLinks(context.Background(), alice)
	if links[0].ID != b.ID || links[1].ID != a.ID {
		t.Errorf("reordering not reflected in list: [%s %s]", links[0].ID, links[1].ID)
	}

	if err := svc.DeleteWebLink(context.Background(), alice, a.ID); err != nil {
		t.Fatalf("DeleteWebLink() error = %v", err)
	}
	links, _ = svc.GetWebLinks(context.Background(), alice)
	if len(links) != 1 || links[0].ID != b.ID {
		t.Errorf("list after delete = %+v, want only B", links)
	}
}
