// Package repository defines the storage interfaces the service layer
// programs against.
//
// The service layer receives these interfaces (not *sqlite.DB), so tests can
// inject in-memory mocks and the storage engine can be swapped without
// touching business logic. The sqlite subpackage is the only place that
// knows SQL.
package repository

import (
	"context"
	"time"

	"github.com/sakif/vcard-backend/internal/model"
)

// UserRepository persists user accounts. Accounts are immutable after
// registration — there are no update or delete methods on purpose.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound if no account uses the address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository persists bearer-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// GetByToken returns the session row as stored — the caller decides
	// whether it's expired. Returns apperror.ErrNotFound for unknown tokens.
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	// Delete removes the session; apperror.ErrNotFound if it never existed.
	Delete(ctx context.Context, token string) error
	// DeleteExpired purges sessions past the given instant and returns
	// how many rows went away. Used only by the background sweeper.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// VCardRepository persists the vCard aggregate root and its three child
// collections. Child reads are scoped by vCard id; reads by child id return
// the row regardless of owner — the ownership check is the service's job.
type VCardRepository interface {
	CreateVCard(ctx context.Context, card *model.VCard) error
	GetVCardByUserID(ctx context.Context, userID string) (*model.VCard, error)
	UpdateVCard(ctx context.Context, card *model.VCard) error

	CreateContact(ctx context.Context, contact *model.ContactDetail) error
	GetContactByID(ctx context.Context, id string) (*model.ContactDetail, error)
	ListContacts(ctx context.Context, vcardID string) ([]model.ContactDetail, error)
	UpdateContact(ctx context.Context, contact *model.ContactDetail) error
	DeleteContact(ctx context.Context, id string) error

	CreateSocialLink(ctx context.Context, link *model.SocialLink) error
	GetSocialLinkByID(ctx context.Context, id string) (*model.SocialLink, error)
	ListSocialLinks(ctx context.Context, vcardID string) ([]model.SocialLink, error)
	UpdateSocialLink(ctx context.Context, link *model.SocialLink) error
	DeleteSocialLink(ctx context.Context, id string) error

	CreateWebLink(ctx context.Context, link *model.WebLink) error
	GetWebLinkByID(ctx context.Context, id string) (*model.WebLink, error)
	ListWebLinks(ctx context.Context, vcardID string) ([]model.WebLink, error)
	UpdateWebLink(ctx context.Context, link *model.WebLink) error
	DeleteWebLink(ctx context.Context, id string) error
}
