package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/model"
	"github.com/sakif/vcard-backend/internal/repository"
)

// VCardRepo persists the vCard aggregate and its child tables against the
// shared pool.
type VCardRepo struct {
	conn *sql.DB
}

// compile-time check that *VCardRepo implements repository.VCardRepository
var _ repository.VCardRepository = (*VCardRepo)(nil)

// ========== vCard root ==========

// CreateVCard inserts the aggregate root. The UNIQUE constraint on user_id
// backs up the service's one-vCard-per-user check at the storage level.
func (r *VCardRepo) CreateVCard(ctx context.Context, card *model.VCard) error {
	card.ID = xid.New().String()
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO vcards (id, user_id, name, job_title, company_name, heading, description, video_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.UserID,
		card.Name,
		card.JobTitle,
		card.CompanyName,
		card.Heading,
		card.Description,
		card.VideoURL,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating vcard: %w", err)
	}

	return nil
}

// GetVCardByUserID retrieves the vCard owned by the given user.
//
// This is THE lookup of the app: every aggregate read, every child operation
// and every ownership check starts by resolving the caller's vCard through
// the unique user_id column. Child collections are NOT loaded here — the
// service composes the aggregate from the List* methods so each caller loads
// only what it needs.
func (r *VCardRepo) GetVCardByUserID(ctx context.Context, userID string) (*model.VCard, error) {
	var c model.VCard

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, job_title, company_name, heading, description, video_url, created_at, updated_at
		 FROM vcards WHERE user_id = ?`,
		userID,
	).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.JobTitle,
		&c.CompanyName,
		&c.Heading,
		&c.Description,
		&c.VideoURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("vCard")
		}
		return nil, fmt.Errorf("sqlite: getting vcard for user %s: %w", userID, err)
	}

	return &c, nil
}

// UpdateVCard writes the full row back. Partial-update semantics live in the
// service (fetch, merge provided fields, save) — by the time the row gets
// here it's complete.
func (r *VCardRepo) UpdateVCard(ctx context.Context, card *model.VCard) error {
	card.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE vcards
		 SET name = ?, job_title = ?, company_name = ?, heading = ?, description = ?, video_url = ?, updated_at = ?
		 WHERE id = ?`,
		card.Name,
		card.JobTitle,
		card.CompanyName,
		card.Heading,
		card.Description,
		card.VideoURL,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating vcard %s: %w", card.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("vCard")
	}

	return nil
}

// ========== Contact details ==========

func (r *VCardRepo) CreateContact(ctx context.Context, contact *model.ContactDetail) error {
	contact.ID = xid.New().String()
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO contact_details (id, vcard_id, type, value, label, is_primary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID,
		contact.VCardID,
		string(contact.Type),
		contact.Value,
		contact.Label,
		contact.IsPrimary,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating contact detail: %w", err)
	}

	return nil
}

func (r *VCardRepo) GetContactByID(ctx context.Context, id string) (*model.ContactDetail, error) {
	var c model.ContactDetail

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, vcard_id, type, value, label, is_primary, created_at, updated_at
		 FROM contact_details WHERE id = ?`,
		id,
	).Scan(
		&c.ID, &c.VCardID, &c.Type, &c.Value, &c.Label, &c.IsPrimary,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Contact detail")
		}
		return nil, fmt.Errorf("sqlite: getting contact detail %s: %w", id, err)
	}

	return &c, nil
}

// ListContacts returns all contact details of a vCard, newest first.
func (r *VCardRepo) ListContacts(ctx context.Context, vcardID string) ([]model.ContactDetail, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, vcard_id, type, value, label, is_primary, created_at, updated_at
		 FROM contact_details
		 WHERE vcard_id = ?
		 ORDER BY created_at DESC`,
		vcardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing contact details: %w", err)
	}
	defer rows.Close()

	contacts := []model.ContactDetail{}
	for rows.Next() {
		var c model.ContactDetail
		if err := rows.Scan(
			&c.ID, &c.VCardID, &c.Type, &c.Value, &c.Label, &c.IsPrimary,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning contact detail row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating contact details: %w", err)
	}

	return contacts, nil
}

func (r *VCardRepo) UpdateContact(ctx context.Context, contact *model.ContactDetail) error {
	contact.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE contact_details
		 SET type = ?, value = ?, label = ?, is_primary = ?, updated_at = ?
		 WHERE id = ?`,
		string(contact.Type),
		contact.Value,
		contact.Label,
		contact.IsPrimary,
		contact.UpdatedAt,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating contact detail %s: %w", contact.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Contact detail")
	}

	return nil
}

func (r *VCardRepo) DeleteContact(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM contact_details WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting contact detail %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Contact detail")
	}

	return nil
}

// ========== Social links ==========

func (r *VCardRepo) CreateSocialLink(ctx context.Context, link *model.SocialLink) error {
	link.ID = xid.New().String()
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO social_links (id, vcard_id, platform, url, username, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID,
		link.VCardID,
		string(link.Platform),
		link.URL,
		link.Username,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating social link: %w", err)
	}

	return nil
}

func (r *VCardRepo) GetSocialLinkByID(ctx context.Context, id string) (*model.SocialLink, error) {
	var l model.SocialLink

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, vcard_id, platform, url, username, created_at, updated_at
		 FROM social_links WHERE id = ?`,
		id,
	).Scan(
		&l.ID, &l.VCardID, &l.Platform, &l.URL, &l.Username,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Social link")
		}
		return nil, fmt.Errorf("sqlite: getting social link %s: %w", id, err)
	}

	return &l, nil
}

// ListSocialLinks returns all social links of a vCard, newest first.
func (r *VCardRepo) ListSocialLinks(ctx context.Context, vcardID string) ([]model.SocialLink, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, vcard_id, platform, url, username, created_at, updated_at
		 FROM social_links
		 WHERE vcard_id = ?
		 ORDER BY created_at DESC`,
		vcardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing social links: %w", err)
	}
	defer rows.Close()

	links := []model.SocialLink{}
	for rows.Next() {
		var l model.SocialLink
		if err := rows.Scan(
			&l.ID, &l.VCardID, &l.Platform, &l.URL, &l.Username,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning social link row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating social links: %w", err)
	}

	return links, nil
}

func (r *VCardRepo) UpdateSocialLink(ctx context.Context, link *model.SocialLink) error {
	link.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE social_links
		 SET platform = ?, url = ?, username = ?, updated_at = ?
		 WHERE id = ?`,
		string(link.Platform),
		link.URL,
		link.Username,
		link.UpdatedAt,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating social link %s: %w", link.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Social link")
	}

	return nil
}

func (r *VCardRepo) DeleteSocialLink(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM social_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting social link %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Social link")
	}

	return nil
}

// ========== Web links ==========

func (r *VCardRepo) CreateWebLink(ctx context.Context, link *model.WebLink) error {
	link.ID = xid.New().String()
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO web_links (id, vcard_id, title, url, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID,
		link.VCardID,
		link.Title,
		link.URL,
		link.Order,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating web link: %w", err)
	}

	return nil
}

func (r *VCardRepo) GetWebLinkByID(ctx context.Context, id string) (*model.WebLink, error) {
	var l model.WebLink

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, vcard_id, title, url, position, created_at, updated_at
		 FROM web_links WHERE id = ?`,
		id,
	).Scan(
		&l.ID, &l.VCardID, &l.Title, &l.URL, &l.Order,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Web link")
		}
		return nil, fmt.Errorf("sqlite: getting web link %s: %w", id, err)
	}

	return &l, nil
}

// ListWebLinks returns all web links of a vCard ordered by position ascending.
// Ties break by id ascending — xid values sort by creation time, so links with
// the same position keep their insertion order.
func (r *VCardRepo) ListWebLinks(ctx context.Context, vcardID string) ([]model.WebLink, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, vcard_id, title, url, position, created_at, updated_at
		 FROM web_links
		 WHERE vcard_id = ?
		 ORDER BY position ASC, id ASC`,
		vcardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing web links: %w", err)
	}
	defer rows.Close()

	links := []model.WebLink{}
	for rows.Next() {
		var l model.WebLink
		if err := rows.Scan(
			&l.ID, &l.VCardID, &l.Title, &l.URL, &l.Order,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning web link row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating web links: %w", err)
	}

	return links, nil
}

func (r *VCardRepo) UpdateWebLink(ctx context.Context, link *model.WebLink) error {
	link.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE web_links
		 SET title = ?, url = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		link.Title,
		link.URL,
		link.Order,
		link.UpdatedAt,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating web link %s: %w", link.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Web link")
	}

	return nil
}

func (r *VCardRepo) DeleteWebLink(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM web_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting web link %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Web link")
	}

	return nil
}
