package model

import "time"

// ContactType enumerates the kinds of contact details a vCard can carry.
//
// WHY A NAMED STRING TYPE?
// A plain string would accept any value. A named type plus a Valid() check
// gives us a closed set without a separate enum table — the string values
// are stored as-is in SQLite and serialized as-is in JSON.
type ContactType string

const (
	ContactMobile  ContactType = "MOBILE"
	ContactEmail   ContactType = "EMAIL"
	ContactAddress ContactType = "ADDRESS"
)

// Valid reports whether t is one of the known contact types.
func (t ContactType) Valid() bool {
	switch t {
	case ContactMobile, ContactEmail, ContactAddress:
		return true
	}
	return false
}

// SocialPlatform enumerates the platforms a social link can point at.
type SocialPlatform string

const (
	PlatformInstagram SocialPlatform = "INSTAGRAM"
	PlatformFacebook  SocialPlatform = "FACEBOOK"
	PlatformLinkedIn  SocialPlatform = "LINKEDIN"
	PlatformTwitter   SocialPlatform = "TWITTER"
	PlatformYouTube   SocialPlatform = "YOUTUBE"
	PlatformTikTok    SocialPlatform = "TIKTOK"
	PlatformGitHub    SocialPlatform = "GITHUB"
	PlatformPinterest SocialPlatform = "PINTEREST"
	PlatformSnapchat  SocialPlatform = "SNAPCHAT"
	PlatformWhatsApp  SocialPlatform = "WHATSAPP"
	PlatformTelegram  SocialPlatform = "TELEGRAM"
	PlatformOther     SocialPlatform = "OTHER"
)

// Valid reports whether p is one of the known platforms.
func (p SocialPlatform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformLinkedIn, PlatformTwitter,
		PlatformYouTube, PlatformTikTok, PlatformGitHub, PlatformPinterest,
		PlatformSnapchat, PlatformWhatsApp, PlatformTelegram, PlatformOther:
		return true
	}
	return false
}

// VCard is the single digital-profile aggregate owned by one user.
// The user_id column is UNIQUE — that constraint is what enforces the
// one-vCard-per-user invariant at the storage level.
//
// Optional text fields use the empty string as "not set" (and omitempty in
// JSON) rather than *string — simpler to work with and safe to display.
type VCard struct {
	ID          string    `json:"id"                    db:"id"`
	UserID      string    `json:"userId"                db:"user_id"`
	Name        string    `json:"name"                  db:"name"`
	JobTitle    string    `json:"jobTitle,omitempty"    db:"job_title"`
	CompanyName string    `json:"companyName,omitempty" db:"company_name"`
	Heading     string    `json:"heading,omitempty"     db:"heading"`
	Description string    `json:"description,omitempty" db:"description"`
	VideoURL    string    `json:"videoUrl,omitempty"    db:"video_url"`
	CreatedAt   time.Time `json:"createdAt"             db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"             db:"updated_at"`

	// Child collections, eagerly loaded on aggregate reads.
	// Always non-nil in API responses so clients see [] rather than null.
	Contacts    []ContactDetail `json:"contacts"`
	SocialLinks []SocialLink    `json:"socialLinks"`
	WebLinks    []WebLink       `json:"webLinks"`

	// User is the owner's public projection, populated only by the
	// "complete" view (GET /vcard/complete).
	User *PublicUser `json:"user,omitempty"`
}

// ContactDetail is one way of reaching the vCard's owner (phone, email, address).
type ContactDetail struct {
	ID        string      `json:"id"              db:"id"`
	VCardID   string      `json:"vCardId"         db:"vcard_id"`
	Type      ContactType `json:"type"            db:"type"`
	Value     string      `json:"value"           db:"value"`
	Label     string      `json:"label,omitempty" db:"label"` // e.g. "Work", "Home"
	IsPrimary bool        `json:"isPrimary"       db:"is_primary"`
	CreatedAt time.Time   `json:"createdAt"       db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt"       db:"updated_at"`
}

// SocialLink points at the owner's profile on a social platform.
type SocialLink struct {
	ID        string         `json:"id"                 db:"id"`
	VCardID   string         `json:"vCardId"            db:"vcard_id"`
	Platform  SocialPlatform `json:"platform"           db:"platform"`
	URL       string         `json:"url"                db:"url"`
	Username  string         `json:"username,omitempty" db:"username"`
	CreatedAt time.Time      `json:"createdAt"          db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt"          db:"updated_at"`
}

// WebLink is an arbitrary titled link on the card. Consumer-facing order is
// Order ascending; rows with equal Order keep their insertion order.
//
// The column is named "position" because ORDER is an SQL keyword, but the JSON
// field stays "order" to match the API clients.
type WebLink struct {
	ID        string    `json:"id"        db:"id"`
	VCardID   string    `json:"vCardId"   db:"vcard_id"`
	Title     string    `json:"title"     db:"title"`
	URL       string    `json:"url"       db:"url"`
	Order     int       `json:"order"     db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
