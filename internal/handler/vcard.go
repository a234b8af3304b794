package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/auth"
	"github.com/sakif/vcard-backend/internal/service"
)

// VCardHandler exposes the vCard aggregate and its three child collections.
//
// Every route here sits behind auth.RequireAuth, so by the time a handler
// runs, the middleware has already resolved the bearer token and put the
// userID in the request context. Handlers never see tokens — only user IDs.
type VCardHandler struct {
	vcards *service.VCardService
	logger *slog.Logger
}

// NewVCardHandler creates a VCardHandler.
func NewVCardHandler(vcards *service.VCardService, logger *slog.Logger) *VCardHandler {
	return &VCardHandler{
		vcards: vcards,
		logger: logger,
	}
}

// userID pulls the authenticated user from the request context. A miss means
// the route was mounted without RequireAuth — a wiring bug, but we answer
// 401 rather than panic.
func (h *VCardHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return "", false
	}
	return id, true
}

// ========== vCard root ==========

// HandleCreateVCard creates the caller's vCard.
//
// HTTP: POST /vcard → 201 aggregate with empty child arrays;
// 409 if the caller already has one.
func (h *VCardHandler) HandleCreateVCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input service.VCardInput
	if !decodeJSON(w, r, &input) {
		return
	}

	card, err := h.vcards.CreateVCard(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// HandleGetVCard returns the caller's aggregate.
//
// HTTP: GET /vcard → 200; 404 if they have no vCard yet.
func (h *VCardHandler) HandleGetVCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	card, err := h.vcards.GetVCard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// HandleGetCompleteVCard returns the aggregate plus the owner's public
// identity — what the public preview renders.
//
// HTTP: GET /vcard/complete
func (h *VCardHandler) HandleGetCompleteVCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	card, err := h.vcards.GetCompleteVCard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// HandleUpdateVCard partially updates the caller's vCard. Fields absent from
// the body keep their stored values.
//
// HTTP: PUT /vcard
func (h *VCardHandler) HandleUpdateVCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var update service.VCardUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	card, err := h.vcards.UpdateVCard(r.Context(), userID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// ========== Contact details ==========

// HandleAddContact — POST /vcard/contacts → 201.
func (h *VCardHandler) HandleAddContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input service.ContactInput
	if !decodeJSON(w, r, &input) {
		return
	}

	contact, err := h.vcards.AddContact(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// HandleGetContacts — GET /vcard/contacts.
func (h *VCardHandler) HandleGetContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	contacts, err := h.vcards.GetContacts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleUpdateContact — PUT /vcard/contacts/{id}.
// 404 for a contact that doesn't exist or isn't the caller's.
func (h *VCardHandler) HandleUpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var update service.ContactUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	contact, err := h.vcards.UpdateContact(r.Context(), userID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleDeleteContact — DELETE /vcard/contacts/{id}.
func (h *VCardHandler) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.vcards.DeleteContact(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Contact detail deleted successfully"})
}

// ========== Social links ==========

// HandleAddSocialLink — POST /vcard/social-links → 201.
func (h *VCardHandler) HandleAddSocialLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input service.SocialLinkInput
	if !decodeJSON(w, r, &input) {
		return
	}

	link, err := h.vcards.AddSocialLink(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleGetSocialLinks — GET /vcard/social-links.
func (h *VCardHandler) HandleGetSocialLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	links, err := h.vcards.GetSocialLinks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleUpdateSocialLink — PUT /vcard/social-links/{id}.
func (h *VCardHandler) HandleUpdateSocialLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var update service.SocialLinkUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	link, err := h.vcards.UpdateSocialLink(r.Context(), userID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// HandleDeleteSocialLink — DELETE /vcard/social-links/{id}.
func (h *VCardHandler) HandleDeleteSocialLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.vcards.DeleteSocialLink(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Social link deleted successfully"})
}

// ========== Web links ==========

// HandleAddWebLink — POST /vcard/web-links → 201.
func (h *VCardHandler) HandleAddWebLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input service.WebLinkInput
	if !decodeJSON(w, r, &input) {
		return
	}

	link, err := h.vcards.AddWebLink(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleGetWebLinks — GET /vcard/web-links. Ordered by the order field.
func (h *VCardHandler) HandleGetWebLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	links, err := h.vcards.GetWebLinks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleUpdateWebLink — PUT /vcard/web-links/{id}.
func (h *VCardHandler) HandleUpdateWebLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var update service.WebLinkUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	link, err := h.vcards.UpdateWebLink(r.Context(), userID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// HandleDeleteWebLink — DELETE /vcard/web-links/{id}.
func (h *VCardHandler) HandleDeleteWebLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.vcards.DeleteWebLink(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Web link deleted successfully"})
}
