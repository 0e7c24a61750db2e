package model

import (
	"strings"
	"time"

	"github.com/muhammadheryan/contact-manager/constant"
	validatorx "github.com/muhammadheryan/contact-manager/utils/validator"
)

// ContactEntity represents the contacts table entity
type ContactEntity struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ContactRequest is the payload for create and update. Update replaces all
// four fields, so an omitted field is validated as empty.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=50,alphaspace"`
	Email   string `json:"email" validate:"required,emailaddr"`
	Phone   string `json:"phone" validate:"required,mobile_in"`
	Message string `json:"message" validate:"max=500"`
}

// ContactFieldMessages holds the human readable message per "field.rule".
var ContactFieldMessages = map[string]string{
	"name.required":   "Name is required",
	"name.min":        "Name must be at least 2 characters",
	"name.max":        "Name cannot exceed 50 characters",
	"name.alphaspace": "Name must contain letters and spaces only",
	"email.required":  "Email is required",
	"email.emailaddr": "Please enter a valid email",
	"phone.required":  "Phone is required",
	"phone.mobile_in": "Phone must be 10 digits starting with 6-9",
	"message.max":     "Message cannot exceed 500 characters",
}

// HasRequiredFields reports whether name, email and phone were supplied at all.
func (r *ContactRequest) HasRequiredFields() bool {
	return r.Name != "" && r.Email != "" && r.Phone != ""
}

// Normalize trims every field and lower-cases the email.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate runs the contact rules against the request as-is and returns the
// failing fields, or nil when the request is valid.
func (r *ContactRequest) Validate() map[string]string {
	err := validatorx.ValidateStruct(r)
	if err == nil {
		return nil
	}
	fields := validatorx.FieldErrors(err, ContactFieldMessages)
	if len(fields) == 0 {
		return map[string]string{"contact": err.Error()}
	}
	return fields
}

// DeleteContactResponse is returned once a contact has been removed.
type DeleteContactResponse struct {
	Message        string         `json:"message"`
	DeletedContact *ContactEntity `json:"deletedContact"`
}

// NewDeleteContactResponse wraps the removed contact with the confirmation message.
func NewDeleteContactResponse(c *ContactEntity) *DeleteContactResponse {
	return &DeleteContactResponse{
		Message:        constant.ContactDeletedMessage,
		DeletedContact: c,
	}
}

// ContactEvent is published on the message bus after each successful mutation.
type ContactEvent struct {
	Type       constant.ContactEventType `json:"type"`
	ContactID  string                    `json:"contact_id"`
	Name       string                    `json:"name"`
	Email      string                    `json:"email"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// RouteNotFoundResponse is returned for unmatched routes.
type RouteNotFoundResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// APIInfoResponse describes the service at its root path.
type APIInfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
