package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/muhammadheryan/contact-manager/model"
)

var (
	// ErrInvalidForm is returned by Submit when the draft fails validation; no request is sent.
	ErrInvalidForm = errors.New("contact form has invalid fields")
	// ErrSubmitInProgress is returned while an earlier Submit is still waiting on the service.
	ErrSubmitInProgress = errors.New("contact form is already submitting")
)

// FormController keeps the draft of a new contact and submits it once every
// field passes the same rules the service enforces.
type FormController struct {
	client *Client
	list   *ListPresenter

	mu         sync.Mutex
	draft      model.ContactRequest
	errors     map[string]string
	alert      *Alert
	submitting bool
}

// NewFormController returns a controller that adds created contacts to list.
// list may be nil.
func NewFormController(c *Client, list *ListPresenter) *FormController {
	return &FormController{
		client: c,
		list:   list,
		errors: map[string]string{},
	}
}

// SetField updates one draft field and clears its pending error.
func (f *FormController) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case "name":
		f.draft.Name = value
	case "email":
		f.draft.Email = value
	case "phone":
		f.draft.Phone = value
	case "message":
		f.draft.Message = value
	default:
		return fmt.Errorf("unknown contact field %q", name)
	}
	delete(f.errors, name)
	return nil
}

func (f *FormController) Draft() model.ContactRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns the first failure per field from the last validation.
func (f *FormController) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *FormController) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.validateLocked()
	return ok
}

// Submit validates the draft and, when valid, creates the contact. On
// success the draft is cleared and the new record prepended to the list.
func (f *FormController) Submit(ctx context.Context) (*model.ContactEntity, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	req, ok := f.validateLocked()
	if !ok {
		f.alert = &Alert{Type: AlertError, Message: alertFixErrors}
		f.mu.Unlock()
		return nil, ErrInvalidForm
	}
	f.submitting = true
	f.mu.Unlock()

	created, err := f.client.Create(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.alert = &Alert{Type: AlertError, Message: alertAddFailed}
		return nil, err
	}

	f.draft = model.ContactRequest{}
	f.errors = map[string]string{}
	f.alert = &Alert{Type: AlertSuccess, Message: alertAdded}
	if f.list != nil {
		f.list.Prepend(*created)
	}
	return created, nil
}

func (f *FormController) Alert() *Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alert
}

func (f *FormController) DismissAlert() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alert = nil
}

// validateLocked checks a normalized copy of the draft; the draft itself keeps
// what the user typed.
func (f *FormController) validateLocked() (model.ContactRequest, bool) {
	req := f.draft
	req.Normalize()
	fields := req.Validate()
	if fields == nil {
		f.errors = map[string]string{}
		return req, true
	}
	f.errors = fields
	return req, false
}
