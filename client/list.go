package client

import (
	"context"
	"sync"

	"github.com/muhammadheryan/contact-manager/model"
)

type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

func (o SortOrder) String() string {
	if o == OldestFirst {
		return "Oldest First"
	}
	return "Newest First"
}

// ListPresenter holds the displayed contact list. It fetches once and then
// only mutates its local copy as the user adds, deletes or re-sorts.
type ListPresenter struct {
	client *Client

	mu       sync.Mutex
	loaded   bool
	contacts []model.ContactEntity
	order    SortOrder
	alert    *Alert
}

func NewListPresenter(c *Client) *ListPresenter {
	return &ListPresenter{
		client:   c,
		contacts: []model.ContactEntity{},
	}
}

// Load fetches the list from the service the first time it is called.
func (p *ListPresenter) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.loaded {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	contacts, err := p.client.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.alert = &Alert{Type: AlertError, Message: alertFetchFailed}
		return err
	}
	p.contacts = contacts
	p.order = NewestFirst
	p.loaded = true
	return nil
}

// Contacts returns a copy of the list in display order.
func (p *ListPresenter) Contacts() []model.ContactEntity {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ContactEntity, len(p.contacts))
	copy(out, p.contacts)
	return out
}

func (p *ListPresenter) Order() SortOrder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order
}

// Prepend puts c at the head of the displayed list whatever the sort order.
func (p *ListPresenter) Prepend(c model.ContactEntity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contacts = append([]model.ContactEntity{c}, p.contacts...)
}

// Delete asks the service to remove id and drops it locally once confirmed.
// A failed request leaves the list untouched.
func (p *ListPresenter) Delete(ctx context.Context, id string) error {
	if _, err := p.client.Delete(ctx, id); err != nil {
		p.setAlert(AlertError, alertDeleteFailed)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.contacts[:0]
	for _, c := range p.contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	p.contacts = kept
	p.alert = &Alert{Type: AlertSuccess, Message: alertDeleted}
	return nil
}

// ToggleSort reverses the held list and flips the order label.
func (p *ListPresenter) ToggleSort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, j := 0, len(p.contacts)-1; i < j; i, j = i+1, j-1 {
		p.contacts[i], p.contacts[j] = p.contacts[j], p.contacts[i]
	}
	if p.order == NewestFirst {
		p.order = OldestFirst
	} else {
		p.order = NewestFirst
	}
}

func (p *ListPresenter) Alert() *Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alert
}

func (p *ListPresenter) DismissAlert() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = nil
}

func (p *ListPresenter) setAlert(t AlertType, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = &Alert{Type: t, Message: msg}
}
