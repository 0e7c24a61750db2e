package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/muhammadheryan/contact-manager/client"
	"github.com/muhammadheryan/contact-manager/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(contacts []model.ContactEntity) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.ID)
	}
	return out
}

func TestListPresenter_LoadOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"b"},{"id":"a"}]`))
	}))
	defer srv.Close()

	list := client.NewListPresenter(client.New(srv.URL))
	require.NoError(t, list.Load(context.Background()))
	require.NoError(t, list.Load(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"b", "a"}, ids(list.Contacts()))
	assert.Equal(t, client.NewestFirst, list.Order())
	assert.Nil(t, list.Alert())
}

func TestListPresenter_LoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Error fetching contacts"}`))
	}))
	defer srv.Close()

	list := client.NewListPresenter(client.New(srv.URL))
	assert.Error(t, list.Load(context.Background()))
	assert.Empty(t, list.Contacts())
	assert.Equal(t, &client.Alert{Type: client.AlertError, Message: "Failed to fetch contacts"}, list.Alert())

	list.DismissAlert()
	assert.Nil(t, list.Alert())
}

func TestListPresenter_ToggleSortReverses(t *testing.T) {
	list := client.NewListPresenter(client.New("http://127.0.0.1:0"))
	for _, id := range []string{"a", "b", "c"} {
		list.Prepend(model.ContactEntity{ID: id})
	}
	require.Equal(t, []string{"c", "b", "a"}, ids(list.Contacts()))
	assert.Equal(t, "Newest First", list.Order().String())

	list.ToggleSort()
	assert.Equal(t, []string{"a", "b", "c"}, ids(list.Contacts()))
	assert.Equal(t, "Oldest First", list.Order().String())

	// new items still land on top; the next toggle is a plain reversal
	list.Prepend(model.ContactEntity{ID: "d"})
	list.ToggleSort()
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids(list.Contacts()))
	assert.Equal(t, client.NewestFirst, list.Order())
}

func TestListPresenter_Delete(t *testing.T) {
	ctx := context.Background()
	c := newStack(t)

	first, err := c.Create(ctx, asha())
	require.NoError(t, err)
	second := asha()
	second.Phone = "9000000002"
	other, err := c.Create(ctx, second)
	require.NoError(t, err)

	list := client.NewListPresenter(c)
	require.NoError(t, list.Load(ctx))
	require.Equal(t, []string{other.ID, first.ID}, ids(list.Contacts()))

	require.NoError(t, list.Delete(ctx, first.ID))
	assert.Equal(t, []string{other.ID}, ids(list.Contacts()))
	assert.Equal(t, &client.Alert{Type: client.AlertSuccess, Message: "Contact deleted"}, list.Alert())

	// already gone on the server: list state is left alone
	list.Prepend(*first)
	assert.Error(t, list.Delete(ctx, first.ID))
	assert.Equal(t, []string{first.ID, other.ID}, ids(list.Contacts()))
	assert.Equal(t, &client.Alert{Type: client.AlertError, Message: "Delete failed"}, list.Alert())
}
