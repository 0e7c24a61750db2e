package contact_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	appcontact "github.com/muhammadheryan/contact-manager/application/contact"
	"github.com/muhammadheryan/contact-manager/cmd/config"
	"github.com/muhammadheryan/contact-manager/constant"
	contactmocks "github.com/muhammadheryan/contact-manager/mocks/repository/contact"
	redismocks "github.com/muhammadheryan/contact-manager/mocks/repository/redis"
	txmocks "github.com/muhammadheryan/contact-manager/mocks/repository/tx"
	"github.com/muhammadheryan/contact-manager/model"
	cerr "github.com/muhammadheryan/contact-manager/utils/errors"
	"github.com/stretchr/testify/mock"
)

const (
	knownID   = "01928c3e-7a4b-7c2d-9e1f-0a1b2c3d4e5f"
	missingID = "01928c3e-7a4b-7c2d-9e1f-ffffffffffff"
)

func testConfig() *config.Config {
	return &config.Config{
		Contact: config.ContactConfig{
			LockTTL:  10 * time.Second,
			LockWait: time.Second,
		},
	}
}

func storedContact() *model.ContactEntity {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.ContactEntity{
		ID:        knownID,
		Name:      "Asha Rao",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Message:   "",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

type fields struct {
	config      *config.Config
	txRepo      *txmocks.TxRepository
	contactRepo *contactmocks.ContactRepository
	redisRepo   *redismocks.RedisRepository
}

func newFields(t *testing.T) fields {
	return fields{
		config:      testConfig(),
		txRepo:      txmocks.NewTxRepository(t),
		contactRepo: contactmocks.NewContactRepository(t),
		redisRepo:   redismocks.NewRedisRepository(t),
	}
}

func newApp(f fields) appcontact.ContactApp {
	return appcontact.NewContactApp(f.config, f.txRepo, f.contactRepo, f.redisRepo, nil)
}

func expectLock(f fields, id string) {
	key := constant.ContactLockKeyPrefix + id
	f.redisRepo.
		On("AcquireLock", mock.Anything, key, mock.AnythingOfType("string"), 10*time.Second).
		Return(true, nil).
		Once()
	f.redisRepo.
		On("ReleaseLock", mock.Anything, key, mock.AnythingOfType("string")).
		Return(nil).
		Once()
}

func assertErrorType(t *testing.T, err error, want constant.ErrorType) cerr.CustomError {
	t.Helper()
	var ce cerr.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want CustomError", err)
	}
	if ce.ErrorCode() != constant.ErrorTypeCode[want] {
		t.Fatalf("error code = %s (%v), want %s", ce.ErrorCode(), ce, constant.ErrorTypeCode[want])
	}
	return ce
}

func TestContactApp_ListContacts(t *testing.T) {
	newer := storedContact()
	newer.ID = "01928c3e-7a4b-7c2d-9e1f-000000000002"
	newer.CreatedAt = newer.CreatedAt.Add(time.Minute)
	older := storedContact()

	tests := []struct {
		name     string
		mockCall func(f fields)
		want     []model.ContactEntity
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: repository order is kept",
			mockCall: func(f fields) {
				f.contactRepo.On("List", mock.Anything).Return([]model.ContactEntity{*newer, *older}, nil).Once()
			},
			want: []model.ContactEntity{*newer, *older},
		},
		{
			name: "success: nil list becomes empty",
			mockCall: func(f fields) {
				f.contactRepo.On("List", mock.Anything).Return(nil, nil).Once()
			},
			want: []model.ContactEntity{},
		},
		{
			name: "error: repository List returns error",
			mockCall: func(f fields) {
				f.contactRepo.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrFetchContacts,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			got, err := newApp(f).ListContacts(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListContacts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrorType(t, err, tt.errCode)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ListContacts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContactApp_GetContact(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		mockCall func(f fields)
		want     *model.ContactEntity
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: get contact by id",
			id:   knownID,
			mockCall: func(f fields) {
				f.contactRepo.On("Get", mock.Anything, knownID).Return(storedContact(), nil).Once()
			},
			want: storedContact(),
		},
		{
			name: "error: unknown id",
			id:   missingID,
			mockCall: func(f fields) {
				f.contactRepo.On("Get", mock.Anything, missingID).Return(nil, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name:    "error: malformed id never reaches the store",
			id:      "not-an-id",
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name: "error: repository Get returns error",
			id:   knownID,
			mockCall: func(f fields) {
				f.contactRepo.On("Get", mock.Anything, knownID).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrFetchContact,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			got, err := newApp(f).GetContact(context.Background(), tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetContact() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrorType(t, err, tt.errCode)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("GetContact() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContactApp_CreateContact(t *testing.T) {
	tests := []struct {
		name       string
		req        *model.ContactRequest
		mockCall   func(f fields)
		want       *model.ContactEntity
		wantErr    bool
		errCode    constant.ErrorType
		wantFields []string
	}{
		{
			name: "success: message defaults to empty",
			req:  &model.ContactRequest{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
			mockCall: func(f fields) {
				f.contactRepo.
					On("Insert", mock.Anything, mock.MatchedBy(func(c *model.ContactEntity) bool {
						return c.Name == "Asha Rao" && c.Email == "asha@example.com" && c.Phone == "9876543210" && c.Message == ""
					})).
					Return(nil).
					Once()
			},
			want: &model.ContactEntity{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
		},
		{
			name: "success: fields are trimmed and email lower-cased",
			req:  &model.ContactRequest{Name: "  Asha Rao ", Email: " Asha@Example.COM", Phone: "9876543210 ", Message: "  hello  "},
			mockCall: func(f fields) {
				f.contactRepo.On("Insert", mock.Anything, mock.AnythingOfType("*model.ContactEntity")).Return(nil).Once()
			},
			want: &model.ContactEntity{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", Message: "hello"},
		},
		{
			name:    "error: missing phone fails the pre-check",
			req:     &model.ContactRequest{Name: "Asha Rao", Email: "asha@example.com"},
			wantErr: true,
			errCode: constant.ErrMissingRequiredField,
		},
		{
			name:       "error: every invalid field is reported",
			req:        &model.ContactRequest{Name: "A", Email: "bad", Phone: "123"},
			wantErr:    true,
			errCode:    constant.ErrValidation,
			wantFields: []string{"email", "name", "phone"},
		},
		{
			name:       "error: blank name passes the pre-check but fails validation",
			req:        &model.ContactRequest{Name: "   ", Email: "asha@example.com", Phone: "9876543210"},
			wantErr:    true,
			errCode:    constant.ErrValidation,
			wantFields: []string{"name"},
		},
		{
			name: "error: repository Insert returns error",
			req:  &model.ContactRequest{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
			mockCall: func(f fields) {
				f.contactRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrCreateContact,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			got, err := newApp(f).CreateContact(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateContact() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				ce := assertErrorType(t, err, tt.errCode)
				if tt.wantFields != nil {
					var gotFields []string
					for _, k := range []string{"email", "message", "name", "phone"} {
						if _, ok := ce.FieldErrors()[k]; ok {
							gotFields = append(gotFields, k)
						}
					}
					if !reflect.DeepEqual(gotFields, tt.wantFields) {
						t.Fatalf("field errors = %v, want fields %v", ce.FieldErrors(), tt.wantFields)
					}
				}
				return
			}

			if _, err := uuid.Parse(got.ID); err != nil {
				t.Fatalf("ID = %q is not a uuid: %v", got.ID, err)
			}
			if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
				t.Fatalf("timestamps = %v / %v, want equal and set", got.CreatedAt, got.UpdatedAt)
			}
			gotFields := model.ContactEntity{Name: got.Name, Email: got.Email, Phone: got.Phone, Message: got.Message}
			if !reflect.DeepEqual(&gotFields, tt.want) {
				t.Fatalf("CreateContact() = %+v, want %+v", gotFields, tt.want)
			}
		})
	}
}

func TestContactApp_UpdateContact(t *testing.T) {
	validReq := func() *model.ContactRequest {
		return &model.ContactRequest{Name: "Asha R", Email: "asha.r@example.com", Phone: "8765432109", Message: "call later"}
	}

	tests := []struct {
		name     string
		id       string
		req      *model.ContactRequest
		cfg      *config.Config
		mockCall func(f fields)
		want     *model.ContactEntity
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: all fields replaced",
			id:   knownID,
			req:  validReq(),
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.contactRepo.
					On("UpdateTx", mock.Anything, tx, mock.MatchedBy(func(c *model.ContactEntity) bool {
						return c.ID == knownID && c.Name == "Asha R" && c.Message == "call later" && c.UpdatedAt.After(c.CreatedAt)
					})).
					Return(nil).
					Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
			},
			want: &model.ContactEntity{
				ID:        knownID,
				Name:      "Asha R",
				Email:     "asha.r@example.com",
				Phone:     "8765432109",
				Message:   "call later",
				CreatedAt: storedContact().CreatedAt,
			},
		},
		{
			name: "success: lock is retried while held elsewhere",
			id:   knownID,
			req:  validReq(),
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				key := constant.ContactLockKeyPrefix + knownID
				f.redisRepo.On("AcquireLock", mock.Anything, key, mock.Anything, 10*time.Second).Return(false, nil).Once()
				f.redisRepo.On("AcquireLock", mock.Anything, key, mock.Anything, 10*time.Second).Return(true, nil).Once()
				f.redisRepo.On("ReleaseLock", mock.Anything, key, mock.Anything).Return(nil).Once()
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.contactRepo.On("UpdateTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
			},
			want: &model.ContactEntity{
				ID:        knownID,
				Name:      "Asha R",
				Email:     "asha.r@example.com",
				Phone:     "8765432109",
				Message:   "call later",
				CreatedAt: storedContact().CreatedAt,
			},
		},
		{
			name: "error: unknown id is not found even with an invalid payload",
			id:   missingID,
			req:  &model.ContactRequest{Name: "A", Email: "bad", Phone: "1"},
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, missingID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, missingID).Return(nil, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name:    "error: malformed id",
			id:      "42",
			req:     validReq(),
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name: "error: invalid payload leaves the record untouched",
			id:   knownID,
			req:  &model.ContactRequest{Name: "Asha Rao", Email: "asha@example.com", Phone: "1234567890"},
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrValidation,
		},
		{
			name: "error: omitted fields are validated as empty",
			id:   knownID,
			req:  &model.ContactRequest{Name: "Asha Rao"},
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrValidation,
		},
		{
			name: "error: lock cannot be acquired",
			id:   knownID,
			req:  validReq(),
			mockCall: func(f fields) {
				f.redisRepo.On("AcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrUpdateContact,
		},
		{
			name: "error: lock wait times out",
			id:   knownID,
			req:  validReq(),
			cfg: &config.Config{Contact: config.ContactConfig{
				LockTTL:  10 * time.Second,
				LockWait: time.Millisecond,
			}},
			mockCall: func(f fields) {
				f.redisRepo.On("AcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
			},
			wantErr: true,
			errCode: constant.ErrUpdateContact,
		},
		{
			name: "error: repository UpdateTx returns error",
			id:   knownID,
			req:  validReq(),
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.contactRepo.On("UpdateTx", mock.Anything, tx, mock.Anything).Return(errors.New("db down")).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrUpdateContact,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.cfg != nil {
				f.config = tt.cfg
			}
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			got, err := newApp(f).UpdateContact(context.Background(), tt.id, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateContact() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrorType(t, err, tt.errCode)
				return
			}

			if !got.UpdatedAt.After(got.CreatedAt) {
				t.Fatalf("UpdatedAt = %v, want after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
			}
			got.UpdatedAt = time.Time{}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("UpdateContact() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContactApp_DeleteContact(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		mockCall func(f fields)
		want     *model.ContactEntity
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: returns the removed record",
			id:   knownID,
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.contactRepo.On("DeleteTx", mock.Anything, tx, knownID).Return(nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
			},
			want: storedContact(),
		},
		{
			name: "error: unknown id",
			id:   missingID,
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, missingID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, missingID).Return(nil, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name: "error: begin tx fails",
			id:   knownID,
			mockCall: func(f fields) {
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrDeleteContact,
		},
		{
			name: "error: repository DeleteTx returns error",
			id:   knownID,
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}
				expectLock(f, knownID)
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.contactRepo.On("GetForUpdateTx", mock.Anything, tx, knownID).Return(storedContact(), nil).Once()
				f.contactRepo.On("DeleteTx", mock.Anything, tx, knownID).Return(errors.New("db down")).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrDeleteContact,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			got, err := newApp(f).DeleteContact(context.Background(), tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeleteContact() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrorType(t, err, tt.errCode)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DeleteContact() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
