package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadheryan/contact-manager/cmd/config"
	"github.com/muhammadheryan/contact-manager/constant"
	"github.com/muhammadheryan/contact-manager/model"
	contactrepo "github.com/muhammadheryan/contact-manager/repository/contact"
	redisrepo "github.com/muhammadheryan/contact-manager/repository/redis"
	txrepo "github.com/muhammadheryan/contact-manager/repository/tx"
	"github.com/muhammadheryan/contact-manager/thirdparty/rabbitmq"
	"github.com/muhammadheryan/contact-manager/utils/errors"
	"github.com/muhammadheryan/contact-manager/utils/logger"
	"go.uber.org/zap"
)

const lockRetryInterval = 50 * time.Millisecond

type ContactApp interface {
	ListContacts(ctx context.Context) ([]model.ContactEntity, error)
	GetContact(ctx context.Context, id string) (*model.ContactEntity, error)
	CreateContact(ctx context.Context, req *model.ContactRequest) (*model.ContactEntity, error)
	UpdateContact(ctx context.Context, id string, req *model.ContactRequest) (*model.ContactEntity, error)
	DeleteContact(ctx context.Context, id string) (*model.ContactEntity, error)
}

type contactAppImpl struct {
	config      *config.Config
	txRepo      txrepo.TxRepository
	contactRepo contactrepo.ContactRepository
	redisRepo   redisrepo.Repository
	publisher   *rabbitmq.Publisher
	locks       *keyedMutex
	now         func() time.Time
}

func NewContactApp(config *config.Config, txRepo txrepo.TxRepository, contactRepo contactrepo.ContactRepository, redisRepo redisrepo.Repository, publisher *rabbitmq.Publisher) ContactApp {
	return &contactAppImpl{
		config:      config,
		txRepo:      txRepo,
		contactRepo: contactRepo,
		redisRepo:   redisRepo,
		publisher:   publisher,
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *contactAppImpl) ListContacts(ctx context.Context) ([]model.ContactEntity, error) {
	items, err := s.contactRepo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("[ListContacts] err contactRepo.List", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrFetchContacts)
	}
	if items == nil {
		items = []model.ContactEntity{}
	}
	return items, nil
}

func (s *contactAppImpl) GetContact(ctx context.Context, id string) (*model.ContactEntity, error) {
	if !isContactID(id) {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	contact, err := s.contactRepo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("[GetContact] err contactRepo.Get", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrFetchContact)
	}
	if contact == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}
	return contact, nil
}

func (s *contactAppImpl) CreateContact(ctx context.Context, req *model.ContactRequest) (*model.ContactEntity, error) {
	// cheap pre-check, before normalization or schema rules
	if !req.HasRequiredFields() {
		return nil, errors.SetCustomError(constant.ErrMissingRequiredField)
	}

	req.Normalize()
	if fields := req.Validate(); fields != nil {
		return nil, errors.SetValidationError(fields)
	}

	id, err := uuid.NewV7()
	if err != nil {
		logger.FromContext(ctx).Error("[CreateContact] err uuid.NewV7", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrCreateContact)
	}

	now := s.now()
	contact := &model.ContactEntity{
		ID:        id.String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.contactRepo.Insert(ctx, contact); err != nil {
		logger.FromContext(ctx).Error("[CreateContact] err contactRepo.Insert", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrCreateContact)
	}

	s.publish(ctx, constant.ContactCreated, contact)
	return contact, nil
}

func (s *contactAppImpl) UpdateContact(ctx context.Context, id string, req *model.ContactRequest) (*model.ContactEntity, error) {
	if !isContactID(id) {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	unlock, err := s.lockContact(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("[UpdateContact] err lockContact", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrUpdateContact)
	}
	defer unlock()

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("[UpdateContact] begin tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrUpdateContact)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	contact, err := s.contactRepo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		logger.FromContext(ctx).Error("[UpdateContact] err contactRepo.GetForUpdateTx", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrUpdateContact)
	}
	// existence is checked before the payload: a missing id is 404 whatever the body
	if contact == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	req.Normalize()
	if fields := req.Validate(); fields != nil {
		return nil, errors.SetValidationError(fields)
	}

	updated := *contact
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.Message = req.Message
	updated.UpdatedAt = s.now()

	if err := s.contactRepo.UpdateTx(ctx, tx, &updated); err != nil {
		logger.FromContext(ctx).Error("[UpdateContact] err contactRepo.UpdateTx", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrUpdateContact)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.FromContext(ctx).Error("[UpdateContact] commit tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrUpdateContact)
	}
	committed = true

	s.publish(ctx, constant.ContactUpdated, &updated)
	return &updated, nil
}

func (s *contactAppImpl) DeleteContact(ctx context.Context, id string) (*model.ContactEntity, error) {
	if !isContactID(id) {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	unlock, err := s.lockContact(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("[DeleteContact] err lockContact", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrDeleteContact)
	}
	defer unlock()

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("[DeleteContact] begin tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrDeleteContact)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	contact, err := s.contactRepo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		logger.FromContext(ctx).Error("[DeleteContact] err contactRepo.GetForUpdateTx", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrDeleteContact)
	}
	if contact == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	if err := s.contactRepo.DeleteTx(ctx, tx, id); err != nil {
		logger.FromContext(ctx).Error("[DeleteContact] err contactRepo.DeleteTx", zap.String("id", id), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrDeleteContact)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.FromContext(ctx).Error("[DeleteContact] commit tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrDeleteContact)
	}
	committed = true

	s.publish(ctx, constant.ContactDeleted, contact)
	return contact, nil
}

// lockContact serializes mutations of one contact: first within this process,
// then across instances through Redis. The returned func releases both.
func (s *contactAppImpl) lockContact(ctx context.Context, id string) (func(), error) {
	unlockLocal := s.locks.Lock(id)

	key := constant.ContactLockKeyPrefix + id
	token := uuid.NewString()
	deadline := time.Now().Add(s.config.Contact.LockWait)

	for {
		ok, err := s.redisRepo.AcquireLock(ctx, key, token, s.config.Contact.LockTTL)
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			unlockLocal()
			return nil, fmt.Errorf("acquire %s: timed out after %s", key, s.config.Contact.LockWait)
		}

		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		// release even if the request context is already cancelled
		if err := s.redisRepo.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.FromContext(ctx).Warn("[lockContact] err redisRepo.ReleaseLock", zap.String("key", key), zap.String("error", err.Error()))
		}
		unlockLocal()
	}, nil
}

func (s *contactAppImpl) publish(ctx context.Context, eventType constant.ContactEventType, contact *model.ContactEntity) {
	if s.publisher == nil {
		return
	}

	ev := model.ContactEvent{
		Type:       eventType,
		ContactID:  contact.ID,
		Name:       contact.Name,
		Email:      contact.Email,
		OccurredAt: s.now(),
	}
	if err := s.publisher.PublishContactEvent(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("[publish] err publisher.PublishContactEvent",
			zap.String("type", string(eventType)),
			zap.String("id", contact.ID),
			zap.String("error", err.Error()))
	}
}

// isContactID reports whether id could have been issued by CreateContact.
func isContactID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
