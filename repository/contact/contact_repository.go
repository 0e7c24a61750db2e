package contact

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/muhammadheryan/contact-manager/model"
)

type SQL struct {
	conn *sqlx.DB
}

type ContactRepository interface {
	Insert(ctx context.Context, data *model.ContactEntity) error
	Get(ctx context.Context, id string) (*model.ContactEntity, error)
	List(ctx context.Context) ([]model.ContactEntity, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.ContactEntity, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, data *model.ContactEntity) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error
	Ping(ctx context.Context) error
}

func NewContactRepository(conn *sqlx.DB) ContactRepository {
	return &SQL{conn: conn}
}

const (
	insertContactQuery = `INSERT INTO contacts (id, name, email, phone, message, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectContactBase  = `SELECT id, name, email, phone, message, created_at, updated_at FROM contacts`
	getContactQuery    = selectContactBase + ` WHERE id = ?`
	listContactsQuery  = selectContactBase + ` ORDER BY created_at DESC, id DESC`
	updateContactQuery = `UPDATE contacts SET name = ?, email = ?, phone = ?, message = ?, updated_at = ? WHERE id = ?`
	deleteContactQuery = `DELETE FROM contacts WHERE id = ?`
)

func (s *SQL) Insert(ctx context.Context, data *model.ContactEntity) error {
	_, err := s.conn.ExecContext(ctx, s.conn.Rebind(insertContactQuery),
		data.ID, data.Name, data.Email, data.Phone, data.Message, data.CreatedAt, data.UpdatedAt)
	return err
}

func (s *SQL) Get(ctx context.Context, id string) (*model.ContactEntity, error) {
	var entity model.ContactEntity
	if err := s.conn.QueryRowxContext(ctx, s.conn.Rebind(getContactQuery), id).StructScan(&entity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return normalizeTimes(&entity), nil
}

func (s *SQL) List(ctx context.Context) ([]model.ContactEntity, error) {
	rows, err := s.conn.QueryxContext(ctx, listContactsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ContactEntity, 0)
	for rows.Next() {
		var it model.ContactEntity
		if err := rows.StructScan(&it); err != nil {
			return nil, err
		}
		items = append(items, *normalizeTimes(&it))
	}
	return items, rows.Err()
}

// GetForUpdateTx reads a contact inside tx, locking its row where the driver
// supports it. sqlite has no row locks; its single writer serializes instead.
func (s *SQL) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.ContactEntity, error) {
	query := getContactQuery
	if tx.DriverName() != "sqlite3" {
		query += " FOR UPDATE"
	}

	var entity model.ContactEntity
	if err := tx.QueryRowxContext(ctx, tx.Rebind(query), id).StructScan(&entity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return normalizeTimes(&entity), nil
}

func (s *SQL) UpdateTx(ctx context.Context, tx *sqlx.Tx, data *model.ContactEntity) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(updateContactQuery),
		data.Name, data.Email, data.Phone, data.Message, data.UpdatedAt, data.ID)
	return err
}

func (s *SQL) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	result, err := tx.ExecContext(ctx, tx.Rebind(deleteContactQuery), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// expectOneRow reports sql.ErrNoRows when a write matched nothing.
func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizeTimes(e *model.ContactEntity) *model.ContactEntity {
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e
}
