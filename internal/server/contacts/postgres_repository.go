package contacts

import (
	"context"
	"fmt"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/dbx"
)

type PostgresRepository struct {
	conn ConnProvider
}

func NewPostgresRepository(conn ConnProvider) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*Contact, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query :=
		`SELECT id, user_id, name, phone_number, created_at FROM contacts
		 WHERE user_id = $1
		 ORDER BY created_at
		 `

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]*Contact, 0)
	for rows.Next() {
		c := &Contact{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning contact row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO contacts (id, user_id, name, phone_number)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err = db.QueryRowContext(ctx, query,
		contact.ID, contact.UserID, contact.Name, contact.PhoneNumber).Scan(&contact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return contact, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, contactID string) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, userID, contactID string) ([]*Message, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if err := ownsContact(ctx, db, userID, contactID); err != nil {
		return nil, err
	}

	query :=
		`SELECT id, contact_id, body, sent_by, sent_at FROM messages
		 WHERE contact_id = $1
		 ORDER BY sent_at
		 `

	rows, err := db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]*Message, 0)
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ContactID, &m.Body, &m.SentBy, &m.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) AddMessage(ctx context.Context, userID string, msg *Message) (*Message, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	// the ownership check and the insert must see the same state: a
	// concurrent contact deletion in between would leave an orphan row
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := ownsContact(ctx, tx, userID, msg.ContactID); err != nil {
			return err
		}

		query :=
			`INSERT INTO messages (id, contact_id, body, sent_by)
			 VALUES ($1, $2, $3, $4)
			 RETURNING sent_at
			 `

		if err := tx.QueryRowContext(ctx, query,
			msg.ID, msg.ContactID, msg.Body, msg.SentBy).Scan(&msg.SentAt); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ownsContact verifies the contact belongs to userID; other accounts'
// contacts are indistinguishable from missing ones.
func ownsContact(ctx context.Context, db dbx.DBTX, userID, contactID string) error {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2)`,
		contactID, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if !exists {
		return common.ErrorNotFound
	}
	return nil
}
