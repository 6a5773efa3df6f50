package support

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS support_notifications (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	user_type  TEXT NOT NULL,
	status     TEXT NOT NULL,
	title      TEXT NOT NULL,
	messages   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

// EnsureSchema creates the notifications table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveNotification inserts n or overwrites the row with the same id. The
// original seq is kept so list order matches first creation.
func (r *repo) SaveNotification(ctx context.Context, n Notification) error {
	msgs, err := json.Marshal(n.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO support_notifications (id, user_id, user_type, status, title, messages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_type  = EXCLUDED.user_type,
			status     = EXCLUDED.status,
			title      = EXCLUDED.title,
			messages   = EXCLUDED.messages,
			updated_at = now()
		WHERE support_notifications.status <> 'resolved'
	`,
		n.ID,
		n.UserID,
		string(n.UserType),
		string(n.Status),
		n.Title,
		msgs,
		n.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	return nil
}

func (r *repo) ListNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, user_type, status, title, messages, created_at
		FROM support_notifications
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n        Notification
			userType string
			status   string
			msgs     []byte
		)
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&userType,
			&status,
			&n.Title,
			&msgs,
			&n.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if err := json.Unmarshal(msgs, &n.Messages); err != nil {
			return nil, fmt.Errorf("decode messages of %s: %w", n.ID, err)
		}
		n.UserType = UserType(userType)
		n.Status = Status(status)
		out = append(out, n)
	}

	return out, rows.Err()
}
