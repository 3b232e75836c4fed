package transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines transcript persistence operations.
type Repository interface {
	CreateSession(ctx context.Context, title string) (*Session, error)
	// EnsureSession creates the session if it does not exist. Missing
	// sessions are healed by creation, not treated as a client error.
	EnsureSession(ctx context.Context, id string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteSession(ctx context.Context, id string) error

	AddMessage(ctx context.Context, sessionID, sender, content string) error
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreateSession(ctx context.Context, title string) (*Session, error) {
	if title == "" {
		title = DefaultTitle
	}
	id := "session_" + uuid.New().String()

	session := &Session{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, title) VALUES ($1, $2)
		 RETURNING id, title, created_at`,
		id, title,
	).Scan(&session.ID, &session.Title, &session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return session, nil
}

func (r *postgresRepository) EnsureSession(ctx context.Context, id string) (*Session, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, title) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		id, DefaultTitle,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting session %s: %w", id, err)
	}
	return r.GetSession(ctx, id)
}

func (r *postgresRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	session := &Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, created_at FROM sessions WHERE id = $1`,
		id,
	).Scan(&session.ID, &session.Title, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return session, nil
}

func (r *postgresRepository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, created_at FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *postgresRepository) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return fmt.Errorf("updating title for session %s: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) DeleteSession(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

func (r *postgresRepository) AddMessage(ctx context.Context, sessionID, sender, content string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (session_id, sender, content) VALUES ($1, $2, $3)`,
		sessionID, sender, content,
	)
	if err != nil {
		return fmt.Errorf("inserting message for session %s: %w", sessionID, err)
	}
	return nil
}

func (r *postgresRepository) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, sender, content, created_at
		 FROM messages WHERE session_id = $1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
