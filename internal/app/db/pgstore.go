package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
)

// PostgresStore is the client-mode store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already migrated pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ board.Store = (*PostgresStore)(nil)

func (s *PostgresStore) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (username, password_hash, message_count, has_profile, profile_visible,
			gender, birth_date, email, about_me, avatar_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.Username, u.PasswordHash, u.MessageCount, u.HasProfile, u.Profile.Visible,
		u.Profile.Gender, u.Profile.BirthDate, u.Profile.Email, u.Profile.AboutMe, u.AvatarKey, u.CreatedAt,
	)
	if IsUniqueViolation(err) {
		return board.ErrDuplicate
	}
	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT username FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, username string, hasProfile bool, p user.Profile) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET has_profile = $2, profile_visible = $3, gender = $4, birth_date = $5, email = $6, about_me = $7
		WHERE username = $1`,
		username, hasProfile, p.Visible, p.Gender, p.BirthDate, p.Email, p.AboutMe,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return board.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateAvatar(ctx context.Context, username, key string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET avatar_key = $2 WHERE username = $1`, username, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return board.ErrNotFound
	}
	return nil
}

// InsertMessage locks the counter owner's row with SELECT ... FOR UPDATE for
// the life of the transaction.
func (s *PostgresStore) InsertMessage(ctx context.Context, d board.Draft) (*board.Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	owner := d.CounterOwner()

	var n int
	err = tx.QueryRow(ctx, `SELECT message_count FROM users WHERE username = $1 FOR UPDATE`, owner).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read counter: %w", err)
	}

	if !d.IsReply() {
		n++
		if _, err := tx.Exec(ctx, `UPDATE users SET message_count = $2 WHERE username = $1`, owner, n); err != nil {
			return nil, fmt.Errorf("write counter: %w", err)
		}
	}

	m := board.Message{
		ID:        board.MessageID(owner, n),
		CreatedAt: d.CreatedAt,
		Author:    d.Author,
		Tag:       d.Tag,
		IsReply:   d.IsReply(),
		RepliedTo: d.RepliedTo,
		Contents:  d.Contents,
		Private:   d.Private,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (message_id, created_at, author, tag, is_reply, replied_to, contents, is_private)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		m.ID, m.CreatedAt, m.Author, m.Tag, m.IsReply, m.RepliedTo, m.Contents, m.Private,
	).Scan(&m.Seq)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) MessagesByID(ctx context.Context, id string) ([]board.Message, error) {
	return s.queryMessages(ctx, `SELECT `+messageColumns+` FROM messages WHERE message_id = $1 ORDER BY seq`, id)
}

func (s *PostgresStore) MessagesByAuthor(ctx context.Context, author string, includePrivate bool, limit int) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE author = $1 AND ($2 OR NOT is_private)
		ORDER BY created_at DESC, seq DESC
		LIMIT $3`,
		author, includePrivate, limit,
	)
}

func (s *PostgresStore) MessagesByTag(ctx context.Context, tag string) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE tag = $1 AND NOT is_private
		ORDER BY created_at DESC, seq DESC`,
		tag,
	)
}

func (s *PostgresStore) RepliesTo(ctx context.Context, username string, limit int) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE is_reply AND replied_to = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`,
		username, limit,
	)
}

func (s *PostgresStore) TagCounts(ctx context.Context) ([]board.TagCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tag, COUNT(*) FROM messages
		WHERE tag <> '' AND NOT is_private
		GROUP BY tag
		ORDER BY MIN(seq)`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (board.TagCount, error) {
		var t board.TagCount
		err := row.Scan(&t.Tag, &t.Count)
		return t, err
	})
}

func (s *PostgresStore) Subscribe(ctx context.Context, subscriber, target string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (subscriber, target) VALUES ($1, $2)
		ON CONFLICT (subscriber, target) DO NOTHING`,
		subscriber, target,
	)
	return err
}

func (s *PostgresStore) Unsubscribe(ctx context.Context, subscriber, target string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM subscriptions WHERE subscriber = $1 AND target = $2`, subscriber, target)
	return err
}

func (s *PostgresStore) Subscriptions(ctx context.Context, subscriber string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT target FROM subscriptions WHERE subscriber = $1 ORDER BY id`, subscriber)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]board.Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (board.Message, error) {
		return scanMessage(row)
	})
}
