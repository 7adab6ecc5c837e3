package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
)

// SQLiteStore is the embedded-mode store backed by a single database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an already migrated database opened with sqliteDSN.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ board.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, message_count, has_profile, profile_visible,
			gender, birth_date, email, about_me, avatar_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.MessageCount, u.HasProfile, u.Profile.Visible,
		u.Profile.Gender, u.Profile.BirthDate, u.Profile.Email, u.Profile.AboutMe, u.AvatarKey, u.CreatedAt.UTC(),
	)
	if IsUniqueViolation(err) {
		return board.ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, username string, hasProfile bool, p user.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET has_profile = ?, profile_visible = ?, gender = ?, birth_date = ?, email = ?, about_me = ?
		WHERE username = ?`,
		hasProfile, p.Visible, p.Gender, p.BirthDate, p.Email, p.AboutMe, username,
	)
	return expectOneRow(res, err)
}

func (s *SQLiteStore) UpdateAvatar(ctx context.Context, username, key string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET avatar_key = ? WHERE username = ?`, key, username)
	return expectOneRow(res, err)
}

// InsertMessage relies on the immediate transaction mode of sqliteDSN: the
// database write lock is held from BEGIN, before the counter is read.
func (s *SQLiteStore) InsertMessage(ctx context.Context, d board.Draft) (*board.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	owner := d.CounterOwner()

	var n int
	err = tx.QueryRowContext(ctx, `SELECT message_count FROM users WHERE username = ?`, owner).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, board.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read counter: %w", err)
	}

	if !d.IsReply() {
		n++
		if _, err := tx.ExecContext(ctx, `UPDATE users SET message_count = ? WHERE username = ?`, n, owner); err != nil {
			return nil, fmt.Errorf("write counter: %w", err)
		}
	}

	m := board.Message{
		ID:        board.MessageID(owner, n),
		CreatedAt: d.CreatedAt.UTC(),
		Author:    d.Author,
		Tag:       d.Tag,
		IsReply:   d.IsReply(),
		RepliedTo: d.RepliedTo,
		Contents:  d.Contents,
		Private:   d.Private,
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (message_id, created_at, author, tag, is_reply, replied_to, contents, is_private)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CreatedAt, m.Author, m.Tag, m.IsReply, m.RepliedTo, m.Contents, m.Private,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if m.Seq, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) MessagesByID(ctx context.Context, id string) ([]board.Message, error) {
	return s.queryMessages(ctx, `SELECT `+messageColumns+` FROM messages WHERE message_id = ? ORDER BY seq`, id)
}

func (s *SQLiteStore) MessagesByAuthor(ctx context.Context, author string, includePrivate bool, limit int) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE author = ? AND (? OR NOT is_private)
		ORDER BY created_at DESC, seq DESC
		LIMIT ?`,
		author, includePrivate, limit,
	)
}

func (s *SQLiteStore) MessagesByTag(ctx context.Context, tag string) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE tag = ? AND NOT is_private
		ORDER BY created_at DESC, seq DESC`,
		tag,
	)
}

func (s *SQLiteStore) RepliesTo(ctx context.Context, username string, limit int) ([]board.Message, error) {
	return s.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE is_reply AND replied_to = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?`,
		username, limit,
	)
}

func (s *SQLiteStore) TagCounts(ctx context.Context) ([]board.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) FROM messages
		WHERE tag <> '' AND NOT is_private
		GROUP BY tag
		ORDER BY MIN(seq)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []board.TagCount
	for rows.Next() {
		var t board.TagCount
		if err := rows.Scan(&t.Tag, &t.Count); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *SQLiteStore) Subscribe(ctx context.Context, subscriber, target string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (subscriber, target) VALUES (?, ?)
		ON CONFLICT (subscriber, target) DO NOTHING`,
		subscriber, target,
	)
	return err
}

func (s *SQLiteStore) Unsubscribe(ctx context.Context, subscriber, target string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE subscriber = ? AND target = ?`, subscriber, target)
	return err
}

func (s *SQLiteStore) Subscriptions(ctx context.Context, subscriber string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT target FROM subscriptions WHERE subscriber = ? ORDER BY id`, subscriber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]board.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []board.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}
