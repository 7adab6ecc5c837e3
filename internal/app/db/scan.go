package db

import (
	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
)

const (
	userColumns = `username, password_hash, message_count, has_profile, profile_visible,
		gender, birth_date, email, about_me, avatar_key, created_at`

	messageColumns = `seq, message_id, created_at, author, tag, is_reply, replied_to, contents, is_private`
)

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.Username, &u.PasswordHash, &u.MessageCount, &u.HasProfile, &u.Profile.Visible,
		&u.Profile.Gender, &u.Profile.BirthDate, &u.Profile.Email, &u.Profile.AboutMe,
		&u.AvatarKey, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func scanMessage(row rowScanner) (board.Message, error) {
	var m board.Message
	err := row.Scan(
		&m.Seq, &m.ID, &m.CreatedAt, &m.Author, &m.Tag,
		&m.IsReply, &m.RepliedTo, &m.Contents, &m.Private,
	)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, err
}
