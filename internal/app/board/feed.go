package board

import (
	"context"
	"errors"
	"strings"

	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
)

// Thread returns the message with the given id together with the replies that
// share it, newest first. Private messages are visible only to their author.
func (s *Service) Thread(ctx context.Context, sess *user.Session, id string) ([]Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	rows, err := s.store.MessagesByID(ctx, id)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}

	visible := rows[:0]
	for _, m := range rows {
		if m.Private && !ownedBy(sess, m.Author) {
			continue
		}
		visible = append(visible, m)
	}

	if len(visible) == 0 {
		return nil, errs.NewError(errs.ErrMessageNotFound)
	}
	return displayOrder(visible), nil
}

// ownedBy reports whether sess is signed in as username. The shared guest
// account owns nothing, so guest private posts stay hidden from every visitor.
func ownedBy(sess *user.Session, username string) bool {
	return !sess.IsGuest() && sess.Username() == username
}

// UserMessages returns the latest limit messages of username, oldest first.
// Private messages are included only when the viewer is their author.
func (s *Service) UserMessages(ctx context.Context, sess *user.Session, username string, limit int) ([]Message, error) {
	username = user.Normalize(username)
	if err := s.requireUser(ctx, username); err != nil {
		return nil, err
	}

	rows, err := s.store.MessagesByAuthor(ctx, username, ownedBy(sess, username), s.limit(limit))
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return displayOrder(rows), nil
}

// TagMessages returns every public message carrying tag, oldest first.
func (s *Service) TagMessages(ctx context.Context, tag string) ([]Message, error) {
	tag = NormalizeTag(tag)
	if tag == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	rows, err := s.store.MessagesByTag(ctx, tag)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return displayOrder(rows), nil
}

// Replies returns the latest limit messages replying to the session user, oldest first.
func (s *Service) Replies(ctx context.Context, sess *user.Session, limit int) ([]Message, error) {
	rows, err := s.store.RepliesTo(ctx, sess.Username(), s.limit(limit))
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return displayOrder(rows), nil
}

// Subscribed returns up to limit messages of every user the session follows,
// private ones included. Groups of later subscriptions come first and each
// group reads oldest first.
func (s *Service) Subscribed(ctx context.Context, sess *user.Session, limit int) ([]Message, error) {
	if sess.IsGuest() {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	targets, err := s.store.Subscriptions(ctx, sess.Username())
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}

	var all []Message
	for _, target := range targets {
		rows, err := s.store.MessagesByAuthor(ctx, target, true, s.limit(limit))
		if err != nil {
			return nil, errs.Wrap(errs.ErrStorage, err)
		}
		all = append(all, rows...)
	}
	return displayOrder(all), nil
}

// Section is one titled block of the recent view.
type Section struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Recent assembles the recent view. Authenticated sessions get their own,
// subscribed and reply sections; every session gets the guest section.
func (s *Service) Recent(ctx context.Context, sess *user.Session, limit int) ([]Section, error) {
	var sections []Section

	if !sess.IsGuest() {
		mine, err := s.UserMessages(ctx, sess, sess.Username(), limit)
		if err != nil {
			return nil, err
		}
		subscribed, err := s.Subscribed(ctx, sess, limit)
		if err != nil {
			return nil, err
		}
		replies, err := s.Replies(ctx, sess, limit)
		if err != nil {
			return nil, err
		}
		sections = append(sections,
			Section{Title: "My Recent Messages", Messages: mine},
			Section{Title: "Subscribed To Messages", Messages: subscribed},
			Section{Title: "Replies to Me", Messages: replies},
		)
	}

	guest, err := s.store.MessagesByAuthor(ctx, user.GuestUsername, false, s.limit(limit))
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	sections = append(sections, Section{Title: "Guest Messages", Messages: displayOrder(guest)})

	return sections, nil
}

// FormatSections renders the recent view as text.
func FormatSections(sections []Section) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sec.Title)
		b.WriteString(":\n")
		b.WriteString(FormatFeed(sec.Messages))
	}
	return b.String()
}

// Tags returns the tag listing over public messages in first-use order.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	tags, err := s.store.TagCounts(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return tags, nil
}

// Users returns every registered username.
func (s *Service) Users(ctx context.Context) ([]string, error) {
	names, err := s.store.ListUsernames(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return names, nil
}

// Profile loads username for display. A user without a profile is returned as
// is and renders as "<u> has no profile."; a hidden profile is returned only to its owner.
func (s *Service) Profile(ctx context.Context, sess *user.Session, username string) (*user.User, error) {
	u, err := s.lookupUser(ctx, user.Normalize(username))
	if err != nil {
		return nil, err
	}

	if ownedBy(sess, u.Username) {
		return u, nil
	}
	if u.HasProfile && !u.Profile.Visible {
		return nil, errs.NewError(errs.ErrProfileHidden)
	}
	return u, nil
}

// UserExists reports whether username is registered.
func (s *Service) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := s.lookupUser(ctx, user.Normalize(username))
	if errs.HasCode(err, errs.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) lookupUser(ctx context.Context, username string) (*user.User, error) {
	if username == "" {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return u, nil
}

func (s *Service) requireUser(ctx context.Context, username string) error {
	_, err := s.lookupUser(ctx, username)
	return err
}
