package board

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
)

const (
	// MaxMessageLength is the longest allowed body, counted in characters.
	MaxMessageLength = 140

	privateMarker = "*private"
)

// Parsed is the result of splitting raw input into its markers and body.
type Parsed struct {
	RepliedTo string
	Tag       string
	Private   bool
	Body      string
}

// Parse splits raw post text of the form "[@user] [#tag] [*private] body".
// Markers are recognized only as leading whitespace-delimited tokens in that
// order; anything after the first non-marker token is body text, kept verbatim.
func Parse(raw string) Parsed {
	var p Parsed
	rest := strings.TrimSpace(raw)

	if tok, after := nextToken(rest); len(tok) > 1 && tok[0] == '@' {
		p.RepliedTo = user.Normalize(tok[1:])
		rest = after
	}

	if tok, after := nextToken(rest); len(tok) > 1 && tok[0] == '#' {
		p.Tag = NormalizeTag(tok)
		rest = after
	}

	if tok, after := nextToken(rest); strings.EqualFold(tok, privateMarker) {
		p.Private = true
		rest = after
	}

	p.Body = rest
	return p
}

// nextToken returns the first whitespace-delimited token of s and the
// remainder with leading whitespace removed.
func nextToken(s string) (string, string) {
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], isSpace)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// NormalizeTag strips an optional leading '#' and lowercases the tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// Post parses raw and stores it as a message authored by the session user.
//
// A reply borrows the replied-to user's current counter without changing it;
// any other post takes the author's counter plus one and writes it back.
func (s *Service) Post(ctx context.Context, sess *user.Session, raw string) (*Message, error) {
	p := Parse(raw)

	if p.Body == "" {
		return nil, errs.NewError(errs.ErrMessageEmpty)
	}
	if utf8.RuneCountInString(p.Body) > MaxMessageLength {
		return nil, errs.NewError(errs.ErrMessageContentTooLong, MaxMessageLength)
	}

	author := sess.Username()
	draft := Draft{
		Author:    author,
		Tag:       p.Tag,
		RepliedTo: p.RepliedTo,
		Contents:  p.Body,
		Private:   p.Private,
		CreatedAt: s.now(),
	}

	msg, err := s.store.InsertMessage(ctx, draft)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, errs.Wrap(errs.ErrStorage, err)
	}

	if u := sess.User(); u != nil && !draft.IsReply() {
		u.MessageCount++
	}

	logx.Debug("Message posted", "message_id", msg.ID, "author", author, "reply", msg.IsReply, "private", msg.Private)

	if s.notifier != nil && !msg.Private {
		s.notifier.MessagePosted(*msg, FormatLine(*msg))
	}

	return msg, nil
}

func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}
