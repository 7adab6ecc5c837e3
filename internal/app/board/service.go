/*
Package board implements the message board: composing posts, assembling feeds,
and the session operations (registration, login, profiles, subscriptions).

Every operation takes the acting *user.Session explicitly; the Service holds no
notion of a current user. Front ends (console, HTTP) call the Service and never
touch the Store directly.
*/
package board

import (
	"context"
	"errors"
	"time"

	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
)

// DefaultFeedLimit is the per-scope cap used when a caller passes a limit <= 0.
const DefaultFeedLimit = 5

// Notifier receives every public message right after it is stored.
type Notifier interface {
	MessagePosted(msg Message, line string)
}

// Options configures a Service.
type Options struct {
	// FeedLimit overrides DefaultFeedLimit when positive.
	FeedLimit int

	// Notifier is optional.
	Notifier Notifier

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service owns the store and all board logic.
type Service struct {
	store     Store
	notifier  Notifier
	feedLimit int
	clock     func() time.Time
}

// New creates a Service over store.
func New(store Store, opts Options) *Service {
	s := &Service{
		store:     store,
		notifier:  opts.Notifier,
		feedLimit: opts.FeedLimit,
		clock:     opts.Clock,
	}
	if s.feedLimit <= 0 {
		s.feedLimit = DefaultFeedLimit
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// FeedLimit returns the default per-scope cap.
func (s *Service) FeedLimit() int {
	return s.feedLimit
}

// EnsureGuest creates the shared guest account if it does not exist yet.
func (s *Service) EnsureGuest(ctx context.Context) error {
	_, err := s.store.GetUser(ctx, user.GuestUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return errs.Wrap(errs.ErrStorage, err)
	}

	guest := &user.User{Username: user.GuestUsername, CreatedAt: s.now()}
	if err := s.store.CreateUser(ctx, guest); err != nil && !errors.Is(err, ErrDuplicate) {
		return errs.Wrap(errs.ErrStorage, err)
	}

	logx.Info("Guest account created", "username", user.GuestUsername)
	return nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.feedLimit
	}
	return n
}
