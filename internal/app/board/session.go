package board

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
)

// MaxLoginAttempts is how many credential prompts LoginWithRetry allows.
const MaxLoginAttempts = 3

const (
	minPasswordLength = 1
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{1,20}$`)

// Credentials is one username/password pair supplied by a front end.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateUsername checks the normalized username against the allowed pattern.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) || username == user.GuestUsername {
		return errs.NewError(errs.ErrInvalidUsername)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}

// Register creates an account and signs sess in as it. profile may be nil.
func (s *Service) Register(ctx context.Context, sess *user.Session, creds Credentials, profile *user.Profile) (*user.User, error) {
	username := user.Normalize(creds.Username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(creds.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}

	u := &user.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if profile != nil {
		u.HasProfile = true
		u.Profile = *profile
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return nil, errs.Wrap(errs.ErrStorage, err)
	}

	logx.Info("User registered", "username", username, "has_profile", u.HasProfile)

	sess.SignIn(u)
	return u, nil
}

// Login verifies creds and signs sess in, loading the full user record.
func (s *Service) Login(ctx context.Context, sess *user.Session, creds Credentials) (*user.User, error) {
	if !sess.IsGuest() {
		return nil, errs.NewError(errs.ErrAlreadyLoggedIn)
	}

	username := user.Normalize(creds.Username)
	if username == "" || username == user.GuestUsername {
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)) != nil {
		logx.Debug("Login rejected", "username", username)
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	sess.SignIn(u)
	logx.Info("User logged in", "username", username)
	return u, nil
}

// LoginWithRetry asks prompt for credentials up to MaxLoginAttempts times.
// Each rejected attempt is passed to onFailure. Storage and prompt errors stop
// the loop at once. When every attempt fails the session stays a guest.
func (s *Service) LoginWithRetry(
	ctx context.Context,
	sess *user.Session,
	prompt func(attempt int) (Credentials, error),
	onFailure func(attempt int, err error),
) (*user.User, error) {
	for attempt := 1; attempt <= MaxLoginAttempts; attempt++ {
		creds, err := prompt(attempt)
		if err != nil {
			return nil, err
		}

		u, err := s.Login(ctx, sess, creds)
		if err == nil {
			return u, nil
		}
		if !errs.HasCode(err, errs.ErrInvalidCredentials) {
			return nil, err
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}
	}

	logx.Warn("Login attempts exhausted", "attempts", MaxLoginAttempts)
	return nil, errs.NewError(errs.ErrLoginAttemptsExceeded)
}

// Logout returns sess to the guest identity.
func (s *Service) Logout(sess *user.Session) {
	if !sess.IsGuest() {
		logx.Info("User logged out", "username", sess.Username())
	}
	sess.SignOut()
}

// SessionFor rebuilds an authenticated session for username, as the HTTP
// front end does from a verified token. An empty username yields a guest session.
func (s *Service) SessionFor(ctx context.Context, username string) (*user.Session, error) {
	if username == "" || username == user.GuestUsername {
		return user.NewSession(), nil
	}

	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return user.Authenticated(u), nil
}

// UpdateProfile replaces the session user's profile.
func (s *Service) UpdateProfile(ctx context.Context, sess *user.Session, p user.Profile) error {
	if sess.IsGuest() {
		return errs.NewError(errs.ErrUnauthorized)
	}

	if err := s.store.UpdateProfile(ctx, sess.Username(), true, p); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}

	u := sess.User()
	u.HasProfile = true
	u.Profile = p
	return nil
}

// SetAvatar records the object key of the session user's avatar and returns
// the previous key, empty when there was none.
func (s *Service) SetAvatar(ctx context.Context, sess *user.Session, key string) (string, error) {
	if sess.IsGuest() {
		return "", errs.NewError(errs.ErrUnauthorized)
	}

	previous := sess.User().AvatarKey
	if err := s.store.UpdateAvatar(ctx, sess.Username(), key); err != nil {
		return "", errs.Wrap(errs.ErrStorage, err)
	}
	sess.User().AvatarKey = key
	return previous, nil
}

// Subscribe makes the session user follow target. Repeating it is a no-op.
func (s *Service) Subscribe(ctx context.Context, sess *user.Session, target string) error {
	target, err := s.subscriptionTarget(ctx, sess, target)
	if err != nil {
		return err
	}

	if err := s.store.Subscribe(ctx, sess.Username(), target); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}

	logx.Info("Subscribed", "subscriber", sess.Username(), "target", target)
	return nil
}

// Unsubscribe removes the follow edge to target, if any.
func (s *Service) Unsubscribe(ctx context.Context, sess *user.Session, target string) error {
	target, err := s.subscriptionTarget(ctx, sess, target)
	if err != nil {
		return err
	}

	if err := s.store.Unsubscribe(ctx, sess.Username(), target); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}

	logx.Info("Unsubscribed", "subscriber", sess.Username(), "target", target)
	return nil
}

// Subscriptions lists the users the session follows, in subscription order.
func (s *Service) Subscriptions(ctx context.Context, sess *user.Session) ([]string, error) {
	if sess.IsGuest() {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	names, err := s.store.Subscriptions(ctx, sess.Username())
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorage, err)
	}
	return names, nil
}

func (s *Service) subscriptionTarget(ctx context.Context, sess *user.Session, target string) (string, error) {
	if sess.IsGuest() {
		return "", errs.NewError(errs.ErrUnauthorized)
	}

	target = user.Normalize(target)
	if target == sess.Username() {
		return "", errs.NewError(errs.ErrInvalidParams)
	}
	if err := s.requireUser(ctx, target); err != nil {
		return "", err
	}
	return target, nil
}
