/*
Package user contains core data structures related to user identity and session.

It defines the registered account (User), its optional public Profile, and the Session
that carries the acting identity through every board operation.
*/
package user

import (
	"fmt"
	"strings"
	"time"
)

// GuestUsername is the well-known account that unauthenticated activity is attributed to.
const GuestUsername = "board_guest"

// Profile holds the optional, user-editable public information of an account.
type Profile struct {
	// Visible controls whether other users may view the profile.
	Visible bool `json:"visible"`

	// Gender is free text, conventionally "M" or "F".
	Gender string `json:"gender"`

	// BirthDate is free text.
	BirthDate string `json:"birthDate"`

	Email   string `json:"email"`
	AboutMe string `json:"aboutMe"`
}

// User represents one row of the users table.
type User struct {
	// Username is the unique, lowercased account name.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the password; empty for the guest account.
	PasswordHash string `json:"-"`

	// MessageCount is the per-user message counter. It only grows.
	MessageCount int `json:"messageCount"`

	// HasProfile reports whether Profile has ever been filled in.
	HasProfile bool `json:"hasProfile"`

	Profile Profile `json:"profile"`

	// AvatarKey is the object key of the uploaded avatar, empty when none.
	AvatarKey string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// IsGuest reports whether u is the shared guest account.
func (u *User) IsGuest() bool {
	return u == nil || u.Username == GuestUsername
}

// FormatProfile renders the public profile block shown by the profile view.
func (u *User) FormatProfile() string {
	if !u.HasProfile {
		return u.Username + " has no profile.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s's profile:\n", u.Username)
	fmt.Fprintf(&b, "Gender: %s\n", u.Profile.Gender)
	fmt.Fprintf(&b, "Birthday: %s\n", u.Profile.BirthDate)
	fmt.Fprintf(&b, "Email: %s\n", u.Profile.Email)
	fmt.Fprintf(&b, "About Me: %s\n", u.Profile.AboutMe)
	return b.String()
}

// Normalize returns the canonical (trimmed, lowercased) form of a username.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Session is the identity a front end acts as. A session starts as a guest,
// becomes authenticated on login or registration, and returns to guest on logout.
// The zero value is a guest session.
type Session struct {
	current *User
}

// NewSession returns a guest session.
func NewSession() *Session {
	return &Session{}
}

// Authenticated returns a session already logged in as u.
func Authenticated(u *User) *Session {
	s := &Session{}
	s.SignIn(u)
	return s
}

// SignIn makes u the acting identity. Passing the guest account or nil signs out.
func (s *Session) SignIn(u *User) {
	if u.IsGuest() {
		s.current = nil
		return
	}
	s.current = u
}

// SignOut returns the session to the guest identity.
func (s *Session) SignOut() {
	s.current = nil
}

// IsGuest reports whether the session acts as the guest account.
func (s *Session) IsGuest() bool {
	return s == nil || s.current == nil
}

// Username returns the acting username, GuestUsername for guest sessions.
func (s *Session) Username() string {
	if s.IsGuest() {
		return GuestUsername
	}
	return s.current.Username
}

// User returns the in-memory copy of the authenticated user, nil for guests.
func (s *Session) User() *User {
	if s.IsGuest() {
		return nil
	}
	return s.current
}
