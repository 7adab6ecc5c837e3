package board

import (
	"context"
	"errors"
	"strconv"
	"time"

	"twoogle/internal/app/user"
)

var (
	// ErrNotFound is returned by a Store when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned by a Store when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Message is one posted message.
type Message struct {
	// Seq is the storage sequence number. It is unique and increases with insertion order.
	Seq int64 `json:"seq"`

	// ID is "<counterOwner>_<n>". Replies share the id of the message they answer.
	ID string `json:"id"`

	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`

	// Tag is stored without the leading '#', empty when untagged.
	Tag string `json:"tag,omitempty"`

	IsReply bool `json:"isReply"`

	// RepliedTo is the username being replied to, empty for non-replies.
	RepliedTo string `json:"repliedTo,omitempty"`

	Contents string `json:"contents"`
	Private  bool   `json:"private"`
}

// Draft is a parsed message waiting for its id.
type Draft struct {
	Author    string
	Tag       string
	RepliedTo string
	Contents  string
	Private   bool
	CreatedAt time.Time
}

// IsReply reports whether the draft answers another user.
func (d Draft) IsReply() bool {
	return d.RepliedTo != ""
}

// CounterOwner returns the user whose counter numbers this draft.
func (d Draft) CounterOwner() string {
	if d.IsReply() {
		return d.RepliedTo
	}
	return d.Author
}

// TagCount is one entry of the tag listing.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MessageID formats the readable id of the n-th message of owner.
func MessageID(owner string, n int) string {
	return owner + "_" + strconv.Itoa(n)
}

// Store is the relational persistence used by the Service.
//
// InsertMessage must read the counter of d.CounterOwner(), increment and write it
// back for non-replies, and insert the message in one transaction with the
// counter row locked, so concurrent posters never share or skip an id.
type Store interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, username string) (*user.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	UpdateProfile(ctx context.Context, username string, hasProfile bool, p user.Profile) error
	UpdateAvatar(ctx context.Context, username, key string) error

	InsertMessage(ctx context.Context, d Draft) (*Message, error)
	MessagesByID(ctx context.Context, id string) ([]Message, error)
	MessagesByAuthor(ctx context.Context, author string, includePrivate bool, limit int) ([]Message, error)
	MessagesByTag(ctx context.Context, tag string) ([]Message, error)
	RepliesTo(ctx context.Context, username string, limit int) ([]Message, error)
	TagCounts(ctx context.Context) ([]TagCount, error)

	Subscribe(ctx context.Context, subscriber, target string) error
	Unsubscribe(ctx context.Context, subscriber, target string) error
	Subscriptions(ctx context.Context, subscriber string) ([]string, error)

	Close() error
}
