package board_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"twoogle/internal/app/board"
	"twoogle/internal/app/db"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
)

type recordingNotifier struct {
	mu    sync.Mutex
	lines []string
}

func (n *recordingNotifier) MessagePosted(_ board.Message, line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lines = append(n.lines, line)
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestService(t *testing.T, notifier board.Notifier) *board.Service {
	t.Helper()

	store, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	svc := board.New(store, board.Options{Notifier: notifier, Clock: steppingClock()})
	t.Cleanup(func() { svc.Close() })

	if err := svc.EnsureGuest(context.Background()); err != nil {
		t.Fatalf("EnsureGuest: %v", err)
	}
	return svc
}

func register(t *testing.T, svc *board.Service, name string) *user.Session {
	t.Helper()
	sess := user.NewSession()
	if _, err := svc.Register(context.Background(), sess, board.Credentials{Username: name, Password: "pw-" + name}, nil); err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return sess
}

func post(t *testing.T, svc *board.Service, sess *user.Session, raw string) *board.Message {
	t.Helper()
	m, err := svc.Post(context.Background(), sess, raw)
	if err != nil {
		t.Fatalf("Post(%q): %v", raw, err)
	}
	return m
}

func contents(msgs []board.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Contents
	}
	return out
}

func TestPostIncrementsAuthorCounter(t *testing.T) {
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")

	for i, want := range []string{"alice_1", "alice_2", "alice_3"} {
		m := post(t, svc, alice, "post")
		if m.ID != want {
			t.Errorf("post %d id = %s, want %s", i, m.ID, want)
		}
	}
	if alice.User().MessageCount != 3 {
		t.Errorf("session counter = %d, want 3", alice.User().MessageCount)
	}
}

func TestReplyBorrowsTargetCounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	first := post(t, svc, alice, "Hello world")
	if first.ID != "alice_1" {
		t.Fatalf("first id = %s", first.ID)
	}

	reply := post(t, svc, bob, "@Alice nice!")
	if reply.ID != "alice_1" || reply.RepliedTo != "alice" || !reply.IsReply {
		t.Errorf("reply = %+v", reply)
	}

	// Neither counter moved.
	if bob.User().MessageCount != 0 {
		t.Errorf("bob counter = %d", bob.User().MessageCount)
	}
	if next := post(t, svc, alice, "second"); next.ID != "alice_2" {
		t.Errorf("alice next id = %s, want alice_2", next.ID)
	}

	thread, err := svc.Thread(ctx, bob, "alice_1")
	if err != nil {
		t.Fatal(err)
	}
	text := board.FormatFeed(thread)
	if strings.Index(text, "<bob @alice>") > strings.Index(text, "<alice @nobody>") {
		t.Errorf("reply should be listed before the original:\n%s", text)
	}

	_, err = svc.Post(ctx, bob, "@ghost boo")
	if !errs.HasCode(err, errs.ErrUserNotFound) {
		t.Errorf("reply to unknown user: got %v", err)
	}
}

func TestPostLengthLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")

	if _, err := svc.Post(ctx, alice, "#long "+strings.Repeat("x", 140)); err != nil {
		t.Fatalf("140 characters should be accepted: %v", err)
	}

	_, err := svc.Post(ctx, alice, strings.Repeat("é", 141))
	if !errs.HasCode(err, errs.ErrMessageContentTooLong) || !errs.IsValidation(err) {
		t.Fatalf("141 characters: got %v", err)
	}

	_, err = svc.Post(ctx, alice, "@bob #tag *private")
	if !errs.HasCode(err, errs.ErrMessageEmpty) {
		t.Errorf("markers only: got %v", err)
	}

	msgs, err := svc.UserMessages(ctx, alice, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || alice.User().MessageCount != 1 {
		t.Errorf("rejected posts must not be written: %d messages, counter %d", len(msgs), alice.User().MessageCount)
	}
}

func TestPrivateMessagesVisibility(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post(t, svc, alice, "public one")
	secret := post(t, svc, alice, "*private for friends")
	if !secret.Private {
		t.Fatal("expected private message")
	}

	own, err := svc.UserMessages(ctx, alice, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := contents(own); len(got) != 2 || got[0] != "public one" || got[1] != "for friends" {
		t.Errorf("own feed = %v", got)
	}

	for _, viewer := range []*user.Session{bob, user.NewSession()} {
		others, err := svc.UserMessages(ctx, viewer, "alice", 10)
		if err != nil {
			t.Fatal(err)
		}
		if got := contents(others); len(got) != 1 || got[0] != "public one" {
			t.Errorf("%s sees %v", viewer.Username(), got)
		}
	}

	if err := svc.Subscribe(ctx, bob, "alice"); err != nil {
		t.Fatal(err)
	}
	others, _ := svc.UserMessages(ctx, bob, "alice", 10)
	if len(others) != 1 {
		t.Errorf("subscribing must not expose private posts in the by-user view, got %v", contents(others))
	}
	subscribed, err := svc.Subscribed(ctx, bob, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(subscribed) != 2 {
		t.Errorf("subscribed view = %v", contents(subscribed))
	}

	if _, err := svc.Thread(ctx, bob, secret.ID); !errs.HasCode(err, errs.ErrMessageNotFound) {
		t.Errorf("private thread for other user: got %v", err)
	}
	if thread, err := svc.Thread(ctx, alice, secret.ID); err != nil || len(thread) != 1 {
		t.Errorf("private thread for author: %v, %v", thread, err)
	}

	if _, err := svc.UserMessages(ctx, bob, "nobody", 5); !errs.HasCode(err, errs.ErrUserNotFound) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestGuestPrivatePostsStayHidden(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	secret := post(t, svc, user.NewSession(), "*private guest secret")
	if !secret.Private {
		t.Fatal("expected private message")
	}

	visitor := user.NewSession()
	if _, err := svc.Thread(ctx, visitor, secret.ID); !errs.HasCode(err, errs.ErrMessageNotFound) {
		t.Errorf("Thread(%s) for another guest: got %v", secret.ID, err)
	}
	msgs, err := svc.UserMessages(ctx, visitor, user.GuestUsername, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("guest feed exposes %v", contents(msgs))
	}
}

func TestFeedsDisplayOldestFirstWithinLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")

	for _, body := range []string{"m1", "m2", "m3", "m4", "m5", "m6"} {
		post(t, svc, alice, body)
	}

	msgs, err := svc.UserMessages(ctx, alice, "alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(contents(msgs), ",")
	if got != "m2,m3,m4,m5,m6" {
		t.Errorf("default-limited feed = %s", got)
	}
}

func TestSubscribedGroupsPrepend(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")
	carol := register(t, svc, "carol")

	post(t, svc, bob, "b1")
	post(t, svc, bob, "b2")
	post(t, svc, carol, "c1")
	post(t, svc, carol, "c2")

	if err := svc.Subscribe(ctx, alice, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Subscribe(ctx, alice, "carol"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Subscribe(ctx, alice, "bob"); err != nil {
		t.Fatalf("re-subscribing should be a no-op: %v", err)
	}

	msgs, err := svc.Subscribed(ctx, alice, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(contents(msgs), ","); got != "c1,c2,b1,b2" {
		t.Errorf("subscribed = %s", got)
	}

	if err := svc.Unsubscribe(ctx, alice, "carol"); err != nil {
		t.Fatal(err)
	}
	msgs, _ = svc.Subscribed(ctx, alice, 5)
	if got := strings.Join(contents(msgs), ","); got != "b1,b2" {
		t.Errorf("after unsubscribe = %s", got)
	}

	if err := svc.Subscribe(ctx, user.NewSession(), "bob"); !errs.HasCode(err, errs.ErrUnauthorized) {
		t.Errorf("guest subscribe: got %v", err)
	}
	if err := svc.Subscribe(ctx, alice, "alice"); !errs.HasCode(err, errs.ErrInvalidParams) {
		t.Errorf("self subscribe: got %v", err)
	}
	if err := svc.Subscribe(ctx, alice, "zed"); !errs.HasCode(err, errs.ErrUserNotFound) {
		t.Errorf("unknown target: got %v", err)
	}
}

func TestGuestTagScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	guest := user.NewSession()

	m := post(t, svc, guest, "#funny knock knock")
	if m.Author != user.GuestUsername || m.ID != user.GuestUsername+"_1" {
		t.Errorf("guest post = %+v", m)
	}

	msgs, err := svc.TagMessages(ctx, "#FUNNY")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || board.FormatFeed(msgs) != board.FormatLine(*m) {
		t.Errorf("tag feed = %+v", msgs)
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(board.FormatTags(tags), "#funny (1)\n") {
		t.Errorf("tag listing = %q", board.FormatTags(tags))
	}
}

func TestTagListingCountsPublicOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")

	post(t, svc, alice, "#a one")
	post(t, svc, alice, "#b two")
	post(t, svc, alice, "#a three")
	post(t, svc, alice, "#b *private hidden")
	post(t, svc, alice, "untagged")
	post(t, svc, alice, "#Funny upper")
	post(t, svc, alice, "#funny lower")

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []board.TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 1}, {Tag: "funny", Count: 2}}
	if len(tags) != len(want) {
		t.Fatalf("Tags = %+v, want %+v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("Tags[%d] = %+v, want %+v", i, tags[i], want[i])
		}
	}

	msgs, err := svc.TagMessages(ctx, "#FUNNY")
	if err != nil {
		t.Fatal(err)
	}
	if got := contents(msgs); len(got) != 2 || got[0] != "upper" || got[1] != "lower" {
		t.Errorf("TagMessages(#FUNNY) = %v", got)
	}
}

func TestRecentSections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post(t, svc, alice, "mine")
	post(t, svc, bob, "bobs")
	post(t, svc, bob, "@alice reply")
	post(t, svc, user.NewSession(), "from a guest")
	if err := svc.Subscribe(ctx, alice, "bob"); err != nil {
		t.Fatal(err)
	}

	sections, err := svc.Recent(ctx, alice, 0)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	if got := strings.Join(titles, "|"); got != "My Recent Messages|Subscribed To Messages|Replies to Me|Guest Messages" {
		t.Errorf("titles = %s", got)
	}
	if len(sections[2].Messages) != 1 || sections[2].Messages[0].Author != "bob" {
		t.Errorf("replies section = %+v", sections[2].Messages)
	}

	guestView, err := svc.Recent(ctx, user.NewSession(), 0)
	if err != nil {
		t.Fatal(err)
	}
	text := board.FormatSections(guestView)
	if !strings.HasPrefix(text, "Guest Messages:\n") || !strings.Contains(text, "from a guest") {
		t.Errorf("guest recent view = %q", text)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	sess := user.NewSession()
	profile := &user.Profile{Visible: true, Gender: "F", Email: "alice@example.com"}
	if _, err := svc.Register(ctx, sess, board.Credentials{Username: "Alice", Password: "pw1"}, profile); err != nil {
		t.Fatal(err)
	}
	if sess.Username() != "alice" || !sess.User().HasProfile {
		t.Errorf("session after register = %s", sess.Username())
	}

	_, err := svc.Register(ctx, user.NewSession(), board.Credentials{Username: "ALICE", Password: "x"}, nil)
	if !errs.HasCode(err, errs.ErrUserAlreadyExists) {
		t.Errorf("duplicate register: got %v", err)
	}

	for _, bad := range []string{"", "has space", "way_too_long_username_here", user.GuestUsername} {
		_, err := svc.Register(ctx, user.NewSession(), board.Credentials{Username: bad, Password: "x"}, nil)
		if !errs.HasCode(err, errs.ErrInvalidUsername) {
			t.Errorf("Register(%q): got %v", bad, err)
		}
	}

	svc.Logout(sess)
	if !sess.IsGuest() {
		t.Fatal("logout should return to guest")
	}

	if _, err := svc.Login(ctx, sess, board.Credentials{Username: "alice", Password: "wrong"}); !errs.HasCode(err, errs.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, sess, board.Credentials{Username: user.GuestUsername}); !errs.HasCode(err, errs.ErrInvalidCredentials) {
		t.Errorf("guest login: got %v", err)
	}

	u, err := svc.Login(ctx, sess, board.Credentials{Username: " ALICE ", Password: "pw1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Profile.Email != "alice@example.com" || sess.Username() != "alice" {
		t.Errorf("login loaded %+v", u)
	}
}

func TestLoginWithRetry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	svc.Logout(alice)

	attempts := []board.Credentials{
		{Username: "alice", Password: "nope"},
		{Username: "alice", Password: "pw-alice"},
	}
	var failures int
	sess := user.NewSession()
	_, err := svc.LoginWithRetry(ctx, sess,
		func(attempt int) (board.Credentials, error) { return attempts[attempt-1], nil },
		func(int, error) { failures++ },
	)
	if err != nil || sess.IsGuest() || failures != 1 {
		t.Errorf("second attempt should succeed: err=%v failures=%d", err, failures)
	}

	sess = user.NewSession()
	calls := 0
	_, err = svc.LoginWithRetry(ctx, sess,
		func(int) (board.Credentials, error) {
			calls++
			return board.Credentials{Username: "alice", Password: "bad"}, nil
		},
		nil,
	)
	if !errs.HasCode(err, errs.ErrLoginAttemptsExceeded) || calls != board.MaxLoginAttempts || !sess.IsGuest() {
		t.Errorf("exhausted: err=%v calls=%d guest=%v", err, calls, sess.IsGuest())
	}

	stop := errors.New("input closed")
	_, err = svc.LoginWithRetry(ctx, user.NewSession(),
		func(int) (board.Credentials, error) { return board.Credentials{}, stop },
		nil,
	)
	if !errors.Is(err, stop) {
		t.Errorf("prompt error should stop the loop: %v", err)
	}
}

func TestProfileVisibility(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	none, err := svc.Profile(ctx, bob, "alice")
	if err != nil || none.FormatProfile() != "alice has no profile.\n" {
		t.Errorf("no profile: %v", err)
	}
	own, err := svc.Profile(ctx, alice, "alice")
	if err != nil || own.FormatProfile() != "alice has no profile.\n" {
		t.Errorf("own missing profile: %v", err)
	}

	if err := svc.UpdateProfile(ctx, alice, user.Profile{Visible: false, Gender: "F"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Profile(ctx, bob, "alice"); !errs.HasCode(err, errs.ErrProfileHidden) {
		t.Errorf("hidden profile: got %v", err)
	}

	if err := svc.UpdateProfile(ctx, alice, user.Profile{Visible: true, Gender: "F"}); err != nil {
		t.Fatal(err)
	}
	u, err := svc.Profile(ctx, bob, "alice")
	if err != nil || !strings.HasPrefix(u.FormatProfile(), "alice's profile:\nGender: F\n") {
		t.Errorf("visible profile: %v", err)
	}

	if _, err := svc.Profile(ctx, bob, "ghost"); !errs.HasCode(err, errs.ErrUserNotFound) {
		t.Errorf("unknown user: got %v", err)
	}
	if err := svc.UpdateProfile(ctx, user.NewSession(), user.Profile{}); !errs.HasCode(err, errs.ErrUnauthorized) {
		t.Errorf("guest profile edit: got %v", err)
	}
}

func TestNotifierReceivesPublicPostsOnly(t *testing.T) {
	n := &recordingNotifier{}
	svc := newTestService(t, n)
	alice := register(t, svc, "alice")

	post(t, svc, alice, "hello")
	post(t, svc, alice, "*private shh")

	if len(n.lines) != 1 || !strings.Contains(n.lines[0], `"hello"`) {
		t.Errorf("notified lines = %q", n.lines)
	}
}

func TestUsersAndSessionFor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	register(t, svc, "alice")

	names, err := svc.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != user.GuestUsername+",alice" {
		t.Errorf("Users = %v", names)
	}

	sess, err := svc.SessionFor(ctx, "alice")
	if err != nil || sess.Username() != "alice" {
		t.Errorf("SessionFor(alice) = %v, %v", sess, err)
	}
	if sess, err := svc.SessionFor(ctx, ""); err != nil || !sess.IsGuest() {
		t.Errorf("SessionFor(\"\") should be a guest: %v", err)
	}
	if _, err := svc.SessionFor(ctx, "ghost"); !errs.HasCode(err, errs.ErrUnauthorized) {
		t.Errorf("SessionFor(ghost): got %v", err)
	}
}
