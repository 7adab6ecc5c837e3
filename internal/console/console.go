/*
Package console implements the interactive, menu-driven front end of the board.

A Console owns one session for the lifetime of the process. It reads mnemonic
menu choices (L, PM, VRM, ...) line by line and calls the board.Service for
every action; nothing here touches the store.
*/
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
)

const menuBorder = "**************************************************"

// audience says which sessions a menu entry is offered to.
type audience int

const (
	everyone audience = iota
	guestsOnly
	membersOnly
)

type command struct {
	key   string
	label string
	who   audience
	run   func(c *Console, ctx context.Context) error
}

// menu lists the entries in display order.
var menu = []command{
	{"L", "login", guestsOnly, (*Console).login},
	{"R", "Register", guestsOnly, (*Console).register},
	{"LO", "logout", membersOnly, (*Console).logout},
	{"UP", "create or update your profile", membersOnly, (*Console).editProfile},
	{"VP", "view a profile", everyone, (*Console).viewProfile},
	{"E", "Exit", everyone, nil},
	{"PM", "post message", everyone, (*Console).postMessage},
	{"VUM", "view a user's messages", everyone, (*Console).viewUserMessages},
	{"VRM", "view most recent messages", everyone, (*Console).viewRecent},
	{"VU", "view a list of users", everyone, (*Console).viewUsers},
	{"VT", "view a list of tags", everyone, (*Console).viewTags},
	{"VTM", "view messages with a tag", everyone, (*Console).viewTagMessages},
	{"VM", "view a message by its ID", everyone, (*Console).viewThread},
	{"SU", "subscribe to a user", membersOnly, (*Console).subscribe},
	{"US", "unsubscribe from a user", membersOnly, (*Console).unsubscribe},
	{"VSM", "view messages from users you have subscribed to", membersOnly, (*Console).viewSubscribed},
}

// Console is the menu loop bound to one session.
type Console struct {
	svc  *board.Service
	sess *user.Session
	in   *bufio.Reader
	out  io.Writer

	// terminalFD is the descriptor passwords are read from without echo, -1 when off.
	terminalFD int
}

// New creates a console reading from in and writing to out. The session starts as the guest.
func New(svc *board.Service, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc:        svc,
		sess:       user.NewSession(),
		in:         bufio.NewReader(in),
		out:        out,
		terminalFD: -1,
	}
}

// Session returns the session the console acts as.
func (c *Console) Session() *user.Session {
	return c.sess
}

// Run shows the menu and executes choices until the user exits or the input
// ends. Only errors that make the console unusable are returned.
func (c *Console) Run(ctx context.Context) error {
	logx.Info("Console session started")
	defer logx.Info("Console session finished", "username", c.sess.Username())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := c.choose()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if cmd.run == nil {
			fmt.Fprintln(c.out, "Thanks for using the Message Service. Have a nice day!")
			return nil
		}

		logx.Debug("Menu choice", "choice", cmd.key, "username", c.sess.Username())

		if err := cmd.run(c, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if !c.report(err) {
				return err
			}
		}
	}
}

// report prints a board error for the user. It returns false for errors
// that are not board errors, which end the loop.
func (c *Console) report(err error) bool {
	customErr := errs.From(err)
	if customErr == nil {
		return false
	}
	fmt.Fprintln(c.out, customErr.Message)
	return true
}

func (c *Console) offered(cmd command) bool {
	switch cmd.who {
	case guestsOnly:
		return c.sess.IsGuest()
	case membersOnly:
		return !c.sess.IsGuest()
	default:
		return true
	}
}

func (c *Console) printMenu() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, menuBorder)
	for _, cmd := range menu {
		if c.offered(cmd) {
			fmt.Fprintf(c.out, "* Press: '%s' to %s\n", cmd.key, cmd.label)
		}
	}
	fmt.Fprintln(c.out, menuBorder)
	fmt.Fprintln(c.out)
}

// choose prints the menu until a choice offered to the current session is made.
func (c *Console) choose() (command, error) {
	for {
		c.printMenu()

		input, err := c.readLine("Menu Choice? ")
		if err != nil {
			return command{}, err
		}
		fmt.Fprintln(c.out)

		key := strings.ToUpper(strings.TrimSpace(input))
		for _, cmd := range menu {
			if cmd.key == key && c.offered(cmd) {
				return cmd, nil
			}
		}
		fmt.Fprintln(c.out, "I'm sorry I don't recognize that option. Please select an option from the menu: ")
	}
}
