package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"

	"twoogle/internal/app/user"
)

// readLine prints prompt and returns the next input line without its line
// ending. A final line without a newline is returned before io.EOF.
func (c *Console) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// HidePasswords reads passwords from fd without echo when fd is a terminal.
// fd must be the descriptor behind the console input.
func (c *Console) HidePasswords(fd int) {
	if term.IsTerminal(fd) {
		c.terminalFD = fd
	}
}

// readSecret reads a password, hidden when the console is attached to a terminal.
func (c *Console) readSecret(prompt string) (string, error) {
	if c.terminalFD < 0 {
		return c.readLine(prompt)
	}

	fmt.Fprint(c.out, prompt)
	b, err := term.ReadPassword(c.terminalFD)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// askYesNo repeats the question until it gets yes, y, no or n in any case.
func (c *Console) askYesNo(question string) (bool, error) {
	fmt.Fprint(c.out, question)
	for {
		answer, err := c.readLine("")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		fmt.Fprintln(c.out, "I'm sorry that was not a yes or no answer. Please try again!")
	}
}

// askUsername prompts until a registered username is given or the user gives
// up, in which case the returned name is empty.
func (c *Console) askUsername(ctx context.Context, prompt string) (string, error) {
	for {
		name, err := c.readLine(prompt)
		if err != nil {
			return "", err
		}
		name = user.Normalize(name)

		exists, err := c.svc.UserExists(ctx, name)
		if err != nil {
			return "", err
		}
		if exists {
			return name, nil
		}

		again, err := c.askYesNo("I'm sorry that username is not registered in our system. Try again? ")
		if err != nil || !again {
			return "", err
		}
	}
}

// askLimit reads a positive message count. A blank or invalid answer keeps
// the default.
func (c *Console) askLimit(prompt string) (int, error) {
	raw, err := c.readLine(fmt.Sprintf(prompt, c.svc.FeedLimit()))
	if err != nil {
		return 0, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.svc.FeedLimit(), nil
	}

	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 1 {
		fmt.Fprintf(c.out, "That is not a positive number, showing the last %d messages.\n", c.svc.FeedLimit())
		return c.svc.FeedLimit(), nil
	}
	return n, nil
}

// askProfile collects a full profile. New profiles are publicly visible.
func (c *Console) askProfile(aboutPrompt string) (user.Profile, error) {
	p := user.Profile{Visible: true}

	male, err := c.askYesNo("Are you a male? ")
	if err != nil {
		return p, err
	}
	p.Gender = genderOf(male)

	if p.BirthDate, err = c.readLine("Birthdate? "); err != nil {
		return p, err
	}
	if p.Email, err = c.readLine("Email? "); err != nil {
		return p, err
	}
	if p.AboutMe, err = c.readLine(aboutPrompt); err != nil {
		return p, err
	}
	return p, nil
}

func genderOf(male bool) string {
	if male {
		return "M"
	}
	return "F"
}
