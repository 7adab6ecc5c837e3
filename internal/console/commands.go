package console

import (
	"context"
	"fmt"
	"strings"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
)

const (
	limitPrompt           = "How many messages would you like to display (default=last %d messages)? "
	subscribedLimitPrompt = "How many messages from each subscribed to user would you like to display (default=last %d messages)? "
	noMessages            = "No messages to display.\n"
)

var postExamples = []string{
	"Example: @david #movies *private I saw the greatest movie yesterday!",
	"Example: @david *private I saw the greatest movie yesterday!",
	"Example: *private I saw the greatest movie yesterday!",
	"Example: #movies I saw the greatest movie yesterday!",
	"Example: I saw the greatest movie yesterday!",
	"Format: [@someuser] [#sometag] [*private] message contents",
}

func (c *Console) printFeed(msgs []board.Message) {
	if len(msgs) == 0 {
		fmt.Fprint(c.out, noMessages)
		return
	}
	fmt.Fprint(c.out, board.FormatFeed(msgs))
}

func (c *Console) login(ctx context.Context) error {
	prompt := func(int) (board.Credentials, error) {
		name, err := c.readLine("Username: ")
		if err != nil {
			return board.Credentials{}, err
		}
		password, err := c.readSecret("Password: ")
		if err != nil {
			return board.Credentials{}, err
		}
		return board.Credentials{Username: name, Password: password}, nil
	}
	onFailure := func(_ int, err error) {
		c.report(err)
	}

	u, err := c.svc.LoginWithRetry(ctx, c.sess, prompt, onFailure)
	if err != nil {
		return err
	}

	if u.HasProfile {
		fmt.Fprint(c.out, u.FormatProfile())
	}
	return c.viewRecentWithLimit(ctx, c.svc.FeedLimit())
}

func (c *Console) logout(context.Context) error {
	c.svc.Logout(c.sess)
	fmt.Fprintln(c.out, "You have been logged out.")
	return nil
}

func (c *Console) register(ctx context.Context) error {
	name, err := c.readLine("Username? ")
	if err != nil {
		return err
	}
	password, err := c.readSecret("Password? ")
	if err != nil {
		return err
	}

	var profile *user.Profile
	wantsProfile, err := c.askYesNo("Would you like to create a profile? ")
	if err != nil {
		return err
	}
	if wantsProfile {
		p, err := c.askProfile("Write a short message about yourself: ")
		if err != nil {
			return err
		}
		profile = &p
	}

	for {
		u, err := c.svc.Register(ctx, c.sess, board.Credentials{Username: name, Password: password}, profile)
		if err == nil {
			fmt.Fprintf(c.out, "Welcome, %s! You are now signed in.\n", u.Username)
			return nil
		}

		var question string
		switch {
		case errs.HasCode(err, errs.ErrUserAlreadyExists):
			question = "Username already exists, would you like to choose another? "
		case errs.HasCode(err, errs.ErrInvalidUsername):
			c.report(err)
			question = "Would you like to choose another username? "
		default:
			return err
		}

		again, askErr := c.askYesNo(question)
		if askErr != nil {
			return askErr
		}
		if !again {
			return nil
		}
		if name, err = c.readLine("Username? "); err != nil {
			return err
		}
	}
}

func (c *Console) editProfile(ctx context.Context) error {
	current := c.sess.User()

	if !current.HasProfile {
		create, err := c.askYesNo("You do not have a profile. Would you like to create one? ")
		if err != nil {
			return err
		}
		if !create {
			fmt.Fprintln(c.out, "Returning to menu.")
			return nil
		}

		p, err := c.askProfile("Short message about yourself: ")
		if err != nil {
			return err
		}
		return c.saveProfile(ctx, p)
	}

	p := current.Profile
	for {
		fmt.Fprintln(c.out, "* Press 'GEN' to edit gender.")
		fmt.Fprintln(c.out, "* Press 'BDAY' to edit birthdate.")
		fmt.Fprintln(c.out, "* Press 'EM' to edit email.")
		fmt.Fprintln(c.out, "* Press 'MES' to edit your description.")
		fmt.Fprintln(c.out, "* Press 'VIS' to edit profile visibility.")
		fmt.Fprintln(c.out, "* Press 'E' to exit editing your profile.")

		choice, err := c.readLine("")
		if err != nil {
			return err
		}

		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case "GEN":
			male, err := c.askYesNo("Are you a male? ")
			if err != nil {
				return err
			}
			p.Gender = genderOf(male)
		case "BDAY":
			if p.BirthDate, err = c.readLine("Birthdate? "); err != nil {
				return err
			}
		case "EM":
			if p.Email, err = c.readLine("Email? "); err != nil {
				return err
			}
		case "MES":
			if p.AboutMe, err = c.readLine("Short message about yourself: "); err != nil {
				return err
			}
		case "VIS":
			if p.Visible, err = c.askYesNo("Would you like your profile to be publicly visible? "); err != nil {
				return err
			}
		case "E":
			return c.saveProfile(ctx, p)
		}
	}
}

func (c *Console) saveProfile(ctx context.Context, p user.Profile) error {
	if err := c.svc.UpdateProfile(ctx, c.sess, p); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Your profile has been saved.")
	return nil
}

func (c *Console) viewProfile(ctx context.Context) error {
	name, err := c.askUsername(ctx, "What username's profile would you like to view? ")
	if err != nil || name == "" {
		return err
	}

	u, err := c.svc.Profile(ctx, c.sess, name)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, u.FormatProfile())
	return nil
}

func (c *Console) postMessage(ctx context.Context) error {
	for _, line := range postExamples {
		fmt.Fprintln(c.out, line)
	}

	raw, err := c.readLine("Message: ")
	if err != nil {
		return err
	}

	msg, err := c.svc.Post(ctx, c.sess, raw)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, board.FormatLine(*msg))
	return nil
}

func (c *Console) viewUserMessages(ctx context.Context) error {
	name, err := c.askUsername(ctx, "View messages of which username? ")
	if err != nil || name == "" {
		return err
	}

	limit, err := c.askLimit(limitPrompt)
	if err != nil {
		return err
	}

	msgs, err := c.svc.UserMessages(ctx, c.sess, name, limit)
	if err != nil {
		return err
	}
	c.printFeed(msgs)
	return nil
}

func (c *Console) viewRecent(ctx context.Context) error {
	return c.viewRecentWithLimit(ctx, c.svc.FeedLimit())
}

func (c *Console) viewRecentWithLimit(ctx context.Context, limit int) error {
	sections, err := c.svc.Recent(ctx, c.sess, limit)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, board.FormatSections(sections))
	return nil
}

func (c *Console) viewUsers(ctx context.Context) error {
	names, err := c.svc.Users(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Registered users:")
	for _, name := range names {
		fmt.Fprintln(c.out, name)
	}
	return nil
}

func (c *Console) viewTags(ctx context.Context) error {
	tags, err := c.svc.Tags(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, board.FormatTags(tags))
	return nil
}

func (c *Console) viewTagMessages(ctx context.Context) error {
	tag, err := c.readLine("Which tag do you want to search for? (Example: #oranges) ")
	if err != nil {
		return err
	}

	msgs, err := c.svc.TagMessages(ctx, tag)
	if err != nil {
		return err
	}
	c.printFeed(msgs)
	return nil
}

func (c *Console) viewThread(ctx context.Context) error {
	id, err := c.readLine("What is the message id? ")
	if err != nil {
		return err
	}

	msgs, err := c.svc.Thread(ctx, c.sess, strings.ToLower(id))
	if err != nil {
		return err
	}
	c.printFeed(msgs)
	return nil
}

func (c *Console) subscribe(ctx context.Context) error {
	name, err := c.askUsername(ctx, "What username would you like to subscribe to? ")
	if err != nil || name == "" {
		return err
	}

	if err := c.svc.Subscribe(ctx, c.sess, name); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "You are now subscribed to %s.\n", name)
	return nil
}

func (c *Console) unsubscribe(ctx context.Context) error {
	names, err := c.svc.Subscriptions(ctx, c.sess)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(c.out, "You are not subscribed to anyone.")
		return nil
	}
	fmt.Fprintf(c.out, "You are subscribed to: %s\n", strings.Join(names, ", "))

	name, err := c.askUsername(ctx, "What username would you like to unsubscribe from? ")
	if err != nil || name == "" {
		return err
	}

	if err := c.svc.Unsubscribe(ctx, c.sess, name); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "You are no longer subscribed to %s.\n", name)
	return nil
}

func (c *Console) viewSubscribed(ctx context.Context) error {
	limit, err := c.askLimit(subscribedLimitPrompt)
	if err != nil {
		return err
	}

	msgs, err := c.svc.Subscribed(ctx, c.sess, limit)
	if err != nil {
		return err
	}
	c.printFeed(msgs)
	return nil
}
