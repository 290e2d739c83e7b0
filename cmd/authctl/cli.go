package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"go-auth-service/internal/model"
)

const passwordEnv = "AUTHCTL_PASSWORD"

const usage = `usage:
  authctl create-user -username U -email E [-admin]
  authctl promote -username U`

type userManager interface {
	SignUp(ctx context.Context, candidate model.SignUpRequest) (*model.User, error)
	Promote(ctx context.Context, username string) (*model.User, error)
}

// CLI runs operator commands directly against the credential store.
type CLI struct {
	users    userManager
	out      io.Writer
	password func() (string, error)
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "create-user":
		return c.createUser(ctx, args[1:])
	case "promote":
		return c.promote(ctx, args[1:])
	case "help", "-h", "--help":
		_, _ = fmt.Fprintln(c.out, usage)
		return nil
	}

	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func (c *CLI) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(c.out)
	username := fs.String("username", "", "login name")
	email := fs.String("email", "", "email address")
	admin := fs.Bool("admin", false, "grant the admin flag")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := c.password()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	candidate := model.SignUpRequest{
		Username: strings.TrimSpace(*username),
		Email:    strings.TrimSpace(*email),
		Password: password,
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	user, err := c.users.SignUp(ctx, candidate)
	if err != nil {
		return err
	}

	if *admin {
		if user, err = c.users.Promote(ctx, user.Username); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(c.out, "created user %q (id %d, admin %t)\n", user.Username, user.ID, user.IsAdmin)
	return nil
}

func (c *CLI) promote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)
	fs.SetOutput(c.out)
	username := fs.String("username", "", "login name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}

	user, err := c.users.Promote(ctx, strings.TrimSpace(*username))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.out, "user %q is now an admin\n", user.Username)
	return nil
}

// readPassword prefers AUTHCTL_PASSWORD and otherwise prompts on the
// terminal without echo.
func readPassword() (string, error) {
	if password, ok := os.LookupEnv(passwordEnv); ok {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passwordEnv)
	}

	_, _ = fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
