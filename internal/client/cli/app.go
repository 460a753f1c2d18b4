package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credkeeper/internal/client/client"
	"github.com/dmitrijs2005/credkeeper/internal/client/config"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/flagx"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrPasswordsDiffer = errors.New("new passwords do not match")
	ErrEmptyInput      = errors.New("empty input")
)

const usage = `usage: credctl [-a addr] [-k key] [-t seconds] [-c config.json] <command> [flags]

commands:
  verify  -user NAME [-type password|api_token|verify_token]
  passwd  -user NAME [-bootstrap]
  hash    print an argon2id hash of a secret
  seal    print the sealed form of an API token
`

type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
	dial   func() (client.Client, error)
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		reader: bufio.NewReader(in),
		out:    out,
		dial: func() (client.Client, error) {
			return client.NewCredentialClient(c.ServerEndpointAddr, c.RequestTimeout)
		},
	}
}

// Run dispatches args (without the program name) to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	name, rest := flagx.Subcommand(args)

	switch name {
	case "verify":
		return a.Verify(ctx, rest)
	case "passwd":
		return a.Passwd(ctx, rest)
	case "hash":
		return a.Hash()
	case "seal":
		return a.Seal()
	case "", "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) user(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	name, err := GetSimpleText(a.reader, "Login name or email", a.out)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrEmptyInput
	}
	return name, nil
}

func (a *App) secret(prompt string) (string, error) {
	s, err := GetSecret(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

func (a *App) Verify(ctx context.Context, args []string) error {
	fs := a.flagSet("verify")
	credType := fs.String("type", "password", "credential type: password, api_token or verify_token")
	userName := fs.String("user", "", "login name or email")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-type", "-user"})); err != nil {
		return err
	}

	name, err := a.user(*userName)
	if err != nil {
		return err
	}
	secret, err := a.secret(secretPrompt(*credType))
	if err != nil {
		return err
	}

	api, err := a.dial()
	if err != nil {
		return err
	}
	defer api.Close()

	u, err := api.Verify(ctx, *credType, name, secret)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "verified %s <%s> id=%s\n", u.LoginName, u.Email, u.ID)
	return nil
}

// Passwd verifies the current password (or, with -bootstrap, the verify
// token) and then sets a new password using the access token that
// verification returned.
func (a *App) Passwd(ctx context.Context, args []string) error {
	fs := a.flagSet("passwd")
	userName := fs.String("user", "", "login name or email")
	bootstrap := fs.Bool("bootstrap", false, "set the first password, authenticating with the verify token")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-user", "-bootstrap"})); err != nil {
		return err
	}

	name, err := a.user(*userName)
	if err != nil {
		return err
	}

	credType := "password"
	if *bootstrap {
		credType = "verify_token"
	}
	current, err := a.secret(secretPrompt(credType))
	if err != nil {
		return err
	}

	api, err := a.dial()
	if err != nil {
		return err
	}
	defer api.Close()

	u, err := api.Verify(ctx, credType, name, current)
	if err != nil {
		return err
	}

	newPassword, err := a.secret("New password: ")
	if err != nil {
		return err
	}
	repeat, err := a.secret("Repeat new password: ")
	if err != nil {
		return err
	}
	if newPassword != repeat {
		return ErrPasswordsDiffer
	}

	var old *string
	if !*bootstrap {
		old = &current
	}
	if err := api.ChangePassword(ctx, u.ID, old, newPassword); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "password changed")
	return nil
}

func (a *App) Hash() error {
	secret, err := a.secret("Secret: ")
	if err != nil {
		return err
	}
	h, err := cryptox.NewArgon2Hasher(cryptox.DefaultArgon2Params())
	if err != nil {
		return err
	}
	hash, err := h.Hash(secret)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, hash)
	return nil
}

func (a *App) Seal() error {
	token, err := a.secret("API token: ")
	if err != nil {
		return err
	}
	c, err := cryptox.NewAESCipher(a.config.CipherKey)
	if err != nil {
		return err
	}
	sealed, err := c.Encrypt(token)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, sealed)
	return nil
}

func secretPrompt(credType string) string {
	switch credType {
	case "api_token":
		return "API token: "
	case "verify_token":
		return "Verification token: "
	default:
		return "Password: "
	}
}
