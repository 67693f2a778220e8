package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/tileboard/pkg/session"
	"gitlab.com/tinyland/lab/tileboard/pkg/tui"
)

type credentials struct {
	email    string
	password string
}

func newLoginCmd(app *App) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  "Sign in and store the session. Missing values are prompted for; the password is read without echo on a terminal, else as one line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&c.email, "Email Address: ", false); err != nil {
				return err
			}
			if err := p.fill(&c.password, "Password: ", true); err != nil {
				return err
			}
			u, err := app.sess.Login(cmd.Context(), c.email, c.password)
			if err != nil {
				return err
			}
			return app.print(cmd, map[string]any{"user": u}, "Signed in as %s\n", u.Label())
		},
	}
	cmd.Flags().StringVar(&c.email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.password, "password", "", "Password (prefer the prompt or stdin)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var (
		c       credentials
		confirm string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&c.email, "Email Address: ", false); err != nil {
				return err
			}
			if err := p.fill(&c.password, "Password: ", true); err != nil {
				return err
			}
			if err := p.fill(&confirm, "Confirm Password: ", true); err != nil {
				return err
			}
			if warn := tui.CheckSignUp(c.password, confirm); warn != "" {
				return errors.New(warn)
			}
			if err := app.sess.Register(cmd.Context(), strings.TrimSpace(c.email), c.password); err != nil {
				return err
			}
			return app.print(cmd, map[string]any{"email": c.email}, "%s\n", tui.MsgRegistered)
		},
	}
	cmd.Flags().StringVar(&c.email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.password, "password", "", "Password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password again")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sess.Logout(); err != nil {
				return err
			}
			return app.print(cmd, map[string]any{"signedOut": true}, "Signed out\n")
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			u, _ := app.sess.User()
			return app.print(cmd, map[string]any{"user": u, "api": app.client.BaseURL()}, "%s\n", describeUser(u))
		},
	}
}

func describeUser(u session.User) string {
	if u.Email != "" && u.Email != u.Label() {
		return fmt.Sprintf("%s <%s>", u.Label(), u.Email)
	}
	return u.Label()
}

// prompter asks for missing values on stderr and reads them from the
// command's input.
type prompter struct {
	in  io.Reader
	out io.Writer
	br  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, out: cmd.ErrOrStderr(), br: bufio.NewReader(in)}
}

func (p *prompter) fill(dst *string, label string, secret bool) error {
	if *dst != "" {
		return nil
	}
	v, err := p.ask(label, secret)
	if err != nil {
		return err
	}
	if !secret {
		v = strings.TrimSpace(v)
	}
	if v == "" {
		return fmt.Errorf("%s is required", strings.TrimSuffix(label, ": "))
	}
	*dst = v
	return nil
}

func (p *prompter) ask(label string, secret bool) (string, error) {
	if f, ok := p.in.(*os.File); ok && secret && term.IsTerminal(f.Fd()) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(p.out, label)
	}
	line, err := p.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
