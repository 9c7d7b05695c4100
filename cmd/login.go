package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matheuskafuri/newsdash/internal/api"
)

var (
	flagLoginEmail        string
	flagLoginPasswordFile string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in with your email and password and save the session token locally.

The token is stored in $NEWSDASH_CREDENTIALS_FILE, or credentials.json in the
newsdash config directory, with mode 0600. The dashboard and the other
commands pick it up from there.

The password is prompted for on the terminal unless --password-file is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		email := strings.TrimSpace(flagLoginEmail)
		if email == "" {
			email, err = prompt(cmd.ErrOrStderr(), os.Stdin, "Email: ")
			if err != nil {
				return err
			}
		}
		if email == "" {
			return errors.New("email is required")
		}

		password, err := readPassword(cmd.ErrOrStderr(), flagLoginPasswordFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeoutDuration())
		defer cancel()

		token, err := e.client.Login(ctx, email, password)
		if err != nil {
			if api.IsUnauthorized(err) {
				return errors.New("login failed: invalid email or password")
			}
			return err
		}
		if _, err := e.sessions.Activate(token); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Logged in as %s\n", email)
		fmt.Fprintf(cmd.ErrOrStderr(), "Session saved to %s\n", e.creds.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.sessions.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginEmail, "email", "", "account email (prompted if omitted)")
	loginCmd.Flags().StringVar(&flagLoginPasswordFile, "password-file", "", "path to a file containing the password, or - to prompt")
}

func prompt(out io.Writer, in io.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts on the terminal with echo off, or reads passwordFile
// when one is given.
func readPassword(out io.Writer, passwordFile string) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		return readSecretFile(passwordFile)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for the password prompt (use --password-file)")
	}

	fmt.Fprint(out, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("password is required")
	}
	return string(b), nil
}

// readSecretFile strips trailing newlines, which files written by echo
// usually carry.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	s := strings.TrimRight(string(data), "\r\n")
	if s == "" {
		return "", fmt.Errorf("file %s is empty", path)
	}
	return s, nil
}
