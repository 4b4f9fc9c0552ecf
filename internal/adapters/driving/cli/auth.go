package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check Strapi credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <source>",
	Short: "Log in to a source and report whether a token was obtained",
	Long: `Authenticates against the source's /api/auth/local endpoint.

The identifier defaults to the one in the config file; the password is
always prompted for. Nothing is written to disk: put the credentials in
the config file (or the environment it references) once they work.

Examples:
  strapisync auth login blog
  strapisync auth login blog --identifier editor@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

var authIdentifier string

// passwordReader reads a password; replaced in tests.
var passwordReader = readPassword

func init() {
	authLoginCmd.Flags().StringVar(&authIdentifier, "identifier", "", "user email or username")
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	app, err := openApp(false)
	if err != nil {
		return err
	}
	defer closeApp(app)

	ctx := cmd.Context()
	name := args[0]

	source, err := app.Sources.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("source %s: %w", name, err)
	}

	identifier := authIdentifier
	if identifier == "" && source.Login != nil {
		identifier = source.Login.Identifier
	}
	if identifier == "" {
		return errors.New("no identifier: pass --identifier or set [sources.login] identifier")
	}

	cmd.Printf("Password for %s: ", identifier)
	password, err := passwordReader(cmd.InOrStdin())
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	ok, err := app.Sources.Authenticate(ctx, name, &domain.Login{Identifier: identifier, Password: password})
	if errors.Is(err, domain.ErrAuthInvalid) {
		cmd.Println(errorStyle.Render("Invalid identifier or password."))
		return err
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if !ok {
		cmd.Println(mutedStyle.Render("No token returned."))
		return nil
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("Logged in to %s as %s.", name, identifier)))
	return nil
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
