package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/schoolshelf/librarian/internal/auth"
	"github.com/schoolshelf/librarian/internal/config"
	"github.com/schoolshelf/librarian/internal/database"
)

// CreateUserCommand creates a librarian account for auth mode "local".
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Name         string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name for the new account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a librarian account. Only meaningful with AUTH_MODE=local.\n")
		fmt.Fprintf(os.Stderr, "The password is read interactively.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	authService := auth.NewService(db.DB, cfg.Auth)

	password, err := readPassword()
	if err != nil {
		return err
	}

	user, err := authService.CreateUser(cmd.Username, cmd.Name, password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id %d)\n", user.Username, user.ID)
	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	// Piped input (tests, scripts)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
