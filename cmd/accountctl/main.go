// Command accountctl manages dashboard accounts:
//
//	accountctl add <username>     create an account (password prompted)
//	accountctl list               list accounts
//	accountctl remove <username>  delete an account
//
// Database settings come from the same config sources as the server
// (defaults, optional -c JSON file, flags).
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/repomanager"
	"github.com/rasgroup/bagcapturer/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "accountctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := positionalArgs(os.Args[1:])
	if len(args) == 0 {
		return fmt.Errorf("usage: accountctl <add|list|remove> [username]")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	accounts := services.NewAccountService(db, m, cfg)

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: accountctl add <username>")
		}
		return addAccount(ctx, accounts, args[1])
	case "list":
		return listAccounts(ctx, accounts)
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: accountctl remove <username>")
		}
		return accounts.Delete(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// positionalArgs drops flag-looking arguments and their values, leaving the
// subcommand and its operands. Config flags are handled by config.LoadConfig.
func positionalArgs(args []string) []string {
	var out []string
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") {
				skipNext = true
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func addAccount(ctx context.Context, accounts *services.AccountService, username string) error {
	password, err := promptPassword()
	if err != nil {
		return err
	}

	if _, err := accounts.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Printf("account %q created\n", username)
	return nil
}

func promptPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		// piped input, e.g. in scripts
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Repeat password: ")
	repeat, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	if string(password) != string(repeat) {
		return nil, fmt.Errorf("passwords do not match")
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password must not be empty")
	}
	return password, nil
}

func listAccounts(ctx context.Context, accounts *services.AccountService) error {
	list, err := accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no accounts")
		return nil
	}
	for _, a := range list {
		fmt.Printf("%s\t%s\t%s\n", a.ID, a.UserName, a.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
