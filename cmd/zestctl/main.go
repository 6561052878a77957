// Command zestctl is the operator CLI: schema migrations, demo seed data and
// account creation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/zest/internal/config"
	"github.com/and161185/zest/internal/migrate"
	"github.com/and161185/zest/internal/repository/postgres"
	"github.com/and161185/zest/internal/service"
)

const usage = `usage: zestctl <command> [flags]

commands:
  migrate                        apply pending migrations and print the schema version
  seed                           create the demo account with one recipe
  create-user -email E -name N   create an account; the password is read from the terminal
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(nil)
	if err != nil {
		logger.Error("config", zap.Error(err))
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate", "seed", "create-user":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err := migrate.Up(ctx, cfg.DatabaseURL, logger.Named("migrate")); err != nil {
		logger.Error("migrate up", zap.Error(err))
		return 1
	}
	if cmd == "migrate" {
		v, err := migrate.Version(ctx, cfg.DatabaseURL, logger.Named("migrate"))
		if err != nil {
			logger.Error("schema version", zap.Error(err))
			return 1
		}
		fmt.Fprintf(stdout, "schema version %d\n", v)
		return 0
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", zap.Error(err))
		return 1
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)
	recipes := postgres.NewRecipeRepo(db)
	auth := service.NewAuthService(users, postgres.NewSessionRepo(db), nil, cfg.SessionTTL)
	recipeSvc := service.NewRecipeService(recipes, service.NewAccessService(recipes, postgres.NewShareRepo(db)))

	switch cmd {
	case "seed":
		err = seed(ctx, users, auth, recipeSvc, stdout)
	case "create-user":
		err = createUser(ctx, auth, rest, os.Stdin, stdout)
	}
	if err != nil {
		logger.Error(cmd, zap.Error(err))
		return 1
	}
	return 0
}
