// Command add-admin creates an active, email-verified administrator
// account. It is the bootstrap path for a fresh database:
//
//	add-admin <name> <email> <password>
//
// The database URL is read from SCHOOL_DATABASE_URL or DATABASE_URL. The
// exit status is 0 on success and 1 on any failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/schoolmgmt/school-api/internal/redact"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/validation"
)

const timeout = 30 * time.Second

// bootstrapper creates administrator accounts.
type bootstrapper interface {
	Bootstrap(ctx context.Context, name, email, password string) (service.AdminAccount, error)
}

// opener connects the bootstrapper to its storage. The returned func
// releases it.
type opener func(ctx context.Context) (bootstrapper, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, openAdminService)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer, open opener) int {
	fmt.Fprintln(out, "Starting admin user creation...")

	if len(args) != 3 {
		fmt.Fprintln(out, "Usage: add-admin <name> <email> <password>")
		fmt.Fprintln(out, `Example: add-admin "Jane Smith" "jane@school.com" "securePassword123"`)
		return 1
	}
	name, email, password := args[0], args[1], args[2]

	req := validation.AdminRegisterRequest{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	}
	if err := validation.New().Struct(req); err != nil {
		fmt.Fprintln(out, "Error: invalid arguments")
		var verrs *domain.ValidationErrors
		if errors.As(err, &verrs) {
			for _, f := range verrs.Fields {
				fmt.Fprintf(out, "  %s: %s\n", f.Field, f.Message)
			}
		}
		return 1
	}

	fmt.Fprintf(out, "Creating admin user: %s (%s)\n", name, email)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc, closeFn, err := open(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: cannot connect to database: %s\n", redact.Error(err))
		return 1
	}
	defer closeFn()

	account, err := svc.Bootstrap(ctx, name, email, password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		fmt.Fprintf(out, "Error: User with email %s already exists\n", email)
		return 1
	case errors.Is(err, service.ErrRoleMissing):
		fmt.Fprintln(out, "Error: Admin role not found in database. Run the server with -migrate up first.")
		return 1
	case err != nil:
		fmt.Fprintf(out, "Error creating admin user: %s\n", redact.Error(err))
		return 1
	}

	fmt.Fprintln(out, "Admin user created successfully!")
	fmt.Fprintln(out, "User details:")
	fmt.Fprintf(out, "  Name: %s\n", account.Name)
	fmt.Fprintf(out, "  Email: %s\n", account.Email)
	fmt.Fprintf(out, "  Role: %s\n", domain.RoleAdmin)
	fmt.Fprintln(out, "  Status: Active & Email Verified")
	fmt.Fprintf(out, "  User ID: %d\n", account.UserID)
	fmt.Fprintln(out, "\nYou can now log in with these credentials.")
	return 0
}

func openAdminService(ctx context.Context) (bootstrapper, func(), error) {
	url := config.LookupDatabaseURL()
	if url == "" {
		return nil, nil, errors.New("SCHOOL_DATABASE_URL or DATABASE_URL must be set")
	}

	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 2})
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.NewAdminService(postgres.NewPostgresUserStore(db, l), auth.NewArgon2Hasher(), l)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return svc, func() {
		if err := db.Close(); err != nil {
			l.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}, nil
}
