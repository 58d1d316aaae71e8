package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/repository"
	"github.com/freshplate/freshplate/internal/service"
)

// settings are read from the same variables the API server uses so the
// stored digests verify under the server's hash cost.
type settings struct {
	DatabaseURL     string `env:"DATABASE_URL"`
	HashMemoryKB    uint32 `env:"HASH_MEMORY_KB" envDefault:"65536"`
	HashIterations  uint32 `env:"HASH_ITERATIONS" envDefault:"3"`
	HashParallelism uint8  `env:"HASH_PARALLELISM" envDefault:"4"`

	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminAnswer   string `env:"ADMIN_SECURITY_ANSWER"`
}

type output struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Promoted bool   `json:"promoted"`
}

func main() {
	var s settings
	if err := env.Parse(&s); err != nil {
		fmt.Fprintln(os.Stderr, "parse environment:", err)
		os.Exit(1)
	}

	var (
		databaseURL = flag.String("database-url", s.DatabaseURL, "PostgreSQL connection string")
		email       = flag.String("email", "admin@freshplate.local", "Admin email")
		name        = flag.String("name", "Admin", "Admin display name")
		question    = flag.String("security-question", "Name of the first kitchen you cooked in?", "Security question")
		migrate     = flag.Bool("migrate", true, "Apply migrations before creating the account")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if err := repo.Migrate(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	hasher := auth.NewHasher(auth.Params{
		Memory:      s.HashMemoryKB,
		Iterations:  s.HashIterations,
		Parallelism: s.HashParallelism,
	})
	users := service.NewUserService(repo, hasher, metrics.NewNoop())

	out, err := ensureAdmin(ctx, users, service.NewUser{
		Name:             *name,
		Email:            *email,
		Password:         s.AdminPassword,
		SecurityQuestion: *question,
		SecurityAnswer:   s.AdminAnswer,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureAdmin promotes an existing account, or creates one with the admin
// flag set when email is not registered yet.
func ensureAdmin(ctx context.Context, users *service.UserService, in service.NewUser) (*output, error) {
	user, err := users.PromoteByEmail(ctx, in.Email)
	if err == nil {
		return &output{UserID: user.ID, Email: user.Email, Name: user.Name, Promoted: true}, nil
	}
	if !errors.Is(err, service.ErrUserNotFound) {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	if in.Password == "" || in.SecurityAnswer == "" {
		return nil, errors.New("ADMIN_PASSWORD and ADMIN_SECURITY_ANSWER are required to create a new admin")
	}
	user, err = users.CreateAdmin(ctx, in)
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			return nil, fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &output{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}
