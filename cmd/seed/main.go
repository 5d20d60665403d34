package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/aquatech-dashboard/config"
	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/filestore"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
	"github.com/oksasatya/aquatech-dashboard/pkg/validation"
)

// seed writes one local fallback account so the dashboard is usable before
// the managed identity backend is configured.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	email := flag.String("email", envOr("SEED_EMAIL", "operator@aquatech.com"), "account email")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "account password")
	name := flag.String("name", envOr("SEED_NAME", "AquaTech Operator"), "full name")
	flag.Parse()

	if !validation.IsEmail(*email) {
		logger.Fatalf("invalid email %q", *email)
	}
	if msg := validation.CheckPassword(*password); msg != "" {
		logger.Fatal(msg)
	}

	store, err := filestore.NewCredentialStore(cfg.FallbackUsersFile, helpers.NewPasswordHasher(cfg.BcryptCost))
	if err != nil {
		logger.Fatalf("open credential store: %v", err)
	}

	id, err := store.Create(context.Background(), *email, *password, *name)
	switch {
	case errors.Is(err, domain.ErrDuplicateAccount):
		fmt.Printf("account %s already exists in %s\n", *email, cfg.FallbackUsersFile)
		return
	case err != nil:
		logger.Fatalf("seed account: %v", err)
	}
	n, _ := store.Count()
	fmt.Printf("seeded account: id=%s email=%s name=%s (store now holds %d)\n", id, *email, *name, n)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
