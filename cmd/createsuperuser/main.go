// Package main provides a tool to create a superuser account.
//
// Superusers carry the staff and superuser flags; there is no HTTP endpoint
// for creating them.
//
// Usage:
//
//	DATA_PATH=~/recipe-api/data go run ./cmd/createsuperuser -email admin@example.com -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yeungho415/recipe/internal/service"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

var (
	email    = flag.String("email", "", "Email address for the superuser (required)")
	password = flag.String("password", "", "Password for the superuser (required)")
	name     = flag.String("name", "Admin", "Display name")
)

func main() {
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/recipe-api/data")
	}

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "recipe.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	userService := service.NewUserService(store, logger)

	user, err := userService.RegisterSuperuser(context.Background(), service.RegisterRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}

	fmt.Printf("Created superuser %s (%s)\n", user.Email, user.ID)
}
