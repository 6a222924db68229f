package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/teamforge-api/internal/config"
	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/dimitrije/teamforge-api/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: promote-admin <email>")
		os.Exit(1)
	}

	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	users := services.NewUserService(services.Stores{Users: repository.NewUserRepository(db)})
	if err := users.PromoteAdmin(ctx, email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Fatalf("No user found with email: %s", email)
		}
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Successfully promoted %s to admin\n", email)
}
