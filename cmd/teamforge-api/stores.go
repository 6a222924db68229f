package main

import (
	"context"
	"fmt"

	"github.com/dimitrije/teamforge-api/internal/config"
	"github.com/dimitrije/teamforge-api/internal/database"
	"github.com/dimitrije/teamforge-api/internal/repository"
	"github.com/dimitrije/teamforge-api/internal/repository/memory"
	"github.com/dimitrije/teamforge-api/internal/services"
	"go.uber.org/zap"
)

// openStores connects the configured backend and returns a function that
// releases it.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.Stores, func(), error) {
	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store; state is lost on restart")
		store := memory.New()
		return services.Stores{
			Users:         store.Users,
			Teams:         store.Teams,
			Requests:      store.Requests,
			Hackathons:    store.Hackathons,
			Polls:         store.Polls,
			Selections:    store.Selections,
			Submissions:   store.Submissions,
			Notifications: store.Notifications,
		}, func() {}, nil

	case "postgres":
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return services.Stores{}, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return services.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return services.Stores{
			Users:         repository.NewUserRepository(db),
			Teams:         repository.NewTeamRepository(db),
			Requests:      repository.NewRequestRepository(db),
			Hackathons:    repository.NewHackathonRepository(db),
			Polls:         repository.NewPollRepository(db),
			Selections:    repository.NewSelectionRepository(db),
			Submissions:   repository.NewSubmissionRepository(db),
			Notifications: repository.NewNotificationRepository(db),
		}, db.Close, nil

	default:
		return services.Stores{}, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
