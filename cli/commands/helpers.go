package commands

import (
	"context"
	"fmt"

	"github.com/mango-db/mango-go/cli/internal/config"
	"github.com/mango-db/mango-go/runtime/client"
)

// openClient loads the CLI configuration and connects to the
// configured database.
func openClient(ctx context.Context) (*client.Client, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set; configure it in the environment, .env, or .mango.yaml")
	}

	db, err := client.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
