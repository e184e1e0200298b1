package swarmhub

import (
	"context"

	"github.com/kiosk404/swarmscope/internal/swarmhub/config"
)

// Run runs the swarmhub server until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run(ctx)
}
