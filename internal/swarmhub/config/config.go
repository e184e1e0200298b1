package config

import (
	"fmt"

	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
	v1 "github.com/kiosk404/swarmscope/internal/swarmhub/handler/v1"
	"github.com/kiosk404/swarmscope/internal/swarmhub/options"
)

// Config is the validated swarmhub configuration plus the values derived
// from it once at startup.
type Config struct {
	*options.Options

	// Requirements apply to ingested runs whose request names none.
	Requirements []handoff.Requirement
}

// CreateConfigFromOptions validates opts and resolves the default handoff
// requirements.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	reqs, err := v1.ParseRequirements(opts.SwarmOptions.Require)
	if err != nil {
		return nil, fmt.Errorf("swarm.require: %w", err)
	}
	return &Config{Options: opts, Requirements: reqs}, nil
}
