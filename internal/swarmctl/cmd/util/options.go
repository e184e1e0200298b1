package util

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
)

// FlagConfig is the persistent flag naming an explicit config file.
const FlagConfig = "config"

// Options is the configuration shared by every swarmctl command. It is
// filled from flags, the config file and the environment, in that order of
// precedence.
type Options struct {
	Log    *options.LogOptions    `json:"log"    mapstructure:"log"`
	Stream *options.StreamOptions `json:"stream" mapstructure:"stream"`
	Store  *options.StoreOptions  `json:"store"  mapstructure:"store"`
	Swarm  *options.SwarmOptions  `json:"swarm"  mapstructure:"swarm"`
	MCP    *options.MCPOptions    `json:"mcp"    mapstructure:"mcp"`
}

func NewOptions() *Options {
	return &Options{
		Log:    options.NewLogOptions(),
		Stream: options.NewStreamOptions(),
		Store:  options.NewStoreOptions(),
		Swarm:  options.NewSwarmOptions(),
		MCP:    options.NewMCPOptions(),
	}
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Stream.AddFlags(fs)
	o.Store.AddFlags(fs)
	o.Swarm.AddFlags(fs)
	o.MCP.AddFlags(fs)
}

// Complete overlays the values viper collected from the config file and the
// environment.
func (o *Options) Complete(v *viper.Viper) error {
	if err := v.Unmarshal(o); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}

// Validate checks every option group.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Stream.Validate()...)
	errs = append(errs, o.Store.Validate()...)
	errs = append(errs, o.Swarm.Validate()...)
	errs = append(errs, o.MCP.Validate()...)
	return errors.Join(errs...)
}

// Requirements returns the configured handoff requirements in report order.
func (o *Options) Requirements() ([]handoff.Requirement, error) {
	parsed, err := o.Swarm.Requirements()
	if err != nil {
		return nil, err
	}
	reqs := make([]handoff.Requirement, 0, len(parsed))
	for _, r := range parsed {
		reqs = append(reqs, handoff.Requirement{Role: r.Role, Count: r.Count})
	}
	return reqs, nil
}
