package options

import (
	"errors"

	genericoptions "github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/pkg/utils/cliflag"
	"github.com/kiosk404/swarmscope/internal/pkg/utils/json"
)

// Options holds everything swarmhub is configured with.
type Options struct {
	ServerRunOptions *genericoptions.ServerRunOptions `json:"server" mapstructure:"server"`
	StoreOptions     *genericoptions.StoreOptions     `json:"store"  mapstructure:"store"`
	SwarmOptions     *genericoptions.SwarmOptions     `json:"swarm"  mapstructure:"swarm"`
	Log              *genericoptions.LogOptions       `json:"log"    mapstructure:"log"`
}

func NewOptions() *Options {
	return &Options{
		ServerRunOptions: genericoptions.NewServerRunOptions(),
		StoreOptions:     genericoptions.NewStoreOptions(),
		SwarmOptions:     genericoptions.NewSwarmOptions(),
		Log:              genericoptions.NewLogOptions(),
	}
}

// Flags returns the flags of every option group, by section.
func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.ServerRunOptions.AddFlags(fss.FlagSet("server"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.SwarmOptions.AddFlags(fss.FlagSet("swarm"))
	o.Log.AddFlags(fss.FlagSet("logs"))
	return fss
}

// Validate checks every option group.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.ServerRunOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.SwarmOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if o.StoreOptions.Driver == "none" {
		errs = append(errs, errors.New("swarmhub needs a run store, store.driver must not be 'none'"))
	}
	return errors.Join(errs...)
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
