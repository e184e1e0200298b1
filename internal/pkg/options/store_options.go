package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// StoreOptions selects where run records are kept.
type StoreOptions struct {
	// Driver is "bolt", "memory" or "none".
	Driver string `json:"driver" mapstructure:"driver"`
	// Path is the BoltDB file used by the bolt driver.
	Path string `json:"path" mapstructure:"path"`
	// LockTimeout bounds the wait for another process holding the file.
	LockTimeout time.Duration `json:"lock-timeout" mapstructure:"lock-timeout"`
}

func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Driver:      "bolt",
		Path:        "",
		LockTimeout: time.Second,
	}
}

func (o *StoreOptions) Validate() []error {
	switch o.Driver {
	case "bolt", "memory", "none":
		if o.LockTimeout < 0 {
			return []error{fmt.Errorf("--store.lock-timeout must not be negative")}
		}
		return nil
	default:
		return []error{fmt.Errorf("invalid store driver %q, must be 'bolt', 'memory' or 'none'", o.Driver)}
	}
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Driver, "store.driver", o.Driver, "Run store driver: 'bolt', 'memory' or 'none'.")
	fs.StringVar(&o.Path, "store.path", o.Path, "BoltDB file for the bolt driver (default: ~/.swarmscope/data/runs.db).")
	fs.DurationVar(&o.LockTimeout, "store.lock-timeout", o.LockTimeout, "How long to wait for another process to release the BoltDB file.")
}
