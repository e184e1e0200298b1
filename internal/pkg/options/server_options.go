package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// ServerRunOptions configures the swarmhub HTTP listener.
type ServerRunOptions struct {
	Addr      string `json:"addr"      mapstructure:"addr"`
	Mode      string `json:"mode"      mapstructure:"mode"`
	Profiling bool   `json:"profiling" mapstructure:"profiling"`
}

func NewServerRunOptions() *ServerRunOptions {
	return &ServerRunOptions{
		Addr: "127.0.0.1:11790",
		Mode: "release",
	}
}

func (o *ServerRunOptions) Validate() []error {
	var errs []error
	if _, _, err := net.SplitHostPort(o.Addr); err != nil {
		errs = append(errs, fmt.Errorf("invalid server.addr %q: %w", o.Addr, err))
	}
	switch o.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("invalid server.mode %q", o.Mode))
	}
	return errs
}

func (o *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "server.addr", o.Addr, "Address the relay server listens on (host:port).")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin mode: debug, release or test.")
	fs.BoolVar(&o.Profiling, "server.profiling", o.Profiling, "Expose pprof handlers under /debug/pprof.")
}
