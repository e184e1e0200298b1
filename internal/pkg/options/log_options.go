package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// LogOptions controls the process logger.
type LogOptions struct {
	Level       string `json:"level"        mapstructure:"level"`
	Format      string `json:"format"       mapstructure:"format"`
	OutputPath  string `json:"output-path"  mapstructure:"output-path"`
	EnableColor bool   `json:"enable-color" mapstructure:"enable-color"`
}

func NewLogOptions() *LogOptions {
	return &LogOptions{
		Level:      "warn",
		Format:     "text",
		OutputPath: "stderr",
	}
}

func (o *LogOptions) Validate() []error {
	var errs []error
	switch o.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q, must be 'text' or 'json'", o.Format))
	}
	switch o.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", o.Level))
	}
	return errs
}

func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn, error.")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format: 'text' or 'json'.")
	fs.StringVar(&o.OutputPath, "log.output-path", o.OutputPath, "Log destination: stderr, stdout or a file path.")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Colorize text log output.")
}
