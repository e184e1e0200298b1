package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

// MCPOptions holds options for MCP tool discovery.
// MCP servers are declared in a standalone mcp.json file.
type MCPOptions struct {
	// ConfigFile is the path to the MCP configuration file.
	ConfigFile string `json:"config-file" mapstructure:"config-file"`
	// Timeout bounds connecting to and listing one server.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

func NewMCPOptions() *MCPOptions {
	return &MCPOptions{
		ConfigFile: "mcp.json",
		Timeout:    30 * time.Second,
	}
}

func (o *MCPOptions) Validate() []error {
	if o.ConfigFile == "" {
		return []error{errors.New("mcp.config-file is required")}
	}
	return nil
}

func (o *MCPOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "mcp.config-file", o.ConfigFile, "Path to the MCP configuration file.")
	fs.DurationVar(&o.Timeout, "mcp.timeout", o.Timeout, "Timeout for connecting to a single MCP server.")
}
