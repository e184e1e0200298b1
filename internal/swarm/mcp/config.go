// Package mcp discovers the tools of the MCP servers a swarm is configured
// with, so the highlighted tool family can be checked before a run.
package mcp

import (
	"fmt"
	"os"
	"slices"

	"github.com/kiosk404/swarmscope/internal/pkg/utils/json"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is an mcp.json file in the Claude Desktop layout:
//
//	{
//	  "mcpServers": {
//	    "codex": {
//	      "command": "npx",
//	      "args": ["-y", "codex", "mcp"]
//	    }
//	  }
//	}
type Config struct {
	MCPServers map[string]*ServerConfig `json:"mcpServers"`
}

// ServerConfig describes one server. Stdio servers are spawned from Command;
// SSE servers are reached at URL.
type ServerConfig struct {
	// Transport is "stdio" (default) or "sse".
	Transport string   `json:"transport,omitempty"`
	Command   string   `json:"command,omitempty"`
	Args      []string `json:"args,omitempty"`
	// Env entries are KEY=VALUE.
	Env []string `json:"env,omitempty"`
	URL string   `json:"url,omitempty"`
	// ToolFilter limits discovery to the named tools.
	ToolFilter []string `json:"toolFilter,omitempty"`
}

// LoadConfig reads path. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{MCPServers: map[string]*ServerConfig{}}, nil
		}
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", path, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", path, err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]*ServerConfig{}
	}
	for _, srv := range cfg.MCPServers {
		if srv != nil && srv.Transport == "" {
			srv.Transport = TransportStdio
		}
	}
	return cfg, nil
}

// Validate reports every server entry that cannot be connected to.
func (c *Config) Validate() []error {
	var errs []error
	for _, name := range c.Names() {
		srv := c.MCPServers[name]
		if srv == nil {
			errs = append(errs, fmt.Errorf("mcpServers.%s: empty server entry", name))
			continue
		}
		switch srv.Transport {
		case TransportStdio, "":
			if srv.Command == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: command is required for stdio transport", name))
			}
		case TransportSSE:
			if srv.URL == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: url is required for sse transport", name))
			}
		default:
			errs = append(errs, fmt.Errorf("mcpServers.%s: unsupported transport %q (must be 'stdio' or 'sse')", name, srv.Transport))
		}
	}
	return errs
}

// Names returns the configured server names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
