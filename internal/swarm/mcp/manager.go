package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

// Highlighter selects the highlighted tool family.
type Highlighter interface {
	Match(name, server string) bool
}

// ServerTools is the discovery result for one server.
type ServerTools struct {
	Server    string
	Transport string
	Status    ServerStatus
	Err       error
	Tools     []Tool
}

// Manager connects to every configured server and reports its tools.
type Manager struct {
	servers   []*Server
	highlight Highlighter
	timeout   time.Duration
}

// NewManager returns a Manager for cfg. A zero timeout means no per-server
// deadline beyond the caller's context.
func NewManager(cfg *Config, highlight Highlighter, timeout time.Duration) *Manager {
	m := &Manager{highlight: highlight, timeout: timeout}
	for _, name := range cfg.Names() {
		if srv := cfg.MCPServers[name]; srv != nil {
			m.servers = append(m.servers, newServer(name, srv))
		}
	}
	return m
}

// ServerNames returns the configured server names in report order.
func (m *Manager) ServerNames() []string {
	names := make([]string, 0, len(m.servers))
	for _, s := range m.servers {
		names = append(names, s.Name())
	}
	return names
}

// Discover connects to the servers concurrently and lists their tools.
// Individual failures are reported per server; an error is returned only
// when every server failed.
func (m *Manager) Discover(ctx context.Context) ([]ServerTools, error) {
	if len(m.servers) == 0 {
		logger.Info("[MCP] no MCP servers configured, skipping discovery")
		return nil, nil
	}
	logger.Info("[MCP] discovering tools of %d MCP servers...", len(m.servers))

	var wg sync.WaitGroup
	for _, srv := range m.servers {
		wg.Add(1)
		go func(s *Server) {
			defer wg.Done()
			sctx, cancel := m.serverContext(ctx)
			defer cancel()
			if err := s.connect(sctx); err != nil {
				logger.Warn("[MCP] server %q failed to connect: %v", s.Name(), err)
			}
		}(srv)
	}
	wg.Wait()

	results := make([]ServerTools, 0, len(m.servers))
	connected := 0
	for _, srv := range m.servers {
		status, err := srv.Status()
		res := ServerTools{
			Server:    srv.Name(),
			Transport: srv.config.Transport,
			Status:    status,
			Err:       err,
		}
		if status == ServerStatusConnected {
			connected++
			res.Tools = m.toolsOf(srv)
		}
		results = append(results, res)
	}

	logger.Info("[MCP] discovery complete: %d/%d servers connected", connected, len(m.servers))
	if connected == 0 {
		return results, fmt.Errorf("[MCP] all %d servers failed to connect", len(m.servers))
	}
	return results, nil
}

// Tools returns the discovered tools of one server.
func (m *Manager) Tools(server string) ([]Tool, error) {
	for _, srv := range m.servers {
		if srv.Name() == server {
			return m.toolsOf(srv), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errno.ErrServerNotFound, server)
}

func (m *Manager) toolsOf(srv *Server) []Tool {
	out := make([]Tool, 0, len(srv.tools))
	for _, t := range srv.tools {
		out = append(out, Tool{
			Server:      srv.Name(),
			Name:        t.Name,
			Description: t.Description,
			Highlighted: m.highlight != nil && m.highlight.Match(t.Name, srv.Name()),
		})
	}
	return out
}

// Close closes every server connection.
func (m *Manager) Close() error {
	for _, srv := range m.servers {
		srv.close()
	}
	return nil
}

func (m *Manager) serverContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}
