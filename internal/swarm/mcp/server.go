package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/version"
)

// ServerStatus represents the connection state of an MCP server.
type ServerStatus int

const (
	ServerStatusDisconnected ServerStatus = iota
	ServerStatusConnected
	ServerStatusError
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusDisconnected:
		return "Disconnected"
	case ServerStatusConnected:
		return "Connected"
	case ServerStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Tool is one discovered tool.
type Tool struct {
	Server      string
	Name        string
	Description string
	Highlighted bool
}

// Server is a single configured MCP server. It is used by one goroutine.
type Server struct {
	name   string
	config *ServerConfig

	client *client.Client
	tools  []mcp.Tool
	status ServerStatus
	err    error
}

func newServer(name string, cfg *ServerConfig) *Server {
	return &Server{
		name:   name,
		config: cfg,
		status: ServerStatusDisconnected,
	}
}

// Name returns the server name.
func (s *Server) Name() string { return s.name }

// Status returns the connection status and the last connection error.
func (s *Server) Status() (ServerStatus, error) { return s.status, s.err }

// connect performs the MCP handshake and lists the server's tools.
func (s *Server) connect(ctx context.Context) error {
	cli, err := s.createClient(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("[MCP] server %q: failed to create client: %w", s.name, err))
	}
	s.client = cli

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "swarmscope",
		Version: version.Get().GitVersion,
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		return s.fail(fmt.Errorf("[MCP] server %q: failed to initialize: %w", s.name, err))
	}

	result, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return s.fail(fmt.Errorf("[MCP] server %q: failed to list tools: %w", s.name, err))
	}

	s.tools = s.tools[:0]
	for _, t := range result.Tools {
		if len(s.config.ToolFilter) > 0 && !slices.Contains(s.config.ToolFilter, t.Name) {
			continue
		}
		s.tools = append(s.tools, t)
	}
	s.status = ServerStatusConnected
	logger.Debug("[MCP] server %q: %d tools", s.name, len(s.tools))
	return nil
}

func (s *Server) fail(err error) error {
	s.status = ServerStatusError
	s.err = err
	s.close()
	return err
}

func (s *Server) createClient(ctx context.Context) (*client.Client, error) {
	switch s.config.Transport {
	case TransportStdio, "":
		return client.NewStdioMCPClient(s.config.Command, s.config.Env, s.config.Args...)
	case TransportSSE:
		cli, err := client.NewSSEMCPClient(s.config.URL)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			_ = cli.Close()
			return nil, err
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", s.config.Transport)
	}
}

func (s *Server) close() {
	if s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		logger.Warn("[MCP] server %q: failed to close client: %v", s.name, err)
	}
	s.client = nil
	if s.status == ServerStatusConnected {
		s.status = ServerStatusDisconnected
	}
}
