package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/swarm/display"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)

	path := filepath.Join(dir, "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"mcpServers": {
			"codex": {"command": "npx", "args": ["-y", "codex", "mcp"]},
			"remote": {"transport": "sse", "url": "http://localhost:9000/sse"},
			"bad": {"transport": "ws"}
		}
	}`), 0o644))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "codex", "remote"}, cfg.Names())
	assert.Equal(t, TransportStdio, cfg.MCPServers["codex"].Transport)
	assert.Equal(t, []string{"-y", "codex", "mcp"}, cfg.MCPServers["codex"].Args)

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "mcpServers.bad")
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers": [`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func newToolServer(t *testing.T, names ...string) string {
	t.Helper()
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(false))
	for _, name := range names {
		s.AddTool(mcp.NewTool(name, mcp.WithDescription(name+" tool")),
			func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			})
	}
	ts := server.NewTestServer(s)
	t.Cleanup(ts.Close)
	return ts.URL + "/sse"
}

func TestManager_Discover(t *testing.T) {
	cfg := &Config{MCPServers: map[string]*ServerConfig{
		"codex": {Transport: TransportSSE, URL: newToolServer(t, "codex", "codex-reply")},
		"files": {Transport: TransportSSE, URL: newToolServer(t, "read_file", "write_file"), ToolFilter: []string{"read_file"}},
		"down":  {Transport: TransportSSE, URL: "http://127.0.0.1:1/sse"},
	}}
	m := NewManager(cfg, display.NewHighlighter(true), 5*time.Second)
	defer m.Close()

	results, err := m.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]ServerTools{}
	for _, r := range results {
		byName[r.Server] = r
	}

	codex := byName["codex"]
	assert.Equal(t, ServerStatusConnected, codex.Status)
	require.Len(t, codex.Tools, 2)
	for _, tool := range codex.Tools {
		assert.True(t, tool.Highlighted, tool.Name)
	}

	files := byName["files"]
	require.Len(t, files.Tools, 1)
	assert.Equal(t, "read_file", files.Tools[0].Name)
	assert.Equal(t, "read_file tool", files.Tools[0].Description)
	assert.False(t, files.Tools[0].Highlighted)

	down := byName["down"]
	assert.Equal(t, ServerStatusError, down.Status)
	assert.Error(t, down.Err)
	assert.Empty(t, down.Tools)

	tools, err := m.Tools("files")
	require.NoError(t, err)
	assert.Len(t, tools, 1)

	_, err = m.Tools("nope")
	assert.ErrorIs(t, err, errno.ErrServerNotFound)
}

func TestManager_AllFailed(t *testing.T) {
	cfg := &Config{MCPServers: map[string]*ServerConfig{
		"down": {Transport: TransportSSE, URL: "http://127.0.0.1:1/sse"},
	}}
	m := NewManager(cfg, nil, time.Second)
	defer m.Close()

	results, err := m.Discover(context.Background())
	assert.Error(t, err)
	assert.Len(t, results, 1)
}

func TestManager_NoServers(t *testing.T) {
	m := NewManager(&Config{}, nil, 0)
	results, err := m.Discover(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, m.ServerNames())
}
