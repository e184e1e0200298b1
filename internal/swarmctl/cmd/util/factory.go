package util

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/kiosk404/swarmscope/internal/swarm/display"
	"github.com/kiosk404/swarmscope/internal/swarm/mcp"
	"github.com/kiosk404/swarmscope/internal/swarm/pipeline"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
)

// Factory provides abstractions that allow the swarmctl commands to be
// extended and to be tested without a terminal, a database file or a network.
type Factory interface {
	// Options returns the completed configuration.
	Options() *Options
	// Store opens the configured run store once and returns it on every call.
	// It returns errno.ErrStoreDisabled for the "none" driver.
	Store() (*store.Store, error)
	// Runner returns a pipeline writing the rendered run to out and
	// diagnostics to diag.
	Runner(out, diag io.Writer, st *store.Store) *pipeline.Runner
	// HTTPClient is used by sources that read from a relay server.
	HTTPClient() *http.Client
	// MCPManager builds a manager for the configured mcp.json.
	MCPManager() (*mcp.Manager, error)
	// Close releases whatever the factory opened.
	Close() error
}

type defaultFactory struct {
	opts   *Options
	client *http.Client

	once  sync.Once
	store *store.Store
	err   error
}

// NewFactory returns a Factory backed by opts.
func NewFactory(opts *Options) Factory {
	return &defaultFactory{opts: opts, client: &http.Client{}}
}

func (f *defaultFactory) Options() *Options { return f.opts }

func (f *defaultFactory) Store() (*store.Store, error) {
	f.once.Do(func() {
		f.store, f.err = store.New(f.opts.Store)
	})
	return f.store, f.err
}

func (f *defaultFactory) Runner(out, diag io.Writer, st *store.Store) *pipeline.Runner {
	isTerm, width := display.DetectTerminal(out)
	return pipeline.NewRunner(pipeline.Config{
		Stream: f.opts.Stream,
		Render: display.RenderOptions{
			Color:    isTerm,
			Width:    width,
			Markdown: f.opts.Stream.Markdown,
		},
		Out:   out,
		Diag:  diag,
		Store: st,
	})
}

func (f *defaultFactory) HTTPClient() *http.Client { return f.client }

func (f *defaultFactory) MCPManager() (*mcp.Manager, error) {
	cfg, err := mcp.LoadConfig(f.opts.MCP.ConfigFile)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	highlight := display.NewHighlighter(f.opts.Stream.Highlight, f.opts.Stream.HighlightPatterns...)
	return mcp.NewManager(cfg, highlight, f.opts.MCP.Timeout), nil
}

func (f *defaultFactory) Close() error {
	if f.store == nil {
		return nil
	}
	return f.store.Close()
}
