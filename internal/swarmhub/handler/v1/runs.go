package v1

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/swarmscope/internal/pkg/core"
	"github.com/kiosk404/swarmscope/internal/pkg/errorx"
	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/swarm/event"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
	"github.com/kiosk404/swarmscope/internal/swarm/pipeline"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	"github.com/kiosk404/swarmscope/internal/swarm/source"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
)

// RunHandler handles the run ingest and relay endpoints.
type RunHandler struct {
	store    *store.Store
	runner   *pipeline.Runner
	defaults []handoff.Requirement
}

// NewRunHandler creates a new RunHandler. Ingested runs are checked against
// defaults unless the request names its own requirements.
func NewRunHandler(st *store.Store, defaults []handoff.Requirement) *RunHandler {
	stream := options.NewStreamOptions()
	stream.Buffering = false
	return &RunHandler{
		store:    st,
		runner:   pipeline.NewRunner(pipeline.Config{Stream: stream, Out: io.Discard, Store: st}),
		defaults: defaults,
	}
}

// Create handles POST /v1/runs.
//
// The body is a JSONL event stream. Query parameters:
//   - source:  label stored with the run (default "http")
//   - require: Role=count, repeatable, replaces the server's requirements
func (h *RunHandler) Create(c *gin.Context) {
	reqs, err := h.requirements(c)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrInvalidRequirements, "parse requirements"), nil)
		return
	}

	label := c.DefaultQuery("source", "http")
	events, err := collect(source.NewReaderSource(label, c.Request.Body))
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "read event stream"), nil)
		return
	}
	if len(events) == 0 {
		core.WriteResponse(c, errorx.WrapC(errno.ErrEmptyStream, ErrEmptyStream, "ingest run"), nil)
		return
	}

	run, err := h.runner.Run(c.Request.Context(), source.NewSliceSource(events...), pipeline.RunRequest{
		Source:       label,
		Requirements: reqs,
		Record:       true,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRunCreate, "record run"), nil)
		return
	}
	logger.Info("[RunHandler] recorded run %s from %s (%d events)", run.ID, label, run.EventCount)

	core.WriteResponse(c, nil, CreateRunResponse{
		ID:              run.ID,
		Status:          run.Status,
		EventCount:      run.EventCount,
		Handoffs:        len(run.Handoffs),
		RequirementsMet: run.RequirementsMet(),
		Missing:         run.Missing,
	})
}

// List handles GET /v1/runs.
func (h *RunHandler) List(c *gin.Context) {
	runs, err := h.store.Runs.List(c.Request.Context())
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRunList, "list runs"), nil)
		return
	}

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err != nil || limit < 0 {
		core.WriteResponse(c, errorx.WithCode(ErrValidation, "invalid limit %q", c.Query("limit")), nil)
		return
	} else if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	resp := ListRunsResponse{Data: make([]RunSummary, 0, len(runs)), Total: len(runs)}
	for _, r := range runs {
		resp.Data = append(resp.Data, toRunSummary(r))
	}
	core.WriteResponse(c, nil, resp)
}

// Get handles GET /v1/runs/:id.
func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")
	run, err := h.store.Runs.Get(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, h.getError(err, id), nil)
		return
	}
	core.WriteResponse(c, nil, run)
}

// Events handles GET /v1/runs/:id/events.
//
// The recorded events are replayed as server-sent events, one event per
// data frame, and the stream ends with an "event: done" frame.
func (h *RunHandler) Events(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := h.store.Runs.Get(ctx, id); err != nil {
		core.WriteResponse(c, h.getError(err, id), nil)
		return
	}
	lines, err := h.store.Events.Events(ctx, id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrEventLog, "load events of run %q", id), nil)
		return
	}

	// Set SSE headers.
	sse.Event{}.WriteContentType(c.Writer)
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(200)

	w := c.Writer
	for i, line := range lines {
		// Check client disconnect.
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := sse.Encode(w, sse.Event{Id: strconv.Itoa(i + 1), Data: line}); err != nil {
			logger.Warn("[RunHandler] relay of run %s stopped: %v", id, err)
			return
		}
		w.Flush()
	}

	_ = sse.Encode(w, sse.Event{Event: source.DoneEvent, Data: "{}"})
	w.Flush()
}

func (h *RunHandler) requirements(c *gin.Context) ([]handoff.Requirement, error) {
	raw := c.QueryArray("require")
	if len(raw) == 0 {
		return h.defaults, nil
	}
	return ParseRequirements(raw)
}

func (h *RunHandler) getError(err error, id string) error {
	if errors.Is(err, errno.ErrRunNotFound) {
		return errorx.WrapC(err, ErrRunNotFound, "run %q not found", id)
	}
	return errorx.WrapC(err, ErrRunGet, "get run %q", id)
}

// ParseRequirements parses Role=count entries in order.
func ParseRequirements(entries []string) ([]handoff.Requirement, error) {
	parsed, err := (&options.SwarmOptions{Require: entries}).Requirements()
	if err != nil {
		return nil, errors.Join(errno.ErrInvalidRequires, err)
	}
	reqs := make([]handoff.Requirement, 0, len(parsed))
	for _, r := range parsed {
		reqs = append(reqs, handoff.Requirement{Role: r.Role, Count: r.Count})
	}
	return reqs, nil
}

func collect(src source.Source) ([]event.Event, error) {
	defer src.Close()
	var events []event.Event
	for {
		ev, err := src.Recv()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}
