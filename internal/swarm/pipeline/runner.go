// Package pipeline drives one run: it pulls events from a source, passes
// them through the reordering window, describes them and records the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/swarm/buffer"
	"github.com/kiosk404/swarmscope/internal/swarm/display"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/event"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	"github.com/kiosk404/swarmscope/internal/swarm/source"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
)

// recordBatch is how many encoded events are written to the log at once.
const recordBatch = 64

// Config wires a Runner.
type Config struct {
	Stream *options.StreamOptions
	Render display.RenderOptions
	// Out receives the rendered run; Diag the event dump and notices.
	Out  io.Writer
	Diag io.Writer
	// Store is optional. Without it runs are not persisted.
	Store *store.Store
}

// RunRequest describes one run to render.
type RunRequest struct {
	// Source labels where the events come from.
	Source       string
	Requirements []handoff.Requirement
	// Record keeps the encoded events so the run can be replayed later.
	Record bool
}

// Runner renders runs. A Runner may be reused; each Run gets its own state.
type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) *Runner {
	if cfg.Stream == nil {
		cfg.Stream = options.NewStreamOptions()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Diag == nil {
		cfg.Diag = io.Discard
	}
	return &Runner{cfg: cfg}
}

// Run consumes src until it is exhausted, ctx is done, or src fails. The
// returned run is never nil. The error is the upstream failure or ctx.Err().
func (r *Runner) Run(ctx context.Context, src source.Source, req RunRequest) (*entity.Run, error) {
	run := &entity.Run{
		ID:           uuid.NewString(),
		Source:       req.Source,
		Status:       entity.RunStatusCreated,
		Requirements: toEntityRequirements(req.Requirements),
		CreatedAt:    time.Now(),
	}
	sm := NewRunStateMachine(run)
	r.save(ctx, run, true)
	if err := sm.TransitionToInProgress(); err != nil {
		return run, err
	}

	tracker := handoff.NewTracker(req.Requirements...)
	describer := r.newDescriber()
	rec := r.newRecorder(run.ID, req.Record)

	var buf *buffer.EventBuffer
	if r.cfg.Stream.Buffering {
		buf = buffer.New(r.cfg.Stream.BufferSize)
	}
	describe := func(entries []buffer.Entry) {
		for _, e := range entries {
			describer.Describe(e.Event, e.Tracker)
		}
	}

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		ev, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = err
			break
		}

		run.EventCount++
		if event.IsToolCallLike(ev) {
			run.ToolCallCount++
		}
		rec.add(ctx, ev)

		if buf == nil {
			describer.Describe(ev, tracker)
			continue
		}
		describe(buf.Add(ev, tracker))
	}

	if buf != nil {
		describe(buf.Flush())
	}
	describer.Finish()
	describer.Summary(tracker)
	rec.flush(ctx)

	run.Counts = tracker.Counts()
	for _, h := range tracker.History() {
		run.Handoffs = append(run.Handoffs, entity.Handoff{Source: h.Source, Target: h.Target})
	}
	run.Missing = slices.Collect(tracker.Missing())

	switch {
	case runErr == nil:
		if run.EventCount == 0 {
			logger.WarnX(ModuleName, "[Pipeline] run %s: %v", run.ID, errno.ErrEmptyStream)
		}
		_ = sm.TransitionToCompleted()
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		sm.TransitionToCancelled()
	default:
		sm.TransitionToFailed("upstream_error", runErr.Error())
		runErr = fmt.Errorf("run %s: %w", run.ID, runErr)
	}

	// ctx may already be done; the record is still worth keeping
	r.save(context.WithoutCancel(ctx), run, false)
	return run, runErr
}

func (r *Runner) newDescriber() *display.Describer {
	so := r.cfg.Stream
	renderer := display.NewRenderer(r.cfg.Out, r.cfg.Render)
	return display.NewDescriber(renderer, r.cfg.Diag, display.Options{
		Highlight:     display.NewHighlighter(so.Highlight, so.HighlightPatterns...),
		DebugEvents:   so.DebugEvents,
		CatchAll:      so.CatchAll,
		MaxToolOutput: so.MaxToolOutput,
	})
}

func (r *Runner) save(ctx context.Context, run *entity.Run, create bool) {
	if r.cfg.Store == nil {
		return
	}
	var err error
	if create {
		err = r.cfg.Store.Runs.Create(ctx, run)
	} else {
		err = r.cfg.Store.Runs.Update(ctx, run)
	}
	if err != nil {
		logger.WarnX(ModuleName, "[Pipeline] failed to save run %s: %v", run.ID, err)
	}
}

func toEntityRequirements(reqs []handoff.Requirement) []entity.Requirement {
	out := make([]entity.Requirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, entity.Requirement{Role: r.Role, Count: r.Count})
	}
	return out
}

// recorder batches encoded events into the run's event log.
type recorder struct {
	runID   string
	store   *store.Store
	pending [][]byte
}

func (r *Runner) newRecorder(runID string, enabled bool) *recorder {
	if !enabled || r.cfg.Store == nil {
		return &recorder{}
	}
	return &recorder{runID: runID, store: r.cfg.Store}
}

func (rec *recorder) add(ctx context.Context, ev event.Event) {
	if rec.store == nil {
		return
	}
	data, err := event.Marshal(ev)
	if err != nil {
		logger.WarnX(ModuleName, "[Pipeline] failed to encode %T: %v", ev, err)
		return
	}
	rec.pending = append(rec.pending, data)
	if len(rec.pending) >= recordBatch {
		rec.flush(ctx)
	}
}

func (rec *recorder) flush(ctx context.Context) {
	if rec.store == nil || len(rec.pending) == 0 {
		return
	}
	if err := rec.store.Events.Append(context.WithoutCancel(ctx), rec.runID, rec.pending...); err != nil {
		logger.WarnX(ModuleName, "[Pipeline] failed to record events of run %s: %v", rec.runID, err)
	}
	rec.pending = nil
}
