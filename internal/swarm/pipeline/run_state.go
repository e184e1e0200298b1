package pipeline

import (
	"time"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

// ModuleName tags the log lines of this package.
const ModuleName = "pipeline"

// RunStateMachine manages the lifecycle state transitions of a run.
// State machine: Created -> InProgress -> Completed | Failed | Cancelled
type RunStateMachine struct {
	run *entity.Run
}

// NewRunStateMachine creates a new RunStateMachine for the given run.
func NewRunStateMachine(run *entity.Run) *RunStateMachine {
	return &RunStateMachine{run: run}
}

// TransitionToInProgress transitions the run to the InProgress state.
func (sm *RunStateMachine) TransitionToInProgress() error {
	if sm.run.Status != entity.RunStatusCreated {
		return errno.ErrRunAlreadyDone
	}
	sm.run.Status = entity.RunStatusInProgress
	logger.InfoX(ModuleName, "[RunState] run %s -> in_progress", sm.run.ID)
	return nil
}

// TransitionToCompleted transitions the run to the Completed state.
func (sm *RunStateMachine) TransitionToCompleted() error {
	if sm.run.Status.IsTerminal() {
		return errno.ErrRunAlreadyDone
	}
	sm.finish(entity.RunStatusCompleted)
	logger.InfoX(ModuleName, "[RunState] run %s -> completed", sm.run.ID)
	return nil
}

// TransitionToFailed transitions the run to the Failed state.
func (sm *RunStateMachine) TransitionToFailed(code, message string) {
	sm.finish(entity.RunStatusFailed)
	sm.run.Error = &entity.RunError{Code: code, Message: message}
	logger.ErrorX(ModuleName, "[RunState] run %s -> failed, err: %v", sm.run.ID, sm.run.Error)
}

// TransitionToCancelled transitions the run to the Cancelled state.
func (sm *RunStateMachine) TransitionToCancelled() {
	sm.finish(entity.RunStatusCancelled)
	logger.InfoX(ModuleName, "[RunState] run %s -> cancelled", sm.run.ID)
}

// Run returns the current run.
func (sm *RunStateMachine) Run() *entity.Run {
	return sm.run
}

func (sm *RunStateMachine) finish(status entity.RunStatus) {
	now := time.Now()
	sm.run.CompletedAt = &now
	sm.run.Status = status
}
