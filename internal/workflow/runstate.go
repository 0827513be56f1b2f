package workflow

import (
	"errors"
	"fmt"
	"sync"

	"subtitle-merger/internal/domain"
)

// ErrBatchInFlight is returned when a submission starts while one is loading.
var ErrBatchInFlight = errors.New("batch already in flight")

// phase is the lifecycle position of the submission workflow.
type phase string

const (
	phaseIdle    phase = "idle"
	phaseLoading phase = "loading"
	phaseResult  phase = "result"
)

// runState guards the single in-flight submission and the dialog it produces.
type runState struct {
	mu      sync.RWMutex
	phase   phase
	title   string
	message string
}

func newRunState() *runState {
	return &runState{phase: phaseIdle}
}

// begin moves to loading, or fails if a submission is already loading.
func (r *runState) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !isValidTransition(r.phase, phaseLoading) {
		return ErrBatchInFlight
	}
	r.phase = phaseLoading
	return nil
}

// complete records the dialog for the loading submission.
func (r *runState) complete(d Dialog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !isValidTransition(r.phase, phaseResult) {
		return fmt.Errorf("invalid transition: %s -> %s", r.phase, phaseResult)
	}
	r.phase = phaseResult
	r.title = d.Title
	r.message = d.Text
	return nil
}

// dismiss hides the dialog and keeps the last title and message.
func (r *runState) dismiss() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != phaseResult {
		return false
	}
	r.phase = phaseIdle
	return true
}

func (r *runState) snapshot() domain.RunState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.RunState{
		Loading:       r.phase == phaseLoading,
		DialogVisible: r.phase == phaseResult,
		ResultTitle:   r.title,
		ResultMessage: r.message,
	}
}

// isValidTransition enforces the allowed phase edges.
func isValidTransition(from, to phase) bool {
	switch from {
	case phaseIdle:
		return to == phaseLoading
	case phaseLoading:
		return to == phaseResult
	case phaseResult:
		return to == phaseIdle || to == phaseLoading
	default:
		return false
	}
}
