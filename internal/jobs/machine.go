package jobs

import (
	"errors"
	"fmt"

	"pdf-unwatermark/internal/domain"
)

// ErrRunInProgress is returned when an action needs the pipeline to be idle.
var ErrRunInProgress = errors.New("run already in progress")

// ErrNothingSelected is returned when starting without a fresh selection.
var ErrNothingSelected = errors.New("no file selected")

// ErrNotRunning is returned when finishing a run that is not active.
var ErrNotRunning = errors.New("no running job")

// Machine enforces the pipeline state edges. It has no lock: the controller
// mutates it only from its dispatch loop.
type Machine struct {
	state domain.PipelineState
}

// NewMachine creates a machine in idle state.
func NewMachine() *Machine {
	return &Machine{state: domain.PipelineStateIdle}
}

// State returns the current state.
func (m *Machine) State() domain.PipelineState {
	return m.state
}

// Select moves to selected from any state except running.
func (m *Machine) Select() error {
	if m.state == domain.PipelineStateRunning {
		return ErrRunInProgress
	}
	return m.transition(domain.PipelineStateSelected)
}

// Start moves selected to running.
func (m *Machine) Start() error {
	switch m.state {
	case domain.PipelineStateRunning:
		return ErrRunInProgress
	case domain.PipelineStateSelected:
		return m.transition(domain.PipelineStateRunning)
	default:
		return ErrNothingSelected
	}
}

// Finish moves running to succeeded or failed.
func (m *Machine) Finish(ok bool) error {
	if m.state != domain.PipelineStateRunning {
		return ErrNotRunning
	}
	if ok {
		return m.transition(domain.PipelineStateSucceeded)
	}
	return m.transition(domain.PipelineStateFailed)
}

// Reset returns to idle from every state.
func (m *Machine) Reset() {
	m.state = domain.PipelineStateIdle
}

// transition validates and applies one edge.
func (m *Machine) transition(to domain.PipelineState) error {
	if !isValidTransition(m.state, to) {
		return fmt.Errorf("invalid transition: %s -> %s", m.state, to)
	}
	m.state = to
	return nil
}

// isValidTransition enforces the allowed pipeline state machine edges.
func isValidTransition(from, to domain.PipelineState) bool {
	if to == domain.PipelineStateIdle {
		return true
	}

	switch from {
	case domain.PipelineStateIdle:
		return to == domain.PipelineStateSelected
	case domain.PipelineStateSelected:
		return to == domain.PipelineStateSelected || to == domain.PipelineStateRunning
	case domain.PipelineStateRunning:
		return to == domain.PipelineStateSucceeded || to == domain.PipelineStateFailed
	case domain.PipelineStateSucceeded, domain.PipelineStateFailed:
		return to == domain.PipelineStateSelected
	default:
		return false
	}
}
