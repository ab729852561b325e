// Package engine binds settings to the workspace layout and the default
// watermark collaborators. Both front ends hand an Engine to the controller
// as its runner and output planner.
package engine

import (
	"context"
	"sync"

	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/pipeline"
	"pdf-unwatermark/internal/watermark"
	"pdf-unwatermark/internal/workspace"
)

// Engine runs the detect-then-remove sequence with the latest settings.
type Engine struct {
	mu       sync.Mutex
	layout   workspace.Layout
	sequence *pipeline.Sequence
}

// New prepares the workspace for settings and builds the sequence.
func New(settings domain.Settings) (*Engine, error) {
	e := &Engine{}
	if err := e.Apply(settings); err != nil {
		return nil, err
	}
	return e, nil
}

// Apply swaps in new settings. A run already in flight keeps the sequence
// it started with.
func (e *Engine) Apply(settings domain.Settings) error {
	layout, err := workspace.Prepare(settings.UploadsDir, settings.OutputsDir)
	if err != nil {
		return err
	}

	detector := watermark.NewDetector(watermark.Options{
		Hosts:          settings.WatermarkHosts,
		MinRepeatRatio: settings.MinRepeatRatio,
	})
	sequence := pipeline.NewSequence(detector, watermark.NewRemover())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = layout
	e.sequence = sequence
	return nil
}

// Layout returns the prepared directories.
func (e *Engine) Layout() workspace.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout
}

// OutputPathFor names the processed file for input in the outputs directory.
func (e *Engine) OutputPathFor(input string) string {
	return e.Layout().OutputPathFor(input)
}

// Run executes one run with the sequence current at call time.
func (e *Engine) Run(ctx context.Context, req pipeline.Request) (domain.ProcessingResult, error) {
	e.mu.Lock()
	sequence := e.sequence
	e.mu.Unlock()
	return sequence.Run(ctx, req)
}
