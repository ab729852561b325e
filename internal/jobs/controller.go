package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"pdf-unwatermark/internal/dispatch"
	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/outcome"
	"pdf-unwatermark/internal/pipeline"
)

// Runner executes one detect-then-remove run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (domain.ProcessingResult, error)
}

// OutputPlanner names the output file for an input PDF.
type OutputPlanner interface {
	OutputPathFor(inputPath string) string
}

// Controller owns the pipeline state. Every field below loop is read and
// written only by the goroutine running Run; other goroutines reach it
// through loop.Call or loop.Post.
type Controller struct {
	loop     *dispatch.Loop
	runner   Runner
	outputs  OutputPlanner
	events   *EventBus
	log      logger.Logger
	notify   func(Event)
	newRunID func() string

	machine    *Machine
	selection  *domain.FileSelection
	result     *domain.ProcessingResult
	progress   int
	status     domain.StatusMessage
	generation uint64
	runID      string
	cancel     context.CancelFunc
}

// NewController builds an idle controller. log and notify may be nil.
func NewController(runner Runner, outputs OutputPlanner, events *EventBus, log logger.Logger, notify func(Event)) *Controller {
	if events == nil {
		events = NewEventBus(0)
	}
	return &Controller{
		loop:     dispatch.NewLoop(),
		runner:   runner,
		outputs:  outputs,
		events:   events,
		log:      log,
		notify:   notify,
		newRunID: uuid.NewString,
		machine:  NewMachine(),
	}
}

// Run drains controller work on the calling goroutine until ctx is done.
// An active run is cancelled on return.
func (c *Controller) Run(ctx context.Context) error {
	err := c.loop.Run(ctx)
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return err
}

// Events returns the controller event history.
func (c *Controller) Events() *EventBus {
	return c.events
}

// View returns the current snapshot.
func (c *Controller) View(ctx context.Context) (domain.View, error) {
	var view domain.View
	if err := c.loop.Call(ctx, func() { view = c.snapshot() }); err != nil {
		return domain.View{}, err
	}
	return view, nil
}

// Select stores sel and moves to selected. It fails while a run is active.
func (c *Controller) Select(ctx context.Context, sel domain.FileSelection) (domain.View, error) {
	var (
		view domain.View
		err  error
	)
	callErr := c.loop.Call(ctx, func() {
		if err = c.machine.Select(); err != nil {
			view = c.snapshot()
			return
		}
		c.selection = &sel
		c.result = nil
		c.progress = 0
		c.runID = ""
		c.status = domain.StatusMessage{Text: "Selected: " + sel.DisplayName, Severity: domain.SeverityInfo}
		view = c.publish(Event{Type: EventTypeState, Message: c.status.Text, Severity: c.status.Severity})
	})
	if callErr != nil {
		return domain.View{}, callErr
	}
	return view, err
}

// Start launches one background run for the current selection and returns
// without waiting for it.
func (c *Controller) Start(ctx context.Context) (domain.View, error) {
	var (
		view domain.View
		err  error
	)
	callErr := c.loop.Call(ctx, func() {
		if err = c.machine.Start(); err != nil {
			view = c.snapshot()
			return
		}

		c.generation++
		c.runID = c.newRunID()
		c.result = nil
		c.progress = 0

		runCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel

		rep := &reporter{controller: c, generation: c.generation}
		req := pipeline.Request{
			InputPath:  c.selection.Path,
			OutputPath: c.outputs.OutputPathFor(c.selection.Path),
			OnProgress: rep.progress,
			OnStatus:   rep.status,
		}

		c.infof("run %s started for %s", c.runID, c.selection.Path)
		view = c.publish(Event{Type: EventTypeState})
		go c.work(runCtx, rep, req)
	})
	if callErr != nil {
		return domain.View{}, callErr
	}
	return view, err
}

// Reset returns to idle from any state. It cancels an active run and
// invalidates any of its events still in flight.
func (c *Controller) Reset(ctx context.Context) (domain.View, error) {
	var view domain.View
	if err := c.loop.Call(ctx, func() {
		c.generation++
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}

		c.machine.Reset()
		c.selection = nil
		c.result = nil
		c.progress = 0
		c.status = domain.StatusMessage{}
		c.runID = ""
		view = c.publish(Event{Type: EventTypeState})
	}); err != nil {
		return domain.View{}, err
	}
	return view, nil
}

// work is the background execution of one run.
func (c *Controller) work(ctx context.Context, rep *reporter, req pipeline.Request) {
	var result domain.ProcessingResult
	defer func() {
		if r := recover(); r != nil {
			c.errorf("run panicked: %v", r)
			result = domain.ProcessingResult{Message: fmt.Sprintf("Error processing file: %v", r)}
		}
		rep.finish(result)
	}()

	var err error
	result, err = c.runner.Run(ctx, req)
	if err != nil {
		c.errorf("run failed: %v", err)
	}
}

// applyProgress records a progress checkpoint for the current run.
func (c *Controller) applyProgress(generation uint64, percent int) {
	if !c.current(generation) {
		c.debugf("dropped progress %d from superseded run", percent)
		return
	}

	percent = max(0, min(100, percent))
	if percent < c.progress {
		return
	}
	c.progress = percent
	c.publish(Event{Type: EventTypeProgress, Progress: percent})
}

// applyStatus records a status message for the current run.
func (c *Controller) applyStatus(generation uint64, status domain.StatusMessage) {
	if !c.current(generation) {
		c.debugf("dropped status %q from superseded run", status.Text)
		return
	}

	c.status = status
	c.publish(Event{Type: EventTypeStatus, Message: status.Text, Severity: status.Severity})
}

// applyResult moves the current run to its terminal state.
func (c *Controller) applyResult(generation uint64, result domain.ProcessingResult) {
	if !c.current(generation) {
		c.debugf("dropped result from superseded run")
		return
	}
	if err := c.machine.Finish(result.OK); err != nil {
		c.errorf("finish run: %v", err)
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	presentation := outcome.Classify(result)
	c.result = &result
	c.status = domain.StatusMessage{Text: presentation.Message, Severity: presentation.Severity}
	c.infof("run %s finished: %s", c.runID, presentation.Category)

	eventType := EventTypeResult
	if !result.OK {
		eventType = EventTypeError
	}
	c.publish(Event{
		Type:     eventType,
		Message:  result.Message,
		Severity: presentation.Severity,
		Result:   &result,
	})
}

// current reports whether generation belongs to the active run.
func (c *Controller) current(generation uint64) bool {
	return generation == c.generation && c.machine.State() == domain.PipelineStateRunning
}

// publish stores an event with the post-change snapshot and pushes it.
func (c *Controller) publish(event Event) domain.View {
	view := c.snapshot()
	event.RunID = view.RunID
	event.State = view.State
	event.View = view

	published := c.events.Publish(event)
	if c.notify != nil {
		c.notify(published)
	}
	return view
}

// snapshot builds the view model from owned state.
func (c *Controller) snapshot() domain.View {
	state := c.machine.State()
	view := domain.View{
		RunID:    c.runID,
		State:    state,
		Progress: c.progress,
		Status:   c.status,
		CanStart: state == domain.PipelineStateSelected,
		CanReset: state != domain.PipelineStateIdle,
	}
	if c.selection != nil {
		sel := *c.selection
		view.Selection = &sel
	}
	if c.result != nil {
		result := *c.result
		view.Result = &result
		presentation := outcome.Classify(result)
		view.HasSecondaryAction = presentation.HasSecondaryAction
		view.SecondaryActionPath = presentation.OutputDir
	}
	return view
}

func (c *Controller) infof(format string, args ...any) {
	if c.log != nil {
		c.log.Info(fmt.Sprintf(format, args...))
	}
}

func (c *Controller) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debug(fmt.Sprintf(format, args...))
	}
}

func (c *Controller) errorf(format string, args ...any) {
	if c.log != nil {
		c.log.Error(fmt.Sprintf(format, args...))
	}
}
