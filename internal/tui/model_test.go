package tui

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/jobs"
	"pdf-unwatermark/internal/pipeline"
)

type fakeController struct {
	calls  []string
	events *jobs.EventBus
}

func (c *fakeController) Select(context.Context, domain.FileSelection) (domain.View, error) {
	c.calls = append(c.calls, "select")
	return domain.View{}, nil
}

func (c *fakeController) Start(context.Context) (domain.View, error) {
	c.calls = append(c.calls, "start")
	return domain.View{}, nil
}

func (c *fakeController) Reset(context.Context) (domain.View, error) {
	c.calls = append(c.calls, "reset")
	return domain.View{}, nil
}

func (c *fakeController) Events() *jobs.EventBus {
	return c.events
}

type fakeOpener struct {
	dirs []string
	err  error
}

func (o *fakeOpener) OpenDirectory(dir string) error {
	o.dirs = append(o.dirs, dir)
	return o.err
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var deck = domain.FileSelection{Path: "/tmp/deck.pdf", DisplayName: "deck.pdf"}

func TestModelAppliesOnlyNewerEvents(t *testing.T) {
	m := New(&fakeController{events: jobs.NewEventBus(10)}, &fakeOpener{}, deck)

	updated, cmd := m.Update(eventsMsg{
		{Seq: 1, View: domain.View{State: domain.PipelineStateRunning, Progress: 40}},
		{Seq: 2, View: domain.View{State: domain.PipelineStateRunning, Progress: 60}},
	})
	if cmd == nil {
		t.Fatal("expected another poll")
	}
	updated, _ = updated.Update(eventsMsg{{Seq: 1, View: domain.View{Progress: 10}}})

	got := updated.(Model)
	if got.lastSeq != 2 || got.view.Progress != 60 {
		t.Fatalf("lastSeq = %d progress = %d", got.lastSeq, got.view.Progress)
	}
	if !strings.Contains(got.View(), "deck.pdf") {
		t.Fatalf("view missing file name:\n%s", got.View())
	}
}

func TestModelOpenRequiresSecondaryAction(t *testing.T) {
	opener := &fakeOpener{}
	m := New(&fakeController{events: jobs.NewEventBus(10)}, opener, deck)

	if _, cmd := m.Update(key("o")); cmd != nil {
		t.Fatal("expected no command without an output folder")
	}

	m.view = domain.View{
		State:               domain.PipelineStateSucceeded,
		HasSecondaryAction:  true,
		SecondaryActionPath: "/tmp/outputs",
	}
	if !strings.Contains(m.View(), "[o] Open output folder") {
		t.Fatalf("view missing open hint:\n%s", m.View())
	}

	_, cmd := m.Update(key("o"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if !reflect.DeepEqual(opener.dirs, []string{"/tmp/outputs"}) {
		t.Fatalf("opened = %v", opener.dirs)
	}
}

func TestModelOpenFailureIsShown(t *testing.T) {
	opener := &fakeOpener{err: errors.New("launch file manager: no display")}
	m := New(&fakeController{events: jobs.NewEventBus(10)}, opener, deck)
	m.view = domain.View{HasSecondaryAction: true, SecondaryActionPath: "/tmp/outputs"}

	_, cmd := m.Update(key("o"))
	updated, _ := m.Update(cmd())
	if !strings.Contains(updated.View(), "no display") {
		t.Fatalf("view missing error:\n%s", updated.View())
	}
}

func TestModelRunAgainResetsFirst(t *testing.T) {
	ctrl := &fakeController{events: jobs.NewEventBus(10)}
	m := New(ctrl, &fakeOpener{}, deck)

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("expected run command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if want := []string{"reset", "select", "start"}; !reflect.DeepEqual(ctrl.calls, want) {
		t.Fatalf("calls = %v, want %v", ctrl.calls, want)
	}
}

func TestModelQuit(t *testing.T) {
	m := New(&fakeController{events: jobs.NewEventBus(10)}, &fakeOpener{}, deck)

	updated, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if updated.View() != "" {
		t.Fatalf("expected empty view after quit, got %q", updated.View())
	}
}

type scriptedRunner struct {
	result domain.ProcessingResult
}

func (r scriptedRunner) Run(_ context.Context, req pipeline.Request) (domain.ProcessingResult, error) {
	req.OnProgress(pipeline.ProgressAnalyzing)
	req.OnStatus(domain.StatusMessage{Text: "Analyzing PDF for watermarks...", Severity: domain.SeverityInfo})
	req.OnProgress(pipeline.ProgressDone)
	return r.result, nil
}

type planner struct{}

func (planner) OutputPathFor(input string) string { return "/tmp/outputs/processed_" + input }

func startController(t *testing.T, runner jobs.Runner) *jobs.Controller {
	t.Helper()
	ctrl := jobs.NewController(runner, planner{}, jobs.NewEventBus(100), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctrl
}

func TestStreamPrintsUntilSucceeded(t *testing.T) {
	ctrl := startController(t, scriptedRunner{result: domain.ProcessingResult{
		OK:      true,
		Message: "No watermarks found in the PDF.",
	}})

	var out bytes.Buffer
	view, err := Stream(context.Background(), ctrl, deck, &out)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if view.State != domain.PipelineStateSucceeded {
		t.Fatalf("state = %s", view.State)
	}
	for _, want := range []string{"Selected: deck.pdf", "Analyzing PDF", "100%", "No watermarks found"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestStreamReportsFailure(t *testing.T) {
	ctrl := startController(t, scriptedRunner{result: domain.ProcessingResult{Message: "Error: broken xref"}})

	var out bytes.Buffer
	view, err := Stream(context.Background(), ctrl, deck, &out)
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("Stream() error = %v, want %v", err, ErrRunFailed)
	}
	if view.Status.Text != "Error: broken xref" {
		t.Fatalf("status = %+v", view.Status)
	}
}
