// Package tui renders the pipeline controller in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/jobs"
)

const (
	pollInterval = 50 * time.Millisecond
	callTimeout  = 5 * time.Second
	maxBarWidth  = 60
)

// Controller is the part of the pipeline controller the terminal drives.
type Controller interface {
	Select(ctx context.Context, sel domain.FileSelection) (domain.View, error)
	Start(ctx context.Context) (domain.View, error)
	Reset(ctx context.Context) (domain.View, error)
	Events() *jobs.EventBus
}

// FolderOpener reveals the output directory.
type FolderOpener interface {
	OpenDirectory(dir string) error
}

// eventsMsg carries controller events newer than the last applied one.
type eventsMsg []jobs.Event

// actionErrMsg reports a failed controller call or folder open.
type actionErrMsg struct{ err error }

// Model is the bubbletea model for one PDF.
type Model struct {
	ctrl      Controller
	opener    FolderOpener
	selection domain.FileSelection

	view    domain.View
	lastSeq int64
	bar     progress.Model
	err     error

	quitting bool
}

// New builds a model that selects sel and starts a run on Init.
func New(ctrl Controller, opener FolderOpener, sel domain.FileSelection) Model {
	return Model{
		ctrl:      ctrl,
		opener:    opener,
		selection: sel,
		bar:       progress.New(progress.WithGradient("#7b68ee", "#40c060"), progress.WithWidth(40)),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run(false), m.poll())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "o":
			if m.view.HasSecondaryAction {
				return m, m.open(m.view.SecondaryActionPath)
			}
		case "r":
			m.err = nil
			return m, m.run(true)
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)

	case eventsMsg:
		for _, event := range msg {
			if event.Seq <= m.lastSeq {
				continue
			}
			m.lastSeq = event.Seq
			m.view = event.View
		}
		return m, m.poll()

	case actionErrMsg:
		m.err = msg.err
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	name := m.selection.DisplayName
	if m.view.Selection != nil {
		name = m.view.Selection.DisplayName
	}

	sections := []string{
		HeaderStyle.Render("PDF Watermark Remover"),
		"File: " + FileStyle.Render(name),
		m.bar.ViewAs(float64(m.view.Progress) / 100),
	}

	if text := m.view.Status.Text; text != "" {
		sections = append(sections, StatusStyle(m.view.Status.Severity).Render(text))
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(m.err.Error()))
	}

	controls := []string{"[r] Run again", "[q] Quit"}
	if m.view.HasSecondaryAction {
		controls = append([]string{"[o] Open output folder"}, controls...)
	}
	sections = append(sections, HelpStyle.Render(strings.Join(controls, "  ")))

	return strings.Join(sections, "\n\n") + "\n"
}

// run selects the file and starts a run, resetting first when again is set.
func (m Model) run(again bool) tea.Cmd {
	ctrl, sel := m.ctrl, m.selection
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		if again {
			if _, err := ctrl.Reset(ctx); err != nil {
				return actionErrMsg{fmt.Errorf("reset: %w", err)}
			}
		}
		if _, err := ctrl.Select(ctx, sel); err != nil {
			return actionErrMsg{fmt.Errorf("select: %w", err)}
		}
		if _, err := ctrl.Start(ctx); err != nil {
			return actionErrMsg{fmt.Errorf("start: %w", err)}
		}
		return nil
	}
}

// open reveals dir in the file manager.
func (m Model) open(dir string) tea.Cmd {
	opener := m.opener
	return func() tea.Msg {
		if err := opener.OpenDirectory(dir); err != nil {
			return actionErrMsg{err}
		}
		return nil
	}
}

// poll reads events newer than the last applied one after a short delay.
func (m Model) poll() tea.Cmd {
	events, since := m.ctrl.Events(), m.lastSeq
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return eventsMsg(events.Since(since))
	})
}
