package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"pdf-unwatermark/internal/domain"
)

// ErrRunFailed is returned by Stream when the run ends failed.
var ErrRunFailed = errors.New("run failed")

// Stream runs sel once and prints each state, progress and status change
// to w until the run ends. It is the non-interactive counterpart of Model.
func Stream(ctx context.Context, ctrl Controller, sel domain.FileSelection, w io.Writer) (domain.View, error) {
	if _, err := ctrl.Select(ctx, sel); err != nil {
		return domain.View{}, fmt.Errorf("select: %w", err)
	}
	if _, err := ctrl.Start(ctx); err != nil {
		return domain.View{}, fmt.Errorf("start: %w", err)
	}

	fmt.Fprintln(w, HeaderStyle.Render("PDF Watermark Remover"))
	bar := progress.New(progress.WithSolidFill("#7b68ee"), progress.WithWidth(30))

	var (
		lastSeq int64
		view    domain.View
	)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for _, event := range ctrl.Events().Since(lastSeq) {
			lastSeq = event.Seq
			view = event.View

			switch {
			case event.Progress > 0:
				fmt.Fprintf(w, "%s %3d%%\n", bar.ViewAs(float64(event.Progress)/100), event.Progress)
			case event.Message != "":
				fmt.Fprintln(w, StatusStyle(event.Severity).Render(event.Message))
			}
		}

		if view.State.IsTerminal() {
			if view.State == domain.PipelineStateFailed {
				return view, ErrRunFailed
			}
			return view, nil
		}

		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-ticker.C:
		}
	}
}
