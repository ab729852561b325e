package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pdf-unwatermark/internal/domain"
)

// Progress checkpoints emitted by one run.
const (
	ProgressAnalyzing = 10
	ProgressDetected  = 40
	ProgressRemoving  = 60
	ProgressDone      = 100
)

// Stage names used in PipelineError.
const (
	StageDetecting = "detecting"
	StageRemoving  = "removing"
)

const (
	analyzingMessage    = "Analyzing PDF for watermarks..."
	noWatermarksMessage = "No watermarks found in the PDF."
)

// Detector finds watermark objects in a PDF.
type Detector interface {
	Identify(ctx context.Context, path string) ([]domain.WatermarkDescriptor, error)
}

// Remover writes a copy of a PDF without the given watermark objects.
type Remover interface {
	Remove(ctx context.Context, path string, descriptors []domain.WatermarkDescriptor, outputPath string) (string, error)
}

// Request contains the input PDF and execution callbacks for one run.
type Request struct {
	InputPath  string
	OutputPath string
	OnProgress func(percent int)
	OnStatus   func(status domain.StatusMessage)
}

// PipelineError is a stage-aware collaborator failure.
type PipelineError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats pipeline failures for logs.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Sequence runs detection then removal against pluggable collaborators.
type Sequence struct {
	detector Detector
	remover  Remover
	abs      func(path string) (string, error)
}

// NewSequence builds a sequence over the given collaborators.
func NewSequence(detector Detector, remover Remover) *Sequence {
	return &Sequence{
		detector: detector,
		remover:  remover,
		abs:      filepath.Abs,
	}
}

// Run executes one detect-then-remove pass and returns its terminal result.
// Collaborator errors become failed results; err reports the stage detail.
func (s *Sequence) Run(ctx context.Context, req Request) (domain.ProcessingResult, error) {
	emitProgress(req.OnProgress, ProgressAnalyzing)
	emitStatus(req.OnStatus, domain.StatusMessage{Text: analyzingMessage, Severity: domain.SeverityInfo})

	if strings.TrimSpace(req.InputPath) == "" {
		err := &PipelineError{Stage: StageDetecting, Message: "input PDF path is required"}
		return failure(err.Message), err
	}

	descriptors, err := s.detector.Identify(ctx, req.InputPath)
	if err != nil {
		return failure(err.Error()), &PipelineError{
			Stage:   StageDetecting,
			Message: "watermark detection failed",
			Err:     err,
		}
	}

	emitProgress(req.OnProgress, ProgressDetected)

	if len(descriptors) == 0 {
		emitProgress(req.OnProgress, ProgressDone)
		return domain.ProcessingResult{
			OK:      true,
			Message: noWatermarksMessage,
		}, nil
	}

	emitStatus(req.OnStatus, domain.StatusMessage{
		Text:     fmt.Sprintf("Found %d watermark images. Removing...", len(descriptors)),
		Severity: domain.SeverityInfo,
	})
	emitProgress(req.OnProgress, ProgressRemoving)

	finalPath, err := s.remover.Remove(ctx, req.InputPath, descriptors, req.OutputPath)
	if err != nil {
		return failure(err.Error()), &PipelineError{
			Stage:   StageRemoving,
			Message: "watermark removal failed",
			Err:     err,
		}
	}
	if strings.TrimSpace(finalPath) == "" {
		finalPath = req.OutputPath
	}

	emitProgress(req.OnProgress, ProgressDone)

	outputDir, err := s.abs(filepath.Dir(finalPath))
	if err != nil {
		outputDir = filepath.Dir(finalPath)
	}

	return domain.ProcessingResult{
		OK:                true,
		WatermarksRemoved: true,
		WatermarkCount:    len(descriptors),
		OutputPath:        finalPath,
		Message: fmt.Sprintf(
			"Watermarks removed successfully!\n\nSaved as: %s\nLocation: %s",
			filepath.Base(finalPath),
			outputDir,
		),
	}, nil
}

// failure builds the user-facing failed result for a collaborator error.
func failure(reason string) domain.ProcessingResult {
	return domain.ProcessingResult{Message: "Error: " + reason}
}

// emitProgress forwards progress when callback is configured.
func emitProgress(cb func(percent int), percent int) {
	if cb != nil {
		cb(percent)
	}
}

// emitStatus forwards status text when callback is configured.
func emitStatus(cb func(status domain.StatusMessage), status domain.StatusMessage) {
	if cb != nil {
		cb(status)
	}
}
