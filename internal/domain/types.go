package domain

// PipelineState tracks the controller lifecycle for one selected PDF.
type PipelineState string

const (
	PipelineStateIdle      PipelineState = "idle"
	PipelineStateSelected  PipelineState = "selected"
	PipelineStateRunning   PipelineState = "running"
	PipelineStateSucceeded PipelineState = "succeeded"
	PipelineStateFailed    PipelineState = "failed"
)

// IsTerminal reports whether the state ends a run.
func (s PipelineState) IsTerminal() bool {
	return s == PipelineStateSucceeded || s == PipelineStateFailed
}

// FileSelection is one accepted PDF reference.
type FileSelection struct {
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
}

// Severity drives how a status message is presented.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeveritySuccess     Severity = "success"
	SeveritySoftSuccess Severity = "soft_success"
	SeverityError       Severity = "error"
)

// StatusMessage is user-facing status text.
type StatusMessage struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// DescriptorKind names the PDF construct a descriptor points at.
type DescriptorKind string

const (
	DescriptorKindImage DescriptorKind = "image"
	DescriptorKindLink  DescriptorKind = "link"
)

// WatermarkDescriptor identifies one detected watermark object. Only the
// detector and remover interpret its fields.
type WatermarkDescriptor struct {
	Kind         DescriptorKind `json:"kind"`
	Page         int            `json:"page"`
	Name         string         `json:"name,omitempty"`
	ObjectNumber int            `json:"objectNumber,omitempty"`
	URI          string         `json:"uri,omitempty"`
}

// ProcessingResult is the terminal outcome of one run.
type ProcessingResult struct {
	OK                bool   `json:"ok"`
	WatermarksRemoved bool   `json:"watermarksRemoved"`
	WatermarkCount    int    `json:"watermarkCount"`
	OutputPath        string `json:"outputPath,omitempty"`
	Message           string `json:"message"`
}

// View is the snapshot front ends render.
type View struct {
	RunID               string            `json:"runId,omitempty"`
	State               PipelineState     `json:"state"`
	Selection           *FileSelection    `json:"selection,omitempty"`
	Progress            int               `json:"progress"`
	Status              StatusMessage     `json:"status"`
	Result              *ProcessingResult `json:"result,omitempty"`
	HasSecondaryAction  bool              `json:"hasSecondaryAction"`
	SecondaryActionPath string            `json:"secondaryActionPath,omitempty"`
	CanStart            bool              `json:"canStart"`
	CanReset            bool              `json:"canReset"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	UploadsDir     string   `json:"uploadsDir"`
	OutputsDir     string   `json:"outputsDir"`
	Profile        string   `json:"profile"`
	WatermarkHosts []string `json:"watermarkHosts"`
	MinRepeatRatio float64  `json:"minRepeatRatio"`
}
