package domain

// DetectionProfile is a named detector preset shown in settings.
type DetectionProfile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	WatermarkHosts []string `json:"watermarkHosts"`
	MinRepeatRatio float64  `json:"minRepeatRatio"`
	Active         bool     `json:"active"`
}
