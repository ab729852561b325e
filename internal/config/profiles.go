package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"pdf-unwatermark/internal/domain"
)

const (
	DefaultProfileID = "gamma"
	CustomProfileID  = "custom"
)

var profileCatalog = []domain.DetectionProfile{
	{
		ID:             DefaultProfileID,
		Name:           "Gamma",
		Description:    "Badge image on every page plus gamma.app links.",
		WatermarkHosts: []string{"gamma.app"},
		MinRepeatRatio: 1,
	},
	{
		ID:             "gamma-partial",
		Name:           "Gamma (partial exports)",
		Description:    "Badge image on most pages, for decks with a custom title slide.",
		WatermarkHosts: []string{"gamma.app"},
		MinRepeatRatio: 0.6,
	},
}

// Profiles returns the built-in detection presets, marking the one active
// in settings.
func Profiles(settings domain.Settings) []domain.DetectionProfile {
	return lo.Map(profileCatalog, func(p domain.DetectionProfile, _ int) domain.DetectionProfile {
		p.WatermarkHosts = append([]string(nil), p.WatermarkHosts...)
		p.Active = p.ID == settings.Profile
		return p
	})
}

// ProfileByID looks up a built-in preset.
func ProfileByID(id string) (domain.DetectionProfile, bool) {
	return lo.Find(profileCatalog, func(p domain.DetectionProfile) bool {
		return p.ID == strings.TrimSpace(id)
	})
}

// ApplyProfile copies a preset's detector parameters into settings.
func ApplyProfile(settings domain.Settings, id string) (domain.Settings, error) {
	profile, found := ProfileByID(id)
	if !found {
		return settings, fmt.Errorf("unknown detection profile: %s", id)
	}
	settings.Profile = profile.ID
	settings.WatermarkHosts = append([]string(nil), profile.WatermarkHosts...)
	settings.MinRepeatRatio = profile.MinRepeatRatio
	return settings, nil
}
