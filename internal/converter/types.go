// Package converter provides conversions between wire (JSON) and model types
package converter

import (
	"fmt"
	"time"

	"github.com/napolitain/tycoon/internal/models"
)

// isoLayout matches JavaScript's Date.toISOString output
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ResourcesJSON is a resource vector keyed by resource id
type ResourcesJSON struct {
	Resource1 float64 `json:"resource_1"`
	Resource2 float64 `json:"resource_2"`
	Resource3 float64 `json:"resource_3"`
}

// ResourceStateJSON is the "resources" section of a profile
type ResourceStateJSON struct {
	Current ResourcesJSON `json:"current"`
	Max     ResourcesJSON `json:"max"`
	PerTick ResourcesJSON `json:"per_tick"`
}

// AssetJSON is one owned asset stack
type AssetJSON struct {
	Type                     string `json:"type"`
	ID                       string `json:"id"`
	Count                    int    `json:"count"`
	DevelopmentProgressTicks int    `json:"development_progress_ticks"`
}

// InProgressAssetJSON is one developing unit
type InProgressAssetJSON struct {
	Type                     string `json:"type"`
	ID                       string `json:"id"`
	Status                   string `json:"status"`
	DevelopmentProgressTicks int    `json:"development_progress_ticks"`
	StartTime                string `json:"start_time"`
}

// OwnedContainerJSON is one purchased container
type OwnedContainerJSON struct {
	ID     string `json:"id"`
	TypeID string `json:"typeId"`
}

// ProfileJSON is the persisted and transmitted form of a save profile
type ProfileJSON struct {
	Resources        ResourceStateJSON     `json:"resources"`
	Assets           []AssetJSON           `json:"assets"`
	InProgressAssets []InProgressAssetJSON `json:"inProgressAssets"`
	OwnedContainers  []OwnedContainerJSON  `json:"owned_containers"`
	CreatedAt        string                `json:"createdAt"`
}

// ResourcesToWire converts a model resource vector
func ResourcesToWire(r models.Resources) ResourcesJSON {
	return ResourcesJSON{
		Resource1: r.Get(models.Creativity),
		Resource2: r.Get(models.Productivity),
		Resource3: r.Get(models.Money),
	}
}

// WireToResources converts a wire resource vector
func WireToResources(r ResourcesJSON) models.Resources {
	var out models.Resources
	out.Set(models.Creativity, r.Resource1)
	out.Set(models.Productivity, r.Resource2)
	out.Set(models.Money, r.Resource3)
	return out
}

// FormatTime renders t as a UTC ISO-8601 timestamp with millisecond precision
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseTime accepts any RFC 3339 timestamp and returns it in UTC
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// parseStatus defaults a missing status to in_progress
func parseStatus(s string) (models.AssetStatus, error) {
	switch models.AssetStatus(s) {
	case "", models.StatusInProgress:
		return models.StatusInProgress, nil
	case models.StatusCompleted:
		return models.StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}
