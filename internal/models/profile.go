package models

import "time"

// AssetStatus is the development status of an in-progress asset
type AssetStatus string

const (
	StatusInProgress AssetStatus = "in_progress"
	StatusCompleted  AssetStatus = "completed"
)

// ResourceState holds current levels plus the derived max and per-tick values.
// Max and PerTick are display caches, recomputed on every tick.
type ResourceState struct {
	Current Resources
	Max     Resources
	PerTick Resources
}

// AcquiredAsset is a completed, owned asset stack. Count is always >= 1.
type AcquiredAsset struct {
	Type                     AssetCategory
	ID                       string
	Count                    int
	DevelopmentProgressTicks int
}

// InProgressAsset is exactly one developing unit
type InProgressAsset struct {
	Type                     AssetCategory
	ID                       string
	Status                   AssetStatus
	DevelopmentProgressTicks int
	StartTime                time.Time
}

// OwnedContainer grants per-category capacity defined by its container type
type OwnedContainer struct {
	ID     string
	TypeID string
}

// SaveProfile is the root aggregate persisted per save slot
type SaveProfile struct {
	Resources        ResourceState
	Assets           []AcquiredAsset
	InProgressAssets []InProgressAsset
	OwnedContainers  []OwnedContainer
	CreatedAt        time.Time
}

// FindAsset returns the index of the owned asset stack, or -1
func (p *SaveProfile) FindAsset(category AssetCategory, id string) int {
	for i := range p.Assets {
		if p.Assets[i].Type == category && p.Assets[i].ID == id {
			return i
		}
	}
	return -1
}

// AssetCount returns how many units of an asset are owned
func (p *SaveProfile) AssetCount(category AssetCategory, id string) int {
	if i := p.FindAsset(category, id); i >= 0 {
		return p.Assets[i].Count
	}
	return 0
}

// Clone creates a deep copy of the profile
func (p SaveProfile) Clone() SaveProfile {
	clone := SaveProfile{
		Resources: p.Resources,
		CreatedAt: p.CreatedAt,
	}
	if p.Assets != nil {
		clone.Assets = make([]AcquiredAsset, len(p.Assets))
		copy(clone.Assets, p.Assets)
	}
	if p.InProgressAssets != nil {
		clone.InProgressAssets = make([]InProgressAsset, len(p.InProgressAssets))
		copy(clone.InProgressAssets, p.InProgressAssets)
	}
	if p.OwnedContainers != nil {
		clone.OwnedContainers = make([]OwnedContainer, len(p.OwnedContainers))
		copy(clone.OwnedContainers, p.OwnedContainers)
	}
	return clone
}
