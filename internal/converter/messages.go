package converter

import (
	"encoding/json"
	"fmt"

	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/models"
)

// ProfileToWire converts a model profile. Lists are always encoded as arrays, never null.
func ProfileToWire(p models.SaveProfile) ProfileJSON {
	w := ProfileJSON{
		Resources: ResourceStateJSON{
			Current: ResourcesToWire(p.Resources.Current),
			Max:     ResourcesToWire(p.Resources.Max),
			PerTick: ResourcesToWire(p.Resources.PerTick),
		},
		Assets:           make([]AssetJSON, 0, len(p.Assets)),
		InProgressAssets: make([]InProgressAssetJSON, 0, len(p.InProgressAssets)),
		OwnedContainers:  make([]OwnedContainerJSON, 0, len(p.OwnedContainers)),
		CreatedAt:        FormatTime(p.CreatedAt),
	}
	for _, a := range p.Assets {
		w.Assets = append(w.Assets, AssetJSON{
			Type:                     string(a.Type),
			ID:                       a.ID,
			Count:                    a.Count,
			DevelopmentProgressTicks: a.DevelopmentProgressTicks,
		})
	}
	for _, ip := range p.InProgressAssets {
		w.InProgressAssets = append(w.InProgressAssets, InProgressAssetJSON{
			Type:                     string(ip.Type),
			ID:                       ip.ID,
			Status:                   string(ip.Status),
			DevelopmentProgressTicks: ip.DevelopmentProgressTicks,
			StartTime:                FormatTime(ip.StartTime),
		})
	}
	for _, c := range p.OwnedContainers {
		w.OwnedContainers = append(w.OwnedContainers, OwnedContainerJSON{ID: c.ID, TypeID: c.TypeID})
	}
	return w
}

// WireToProfile converts a wire profile. Entries with an unknown category tag and
// stacks with a non-positive count are dropped.
func WireToProfile(w ProfileJSON) (models.SaveProfile, error) {
	createdAt, err := ParseTime(w.CreatedAt)
	if err != nil {
		return models.SaveProfile{}, fmt.Errorf("createdAt: %w", err)
	}

	p := models.SaveProfile{
		Resources: models.ResourceState{
			Current: WireToResources(w.Resources.Current),
			Max:     WireToResources(w.Resources.Max),
			PerTick: WireToResources(w.Resources.PerTick),
		},
		Assets:           make([]models.AcquiredAsset, 0, len(w.Assets)),
		InProgressAssets: make([]models.InProgressAsset, 0, len(w.InProgressAssets)),
		OwnedContainers:  make([]models.OwnedContainer, 0, len(w.OwnedContainers)),
		CreatedAt:        createdAt,
	}

	for _, a := range w.Assets {
		category := models.AssetCategory(a.Type)
		if !category.Valid() || a.Count <= 0 {
			continue
		}
		p.Assets = append(p.Assets, models.AcquiredAsset{
			Type:                     category,
			ID:                       a.ID,
			Count:                    a.Count,
			DevelopmentProgressTicks: a.DevelopmentProgressTicks,
		})
	}

	for i, ip := range w.InProgressAssets {
		category := models.AssetCategory(ip.Type)
		if !category.Valid() {
			continue
		}
		status, err := parseStatus(ip.Status)
		if err != nil {
			return models.SaveProfile{}, fmt.Errorf("inProgressAssets[%d]: %w", i, err)
		}
		entry := models.InProgressAsset{
			Type:                     category,
			ID:                       ip.ID,
			Status:                   status,
			DevelopmentProgressTicks: ip.DevelopmentProgressTicks,
		}
		if ip.StartTime != "" {
			if entry.StartTime, err = ParseTime(ip.StartTime); err != nil {
				return models.SaveProfile{}, fmt.Errorf("inProgressAssets[%d].start_time: %w", i, err)
			}
		}
		p.InProgressAssets = append(p.InProgressAssets, entry)
	}

	for _, c := range w.OwnedContainers {
		p.OwnedContainers = append(p.OwnedContainers, models.OwnedContainer{ID: c.ID, TypeID: c.TypeID})
	}

	return p, nil
}

// EncodeProfile serializes a profile to JSON
func EncodeProfile(p models.SaveProfile) ([]byte, error) {
	data, err := json.Marshal(ProfileToWire(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return data, nil
}

// DecodeProfile parses a JSON profile
func DecodeProfile(data []byte) (models.SaveProfile, error) {
	var w ProfileJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return models.SaveProfile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return WireToProfile(w)
}

// CapacityJSON is the slot usage of one category
type CapacityJSON struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Limited  bool    `json:"limited"`
	Used     int     `json:"used"`
}

// CapacityToWire reports slot usage for every category in deterministic order
func CapacityToWire(p models.SaveProfile, settings *models.Settings) []CapacityJSON {
	capacity := engine.ComputeCapacity(p, settings)
	out := make([]CapacityJSON, 0, len(models.AllAssetCategories()))
	for _, category := range models.AllAssetCategories() {
		limit, limited := capacity.Limit(category)
		out = append(out, CapacityJSON{
			Category: string(category),
			Limit:    limit,
			Limited:  limited,
			Used:     engine.Occupancy(p, category),
		})
	}
	return out
}

// AssetDefinitionJSON is one catalog entry
type AssetDefinitionJSON struct {
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	Category               string        `json:"category"`
	Cost                   ResourcesJSON `json:"cost"`
	TimeCostTicks          int           `json:"time_cost_ticks,omitempty"`
	IncomePerTick          ResourcesJSON `json:"income_per_tick"`
	MaintenanceCostPerTick ResourcesJSON `json:"maintenance_cost_per_tick"`
	ResourceMax            ResourcesJSON `json:"resource_max"`
}

// ContainerTypeJSON is one purchasable container type
type ContainerTypeJSON struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Cost       ResourcesJSON      `json:"cost"`
	Capacities map[string]float64 `json:"capacities"`
}

// CatalogJSON is the read-only view of the loaded settings
type CatalogJSON struct {
	TickIntervalMs     int64                 `json:"gameTickInterval"`
	MaxSaveSlots       int                   `json:"max_save_slots"`
	Assets             []AssetDefinitionJSON `json:"assets"`
	ContainerTypes     []ContainerTypeJSON   `json:"container_types"`
	UnlimitedResources []string              `json:"unlimited_resources"`
	Digest             string                `json:"digest"`
}

// SettingsToCatalog flattens settings into document order
func SettingsToCatalog(settings *models.Settings) CatalogJSON {
	c := CatalogJSON{
		TickIntervalMs:     settings.TickInterval.Milliseconds(),
		MaxSaveSlots:       settings.MaxSaveSlots,
		Assets:             []AssetDefinitionJSON{},
		ContainerTypes:     make([]ContainerTypeJSON, 0, len(settings.ContainerTypes)),
		UnlimitedResources: []string{},
		Digest:             settings.Digest,
	}
	for _, category := range models.AllAssetCategories() {
		for _, def := range settings.AssetsIn(category) {
			c.Assets = append(c.Assets, AssetDefinitionJSON{
				ID:                     def.ID,
				Name:                   def.Name,
				Category:               string(category),
				Cost:                   ResourcesToWire(def.Cost),
				TimeCostTicks:          def.TimeCostTicks,
				IncomePerTick:          ResourcesToWire(def.IncomePerTick),
				MaintenanceCostPerTick: ResourcesToWire(def.MaintenanceCostPerTick),
				ResourceMax:            ResourcesToWire(def.ResourceMax),
			})
		}
	}
	for _, ct := range settings.ContainerTypes {
		capacities := make(map[string]float64, len(ct.Capacities))
		for category, slots := range ct.Capacities {
			capacities[string(category)] = slots
		}
		c.ContainerTypes = append(c.ContainerTypes, ContainerTypeJSON{
			ID:         ct.ID,
			Name:       ct.Name,
			Cost:       ResourcesToWire(engine.ContainerCost(ct)),
			Capacities: capacities,
		})
	}
	for _, rt := range models.AllResourceTypes() {
		if settings.IsUnlimited(rt) {
			c.UnlimitedResources = append(c.UnlimitedResources, string(rt))
		}
	}
	return c
}
