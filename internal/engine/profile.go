package engine

import (
	"time"

	"github.com/napolitain/tycoon/internal/models"
)

// CreateProfile builds a new save profile from the settings' initial section.
// Employee starting assets are folded into max and per_tick, content starting assets
// are owned outright, and one lowest-tier container is granted.
func CreateProfile(settings *models.Settings, now time.Time) models.SaveProfile {
	p := models.SaveProfile{
		Resources: models.ResourceState{
			Current: settings.Initial.Resources,
		},
		Assets:           []models.AcquiredAsset{},
		InProgressAssets: []models.InProgressAsset{},
		OwnedContainers:  []models.OwnedContainer{},
		CreatedAt:        now.UTC(),
	}

	for _, category := range []models.AssetCategory{models.Employee, models.Content} {
		for _, def := range settings.AssetsIn(category) {
			count := settings.Initial.Assets[def.ID]
			if count <= 0 {
				continue
			}
			asset := models.AcquiredAsset{Type: category, ID: def.ID, Count: count}
			if category == models.Employee {
				n := float64(count)
				p.Resources.Max = p.Resources.Max.Add(def.ResourceMax.Scale(n))
				p.Resources.PerTick = p.Resources.PerTick.Add(def.IncomePerTick.Scale(n))
			} else {
				asset.DevelopmentProgressTicks = def.TimeCostTicks
			}
			p.Assets = append(p.Assets, asset)
		}
	}

	for _, rt := range models.AllResourceTypes() {
		if settings.IsUnlimited(rt) {
			continue
		}
		p.Resources.Current.Set(rt, min(p.Resources.Current.Get(rt), p.Resources.Max.Get(rt)))
	}

	if ct, ok := settings.LowestTierContainer(); ok {
		p.OwnedContainers = append(p.OwnedContainers, models.OwnedContainer{
			ID:     ct.ID + "-1",
			TypeID: ct.ID,
		})
	}

	return p
}
