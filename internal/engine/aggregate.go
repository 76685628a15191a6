package engine

import "github.com/napolitain/tycoon/internal/models"

// Totals are the per-tick aggregates derived from a profile's completed assets
type Totals struct {
	BaseMax              models.Resources // employee resource_max x count
	GrossIncome          models.Resources // income_per_tick x count, all categories
	LimitedMaintenance   models.Resources // shrinks the ceiling of capped resources
	UnlimitedMaintenance models.Resources // reduces the net rate of uncapped resources
}

// Max is the effective ceiling: max(0, base max - limited maintenance)
func (t Totals) Max() models.Resources {
	return t.BaseMax.Sub(t.LimitedMaintenance).NonNegative()
}

// PerTick is the display income rate (gross, before maintenance)
func (t Totals) PerTick() models.Resources {
	return t.GrossIncome
}

// NetIncome is the gross income minus maintenance on uncapped resources
func (t Totals) NetIncome() models.Resources {
	return t.GrossIncome.Sub(t.UnlimitedMaintenance)
}

// Aggregate walks completed assets and sums capacity, income and maintenance.
// Assets that do not resolve to a definition contribute nothing.
func Aggregate(assets []models.AcquiredAsset, settings *models.Settings) Totals {
	var t Totals
	for _, a := range assets {
		if a.Count <= 0 {
			continue
		}
		def, ok := settings.Asset(a.Type, a.ID)
		if !ok {
			continue
		}
		count := float64(a.Count)

		if a.Type == models.Employee {
			t.BaseMax = t.BaseMax.Add(def.ResourceMax.Scale(count))
		}
		t.GrossIncome = t.GrossIncome.Add(def.IncomePerTick.Scale(count))

		def.MaintenanceCostPerTick.Each(func(rt models.ResourceType, amount float64) {
			if amount == 0 {
				return
			}
			if settings.IsUnlimited(rt) {
				t.UnlimitedMaintenance.Set(rt, t.UnlimitedMaintenance.Get(rt)+amount*count)
			} else {
				t.LimitedMaintenance.Set(rt, t.LimitedMaintenance.Get(rt)+amount*count)
			}
		})
	}
	return t
}

// refreshDerived recomputes the cached max/per_tick. Current levels are left alone;
// the next tick clamps them to the new ceiling.
func refreshDerived(p *models.SaveProfile, settings *models.Settings) Totals {
	totals := Aggregate(p.Assets, settings)
	p.Resources.Max = totals.Max()
	p.Resources.PerTick = totals.PerTick()
	return totals
}
