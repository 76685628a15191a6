package engine

import "github.com/napolitain/tycoon/internal/models"

// CompletedAsset identifies one unit promoted from development in a tick call
type CompletedAsset struct {
	Type models.AssetCategory
	ID   string
}

// TickReport summarises what a call to Advance changed
type TickReport struct {
	Ticks     int
	Completed []CompletedAsset
	Totals    Totals
}

// AdvanceTicks advances a profile by ticks. See Advance.
func AdvanceTicks(profile models.SaveProfile, ticks int, settings *models.Settings) models.SaveProfile {
	next, _ := Advance(profile, ticks, settings)
	return next
}

// Advance progresses in-progress assets, promotes completed ones, recomputes the
// aggregates and applies ticks worth of income to current resources.
// Non-positive ticks return an equal copy of profile.
func Advance(profile models.SaveProfile, ticks int, settings *models.Settings) (models.SaveProfile, TickReport) {
	next := profile.Clone()
	if ticks <= 0 {
		return next, TickReport{}
	}
	report := TickReport{Ticks: ticks}

	// Progress and promote in document order
	if len(next.InProgressAssets) > 0 {
		remaining := make([]models.InProgressAsset, 0, len(next.InProgressAssets))
		for _, ip := range next.InProgressAssets {
			ip.DevelopmentProgressTicks += ticks
			if def, ok := settings.Asset(ip.Type, ip.ID); ok && ip.DevelopmentProgressTicks >= def.TimeCostTicks {
				ip.Status = models.StatusCompleted
			}
			if ip.Status != models.StatusCompleted {
				remaining = append(remaining, ip)
				continue
			}
			promote(&next, ip)
			report.Completed = append(report.Completed, CompletedAsset{Type: ip.Type, ID: ip.ID})
		}
		next.InProgressAssets = remaining
	}

	totals := Aggregate(next.Assets, settings)
	next.Resources.Max = totals.Max()
	next.Resources.PerTick = totals.PerTick()
	report.Totals = totals

	elapsed := float64(ticks)
	for _, rt := range models.AllResourceTypes() {
		cur := next.Resources.Current.Get(rt)
		if settings.IsUnlimited(rt) {
			cur += (totals.GrossIncome.Get(rt) - totals.UnlimitedMaintenance.Get(rt)) * elapsed
		} else {
			// Limited maintenance already shrank Max
			cur = min(next.Resources.Max.Get(rt), cur+totals.GrossIncome.Get(rt)*elapsed)
		}
		next.Resources.Current.Set(rt, max(0, cur))
	}

	return next, report
}

// promote folds a completed development into the owned asset stacks
func promote(p *models.SaveProfile, ip models.InProgressAsset) {
	if i := p.FindAsset(ip.Type, ip.ID); i >= 0 {
		p.Assets[i].Count++
		return
	}
	p.Assets = append(p.Assets, models.AcquiredAsset{
		Type:                     ip.Type,
		ID:                       ip.ID,
		Count:                    1,
		DevelopmentProgressTicks: ip.DevelopmentProgressTicks,
	})
}
