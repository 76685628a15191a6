package solver

import (
	"math"
	"sort"

	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/models"
)

// containerDiscount halves the value of a container relative to the asset it unlocks
const containerDiscount = 0.5

// ROIMetric represents the components of an ROI calculation
type ROIMetric struct {
	GainPerTick float64 // net income the acquisition adds, summed over all resources
	TotalCost   float64 // summed over all resources
	DelayTicks  int     // ticks before the income starts
	Discount    float64 // 0.0 keeps the full value, 0.5 halves it
}

// PaybackTicks is the number of ticks until the acquisition has paid for itself.
// Acquisitions without positive gain never pay back.
func (m ROIMetric) PaybackTicks() float64 {
	if m.GainPerTick <= 0 {
		return math.Inf(1)
	}
	return m.TotalCost/m.GainPerTick + float64(m.DelayTicks)
}

// Calculate computes the final ROI value, higher is better
func (m ROIMetric) Calculate() float64 {
	payback := m.PaybackTicks()
	if math.IsInf(payback, 1) {
		return 0
	}
	return (1.0 - m.Discount) / (payback + 1)
}

// CandidateKind is the action a candidate stands for
type CandidateKind string

const (
	KindAsset     CandidateKind = "acquire"
	KindContainer CandidateKind = "container"
)

// Candidate is one action the planner may take next
type Candidate struct {
	Kind     CandidateKind
	Category models.AssetCategory // asset category, or the category a container unlocks
	ID       string
	Name     string
	Cost     models.Resources
	// WaitTicks is how long current income needs to cover Cost
	WaitTicks int
	Metric    ROIMetric
	Score     float64
}

// Rank lists every reachable action sorted by ROI (best first).
// Assets blocked by capacity are left out, and the containers that would unlock them
// are ranked in their place.
func Rank(profile models.SaveProfile, settings *models.Settings) []Candidate {
	totals := engine.Aggregate(profile.Assets, settings)
	var candidates []Candidate
	blocked := make(map[models.AssetCategory]*models.AssetDefinition)

	for _, category := range models.AllAssetCategories() {
		free := engine.HasFreeSlot(profile, category, settings)
		var bestBlocked float64
		for _, def := range settings.AssetsIn(category) {
			metric := assetMetric(def)
			if metric.GainPerTick <= 0 {
				continue
			}
			if !free {
				if roi := metric.Calculate(); roi > bestBlocked {
					bestBlocked = roi
					blocked[category] = def
				}
				continue
			}
			wait := ticksUntilAffordable(def.Cost, profile, totals, settings)
			if wait < 0 {
				continue
			}
			metric.DelayTicks += wait
			candidates = append(candidates, Candidate{
				Kind:      KindAsset,
				Category:  category,
				ID:        def.ID,
				Name:      def.Name,
				Cost:      def.Cost,
				WaitTicks: wait,
				Metric:    metric,
				Score:     metric.Calculate(),
			})
		}
	}

	for _, ct := range settings.ContainerTypes {
		if c, ok := containerCandidate(ct, blocked, profile, totals, settings); ok {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.WaitTicks != b.WaitTicks {
			return a.WaitTicks < b.WaitTicks
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
	return candidates
}

func assetMetric(def *models.AssetDefinition) ROIMetric {
	return ROIMetric{
		GainPerTick: resourceTotal(def.IncomePerTick) - resourceTotal(def.MaintenanceCostPerTick),
		TotalCost:   resourceTotal(def.Cost),
		DelayTicks:  def.TimeCostTicks,
	}
}

// containerCandidate values a container by the best blocked asset it would make room for
func containerCandidate(ct *models.ContainerType, blocked map[models.AssetCategory]*models.AssetDefinition, profile models.SaveProfile, totals engine.Totals, settings *models.Settings) (Candidate, bool) {
	cost := engine.ContainerCost(ct)
	wait := ticksUntilAffordable(cost, profile, totals, settings)
	if wait < 0 {
		return Candidate{}, false
	}

	var best Candidate
	found := false
	for _, category := range models.AllAssetCategories() {
		def := blocked[category]
		if def == nil || ct.Capacities[category] < 1 {
			continue
		}
		combined := cost.Add(def.Cost)
		combinedWait := ticksUntilAffordable(combined, profile, totals, settings)
		if combinedWait < 0 {
			continue
		}
		metric := assetMetric(def)
		metric.TotalCost = resourceTotal(combined)
		metric.DelayTicks += combinedWait
		metric.Discount = containerDiscount

		score := metric.Calculate()
		if found && score <= best.Score {
			continue
		}
		found = true
		best = Candidate{
			Kind:      KindContainer,
			Category:  category,
			ID:        ct.ID,
			Name:      ct.Name,
			Cost:      cost,
			WaitTicks: wait,
			Metric:    metric,
			Score:     score,
		}
	}
	return best, found
}

// ticksUntilAffordable returns the whole ticks of income needed to cover cost, or -1
// when a capped ceiling is below the cost or a missing resource has no net income.
func ticksUntilAffordable(cost models.Resources, profile models.SaveProfile, totals engine.Totals, settings *models.Settings) int {
	ceiling := totals.Max()
	rate := totals.NetIncome()
	wait := 0
	for _, rt := range models.AllResourceTypes() {
		need := cost.Get(rt) - profile.Resources.Current.Get(rt)
		if need <= 0 {
			continue
		}
		if !settings.IsUnlimited(rt) && cost.Get(rt) > ceiling.Get(rt) {
			return -1
		}
		perTick := rate.Get(rt)
		if perTick <= 0 {
			return -1
		}
		wait = max(wait, int(math.Ceil(need/perTick)))
	}
	return wait
}

func resourceTotal(r models.Resources) float64 {
	var total float64
	r.Each(func(_ models.ResourceType, amount float64) {
		total += amount
	})
	return total
}
