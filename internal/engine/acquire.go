package engine

import (
	"fmt"
	"time"

	"github.com/napolitain/tycoon/internal/models"
)

// Outcome is the result of an acquisition attempt
type Outcome int

const (
	Applied Outcome = iota
	UnknownDefinition
	CapacityExhausted
	InsufficientResources
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case UnknownDefinition:
		return "unknown_definition"
	case CapacityExhausted:
		return "capacity_exhausted"
	case InsufficientResources:
		return "insufficient_resources"
	default:
		return "unknown"
	}
}

// AcquireAsset develops a content asset or hires an employee. See TryAcquireAsset.
func AcquireAsset(profile models.SaveProfile, category models.AssetCategory, assetID string, settings *models.Settings, now time.Time) models.SaveProfile {
	next, _ := TryAcquireAsset(profile, category, assetID, settings, now)
	return next
}

// TryAcquireAsset validates definition, capacity and affordability in that order and
// applies the acquisition only if every check passes. On rejection profile is returned
// unchanged together with the first failing check.
func TryAcquireAsset(profile models.SaveProfile, category models.AssetCategory, assetID string, settings *models.Settings, now time.Time) (models.SaveProfile, Outcome) {
	def, ok := settings.Asset(category, assetID)
	if !ok {
		return profile, UnknownDefinition
	}
	if !HasFreeSlot(profile, category, settings) {
		return profile, CapacityExhausted
	}
	if !def.Cost.CoveredBy(profile.Resources.Current) {
		return profile, InsufficientResources
	}

	next := profile.Clone()
	next.Resources.Current = next.Resources.Current.Sub(def.Cost).NonNegative()

	switch category {
	case models.Content:
		next.InProgressAssets = append(next.InProgressAssets, models.InProgressAsset{
			Type:                     category,
			ID:                       def.ID,
			Status:                   models.StatusInProgress,
			DevelopmentProgressTicks: 0,
			StartTime:                now.UTC(),
		})
	case models.Employee:
		if i := next.FindAsset(category, def.ID); i >= 0 {
			next.Assets[i].Count++
		} else {
			next.Assets = append(next.Assets, models.AcquiredAsset{
				Type:  category,
				ID:    def.ID,
				Count: 1,
			})
		}
		refreshDerived(&next, settings)
	}

	return next, Applied
}

// PurchaseContainer buys one container. See TryPurchaseContainer.
func PurchaseContainer(profile models.SaveProfile, containerTypeID string, settings *models.Settings) models.SaveProfile {
	next, _ := TryPurchaseContainer(profile, containerTypeID, settings)
	return next
}

// TryPurchaseContainer checks the flat cost list against current resources, deducts it
// and appends a new owned container. Containers are never capacity gated.
func TryPurchaseContainer(profile models.SaveProfile, containerTypeID string, settings *models.Settings) (models.SaveProfile, Outcome) {
	ct, ok := settings.ContainerType(containerTypeID)
	if !ok {
		return profile, UnknownDefinition
	}

	cost := ContainerCost(ct)
	if !cost.CoveredBy(profile.Resources.Current) {
		return profile, InsufficientResources
	}

	next := profile.Clone()
	next.Resources.Current = next.Resources.Current.Sub(cost).NonNegative()
	next.OwnedContainers = append(next.OwnedContainers, models.OwnedContainer{
		ID:     nextContainerID(profile.OwnedContainers, ct.ID),
		TypeID: ct.ID,
	})
	return next, Applied
}

// ContainerCost folds a flat cost list into a resource vector
func ContainerCost(ct *models.ContainerType) models.Resources {
	var cost models.Resources
	for _, c := range ct.Cost {
		cost.Set(c.Resource, cost.Get(c.Resource)+c.Amount)
	}
	return cost
}

// nextContainerID returns a deterministic id not yet used by any owned container
func nextContainerID(owned []models.OwnedContainer, typeID string) string {
	taken := make(map[string]bool, len(owned))
	for _, c := range owned {
		taken[c.ID] = true
	}
	for n := len(owned) + 1; ; n++ {
		id := fmt.Sprintf("%s-%d", typeID, n)
		if !taken[id] {
			return id
		}
	}
}
