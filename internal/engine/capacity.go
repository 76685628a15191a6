package engine

import "github.com/napolitain/tycoon/internal/models"

// Capacity is the total number of slots per asset category granted by owned containers.
// A category without a key is not gated.
type Capacity map[models.AssetCategory]float64

// Limit returns the slot limit for a category and whether one is enforced
func (c Capacity) Limit(category models.AssetCategory) (float64, bool) {
	limit, ok := c[category]
	return limit, ok
}

// ComputeCapacity sums the capacities of every owned container.
// Containers whose type is missing from settings contribute nothing.
func ComputeCapacity(profile models.SaveProfile, settings *models.Settings) Capacity {
	capacity := make(Capacity)
	for _, owned := range profile.OwnedContainers {
		ct, ok := settings.ContainerType(owned.TypeID)
		if !ok {
			continue
		}
		for _, category := range models.AllAssetCategories() {
			if slots, ok := ct.Capacities[category]; ok {
				capacity[category] += slots
			}
		}
	}
	return capacity
}

// Occupancy counts owned units plus in-progress entries of a category
func Occupancy(profile models.SaveProfile, category models.AssetCategory) int {
	occupied := 0
	for _, a := range profile.Assets {
		if a.Type == category && a.Count > 0 {
			occupied += a.Count
		}
	}
	for _, ip := range profile.InProgressAssets {
		if ip.Type == category {
			occupied++
		}
	}
	return occupied
}

// HasFreeSlot reports whether one more asset of category may be acquired.
// Existing occupancy above the limit is never evicted, it only blocks new acquisitions.
func HasFreeSlot(profile models.SaveProfile, category models.AssetCategory, settings *models.Settings) bool {
	limit, ok := ComputeCapacity(profile, settings).Limit(category)
	if !ok {
		return true
	}
	return float64(Occupancy(profile, category)) < limit
}
