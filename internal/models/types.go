package models

import "fmt"

// ResourceType represents the different resource types in the game
type ResourceType string

const (
	Creativity   ResourceType = "resource_1"
	Productivity ResourceType = "resource_2"
	Money        ResourceType = "resource_3"
)

// AllResourceTypes returns all resource types in deterministic order
func AllResourceTypes() []ResourceType {
	return []ResourceType{Creativity, Productivity, Money}
}

// ParseResourceType resolves a settings/profile key to a resource type
func ParseResourceType(key string) (ResourceType, bool) {
	switch ResourceType(key) {
	case Creativity, Productivity, Money:
		return ResourceType(key), true
	}
	return "", false
}

// DisplayName returns a human readable resource name
func (rt ResourceType) DisplayName() string {
	switch rt {
	case Creativity:
		return "Creativity"
	case Productivity:
		return "Productivity"
	case Money:
		return "Money"
	}
	return string(rt)
}

// Resources is a fixed resource vector (no maps)
type Resources struct {
	Creativity   float64
	Productivity float64
	Money        float64
}

// Get returns the amount for a specific resource type
func (r Resources) Get(rt ResourceType) float64 {
	switch rt {
	case Creativity:
		return r.Creativity
	case Productivity:
		return r.Productivity
	case Money:
		return r.Money
	}
	return 0
}

// Set sets the amount for a specific resource type
func (r *Resources) Set(rt ResourceType, amount float64) {
	switch rt {
	case Creativity:
		r.Creativity = amount
	case Productivity:
		r.Productivity = amount
	case Money:
		r.Money = amount
	}
}

// Each iterates over all resources in deterministic order
func (r Resources) Each(fn func(ResourceType, float64)) {
	fn(Creativity, r.Creativity)
	fn(Productivity, r.Productivity)
	fn(Money, r.Money)
}

// Add returns the element-wise sum
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Creativity:   r.Creativity + o.Creativity,
		Productivity: r.Productivity + o.Productivity,
		Money:        r.Money + o.Money,
	}
}

// Sub returns the element-wise difference
func (r Resources) Sub(o Resources) Resources {
	return Resources{
		Creativity:   r.Creativity - o.Creativity,
		Productivity: r.Productivity - o.Productivity,
		Money:        r.Money - o.Money,
	}
}

// Scale multiplies every resource by f
func (r Resources) Scale(f float64) Resources {
	return Resources{
		Creativity:   r.Creativity * f,
		Productivity: r.Productivity * f,
		Money:        r.Money * f,
	}
}

// NonNegative clamps every resource to >= 0
func (r Resources) NonNegative() Resources {
	return Resources{
		Creativity:   max(0, r.Creativity),
		Productivity: max(0, r.Productivity),
		Money:        max(0, r.Money),
	}
}

// CoveredBy reports whether every amount in r is available in avail
func (r Resources) CoveredBy(avail Resources) bool {
	return r.Creativity <= avail.Creativity &&
		r.Productivity <= avail.Productivity &&
		r.Money <= avail.Money
}

// IsZero reports whether all amounts are zero
func (r Resources) IsZero() bool {
	return r == Resources{}
}

func (r Resources) String() string {
	return fmt.Sprintf("creativity=%g productivity=%g money=%g", r.Creativity, r.Productivity, r.Money)
}

// AssetCategory is the closed set of acquirable asset groups
type AssetCategory string

const (
	// Content assets (games) develop for a number of ticks before producing income
	Content AssetCategory = "asset_group_1"
	// Employee assets take effect immediately and grant capacity/income
	Employee AssetCategory = "asset_group_2"
)

// AllAssetCategories returns all categories in deterministic order
func AllAssetCategories() []AssetCategory {
	return []AssetCategory{Content, Employee}
}

// ParseAssetCategory accepts the wire tag or the short name ("content", "employee")
func ParseAssetCategory(s string) (AssetCategory, error) {
	switch s {
	case string(Content), "content", "game", "games":
		return Content, nil
	case string(Employee), "employee", "employees":
		return Employee, nil
	}
	return "", fmt.Errorf("unknown asset category %q", s)
}

// Valid reports whether c is one of the known categories
func (c AssetCategory) Valid() bool {
	return c == Content || c == Employee
}

// ShortName returns the short display name of the category
func (c AssetCategory) ShortName() string {
	switch c {
	case Content:
		return "content"
	case Employee:
		return "employee"
	}
	return string(c)
}
