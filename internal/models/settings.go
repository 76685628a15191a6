package models

import "time"

// DefaultMaxSaveSlots is used when the settings document does not set a slot limit
const DefaultMaxSaveSlots = 5

// AssetDefinition is one acquirable asset type from the settings document
type AssetDefinition struct {
	ID                     string
	Name                   string
	Category               AssetCategory
	Cost                   Resources
	TimeCostTicks          int // content only
	IncomePerTick          Resources
	MaintenanceCostPerTick Resources
	ResourceMax            Resources // employee only
}

// ResourceAmount is one entry of a flat container cost list
type ResourceAmount struct {
	Resource ResourceType
	Amount   float64
}

// ContainerType grants fixed per-category capacity for each owned unit
type ContainerType struct {
	ID         string
	Name       string
	Cost       []ResourceAmount
	Capacities map[AssetCategory]float64
}

// InitialState is the starting point for new save profiles
type InitialState struct {
	Resources Resources
	Assets    map[string]int // asset id -> starting count
}

// AssetTable is the ordered set of definitions for one category
type AssetTable struct {
	Category AssetCategory
	Assets   []*AssetDefinition
	byID     map[string]*AssetDefinition
}

// NewAssetTable indexes definitions by id; later duplicates replace earlier ones
func NewAssetTable(category AssetCategory, defs []*AssetDefinition) *AssetTable {
	t := &AssetTable{
		Category: category,
		Assets:   defs,
		byID:     make(map[string]*AssetDefinition, len(defs)),
	}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t
}

// Get returns the definition for id
func (t *AssetTable) Get(id string) (*AssetDefinition, bool) {
	if t == nil {
		return nil, false
	}
	d, ok := t.byID[id]
	return d, ok
}

// Settings is the validated, strongly-typed settings document
type Settings struct {
	TickInterval   time.Duration
	MaxSaveSlots   int
	Initial        InitialState
	Tables         map[AssetCategory]*AssetTable
	ContainerTypes []*ContainerType
	Unlimited      map[ResourceType]bool
	Digest         string

	containersByID map[string]*ContainerType
}

// NewSettings builds lookup tables; the loader is responsible for validation
func NewSettings(initial InitialState, tables map[AssetCategory]*AssetTable, containers []*ContainerType, unlimited []ResourceType) *Settings {
	s := &Settings{
		TickInterval:   time.Second,
		MaxSaveSlots:   DefaultMaxSaveSlots,
		Initial:        initial,
		Tables:         tables,
		ContainerTypes: containers,
		Unlimited:      make(map[ResourceType]bool, len(unlimited)),
		containersByID: make(map[string]*ContainerType, len(containers)),
	}
	if s.Tables == nil {
		s.Tables = make(map[AssetCategory]*AssetTable)
	}
	if s.Initial.Assets == nil {
		s.Initial.Assets = make(map[string]int)
	}
	for _, rt := range unlimited {
		s.Unlimited[rt] = true
	}
	for _, c := range containers {
		s.containersByID[c.ID] = c
	}
	return s
}

// Asset resolves a definition by category and id
func (s *Settings) Asset(category AssetCategory, id string) (*AssetDefinition, bool) {
	return s.Tables[category].Get(id)
}

// AssetsIn returns the ordered definitions of a category
func (s *Settings) AssetsIn(category AssetCategory) []*AssetDefinition {
	if t := s.Tables[category]; t != nil {
		return t.Assets
	}
	return nil
}

// ContainerType resolves a container type by id
func (s *Settings) ContainerType(id string) (*ContainerType, bool) {
	c, ok := s.containersByID[id]
	return c, ok
}

// LowestTierContainer returns the first container type in document order
func (s *Settings) LowestTierContainer() (*ContainerType, bool) {
	if len(s.ContainerTypes) == 0 {
		return nil, false
	}
	return s.ContainerTypes[0], true
}

// IsUnlimited reports whether rt has no ceiling
func (s *Settings) IsUnlimited(rt ResourceType) bool {
	return s.Unlimited[rt]
}

// TicksElapsed converts wall-clock time into whole ticks
func (s *Settings) TicksElapsed(elapsed time.Duration) int {
	if s.TickInterval <= 0 || elapsed <= 0 {
		return 0
	}
	return int(elapsed / s.TickInterval)
}
