package loader

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/napolitain/tycoon/internal/models"
)

//go:embed settings.schema.json
var settingsSchema []byte

const schemaURL = "settings.schema.json"

// DefaultTickIntervalMs is used when gameTickInterval is absent
const DefaultTickIntervalMs = 1000

// Format is the encoding of a settings document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SettingsJSON represents the JSON structure of the settings document
type SettingsJSON struct {
	GameTickInterval   int                 `json:"gameTickInterval,omitempty"`
	MaxSaveSlots       int                 `json:"max_save_slots,omitempty"`
	Initial            InitialJSON         `json:"initial"`
	AssetsGroup1       AssetGroupJSON      `json:"assets_group_1"`
	AssetsGroup2       AssetGroupJSON      `json:"assets_group_2"`
	ContainerTypes     []ContainerTypeJSON `json:"container_types"`
	UnlimitedResources []string            `json:"unlimited_resources"`
}

// InitialJSON represents the "initial" section
type InitialJSON struct {
	Resources map[string]float64 `json:"resources"`
	Assets    map[string]int     `json:"assets"`
}

// AssetGroupJSON represents one asset category table
type AssetGroupJSON struct {
	Assets []AssetJSON `json:"assets"`
}

// AssetJSON represents one asset definition
type AssetJSON struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name,omitempty"`
	Cost                   map[string]float64 `json:"cost"`
	TimeCostTicks          *int               `json:"time_cost_ticks,omitempty"`
	IncomePerTick          map[string]float64 `json:"income_per_tick"`
	MaintenanceCostPerTick map[string]float64 `json:"maintenance_cost_per_tick,omitempty"`
	ResourceMax            map[string]float64 `json:"resource_max,omitempty"`
}

// ContainerTypeJSON represents one container type
type ContainerTypeJSON struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Cost       []CostEntryJSON    `json:"cost"`
	Capacities map[string]float64 `json:"capacities"`
}

// CostEntryJSON is a {resource_id, amount} pair
type CostEntryJSON struct {
	ResourceID string  `json:"resource_id"`
	Amount     float64 `json:"amount"`
}

// LoadSettings loads and validates the settings document at path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadSettings(path string) (*models.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	settings, err := ParseSettings(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return settings, nil
}

// ParseSettings validates raw settings bytes and builds typed lookup tables
func ParseSettings(data []byte, format Format) (*models.Settings, error) {
	digest := sha256.Sum256(data)

	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var raw SettingsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	settings, err := buildSettings(&raw)
	if err != nil {
		return nil, err
	}
	settings.Digest = hex.EncodeToString(digest[:])
	return settings, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml: %w", err)
	}
	return out, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, bytes.NewReader(settingsSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func validateSchema(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile settings schema: %w", err)
	}

	// Numbers stay json.Number so the validator sees exact values
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func buildSettings(raw *SettingsJSON) (*models.Settings, error) {
	initialResources, err := parseResources(raw.Initial.Resources)
	if err != nil {
		return nil, fmt.Errorf("initial.resources: %w", err)
	}

	tables := make(map[models.AssetCategory]*models.AssetTable, 2)
	groups := []struct {
		category models.AssetCategory
		key      string
		group    AssetGroupJSON
	}{
		{models.Content, "assets_group_1", raw.AssetsGroup1},
		{models.Employee, "assets_group_2", raw.AssetsGroup2},
	}
	for _, g := range groups {
		table, err := buildAssetTable(g.category, g.group)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.key, err)
		}
		tables[g.category] = table
	}

	containers := make([]*models.ContainerType, 0, len(raw.ContainerTypes))
	seen := make(map[string]bool, len(raw.ContainerTypes))
	for i, c := range raw.ContainerTypes {
		ct, err := buildContainerType(c)
		if err != nil {
			return nil, fmt.Errorf("container_types[%d]: %w", i, err)
		}
		if seen[ct.ID] {
			return nil, fmt.Errorf("container_types[%d]: duplicate id %q", i, ct.ID)
		}
		seen[ct.ID] = true
		containers = append(containers, ct)
	}
	if len(containers) == 0 {
		return nil, fmt.Errorf("container_types: at least one container type is required")
	}

	unlimited := make([]models.ResourceType, 0, len(raw.UnlimitedResources))
	for _, key := range raw.UnlimitedResources {
		rt, ok := models.ParseResourceType(key)
		if !ok {
			return nil, fmt.Errorf("unlimited_resources: unknown resource %q", key)
		}
		unlimited = append(unlimited, rt)
	}

	initialAssets := make(map[string]int, len(raw.Initial.Assets))
	for id, count := range raw.Initial.Assets {
		if count < 0 {
			return nil, fmt.Errorf("initial.assets.%s: negative count", id)
		}
		initialAssets[id] = count
	}

	settings := models.NewSettings(
		models.InitialState{Resources: initialResources, Assets: initialAssets},
		tables, containers, unlimited,
	)

	interval := raw.GameTickInterval
	if interval == 0 {
		interval = DefaultTickIntervalMs
	}
	if interval < 0 {
		return nil, fmt.Errorf("gameTickInterval: must be positive")
	}
	settings.TickInterval = time.Duration(interval) * time.Millisecond
	if raw.MaxSaveSlots > 0 {
		settings.MaxSaveSlots = raw.MaxSaveSlots
	}

	return settings, nil
}

func buildAssetTable(category models.AssetCategory, group AssetGroupJSON) (*models.AssetTable, error) {
	defs := make([]*models.AssetDefinition, 0, len(group.Assets))
	seen := make(map[string]bool, len(group.Assets))

	for i, a := range group.Assets {
		if a.ID == "" {
			return nil, fmt.Errorf("assets[%d]: empty id", i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("assets[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true

		def := &models.AssetDefinition{
			ID:       a.ID,
			Name:     a.Name,
			Category: category,
		}
		if def.Name == "" {
			def.Name = a.ID
		}

		var err error
		if def.Cost, err = parseResources(a.Cost); err != nil {
			return nil, fmt.Errorf("%s.cost: %w", a.ID, err)
		}
		if def.IncomePerTick, err = parseResources(a.IncomePerTick); err != nil {
			return nil, fmt.Errorf("%s.income_per_tick: %w", a.ID, err)
		}
		if def.MaintenanceCostPerTick, err = parseResources(a.MaintenanceCostPerTick); err != nil {
			return nil, fmt.Errorf("%s.maintenance_cost_per_tick: %w", a.ID, err)
		}
		if def.ResourceMax, err = parseResources(a.ResourceMax); err != nil {
			return nil, fmt.Errorf("%s.resource_max: %w", a.ID, err)
		}

		if category == models.Content {
			if a.TimeCostTicks == nil {
				return nil, fmt.Errorf("%s: time_cost_ticks is required for content assets", a.ID)
			}
		}
		if a.TimeCostTicks != nil {
			if *a.TimeCostTicks < 0 {
				return nil, fmt.Errorf("%s.time_cost_ticks: must be >= 0", a.ID)
			}
			def.TimeCostTicks = *a.TimeCostTicks
		}

		defs = append(defs, def)
	}

	return models.NewAssetTable(category, defs), nil
}

func buildContainerType(c ContainerTypeJSON) (*models.ContainerType, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("empty id")
	}

	ct := &models.ContainerType{
		ID:         c.ID,
		Name:       c.Name,
		Cost:       make([]models.ResourceAmount, 0, len(c.Cost)),
		Capacities: make(map[models.AssetCategory]float64, len(c.Capacities)),
	}
	if ct.Name == "" {
		ct.Name = c.ID
	}

	for _, entry := range c.Cost {
		rt, ok := models.ParseResourceType(entry.ResourceID)
		if !ok {
			return nil, fmt.Errorf("%s.cost: unknown resource %q", c.ID, entry.ResourceID)
		}
		if entry.Amount < 0 {
			return nil, fmt.Errorf("%s.cost: negative amount for %s", c.ID, entry.ResourceID)
		}
		ct.Cost = append(ct.Cost, models.ResourceAmount{Resource: rt, Amount: entry.Amount})
	}

	for key, capacity := range c.Capacities {
		category, err := models.ParseAssetCategory(key)
		if err != nil {
			return nil, fmt.Errorf("%s.capacities: %w", c.ID, err)
		}
		if capacity < 0 {
			return nil, fmt.Errorf("%s.capacities.%s: negative capacity", c.ID, key)
		}
		ct.Capacities[category] += capacity
	}

	return ct, nil
}

func parseResources(raw map[string]float64) (models.Resources, error) {
	var r models.Resources
	for key, amount := range raw {
		rt, ok := models.ParseResourceType(key)
		if !ok {
			return r, fmt.Errorf("unknown resource %q", key)
		}
		if amount < 0 {
			return r, fmt.Errorf("negative amount for %s", key)
		}
		r.Set(rt, amount)
	}
	return r, nil
}
