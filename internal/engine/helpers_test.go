package engine

import (
	"testing"
	"time"

	"github.com/napolitain/tycoon/internal/loader"
	"github.com/napolitain/tycoon/internal/models"
)

var testNow = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestSettings builds a small settings document with round numbers:
// one engineer (2 creativity + 1 productivity per tick, capped at 10/10) and one game
// (develops in 4 ticks, earns 3 money, costs 2 productivity + 1 money upkeep).
func newTestSettings() *models.Settings {
	engineer := &models.AssetDefinition{
		ID:            "engineer",
		Name:          "Engineer",
		Category:      models.Employee,
		Cost:          models.Resources{Money: 10},
		IncomePerTick: models.Resources{Creativity: 2, Productivity: 1},
		ResourceMax:   models.Resources{Creativity: 10, Productivity: 10},
	}
	game := &models.AssetDefinition{
		ID:                     "game",
		Name:                   "Game",
		Category:               models.Content,
		Cost:                   models.Resources{Creativity: 5},
		TimeCostTicks:          4,
		IncomePerTick:          models.Resources{Money: 3},
		MaintenanceCostPerTick: models.Resources{Productivity: 2, Money: 1},
	}

	tables := map[models.AssetCategory]*models.AssetTable{
		models.Employee: models.NewAssetTable(models.Employee, []*models.AssetDefinition{engineer}),
		models.Content:  models.NewAssetTable(models.Content, []*models.AssetDefinition{game}),
	}
	containers := []*models.ContainerType{
		{
			ID:         "garage",
			Cost:       []models.ResourceAmount{{Resource: models.Money, Amount: 100}},
			Capacities: map[models.AssetCategory]float64{models.Content: 1, models.Employee: 2},
		},
		{
			ID: "office",
			Cost: []models.ResourceAmount{
				{Resource: models.Money, Amount: 50},
				{Resource: models.Productivity, Amount: 5},
			},
			Capacities: map[models.AssetCategory]float64{models.Content: 2},
		},
	}
	initial := models.InitialState{Assets: map[string]int{"engineer": 1}}

	return models.NewSettings(initial, tables, containers, []models.ResourceType{models.Money})
}

func loadDataSettings(t testing.TB) *models.Settings {
	t.Helper()
	settings, err := loader.LoadSettings("../../data/settings.json")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	return settings
}

func withCompletedGame(p models.SaveProfile) models.SaveProfile {
	p = p.Clone()
	p.Assets = append(p.Assets, models.AcquiredAsset{
		Type:                     models.Content,
		ID:                       "game",
		Count:                    1,
		DevelopmentProgressTicks: 4,
	})
	return p
}
