package engine

import (
	"reflect"
	"testing"

	"github.com/napolitain/tycoon/internal/models"
)

func TestAcquireContentStartsDevelopment(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current.Creativity = 5

	got, outcome := TryAcquireAsset(p, models.Content, "game", settings, testNow)
	if outcome != Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	if got.Resources.Current.Creativity != 0 {
		t.Errorf("expected creativity 0, got %v", got.Resources.Current.Creativity)
	}
	if len(got.InProgressAssets) != 1 {
		t.Fatalf("expected one development, got %d", len(got.InProgressAssets))
	}
	ip := got.InProgressAssets[0]
	if ip.Status != models.StatusInProgress || ip.DevelopmentProgressTicks != 0 {
		t.Errorf("unexpected development entry %+v", ip)
	}
	if !ip.StartTime.Equal(testNow) {
		t.Errorf("expected start time %v, got %v", testNow, ip.StartTime)
	}
	if got.AssetCount(models.Content, "game") != 0 {
		t.Errorf("content must not be owned before it completes")
	}
	if len(p.InProgressAssets) != 0 {
		t.Errorf("input profile was mutated")
	}
}

func TestAcquireEmployeeRefreshesAggregates(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current.Money = 10

	got, outcome := TryAcquireAsset(p, models.Employee, "engineer", settings, testNow)
	if outcome != Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	if c := got.AssetCount(models.Employee, "engineer"); c != 2 {
		t.Fatalf("expected 2 engineers, got %d", c)
	}
	if got.Resources.Current.Money != 0 {
		t.Errorf("expected money 0, got %v", got.Resources.Current.Money)
	}
	if got.Resources.Max.Creativity != 20 {
		t.Errorf("expected creativity max 20, got %v", got.Resources.Max.Creativity)
	}
	if got.Resources.PerTick.Creativity != 4 {
		t.Errorf("expected creativity per_tick 4, got %v", got.Resources.PerTick.Creativity)
	}

	// Garage holds two employees
	got.Resources.Current.Money = 10
	again, outcome := TryAcquireAsset(got, models.Employee, "engineer", settings, testNow)
	if outcome != CapacityExhausted {
		t.Fatalf("expected capacity_exhausted, got %s", outcome)
	}
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("rejected hire must leave the profile unchanged")
	}
}

func TestAcquireEmployeeOnlyDeductsCost(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current = models.Resources{Creativity: 100, Productivity: 100, Money: 100}

	got, outcome := TryAcquireAsset(p, models.Employee, "engineer", settings, testNow)
	if outcome != Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	want := models.Resources{Creativity: 100, Productivity: 100, Money: 90}
	if got.Resources.Current != want {
		t.Fatalf("expected current %v after hire, got %v", want, got.Resources.Current)
	}
	if got.Resources.Max.Creativity != 20 {
		t.Errorf("expected creativity max 20, got %v", got.Resources.Max.Creativity)
	}

	// The next tick brings capped resources back under the new ceiling
	ticked := AdvanceTicks(got, 1, settings)
	if ticked.Resources.Current.Creativity != 20 || ticked.Resources.Current.Productivity != 20 {
		t.Errorf("expected clamp to 20/20 on the next tick, got %v", ticked.Resources.Current)
	}
}

func TestAcquireCapacityGate(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current.Creativity = 10

	first, outcome := TryAcquireAsset(p, models.Content, "game", settings, testNow)
	if outcome != Applied {
		t.Fatalf("first game: expected applied, got %s", outcome)
	}

	second, outcome := TryAcquireAsset(first, models.Content, "game", settings, testNow)
	if outcome != CapacityExhausted {
		t.Fatalf("second game: expected capacity_exhausted, got %s", outcome)
	}
	if !reflect.DeepEqual(second, first) {
		t.Fatalf("rejected acquisition must leave the profile unchanged")
	}

	first.Resources.Current.Money = 50
	first.Resources.Current.Productivity = 5
	withOffice, outcome := TryPurchaseContainer(first, "office", settings)
	if outcome != Applied {
		t.Fatalf("office: expected applied, got %s", outcome)
	}
	if limit, _ := ComputeCapacity(withOffice, settings).Limit(models.Content); limit != 3 {
		t.Fatalf("expected content capacity 3, got %v", limit)
	}

	before := Occupancy(withOffice, models.Content)
	third, outcome := TryAcquireAsset(withOffice, models.Content, "game", settings, testNow)
	if outcome != Applied {
		t.Fatalf("third game: expected applied, got %s", outcome)
	}
	if after := Occupancy(third, models.Content); after != before+1 {
		t.Fatalf("expected occupancy %d, got %d", before+1, after)
	}
}

func TestAcquireUnknownDefinition(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current = models.Resources{Creativity: 10, Productivity: 10, Money: 1000}

	tests := []struct {
		name     string
		category models.AssetCategory
		id       string
	}{
		{"missing id", models.Employee, "intern"},
		{"content id as employee", models.Employee, "game"},
		{"employee id as content", models.Content, "engineer"},
		{"unknown category", models.AssetCategory("asset_group_9"), "engineer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := TryAcquireAsset(p, tt.category, tt.id, settings, testNow)
			if outcome != UnknownDefinition {
				t.Fatalf("expected unknown_definition, got %s", outcome)
			}
			if !reflect.DeepEqual(got, p) {
				t.Fatalf("profile changed on rejection")
			}
		})
	}
}

func TestAcquireCheckOrder(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.InProgressAssets = []models.InProgressAsset{{Type: models.Content, ID: "game", Status: models.StatusInProgress}}

	// Full and broke: capacity is reported before affordability
	if _, outcome := TryAcquireAsset(p, models.Content, "game", settings, testNow); outcome != CapacityExhausted {
		t.Errorf("expected capacity_exhausted, got %s", outcome)
	}
	// Unknown is reported before anything else
	if _, outcome := TryAcquireAsset(p, models.Content, "sequel", settings, testNow); outcome != UnknownDefinition {
		t.Errorf("expected unknown_definition, got %s", outcome)
	}

	p.InProgressAssets = nil
	got, outcome := TryAcquireAsset(p, models.Content, "game", settings, testNow)
	if outcome != InsufficientResources {
		t.Fatalf("expected insufficient_resources, got %s", outcome)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("profile changed on rejection")
	}
}

func TestAcquireWithoutContainersIsUngated(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.OwnedContainers = nil
	p.Resources.Current.Creativity = 10

	for i := 0; i < 2; i++ {
		var outcome Outcome
		p, outcome = TryAcquireAsset(p, models.Content, "game", settings, testNow)
		if outcome != Applied {
			t.Fatalf("acquisition %d: expected applied, got %s", i, outcome)
		}
	}
	if len(p.InProgressAssets) != 2 {
		t.Fatalf("expected 2 developments, got %d", len(p.InProgressAssets))
	}
}

func TestAcquireAssetWrapper(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)

	got := AcquireAsset(p, models.Content, "game", settings, testNow)
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("unaffordable acquisition should return the input profile")
	}
}

func TestPurchaseContainer(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current = models.Resources{Productivity: 5, Money: 49}

	got, outcome := TryPurchaseContainer(p, "office", settings)
	if outcome != InsufficientResources {
		t.Fatalf("expected insufficient_resources, got %s", outcome)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("profile changed on rejection")
	}

	if _, outcome := TryPurchaseContainer(p, "warehouse", settings); outcome != UnknownDefinition {
		t.Fatalf("expected unknown_definition, got %s", outcome)
	}

	p.Resources.Current.Money = 50
	got = PurchaseContainer(p, "office", settings)
	if len(got.OwnedContainers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(got.OwnedContainers))
	}
	bought := got.OwnedContainers[1]
	if bought.TypeID != "office" || bought.ID != "office-2" {
		t.Errorf("unexpected container %+v", bought)
	}
	if !got.Resources.Current.IsZero() {
		t.Errorf("expected every resource spent, got %v", got.Resources.Current)
	}
}

func TestPurchaseContainerIgnoresCapacity(t *testing.T) {
	settings := newTestSettings()
	p := CreateProfile(settings, testNow)
	p.Resources.Current.Money = 1000

	for i := 0; i < 5; i++ {
		var outcome Outcome
		p, outcome = TryPurchaseContainer(p, "garage", settings)
		if outcome != Applied {
			t.Fatalf("purchase %d: expected applied, got %s", i, outcome)
		}
	}
	if len(p.OwnedContainers) != 6 {
		t.Fatalf("expected 6 containers, got %d", len(p.OwnedContainers))
	}
	if p.Resources.Current.Money != 500 {
		t.Fatalf("expected money 500, got %v", p.Resources.Current.Money)
	}
}

func TestContainerCostSumsDuplicates(t *testing.T) {
	ct := &models.ContainerType{
		ID: "double",
		Cost: []models.ResourceAmount{
			{Resource: models.Money, Amount: 10},
			{Resource: models.Money, Amount: 5},
			{Resource: models.Creativity, Amount: 1},
		},
	}
	if got := ContainerCost(ct); got != (models.Resources{Creativity: 1, Money: 15}) {
		t.Fatalf("unexpected cost %v", got)
	}
}

func TestNextContainerIDSkipsTaken(t *testing.T) {
	owned := []models.OwnedContainer{{ID: "garage-2", TypeID: "garage"}}
	if id := nextContainerID(owned, "garage"); id != "garage-3" {
		t.Fatalf("expected garage-3, got %s", id)
	}
	if id := nextContainerID(nil, "studio"); id != "studio-1" {
		t.Fatalf("expected studio-1, got %s", id)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		Applied:               "applied",
		UnknownDefinition:     "unknown_definition",
		CapacityExhausted:     "capacity_exhausted",
		InsufficientResources: "insufficient_resources",
		Outcome(42):           "unknown",
	}
	for outcome, want := range tests {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(outcome), got, want)
		}
	}
}
