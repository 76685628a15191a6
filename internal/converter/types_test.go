package converter

import (
	"testing"

	"github.com/napolitain/tycoon/internal/models"
)

func TestResourcesWireMapping(t *testing.T) {
	r := models.Resources{Creativity: 1, Productivity: 2, Money: 3}
	w := ResourcesToWire(r)

	if w.Resource1 != 1 || w.Resource2 != 2 || w.Resource3 != 3 {
		t.Fatalf("unexpected wire vector %+v", w)
	}
	if got := WireToResources(w); got != r {
		t.Fatalf("WireToResources(%+v) = %v, want %v", w, got, r)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    models.AssetStatus
		wantErr bool
	}{
		{"", models.StatusInProgress, false},
		{"in_progress", models.StatusInProgress, false},
		{"completed", models.StatusCompleted, false},
		{"cancelled", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
