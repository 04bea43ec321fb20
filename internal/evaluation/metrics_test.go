package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name        string
		relevant    []string
		recommended []string
		k           int
		want        float64
	}{
		{"all accepted in top k", []string{"A1", "A2"}, []string{"A2", "A1", "A3"}, 3, 1.0},
		{"half found", []string{"A1", "A2"}, []string{"A1", "A9"}, 5, 0.5},
		{"relevant beyond cutoff", []string{"A3"}, []string{"A1", "A2", "A3"}, 2, 0.0},
		{"duplicates counted once", []string{"A1", "A2"}, []string{"A1", "A1"}, 2, 0.5},
		{"no relevant", nil, []string{"A1"}, 5, 0.0},
		{"empty recommendations", []string{"A1"}, nil, 5, 0.0},
		{"zero k", []string{"A1"}, []string{"A1"}, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.relevant, tt.recommended, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name        string
		relevant    []string
		recommended []string
		k           int
		want        float64
	}{
		{"first position", []string{"A1"}, []string{"A1", "A2"}, 5, 1.0},
		{"third position", []string{"A3"}, []string{"A1", "A2", "A3"}, 5, 1.0 / 3.0},
		{"first relevant wins", []string{"A2", "A3"}, []string{"A1", "A3", "A2"}, 5, 0.5},
		{"beyond cutoff", []string{"A3"}, []string{"A1", "A2", "A3"}, 2, 0.0},
		{"no relevant", nil, []string{"A1"}, 5, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MRRAtK(tt.relevant, tt.recommended, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
