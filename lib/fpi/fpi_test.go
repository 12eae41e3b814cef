package fpi

import (
	"math"
	"testing"

	"github.com/gojipedia/gojipedia/models"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightDurability + WeightAttackPower + WeightMobility +
		WeightIntelligence + WeightSpecialAbilities
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestComputeWorkedExample(t *testing.T) {
	// 98*0.20 + 95*0.25 + 60*0.15 + 85*0.15 + 92*0.25 = 88.10
	// round(88.10 * 1.08) = round(95.148) = 95
	b := Compute(Scores{
		Durability:       98,
		AttackPower:      95,
		Mobility:         60,
		Intelligence:     85,
		SpecialAbilities: 92,
	}, 1.08)

	if b.Total != 95 {
		t.Errorf("Total = %d, want 95", b.Total)
	}
	if b.EraScaling != 1.08 {
		t.Errorf("EraScaling = %v, want 1.08", b.EraScaling)
	}
	if b.Durability != 98 || b.SpecialAbilities != 92 {
		t.Errorf("breakdown does not echo sub-scores: %+v", b)
	}
}

func TestComputeClamp(t *testing.T) {
	tests := []struct {
		name    string
		sub     Scores
		scaling float64
		want    int
	}{
		{"all 100 scaled 1.2 clamps to 100", Scores{100, 100, 100, 100, 100}, 1.2, 100},
		{"all zero stays zero regardless of scaling", Scores{}, 1.2, 0},
		{"zero scaling factor yields zero", Scores{100, 100, 100, 100, 100}, 0, 0},
		{"negative sub-scores clamp to zero", Scores{-50, -50, -50, -50, -50}, 1.0, 0},
		{"above-range inputs pass through but clamp", Scores{200, 200, 200, 200, 200}, 1.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.sub, tt.scaling).Total; got != tt.want {
				t.Errorf("Total = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	sub := Scores{87, 73, 91, 40, 66}
	a := Compute(sub, 1.05)
	b := Compute(sub, 1.05)
	if a != b {
		t.Errorf("identical inputs produced different breakdowns: %+v vs %+v", a, b)
	}
}

func TestRefreshUpdatesCachedIndex(t *testing.T) {
	m := &models.Monster{
		DurabilityScore:       98,
		AttackPowerScore:      95,
		MobilityScore:         60,
		IntelligenceScore:     85,
		SpecialAbilitiesScore: 92,
		EraScalingFactor:      1.08,
		FanPowerIndex:         1, // stale
	}
	Refresh(m)
	if m.FanPowerIndex != 95 {
		t.Errorf("FanPowerIndex = %d, want 95", m.FanPowerIndex)
	}
	if got := ForMonster(m).Total; got != m.FanPowerIndex {
		t.Errorf("cached index %d diverges from computed %d", m.FanPowerIndex, got)
	}
}
