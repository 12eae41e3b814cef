// Package fpi computes the Fan Power Index, the composite 0-100 score used to
// rank monsters across the site.
package fpi

import (
	"math"

	"github.com/gojipedia/gojipedia/models"
)

// Fixed sub-score weights. They must sum to exactly 1.00; if any weight
// changes, every cached Monster.FanPowerIndex has to be recomputed.
const (
	WeightDurability       = 0.20
	WeightAttackPower      = 0.25
	WeightMobility         = 0.15
	WeightIntelligence     = 0.15
	WeightSpecialAbilities = 0.25
)

// Scores holds the five sub-scores that feed the index. Values follow a 0-100
// convention but are not clamped on input.
type Scores struct {
	Durability       float64
	AttackPower      float64
	Mobility         float64
	Intelligence     float64
	SpecialAbilities float64
}

// Breakdown is the computed index plus the inputs that produced it, kept for
// stat-bar display.
type Breakdown struct {
	Total            int     `json:"total"`
	Durability       float64 `json:"durability"`
	AttackPower      float64 `json:"attackPower"`
	Mobility         float64 `json:"mobility"`
	Intelligence     float64 `json:"intelligence"`
	SpecialAbilities float64 `json:"specialAbilities"`
	EraScaling       float64 `json:"eraScaling"`
}

// Compute derives the Fan Power Index from the weighted sub-scores and the
// era scaling multiplier. Rounding is half-away-from-zero (math.Round); the
// clamp to [0,100] is applied after rounding, so out-of-range inputs are
// accepted but the total never escapes the display range.
func Compute(sub Scores, eraScaling float64) Breakdown {
	base := sub.Durability*WeightDurability +
		sub.AttackPower*WeightAttackPower +
		sub.Mobility*WeightMobility +
		sub.Intelligence*WeightIntelligence +
		sub.SpecialAbilities*WeightSpecialAbilities

	scaled := int(math.Round(base * eraScaling))
	total := scaled
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Total:            total,
		Durability:       sub.Durability,
		AttackPower:      sub.AttackPower,
		Mobility:         sub.Mobility,
		Intelligence:     sub.Intelligence,
		SpecialAbilities: sub.SpecialAbilities,
		EraScaling:       eraScaling,
	}
}

// ForMonster computes the breakdown from a monster's stored sub-scores.
func ForMonster(m *models.Monster) Breakdown {
	return Compute(Scores{
		Durability:       m.DurabilityScore,
		AttackPower:      m.AttackPowerScore,
		Mobility:         m.MobilityScore,
		Intelligence:     m.IntelligenceScore,
		SpecialAbilities: m.SpecialAbilitiesScore,
	}, m.EraScalingFactor)
}

// Refresh recomputes and stores the cached index on the monster. Call it on
// every write path that touches sub-scores or the scaling factor.
func Refresh(m *models.Monster) {
	m.FanPowerIndex = ForMonster(m).Total
}
