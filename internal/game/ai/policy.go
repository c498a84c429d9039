// Package ai implements the NPC decision policy and the driver that feeds its
// decisions back into the combat engine.
package ai

import "sort"

// Archetype is an NPC behavior profile.
type Archetype int

const (
	Balanced Archetype = iota
	Defensive
	Aggressive
	Passive
)

// String returns the archetype's configuration name.
func (a Archetype) String() string {
	switch a {
	case Defensive:
		return "defensive"
	case Aggressive:
		return "aggressive"
	case Passive:
		return "passive"
	default:
		return "balanced"
	}
}

// ParseArchetype maps a configuration name to an Archetype.
//
// Postcondition: Returns (Balanced, false) for an unrecognised name.
func ParseArchetype(name string) (Archetype, bool) {
	switch name {
	case "defensive":
		return Defensive, true
	case "balanced":
		return Balanced, true
	case "aggressive":
		return Aggressive, true
	case "passive":
		return Passive, true
	default:
		return Balanced, false
	}
}

// Profile holds the defend parameters of an archetype.
type Profile struct {
	// Threshold is the HP ratio below which the NPC considers defending.
	Threshold float64
	// DefendProbability is the chance of defending once below Threshold.
	DefendProbability float64
}

var profiles = map[Archetype]Profile{
	Defensive:  {Threshold: 0.70, DefendProbability: 0.40},
	Balanced:   {Threshold: 0.40, DefendProbability: 0.20},
	Aggressive: {Threshold: 0.20, DefendProbability: 0.10},
	Passive:    {Threshold: 1.00, DefendProbability: 0.80},
}

// ProfileOf returns the profile of a, falling back to Balanced.
func ProfileOf(a Archetype) Profile {
	if p, ok := profiles[a]; ok {
		return p
	}
	return profiles[Balanced]
}

// ActionKind is what the NPC chose to do.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionDefend ActionKind = "defend"
)

// Regions are the flavor body-region tags attached to attack decisions.
var Regions = [4]string{"head", "torso", "arms", "legs"}

// Candidate is a living opposing participant the NPC may target.
type Candidate struct {
	ID        string
	CurrentHP int
}

// Decision is the output of Decide.
type Decision struct {
	Action ActionKind
	// TargetID is empty for defend.
	TargetID string
	// Region is a flavor tag with no effect on damage; empty for defend.
	Region string
}

// Source is the randomness consumed by the policy. dice.Source satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Decide picks an NPC's action.
// The NPC defends when hpRatio is below its archetype's threshold and a
// uniform draw is below the defend probability; the draw is only taken in
// that branch. Otherwise it attacks the candidate with the lowest current HP,
// ties broken by lowest ID, and draws a flavor region.
//
// Precondition: src must be non-nil.
// Postcondition: identical (archetype, hpRatio, candidates, src state) yield identical
// Decisions; with no candidates the decision is defend.
func Decide(archetype Archetype, hpRatio float64, candidates []Candidate, src Source) Decision {
	p := ProfileOf(archetype)
	if hpRatio < p.Threshold && src.Float64() < p.DefendProbability {
		return Decision{Action: ActionDefend}
	}
	if len(candidates) == 0 {
		return Decision{Action: ActionDefend}
	}
	target := pickTarget(candidates)
	return Decision{
		Action:   ActionAttack,
		TargetID: target.ID,
		Region:   Regions[src.Intn(len(Regions))],
	}
}

func pickTarget(candidates []Candidate) Candidate {
	sorted := append([]Candidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CurrentHP != sorted[j].CurrentHP {
			return sorted[i].CurrentHP < sorted[j].CurrentHP
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}
