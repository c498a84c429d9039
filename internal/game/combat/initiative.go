package combat

import "sort"

// RollInitiative orders participants for an AI tick or simultaneous-turn round.
// Each living participant rolls d20 + Agility; higher goes first, ties broken by ID.
//
// Precondition: src must be non-nil.
// Postcondition: Returns the IDs of living participants only; rolls are drawn in input order.
func RollInitiative(participants []*Participant, src Source) []string {
	type roll struct {
		id    string
		total int
	}
	var rolls []roll
	for _, p := range participants {
		if !p.Alive() {
			continue
		}
		rolls = append(rolls, roll{id: p.ID, total: src.Intn(20) + 1 + p.Stats.Agility})
	}
	sort.SliceStable(rolls, func(i, j int) bool {
		if rolls[i].total != rolls[j].total {
			return rolls[i].total > rolls[j].total
		}
		return rolls[i].id < rolls[j].id
	})
	out := make([]string, len(rolls))
	for i, r := range rolls {
		out[i] = r.id
	}
	return out
}
