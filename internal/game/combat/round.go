package combat

// ExpiredBuff names a buff that ran out on a turn advance.
type ExpiredBuff struct {
	ParticipantID string
	Key           string
}

// AdvanceTurn moves an active match to the next turn: the turn counter is
// incremented, the action budget is refilled and every living participant's
// buffs tick down by one round.
//
// Precondition: match is active.
// Postcondition: TurnNumber is incremented by 1; ActionsRemaining == ActionsPerTurn;
// returns the buffs that expired, in seat order.
func (m *Match) AdvanceTurn() ([]ExpiredBuff, error) {
	if m.Status != StatusActive {
		return nil, fail(CodeMatchNotActive, "match %s is %s", m.ID, m.Status)
	}
	m.TurnNumber++
	m.ActionsRemaining = m.ActionsPerTurn

	var expired []ExpiredBuff
	for _, p := range m.participants {
		if !p.Alive() {
			continue
		}
		for _, key := range p.tickBuffs() {
			expired = append(expired, ExpiredBuff{ParticipantID: p.ID, Key: key})
		}
	}
	return expired, nil
}
