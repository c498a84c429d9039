package combat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/skill"
)

// Observer receives every combat log entry as it is appended. Calls for one
// match are made in strictly increasing (round, sequence) order while the
// match's lock is held, so implementations must not call back into the Engine
// and should hand entries off quickly.
type Observer interface {
	OnLogEntry(matchID string, e LogEntry)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(matchID string, e LogEntry)

// OnLogEntry calls f.
func (f ObserverFunc) OnLogEntry(matchID string, e LogEntry) { f(matchID, e) }

// matchSlot serialises every operation on one match.
type matchSlot struct {
	mu    sync.Mutex
	match *Match
	timer *TurnTimer
	// ended is set by EndMatch; operations that locked the slot afterwards fail.
	ended bool
}

// Engine manages all live matches, keyed by match ID.
// All methods are safe for concurrent use. Operations on one match are
// serialised by that match's lock; different matches never contend beyond the
// brief registry lookup.
type Engine struct {
	mu        sync.RWMutex
	matches   map[string]*matchSlot
	skills    *skill.Registry
	logger    *zap.Logger
	observers []Observer
}

// NewEngine creates an empty Engine.
//
// Precondition: skills may be nil (every skill lookup then fails); logger may be nil (no logging).
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(skills *skill.Registry, logger *zap.Logger, observers ...Observer) *Engine {
	if skills == nil {
		skills = skill.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		matches:   make(map[string]*matchSlot),
		skills:    skills,
		logger:    logger,
		observers: observers,
	}
}

// CreateMatch registers a new pending match on g with a generated ID.
//
// Precondition: g non-nil; actionsPerTurn >= 1.
// Postcondition: Returns the new match ID or an error.
func (e *Engine) CreateMatch(g *grid.Grid, actionsPerTurn int) (string, error) {
	m, err := NewMatch(uuid.New().String(), g, actionsPerTurn)
	if err != nil {
		return "", err
	}
	if err := e.AddMatch(m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// AddMatch registers an externally constructed match. The Engine takes ownership of m.
//
// Postcondition: Returns an error if a match with the same ID is already registered.
func (e *Engine) AddMatch(m *Match) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.matches[m.ID]; exists {
		return fmt.Errorf("match %q already registered", m.ID)
	}
	e.matches[m.ID] = &matchSlot{match: m}
	e.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.Int("grid_size", m.Grid.Size()),
		zap.Int("actions_per_turn", m.ActionsPerTurn),
	)
	return nil
}

// EndMatch stops any turn timer and removes the match. Removing an unknown ID is a no-op.
func (e *Engine) EndMatch(matchID string) {
	e.mu.Lock()
	slot, ok := e.matches[matchID]
	delete(e.matches, matchID)
	e.mu.Unlock()
	if !ok {
		return
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.ended = true
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
}

// Skill returns the registered skill with id.
func (e *Engine) Skill(id string) (*skill.Skill, bool) {
	return e.skills.Get(id)
}

// MatchIDs returns the IDs of all registered matches.
func (e *Engine) MatchIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.matches))
	for id := range e.matches {
		out = append(out, id)
	}
	return out
}

// withSlot runs fn under the match's exclusive lock, then delivers any log
// entries fn appended to the observers before releasing it.
//
// A slot removed by EndMatch between lookup and lock is reported as
// MatchNotFound; fn never sees a removed slot.
func (e *Engine) withSlot(matchID string, fn func(*matchSlot) error) error {
	e.mu.RLock()
	slot, ok := e.matches[matchID]
	e.mu.RUnlock()
	if !ok {
		return fail(CodeMatchNotFound, "no match %q", matchID)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.ended {
		return fail(CodeMatchNotFound, "no match %q", matchID)
	}
	before := slot.match.log.Len()
	err := fn(slot)
	for _, entry := range slot.match.log.tail(before) {
		for _, o := range e.observers {
			o.OnLogEntry(matchID, entry)
		}
	}
	return err
}

// withMatch is withSlot for operations that only touch the match.
func (e *Engine) withMatch(matchID string, fn func(*Match) error) error {
	return e.withSlot(matchID, func(s *matchSlot) error { return fn(s.match) })
}

// Seat places p in a pending match. See Match.Seat.
func (e *Engine) Seat(matchID string, p *Participant) error {
	return e.withMatch(matchID, func(m *Match) error { return m.Seat(p) })
}

// Start activates a pending match. See Match.Start.
func (e *Engine) Start(matchID string) error {
	return e.withMatch(matchID, func(m *Match) error {
		if err := m.Start(); err != nil {
			return err
		}
		e.logger.Info("match started",
			zap.String("match_id", m.ID),
			zap.Strings("teams", m.Teams()),
			zap.Int("participants", len(m.participants)),
		)
		return nil
	})
}

// AdvanceTurn moves an active match to its next turn and returns the new turn number.
func (e *Engine) AdvanceTurn(matchID string) (int, error) {
	var turn int
	err := e.withMatch(matchID, func(m *Match) error {
		expired, err := m.AdvanceTurn()
		if err != nil {
			return err
		}
		turn = m.TurnNumber
		for _, x := range expired {
			e.logger.Debug("buff expired",
				zap.String("match_id", m.ID),
				zap.String("participant_id", x.ParticipantID),
				zap.String("buff", x.Key),
			)
		}
		return nil
	})
	return turn, err
}

// ArmTurnTimer advances the match's turn every period until the match leaves
// the active state, the timer is disarmed, or the match is ended.
// Arming again replaces the previous timer.
//
// Precondition: period > 0.
func (e *Engine) ArmTurnTimer(matchID string, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("turn timer period must be > 0, got %s", period)
	}
	return e.withSlot(matchID, func(slot *matchSlot) error {
		if slot.timer != nil {
			slot.timer.Stop()
		}
		slot.timer = NewTurnTimer(period, func() bool {
			turn, err := e.AdvanceTurn(matchID)
			if err != nil {
				e.logger.Debug("turn timer stopped",
					zap.String("match_id", matchID),
					zap.String("reason", string(CodeOf(err))),
				)
				return false
			}
			e.logger.Debug("turn advanced by timer",
				zap.String("match_id", matchID),
				zap.Int("turn", turn),
			)
			return true
		})
		return nil
	})
}

// DisarmTurnTimer stops the match's turn timer, if any.
func (e *Engine) DisarmTurnTimer(matchID string) error {
	return e.withSlot(matchID, func(slot *matchSlot) error {
		if slot.timer != nil {
			slot.timer.Stop()
			slot.timer = nil
		}
		return nil
	})
}

// Snapshot returns a deep copy of the match, safe to read without locks.
func (e *Engine) Snapshot(matchID string) (*Match, error) {
	var snap *Match
	err := e.withMatch(matchID, func(m *Match) error {
		snap = m.clone()
		return nil
	})
	return snap, err
}

// Log returns every combat log entry of the match in order.
func (e *Engine) Log(matchID string) ([]LogEntry, error) {
	var out []LogEntry
	err := e.withMatch(matchID, func(m *Match) error {
		out = m.log.Entries()
		return nil
	})
	return out, err
}

// LogSince returns the match's log entries strictly after cursor, in order.
func (e *Engine) LogSince(matchID string, cursor Cursor) ([]LogEntry, error) {
	var out []LogEntry
	err := e.withMatch(matchID, func(m *Match) error {
		out = m.log.Since(cursor)
		return nil
	})
	return out, err
}

// ValidPositions lists the cells participantID may move to. See ValidPositions.
func (e *Engine) ValidPositions(matchID, participantID string) ([]grid.Cell, error) {
	var out []grid.Cell
	err := e.withMatch(matchID, func(m *Match) error {
		p, ok := m.Participant(participantID)
		if !ok {
			return fail(CodeParticipantNotFound, "no participant %q", participantID)
		}
		out = ValidPositions(m, p)
		return nil
	})
	return out, err
}

// ValidTargets lists the IDs participantID can attack from where it stands. See ValidTargets.
func (e *Engine) ValidTargets(matchID, participantID string) ([]string, error) {
	var out []string
	err := e.withMatch(matchID, func(m *Match) error {
		p, ok := m.Participant(participantID)
		if !ok {
			return fail(CodeParticipantNotFound, "no participant %q", participantID)
		}
		for _, t := range ValidTargets(m, p) {
			out = append(out, t.ID)
		}
		return nil
	})
	return out, err
}

// Move resolves a move of participantID to (x, y). See ExecuteMove.
func (e *Engine) Move(matchID, participantID string, x, y int) (MoveResult, error) {
	var res MoveResult
	err := e.withMatch(matchID, func(m *Match) error {
		var err error
		res, err = ExecuteMove(m, participantID, x, y)
		e.report(m, ActionMove, participantID, err,
			zap.Int("x", x), zap.Int("y", y))
		return err
	})
	return res, err
}

// Attack resolves attackerID striking targetID. See ExecuteAttack.
//
// Precondition: src must be non-nil.
func (e *Engine) Attack(matchID, attackerID, targetID string, src Source) (AttackResult, error) {
	var res AttackResult
	err := e.withMatch(matchID, func(m *Match) error {
		var err error
		res, err = ExecuteAttack(m, attackerID, targetID, src)
		e.report(m, ActionAttack, attackerID, err,
			zap.String("target_id", targetID),
			zap.Int("damage", res.Damage),
			zap.Bool("critical", res.Critical),
			zap.Bool("target_defeated", res.TargetDefeated),
		)
		if res.MatchEnded {
			e.logCompletion(m)
		}
		return err
	})
	return res, err
}

// CastSkill resolves casterID using the registered skill skillID. An
// unregistered skillID fails with UnknownSkillType. See ExecuteSkill.
func (e *Engine) CastSkill(matchID, casterID, skillID, targetID string, cell *grid.Cell) (SkillResult, error) {
	sk, _ := e.skills.Get(skillID)
	var res SkillResult
	err := e.withMatch(matchID, func(m *Match) error {
		var err error
		res, err = ExecuteSkill(m, casterID, sk, targetID, cell)
		e.report(m, ActionSkill, casterID, err,
			zap.String("skill_id", skillID),
			zap.String("target_id", targetID),
			zap.Int("hits", len(res.Hits)),
		)
		if res.MatchEnded {
			e.logCompletion(m)
		}
		return err
	})
	return res, err
}

// Submit resolves any Action and wraps the result in an Outcome. It never
// returns an error; failures are reported through Outcome.Error.
//
// Precondition: src must be non-nil for attack actions.
func (e *Engine) Submit(matchID string, a Action, src Source) Outcome {
	switch act := a.(type) {
	case MoveAction:
		res, err := e.Move(matchID, act.ParticipantID, act.X, act.Y)
		if err != nil {
			return failedOutcome(ActionMove, err)
		}
		return Outcome{Action: ActionMove, Success: true, Move: &res}
	case AttackAction:
		res, err := e.Attack(matchID, act.AttackerID, act.TargetID, src)
		if err != nil {
			return failedOutcome(ActionAttack, err)
		}
		return Outcome{Action: ActionAttack, Success: true, MatchEnded: res.MatchEnded, Attack: &res}
	case SkillAction:
		res, err := e.CastSkill(matchID, act.CasterID, act.SkillID, act.TargetID, act.Cell)
		if err != nil {
			return failedOutcome(ActionSkill, err)
		}
		return Outcome{Action: ActionSkill, Success: true, MatchEnded: res.MatchEnded, Skill: &res}
	default:
		return Outcome{Action: ActionUnknown, Error: CodeInternal, Message: fmt.Sprintf("unsupported action %T", a)}
	}
}

func (e *Engine) report(m *Match, action ActionType, actorID string, err error, fields ...zap.Field) {
	if err != nil {
		e.logger.Debug("action rejected",
			zap.String("match_id", m.ID),
			zap.String("action", action.String()),
			zap.String("actor_id", actorID),
			zap.String("code", string(CodeOf(err))),
			zap.Error(err),
		)
		return
	}
	base := []zap.Field{
		zap.String("match_id", m.ID),
		zap.String("action", action.String()),
		zap.String("actor_id", actorID),
		zap.Int("turn", m.TurnNumber),
		zap.Int("actions_remaining", m.ActionsRemaining),
	}
	e.logger.Debug("action resolved", append(base, fields...)...)
}

func (e *Engine) logCompletion(m *Match) {
	var survivors []string
	for _, t := range m.Teams() {
		if m.LivingOnTeam(t) > 0 {
			survivors = append(survivors, t)
		}
	}
	e.logger.Info("match completed",
		zap.String("match_id", m.ID),
		zap.Int("turn", m.TurnNumber),
		zap.Strings("surviving_teams", survivors),
	)
}
