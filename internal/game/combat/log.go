package combat

import (
	"fmt"
	"sort"
)

// EntryKind classifies a combat log entry.
type EntryKind string

const (
	KindMovement EntryKind = "movement"
	KindAttack   EntryKind = "attack"
	KindSkill    EntryKind = "skill"
)

// Payload is the structured part of a log entry.
type Payload struct {
	ActorID  string
	TargetID string
	// Deltas holds numeric effects keyed by name (e.g. "damage", "target_hp", "mp_spent").
	Deltas map[string]int
	// Data holds non-numeric details (e.g. "critical", "skill", "from", "to").
	Data map[string]string
}

// LogEntry is one resolved action. Entries are never modified after append.
type LogEntry struct {
	Round    int
	Sequence int
	Kind     EntryKind
	Message  string
	Payload  Payload
}

// Cursor is the (round, sequence) ordering key of a log entry.
type Cursor struct {
	Round    int
	Sequence int
}

// Cursor returns the entry's ordering key.
func (e LogEntry) Cursor() Cursor { return Cursor{Round: e.Round, Sequence: e.Sequence} }

// Before reports whether c orders strictly before o.
func (c Cursor) Before(o Cursor) bool {
	if c.Round != o.Round {
		return c.Round < o.Round
	}
	return c.Sequence < o.Sequence
}

// Log is an append-only combat log ordered by (round, sequence).
// It is not safe for concurrent use; the owning Match is serialised by the Engine.
//
// Invariant: entries are strictly increasing by Cursor; within a round sequences are 1..n with no gaps.
type Log struct {
	entries  []LogEntry
	perRound map[int]int
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{perRound: make(map[int]int)}
}

// Append records a new entry in round and returns it with its sequence assigned.
//
// Precondition: round >= 1 and round >= the round of the last entry. Panics otherwise,
// since an out-of-order append would break the ordering every consumer relies on.
// Postcondition: returned Sequence == 1 + number of earlier entries in round.
func (l *Log) Append(round int, kind EntryKind, message string, payload Payload) LogEntry {
	if round < 1 {
		panic(fmt.Sprintf("combat: log append with round %d < 1", round))
	}
	if n := len(l.entries); n > 0 && l.entries[n-1].Round > round {
		panic(fmt.Sprintf("combat: log append for round %d after round %d", round, l.entries[n-1].Round))
	}
	l.perRound[round]++
	e := LogEntry{
		Round:    round,
		Sequence: l.perRound[round],
		Kind:     kind,
		Message:  message,
		Payload:  payload.clone(),
	}
	l.entries = append(l.entries, e)
	return e.clone()
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of every entry in order.
func (l *Log) Entries() []LogEntry {
	return cloneEntries(l.entries)
}

// Since returns a copy of every entry strictly after c, in order.
//
// Postcondition: for every returned e, c.Before(e.Cursor()).
func (l *Log) Since(c Cursor) []LogEntry {
	i := sort.Search(len(l.entries), func(i int) bool {
		return c.Before(l.entries[i].Cursor())
	})
	return cloneEntries(l.entries[i:])
}

// tail returns copies of the entries appended after the first n.
func (l *Log) tail(n int) []LogEntry {
	if n >= len(l.entries) {
		return nil
	}
	return cloneEntries(l.entries[n:])
}

func (l *Log) clone() *Log {
	cp := &Log{entries: cloneEntries(l.entries), perRound: make(map[int]int, len(l.perRound))}
	for r, n := range l.perRound {
		cp.perRound[r] = n
	}
	return cp
}

func cloneEntries(in []LogEntry) []LogEntry {
	out := make([]LogEntry, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}

func (e LogEntry) clone() LogEntry {
	e.Payload = e.Payload.clone()
	return e
}

func (p Payload) clone() Payload {
	if p.Deltas != nil {
		d := make(map[string]int, len(p.Deltas))
		for k, v := range p.Deltas {
			d[k] = v
		}
		p.Deltas = d
	}
	if p.Data != nil {
		d := make(map[string]string, len(p.Data))
		for k, v := range p.Data {
			d[k] = v
		}
		p.Data = d
	}
	return p
}
