package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// NewCombatLogObserver returns an Observer that writes every combat log entry
// to logger at Info, one structured record per entry.
func NewCombatLogObserver(logger *zap.Logger) combat.Observer {
	return combat.ObserverFunc(func(matchID string, e combat.LogEntry) {
		fields := []zap.Field{
			zap.String("match_id", matchID),
			zap.Int("round", e.Round),
			zap.Int("sequence", e.Sequence),
			zap.String("kind", string(e.Kind)),
			zap.String("actor_id", e.Payload.ActorID),
		}
		if e.Payload.TargetID != "" {
			fields = append(fields, zap.String("target_id", e.Payload.TargetID))
		}
		if len(e.Payload.Deltas) > 0 {
			fields = append(fields, zap.Any("deltas", e.Payload.Deltas))
		}
		if len(e.Payload.Data) > 0 {
			fields = append(fields, zap.Any("data", e.Payload.Data))
		}
		logger.Info(e.Message, fields...)
	})
}
