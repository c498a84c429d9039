// Package main runs a seeded NPC-versus-NPC skirmish through the combat engine
// and prints its combat log, optionally archiving it to PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/npc"
	"github.com/cory-johannsen/tactics/internal/game/scenario"
	"github.com/cory-johannsen/tactics/internal/game/skill"
	"github.com/cory-johannsen/tactics/internal/observability"
	"github.com/cory-johannsen/tactics/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioName := flag.String("scenario", "arena", "scenario name in the scenarios dir, or a path to a scenario YAML file")
	seed := flag.Int64("seed", 0, "random seed; 0 draws a fresh one")
	persist := flag.Bool("persist", false, "archive the combat log to PostgreSQL")
	auditDice := flag.Bool("audit-dice", false, "log every random draw at debug level")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "simulate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if *seed == 0 {
		if *seed, err = dice.NewSeed(); err != nil {
			logger.Fatal("drawing seed", zap.Error(err))
		}
	}
	var src dice.Source = dice.NewSeededSource(*seed)
	if *auditDice {
		src = dice.NewLoggedSource(src, logger.Named("dice"))
	}

	skills, err := skill.LoadDirectory(cfg.Content.SkillsDir)
	if err != nil {
		logger.Fatal("loading skills", zap.Error(err))
	}
	templates, err := npc.LoadTemplates(cfg.Content.NPCsDir)
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}
	for _, tmpl := range templates {
		for _, id := range tmpl.Skills {
			if _, ok := skills.Get(id); !ok {
				logger.Warn("npc template references unknown skill",
					zap.String("template", tmpl.ID),
					zap.String("skill", id),
				)
			}
		}
	}
	roster, err := npc.NewRoster(templates)
	if err != nil {
		logger.Fatal("building npc roster", zap.Error(err))
	}
	sc, err := scenario.Load(cfg.Content.ScenariosDir, *scenarioName)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("skills", len(skills.IDs())),
		zap.Int("npc_templates", len(templates)),
		zap.String("scenario", sc.Name),
		zap.Duration("elapsed", time.Since(start)),
	)

	eng := combat.NewEngine(skills, logger.Named("engine"),
		observability.NewCombatLogObserver(logger.Named("combat_log")))
	matchID, err := scenario.Build(eng, roster, sc, scenario.Defaults{
		GridSize:       cfg.Engine.DefaultGridSize,
		ActionsPerTurn: cfg.Engine.ActionsPerTurn,
	})
	if err != nil {
		logger.Fatal("building match", zap.Error(err))
	}
	logger.Info("match started", zap.String("match_id", matchID), zap.Int64("seed", *seed))

	driver := ai.NewDriver(eng, logger.Named("ai"))
	if cfg.Engine.TurnDuration > 0 {
		err = runTimed(eng, driver, matchID, src, cfg.Engine)
	} else {
		err = runStepped(eng, driver, matchID, src, cfg.Engine.MaxTurns)
	}
	if err != nil {
		logger.Fatal("running match", zap.Error(err))
	}
	if err := eng.DisarmTurnTimer(matchID); err != nil {
		logger.Warn("disarming turn timer", zap.String("match_id", matchID), zap.Error(err))
	}

	snap, err := eng.Snapshot(matchID)
	if err != nil {
		logger.Fatal("reading final state", zap.Error(err))
	}
	entries, err := eng.Log(matchID)
	if err != nil {
		logger.Fatal("reading combat log", zap.Error(err))
	}
	printReport(snap, entries, *seed)

	if *persist {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		n, err := pool.CombatLog().Append(ctx, matchID, entries)
		if err != nil {
			logger.Fatal("archiving combat log", zap.Error(err))
		}
		logger.Info("combat log archived", zap.String("match_id", matchID), zap.Int("entries", n))
	}

	eng.EndMatch(matchID)
	logger.Info("simulation complete",
		zap.String("match_id", matchID),
		zap.String("status", snap.Status.String()),
		zap.Int("turns", snap.TurnNumber),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// runStepped runs one AI pass per turn and advances the turn explicitly.
func runStepped(eng *combat.Engine, driver *ai.Driver, matchID string, src dice.Source, maxTurns int) error {
	for {
		if _, err := driver.Tick(matchID, src); err != nil {
			return err
		}
		snap, err := eng.Snapshot(matchID)
		if err != nil {
			return err
		}
		if snap.Status != combat.StatusActive || (maxTurns > 0 && snap.TurnNumber >= maxTurns) {
			return nil
		}
		if _, err := eng.AdvanceTurn(matchID); err != nil {
			return err
		}
	}
}

// runTimed lets the engine's turn timer advance turns and runs one AI pass
// whenever a new turn begins.
func runTimed(eng *combat.Engine, driver *ai.Driver, matchID string, src dice.Source, ec config.EngineConfig) error {
	if err := eng.ArmTurnTimer(matchID, ec.TurnDuration); err != nil {
		return err
	}
	poll := time.NewTicker(max(ec.TurnDuration/4, time.Millisecond))
	defer poll.Stop()

	lastTurn := 0
	for range poll.C {
		snap, err := eng.Snapshot(matchID)
		if err != nil {
			return err
		}
		if snap.Status != combat.StatusActive {
			return nil
		}
		if ec.MaxTurns > 0 && snap.TurnNumber > ec.MaxTurns {
			return nil
		}
		if snap.TurnNumber == lastTurn {
			continue
		}
		lastTurn = snap.TurnNumber
		if _, err := driver.Tick(matchID, src); err != nil {
			return err
		}
	}
	return nil
}

func printReport(m *combat.Match, entries []combat.LogEntry, seed int64) {
	w := os.Stdout
	fmt.Fprintf(w, "match %s (seed %d): %s after %d turns\n\n", m.ID, seed, m.Status, m.TurnNumber)
	for _, e := range entries {
		fmt.Fprintf(w, "[%3d.%02d] %-8s %s\n", e.Round, e.Sequence, e.Kind, e.Message)
	}
	fmt.Fprintln(w)
	for _, team := range m.Teams() {
		fmt.Fprintf(w, "team %s (%d standing)\n", team, m.LivingOnTeam(team))
		for _, p := range m.Participants() {
			if p.Team != team {
				continue
			}
			fmt.Fprintf(w, "  %-12s %-16s %3d/%-3d HP  %s\n", p.ID, p.DisplayName(), p.CurrentHP, p.MaxHP, npc.HealthDescription(p))
		}
	}
}
