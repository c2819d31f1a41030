package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/config"
	"github.com/kingveneer/ecs-c-learning/internal/core/arena"
	"github.com/kingveneer/ecs-c-learning/internal/core/event"
	"github.com/kingveneer/ecs-c-learning/internal/data"
	"github.com/kingveneer/ecs-c-learning/internal/persist"
	"github.com/kingveneer/ecs-c-learning/internal/scripting"
	"github.com/kingveneer/ecs-c-learning/internal/system"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Report helpers ────────────────────────────────────────────────

type report struct {
	p *message.Printer
}

func (r report) section(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func (r report) stat(label string, value any) {
	s := r.p.Sprintf("%v", value)
	dots := max(3, 42-len(label)-len(s))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dots), s)
}

func (r report) ok(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Driver ────────────────────────────────────────────────────────

func run() error {
	var (
		cfgPath  = flag.String("config", "config/skirmish.toml", "path to the TOML config (SKIRMISH_CONFIG overrides the default)")
		rounds   = flag.Int("rounds", 0, "number of battles to run (0 uses battle.rounds)")
		profMode = flag.String("profile", "", "write a cpu or mem profile to the working directory")
		lang     = flag.String("lang", "en", "BCP 47 tag used to format numbers in the report")
	)
	flag.Parse()

	path := *cfgPath
	if p := os.Getenv("SKIRMISH_CONFIG"); p != "" && !flagSet("config") {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *rounds > 0 {
		cfg.Battle.Rounds = *rounds
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profMode)
	}

	tag, err := language.Parse(*lang)
	if err != nil {
		return fmt.Errorf("parse -lang: %w", err)
	}
	out := report{p: message.NewPrinter(tag)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Data and scripts
	out.section("Data")
	roster, err := data.LoadRoster(cfg.Battle.Roster)
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	if total := roster.Total(); uint32(total) > cfg.Session.EntityCapacity {
		return fmt.Errorf("roster fields %d units but session.entity_capacity is %d", total, cfg.Session.EntityCapacity)
	}
	out.stat("Unit templates", len(roster.Units()))
	out.stat("Units per battle", roster.Total())

	engine, err := scripting.NewEngine(cfg.Battle.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	if engine.HasFunc("calc_attack") {
		out.ok("Lua combat formula loaded")
	} else {
		out.ok("No calc_attack script, using attack - defense")
	}
	fmt.Println()

	// Optional result store
	var repo *persist.BattleRepo
	if cfg.Database.DSN != "" {
		out.section("Database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := db.Migrate(dbCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		out.stat("Schema version", version)
		repo = persist.NewBattleRepo(db)
		fmt.Println()
	}

	// Session
	b, err := battle.New(battle.Options{
		Capacity:      cfg.Session.EntityCapacity,
		PoolBytes:     cfg.Session.ComponentPoolBytes,
		ScratchBytes:  cfg.Session.ScratchArenaBytes,
		StorageCap:    cfg.Session.StorageCapacity,
		DeathQueueCap: cfg.Session.DeathQueueCapacity,
	}, log)
	if err != nil {
		return fmt.Errorf("battle session: %w", err)
	}
	defer b.Close()

	bus := event.NewBus()
	pipe := system.NewPipeline(b, bus, engine, cfg.Battle.MaxTurns)

	out.section("Battles")
	rows := make([]persist.BattleRow, 0, cfg.Battle.Rounds)
	start := time.Now()
	var peak arena.MemoryStats
	for round := 1; round <= cfg.Battle.Rounds; round++ {
		if err := pipe.Reset(); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		if _, err := b.SpawnRoster(roster); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		if st := b.Allocator().Stats(); st.TotalUsed > peak.TotalUsed {
			peak = st
		}

		outcome, err := pipe.Run(ctx, cfg.Battle.TickRate)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn("interrupted", zap.Int("round", round), zap.Int("turn", b.Turn()))
				break
			}
			return fmt.Errorf("round %d: %w", round, err)
		}
		rows = append(rows, persist.NewBattleRow(round, outcome, pipe.Attack.Attacks(), pipe.Attack.Kills()))
		out.stat(fmt.Sprintf("Round %d: %s", round, system.WinnerName(outcome.Winner)),
			out.p.Sprintf("%d turns, %d/%d alive", outcome.Turns, outcome.Survivors[battle.TeamA], outcome.Survivors[battle.TeamB]))
		log.Debug("round digest",
			zap.Int("round", round),
			zap.String("digest", hex.EncodeToString(outcome.Digest[:])),
		)
	}
	elapsed := time.Since(start)
	fmt.Println()

	out.section("Summary")
	out.stat("Battles", pipe.Tally.Battles)
	out.stat("Team A wins", pipe.Tally.Wins[battle.TeamA])
	out.stat("Team B wins", pipe.Tally.Wins[battle.TeamB])
	out.stat("Draws", pipe.Tally.Draws)
	out.stat("Team A losses", pipe.Tally.Losses[battle.TeamA])
	out.stat("Team B losses", pipe.Tally.Losses[battle.TeamB])
	out.stat("Elapsed", elapsed.Round(time.Microsecond))
	out.stat("Component pools (bytes)", peak.TotalAllocated)
	out.stat("Peak pool use (bytes)", peak.TotalUsed)
	out.stat("Peak utilization (%)", out.p.Sprintf("%.2f", peak.Utilization))
	fmt.Println()

	if repo != nil && len(rows) > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.SaveAll(saveCtx, rows); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
		out.ok(out.p.Sprintf("Saved %d battle results", len(rows)))
		fmt.Println()

		if err := printHistory(saveCtx, out, repo); err != nil {
			return err
		}
	}
	return nil
}

// historySource is the read side of the result store.
type historySource interface {
	Recent(ctx context.Context, limit int) ([]persist.BattleRow, error)
	WinCounts(ctx context.Context) (map[int]int, error)
}

const historyLimit = 5

func printHistory(ctx context.Context, out report, h historySource) error {
	wins, err := h.WinCounts(ctx)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	recent, err := h.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	out.section("History")
	for _, l := range historyLines(out.p, wins, recent) {
		out.stat(l.label, l.value)
	}
	return nil
}

type statLine struct {
	label string
	value string
}

// historyLines renders all-time totals, then the newest stored battles.
func historyLines(p *message.Printer, wins map[int]int, recent []persist.BattleRow) []statLine {
	total := 0
	for _, n := range wins {
		total += n
	}
	lines := []statLine{
		{"Stored battles", p.Sprintf("%d", total)},
		{"Team A wins (all time)", p.Sprintf("%d", wins[battle.TeamA])},
		{"Team B wins (all time)", p.Sprintf("%d", wins[battle.TeamB])},
		{"Draws (all time)", p.Sprintf("%d", wins[battle.Draw])},
	}
	for _, r := range recent {
		lines = append(lines, statLine{
			label: fmt.Sprintf("#%d round %d: %s", r.ID, r.Round, system.WinnerName(r.Winner)),
			value: p.Sprintf("%d turns, %d/%d alive", r.Turns, r.SurvivorsA, r.SurvivorsB),
		})
	}
	return lines
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
