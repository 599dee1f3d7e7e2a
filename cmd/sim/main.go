// Package main provides a scripted turn-loop simulator: one character in one
// session, rolled experience awards, status effects, and per-turn resolution.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rpgrules/internal/config"
	"github.com/cory-johannsen/rpgrules/internal/content"
	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/dice"
	"github.com/cory-johannsen/rpgrules/internal/game/facade"
	"github.com/cory-johannsen/rpgrules/internal/game/resolver"
	"github.com/cory-johannsen/rpgrules/internal/game/session"
	"github.com/cory-johannsen/rpgrules/internal/observability"
	"github.com/cory-johannsen/rpgrules/internal/scripting"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and RPG_ environment overrides")
	name := flag.String("name", "Wanderer", "character name")
	classID := flag.String("class", "mage", "character class ID")
	xpExpr := flag.String("xp", "3d20+10", "dice expression rolled for the experience award each turn")
	effects := flag.String("effects", "poison,blessing", "comma-separated effect IDs applied before the first turn")
	turns := flag.Int("turns", 5, "number of turns to simulate")
	seed := flag.Uint64("seed", 0, "random seed for experience rolls; 0 uses crypto/rand")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	xpRoll, err := dice.Parse(*xpExpr)
	if err != nil {
		logger.Fatal("parsing experience expression", zap.Error(err))
	}
	var src dice.Source
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewRoller(src, logger)

	bundle, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	var hook resolver.TickHook
	if cfg.Content.ScriptsDir != "" {
		scripts := scripting.NewManager(logger)
		if err := scripts.LoadDir(cfg.Content.ScriptsDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading effect scripts", zap.Error(err))
		}
		defer scripts.Close()
		hook = scripts
	}

	rules, err := facade.New(bundle, cfg.Rules, hook, logger)
	if err != nil {
		logger.Fatal("building rules engine", zap.Error(err))
	}

	sessions := session.NewManager(logger)
	sess := sessions.Start("sim")
	defer func() {
		if err := sessions.End(sess.ID); err != nil {
			logger.Warn("ending session", zap.Error(err))
		}
	}()

	c, err := rules.Create(*name, *classID)
	if err != nil {
		logger.Fatal("creating character", zap.Error(err))
	}
	if err := sess.Adopt(c); err != nil {
		logger.Fatal("adopting character", zap.Error(err))
	}
	logger.Info("simulation started",
		zap.String("session", sess.ID),
		zap.String("character", c.ID),
		zap.String("class", c.Class),
		zap.Int("turns", *turns),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = sess.Do(c.ID, func(c *character.Character) error {
		for _, id := range splitList(*effects) {
			out, err := rules.ApplyEffect(c, id, "sim")
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "effect %s: %s\n", id, out.Status)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("applying starting effects", zap.Error(err))
	}

	for turn := 1; turn <= *turns; turn++ {
		if ctx.Err() != nil {
			logger.Info("simulation interrupted", zap.Int("turn", turn))
			break
		}
		err := sess.Do(c.ID, func(c *character.Character) error {
			award := roller.Roll(xpRoll).Total()
			if award < 0 {
				award = 0
			}
			res, err := rules.AddExperience(c, award)
			if err != nil {
				return err
			}
			for _, ev := range res.Events {
				fmt.Fprintf(os.Stdout, "turn %d: level %d -> %d, gains %v, +%d hp\n",
					turn, ev.From, ev.To, ev.Gains, ev.HealthGain)
			}
			rep, err := rules.AdvanceTurn(c)
			if err != nil {
				return err
			}
			if len(rep.Expired) > 0 {
				fmt.Fprintf(os.Stdout, "turn %d: expired %s\n", turn, strings.Join(rep.Expired, ", "))
			}
			printView(turn, rules.View(c))
			return nil
		})
		if err != nil {
			logger.Fatal("simulating turn", zap.Int("turn", turn), zap.Error(err))
		}
		if c.Defeated() {
			logger.Info("character defeated", zap.Int("turn", turn))
			break
		}
	}

	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}

func printView(turn int, v facade.View) {
	var effects []string
	for _, e := range v.Effects {
		effects = append(effects, fmt.Sprintf("%s(%d)", e.ID, e.Remaining))
	}
	fmt.Fprintf(os.Stdout, "turn %d: level %d xp %d/%d hp %d/%d effects [%s]\n",
		turn, v.Level, v.Experience, v.NextThreshold, v.Health, v.MaxHealth, strings.Join(effects, " "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
