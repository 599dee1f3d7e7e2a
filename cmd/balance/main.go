// Package main provides the balance report binary: it simulates a fresh
// character of every class to a target level and prints a comparison table.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/rpgrules/internal/config"
	"github.com/cory-johannsen/rpgrules/internal/content"
	"github.com/cory-johannsen/rpgrules/internal/game/balance"
	"github.com/cory-johannsen/rpgrules/internal/game/facade"
	"github.com/cory-johannsen/rpgrules/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and RPG_ environment overrides")
	level := flag.Int("level", 10, "level to simulate every class to")
	lang := flag.String("lang", "en", "BCP 47 language tag for number formatting")
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

	tag, err := language.Parse(*lang)
	if err != nil {
		logger.Fatal("parsing language tag", zap.String("lang", *lang), zap.Error(err))
	}

	loadStart := time.Now()
	bundle, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("classes", bundle.Classes.Len()),
		zap.Int("effects", len(bundle.Effects.All())),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	rules, err := facade.New(bundle, cfg.Rules, nil, logger)
	if err != nil {
		logger.Fatal("building rules engine", zap.Error(err))
	}

	report, err := balance.Build(rules, *level)
	if err != nil {
		logger.Fatal("building balance report", zap.Error(err))
	}
	if err := balance.Render(os.Stdout, report, tag); err != nil {
		logger.Fatal("writing balance report", zap.Error(err))
	}

	logger.Info("balance report complete",
		zap.Int("level", *level),
		zap.Duration("elapsed", time.Since(start)),
	)
}
