package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/pool"

	"github.com/alekratz/markovgen/pkg/markov"
)

func cmdTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "path to a JSON config file")
		logLevel   = fs.String("log", "", "log level (debug, info, warn, error)")
		updates    = fs.String("update", "", "comma-separated list of chain files to update or create")
		order      = fs.Int("order", 0, "order of newly created chains")
		model      = fs.String("model", "", "model name used for SQLite chain files")
		jobs       = fs.Int("jobs", runtime.NumCPU(), "maximum number of input files trained in parallel")
	)
	_ = fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	if *order == 0 {
		*order = cfg.Order
	}
	if *model == "" {
		*model = cfg.ModelName
	}
	logger := newLogger(coalesce(*logLevel, cfg.LogLevel))

	if *order < 1 {
		exitErr("order must be at least 1")
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		exitErr("no input files specified")
	}
	updateFiles := splitList(*updates)
	if len(updateFiles) == 0 {
		exitErr("no chain files specified (use -update)")
	}

	// Fail on unusable paths before doing any work.
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			exitErrf("could not find input file %q", input)
		}
	}
	for _, update := range updateFiles {
		requireChainExt(update)
	}

	ctx := context.Background()

	// Load every chain that will be updated, creating the missing ones.
	chains := make([]*markov.Chain[string], len(updateFiles))
	for i, update := range updateFiles {
		c, err := loadChainFile(ctx, update, *model)
		switch {
		case err == nil:
			if c.Order() != *order {
				exitErrf("chain file %q has a chain with order %d, but %d was specified on the command line",
					update, c.Order(), *order)
			}
			logger.Info("Loaded chain", "path", update, "order", c.Order())
		case errors.Is(err, os.ErrNotExist) || errors.Is(err, markov.ErrModelNotFound):
			logger.Info("Chain does not exist, it will be created", "path", update)
			c = markov.New[string](*order)
		default:
			exitErrf("could not load %q: %v", update, err)
		}
		chains[i] = c
	}

	// Train each input into its own fresh chain, in parallel. Merge is the
	// engine's one composition point, so workers never share a chain.
	trained := make([]*markov.Chain[string], len(inputs))
	p := pool.New().WithMaxGoroutines(*jobs).WithErrors()
	for i, input := range inputs {
		p.Go(func() error {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("could not read %q: %w", input, err)
			}
			defer func() { _ = f.Close() }()

			tc := markov.NewText(*order)
			if err := tc.TrainReader(f); err != nil {
				return fmt.Errorf("could not train on %q: %w", input, err)
			}
			trained[i] = tc.Chain
			logger.Info("Trained input",
				"path", input,
				"nodes", humanize.Comma(int64(tc.Len())))
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		exitErr(err.Error())
	}

	for i, update := range updateFiles {
		for _, t := range trained {
			chains[i].Merge(t)
		}
		if err := saveChainFile(ctx, update, *model, chains[i]); err != nil {
			exitErrf("could not write %q: %v", update, err)
		}
		stats := chains[i].Stats()
		logger.Info("Wrote chain",
			"path", update,
			"nodes", humanize.Comma(int64(stats.Nodes)),
			"links", humanize.Comma(int64(stats.Links)),
			"observations", humanize.Comma(int64(stats.TotalWeight)))
	}
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
