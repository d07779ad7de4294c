package main

import (
	"context"
	"flag"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/alekratz/markovgen/pkg/markov"
)

// cmdMerge folds any mix of chain files and raw text files into one output
// chain. Inputs with a known chain extension are loaded; everything else is
// treated as training text.
func cmdMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "path to a JSON config file")
		logLevel   = fs.String("log", "", "log level (debug, info, warn, error)")
		out        = fs.String("out", "", "output chain file")
		model      = fs.String("model", "", "model name used for SQLite chain files")
		order      = fs.Int("order", 0, "order required of every input chain")
	)
	_ = fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	if *model == "" {
		*model = cfg.ModelName
	}
	logger := newLogger(coalesce(*logLevel, cfg.LogLevel))

	if *order < 0 {
		exitErr("order must be at least 1")
	}
	if *out == "" {
		exitErr("no output file specified (use -out)")
	}
	requireChainExt(*out)
	inputs := fs.Args()
	if len(inputs) == 0 {
		exitErr("no input files specified")
	}

	ctx := context.Background()

	// The output order is pinned by -order when given, otherwise by the
	// first chain input, otherwise by the configured default.
	var merged *markov.Chain[string]
	if *order > 0 {
		merged = markov.New[string](*order)
	}

	for _, input := range inputs {
		var c *markov.Chain[string]
		if _, isChain := chainExt(input); isChain {
			loaded, err := loadChainFile(ctx, input, *model)
			if err != nil {
				exitErrf("could not load %q: %v", input, err)
			}
			c = loaded
		} else {
			f, err := os.Open(input)
			if err != nil {
				exitErrf("could not read %q: %v", input, err)
			}
			textOrder := cfg.Order
			if merged != nil {
				textOrder = merged.Order()
			}
			tc := markov.NewText(textOrder)
			if err = tc.TrainReader(f); err != nil {
				_ = f.Close()
				exitErrf("could not train on %q: %v", input, err)
			}
			_ = f.Close()
			c = tc.Chain
		}

		if merged == nil {
			merged = markov.New[string](c.Order())
		}
		if c.Order() != merged.Order() {
			exitErrf("chain file %q has a chain with order %d, but the merge is using order %d",
				input, c.Order(), merged.Order())
		}
		merged.Merge(c)
		logger.Debug("Merged input", "path", input, "nodes", merged.Len())
	}

	if err := saveChainFile(ctx, *out, *model, merged); err != nil {
		exitErrf("could not write %q: %v", *out, err)
	}
	stats := merged.Stats()
	logger.Info("Wrote merged chain",
		"path", *out,
		"order", merged.Order(),
		"nodes", humanize.Comma(int64(stats.Nodes)),
		"links", humanize.Comma(int64(stats.Links)),
		"observations", humanize.Comma(int64(stats.TotalWeight)))
}
