package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"
)

func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "path to a JSON config file")
		model      = fs.String("model", "", "model name used for SQLite chain files")
	)
	_ = fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	if *model == "" {
		*model = cfg.ModelName
	}
	if len(fs.Args()) == 0 {
		exitErr("no chain files specified")
	}

	ctx := context.Background()
	for _, path := range fs.Args() {
		c, err := loadChainFile(ctx, path, *model)
		if err != nil {
			exitErrf("could not load %q: %v", path, err)
		}
		stats := c.Stats()
		fmt.Printf("%s: order %d, %s nodes, %s links, %s observations, %s starting links, %s tokens in vocabulary\n",
			path, c.Order(),
			humanize.Comma(int64(stats.Nodes)),
			humanize.Comma(int64(stats.Links)),
			humanize.Comma(int64(stats.TotalWeight)),
			humanize.Comma(int64(stats.Starters)),
			humanize.Comma(int64(stats.VocabSize)))
	}
}
