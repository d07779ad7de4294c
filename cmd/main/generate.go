package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alekratz/markovgen/pkg/markov"
)

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		configPath  = fs.String("config", "", "path to a JSON config file")
		logLevel    = fs.String("log", "", "log level (debug, info, warn, error)")
		chainPath   = fs.String("chain", "", "chain file to load")
		model       = fs.String("model", "", "model name used for SQLite chain files")
		order       = fs.Int("order", 0, "order used when training from text inputs")
		paragraphs  = fs.Int("paragraphs", 0, "number of paragraphs to print")
		sentences   = fs.Int("sentences", 0, "number of sentences per paragraph")
		seed        = fs.String("seed", "", "seed text leading the first sentence")
		temperature = fs.Float64("temperature", 1.0, "sampling temperature (0 is deterministic)")
		topK        = fs.Int("topk", 0, "restrict sampling to the K heaviest candidates (0 disables)")
	)
	_ = fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	if *order == 0 {
		*order = cfg.Order
	}
	if *model == "" {
		*model = cfg.ModelName
	}
	if *paragraphs == 0 {
		*paragraphs = cfg.Paragraphs
	}
	if *sentences == 0 {
		*sentences = cfg.Sentences
	}
	logger := newLogger(coalesce(*logLevel, cfg.LogLevel))

	if *order < 1 {
		exitErr("order must be at least 1")
	}
	if *chainPath == "" && len(fs.Args()) == 0 {
		exitErr("nothing to generate from: specify -chain and/or text input files")
	}

	ctx := context.Background()

	var chain *markov.Chain[string]
	if *chainPath != "" {
		c, err := loadChainFile(ctx, *chainPath, *model)
		if err != nil {
			exitErrf("could not load %q: %v", *chainPath, err)
		}
		chain = c
		logger.Debug("Loaded chain", "path", *chainPath, "order", chain.Order())
	} else {
		chain = markov.New[string](*order)
	}

	tc := markov.NewTextFrom(chain)
	for _, input := range fs.Args() {
		f, err := os.Open(input)
		if err != nil {
			exitErrf("could not read %q: %v", input, err)
		}
		if err = tc.TrainReader(f); err != nil {
			_ = f.Close()
			exitErrf("could not train on %q: %v", input, err)
		}
		_ = f.Close()
		logger.Debug("Trained input", "path", input)
	}

	if tc.IsEmpty() {
		exitErr("chain is empty, nothing to generate")
	}

	opts := []markov.GenerateOption{
		markov.WithTemperature(*temperature),
		markov.WithTopK(*topK),
	}

	for p := 0; p < *paragraphs; p++ {
		if p == 0 && *seed != "" {
			fmt.Println(seededParagraph(tc, *seed, *sentences, opts))
			continue
		}
		fmt.Println(tc.GenerateParagraph(*sentences, opts...))
	}
}

// seededParagraph builds one paragraph whose first sentence is led by seed.
func seededParagraph(tc *markov.TextChain, seed string, sentences int, opts []markov.GenerateOption) string {
	if sentences <= 0 {
		return ""
	}
	parts := make([]string, 0, sentences)
	first, err := tc.GenerateSentenceFrom(seed, opts...)
	if err != nil {
		exitErr(err.Error())
	}
	parts = append(parts, first)
	for i := 1; i < sentences; i++ {
		parts = append(parts, tc.GenerateSentence(opts...))
	}
	return strings.Join(parts, " ")
}
