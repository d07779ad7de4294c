package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		exitErr("command not specified")
	}

	switch os.Args[1] {
	case "train":
		cmdTrain(os.Args[2:])
	case "generate":
		cmdGenerate(os.Args[2:])
	case "merge":
		cmdMerge(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "version":
		fmt.Printf("markovgen %s (%s, built %s)\n", Version, Commit, BuildDate)
	case "help", "-h", "-help", "--help":
		printUsage()
	default:
		printUsage()
		exitErrf("unknown command %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `markovgen - an order-N markov chain generator

Usage:
  markovgen train    -update CHAIN[,CHAIN...] [-order N] INPUT...
  markovgen generate [-chain CHAIN] [-paragraphs N] [-sentences M] [TEXT...]
  markovgen merge    -out CHAIN INPUT...
  markovgen stats    CHAIN...
  markovgen version

The file format of a chain is determined by its file extension.
These are the file formats and extensions supported:

%s
Run "markovgen COMMAND -h" for the flags of each command.
`, formatTable())
}

func exitErr(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}

func exitErrf(format string, args ...any) {
	exitErr(fmt.Sprintf(format, args...))
}

// newLogger builds the process logger from a level name.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
