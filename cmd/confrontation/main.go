// Command confrontation times the container against direct construction and
// go.uber.org/dig on a fixed set of workloads.
//
// Configuration comes from a .env file and CONFRONTATION_* environment
// variables; flags override both.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/junioryono/ioc/internal/confrontation"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "confrontation:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("confrontation", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "environment file to load")
	iterations := fs.String("iterations", "", "comma separated iteration counts")
	warmup := fs.Bool("warmup", true, "run a warm up round first")
	format := fs.String("format", "", "report format: text or json")
	verbose := fs.Bool("v", false, "log every bench")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := confrontation.Load(*envFile)
	if err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "iterations":
			cfg.Iterations, err = confrontation.ParseIterations(*iterations)
		case "warmup":
			cfg.Warmup = *warmup
		case "format":
			cfg.Format = *format
		}
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("starting confrontation",
		"iterations", cfg.Iterations,
		"warmup", cfg.Warmup,
		"format", cfg.Format,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := confrontation.NewRunner(cfg, confrontation.WithLogger(logger)).Run(ctx)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, cfg.Format)
}
