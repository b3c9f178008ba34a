// Command linkscan crawls a website and reports working, broken, and
// unreachable links.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"linkscan/internal/crawler"
	"linkscan/internal/report"
)

const (
	exitBrokenFound = 1
	exitSetup       = 2
)

var cli struct {
	URL string `arg:"" help:"Page to start scanning from, including the scheme."`

	MaxURLs  int           `name:"max-urls" default:"100" help:"Stop after checking this many URLs."`
	MaxDepth int           `name:"max-depth" default:"2" help:"How many levels of links to follow from the start page."`
	Delay    time.Duration `default:"1s" help:"Minimum spacing between link checks."`
	External bool          `help:"Also check links pointing at other hosts."`

	JSON string `name:"json" placeholder:"FILE" help:"Write the full report as JSON to this file."`
	CSV  string `name:"csv" placeholder:"FILE" help:"Write the checked links as CSV to this file."`

	Workers       int           `default:"8" help:"Concurrent page workers."`
	Timeout       time.Duration `default:"10s" help:"Per-request timeout."`
	UserAgent     string        `name:"user-agent" help:"Override the User-Agent header."`
	RespectRobots bool          `name:"respect-robots" help:"Honor robots.txt on the scanned hosts."`
	Verbose       bool          `short:"v" help:"Log scan progress to stderr."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("linkscan"),
		kong.Description("Crawl a website and report working, broken, and unreachable links."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			if code != 0 {
				os.Exit(exitSetup)
			}
			os.Exit(0)
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkscan: %v\n", err)
		os.Exit(exitSetup)
	}
	if len(res.Broken) > 0 {
		os.Exit(exitBrokenFound)
	}
}

func run(ctx context.Context) (*crawler.Result, error) {
	cfg := crawler.Config{
		StartURL:      cli.URL,
		MaxURLs:       cli.MaxURLs,
		MaxDepth:      cli.MaxDepth,
		Delay:         cli.Delay,
		AllowExternal: cli.External,
		Workers:       cli.Workers,
		Timeout:       cli.Timeout,
		UserAgent:     cli.UserAgent,
		RespectRobots: cli.RespectRobots,
	}
	if cli.Verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		cfg.Progress = func(page string) {
			fmt.Fprintf(os.Stderr, "scanning %s\n", page)
		}
	}

	res, err := crawler.Crawl(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "scan interrupted, reporting partial results")
	}

	report.Summary(os.Stdout, res)

	if cli.JSON != "" {
		if err := report.WriteJSON(res, cli.JSON); err != nil {
			return nil, fmt.Errorf("write JSON report: %w", err)
		}
		fmt.Printf("JSON report saved to %s\n", cli.JSON)
	}
	if cli.CSV != "" {
		if err := report.WriteCSV(res, cli.CSV); err != nil {
			return nil, fmt.Errorf("write CSV report: %w", err)
		}
		fmt.Printf("CSV report saved to %s\n", cli.CSV)
	}
	return res, nil
}
