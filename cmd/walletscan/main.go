package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/liamashdown/walletscan/internal/alerts"
	"github.com/liamashdown/walletscan/internal/arbitrage"
	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/marketcache"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/liamashdown/walletscan/internal/polymarket/dataapi"
	"github.com/liamashdown/walletscan/internal/polymarket/gammaapi"
	"github.com/liamashdown/walletscan/internal/processor"
	"github.com/sirupsen/logrus"
)

const usage = `usage: walletscan <command> [flags]

commands:
  wallet <address>                          analyze one wallet
  discover [-sample N] [-max N] [-continuous] find profitable wallets among active traders
  arbitrage [-threshold X]                  list markets where YES+NO < threshold
`

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "wallet":
		code = runWallet(ctx, cfg, log, args)
	case "discover":
		code = runDiscover(ctx, cfg, log, args)
	case "arbitrage":
		code = runArbitrage(ctx, cfg, log, args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		code = 2
	}

	stop()
	os.Exit(code)
}

func newProcessor(cfg *config.Config, log *logrus.Logger) *processor.Processor {
	dataClient := dataapi.NewClient(cfg)
	gammaClient := gammaapi.NewClient(cfg)
	loader := marketcache.NewLoader(gammaClient, cfg, log)
	alertSender := alerts.FromConfig(cfg, log)

	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"max_markets": cfg.MaxMarkets,
		"concurrency": cfg.MaxConcurrency,
		"alert_mode":  cfg.AlertMode,
	}).Info("Configuration loaded")

	return processor.New(cfg, dataClient, loader, alertSender, log)
}

func runWallet(ctx context.Context, cfg *config.Config, log *logrus.Logger, args []string) int {
	fs := flag.NewFlagSet("wallet", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: walletscan wallet <address>")
		return 2
	}

	proc := newProcessor(cfg, log)
	report, err := proc.AnalyzeWallet(ctx, fs.Arg(0))
	switch {
	case errors.Is(err, model.ErrInvalidAddress):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.Is(err, model.ErrInsufficientData):
		printReport(os.Stdout, report, false)
		fmt.Fprintln(os.Stdout, "Insufficient data: no resolved positions in the cached market window.")
		return 0
	case err != nil:
		log.WithError(err).Error("Wallet analysis failed")
		return 1
	}

	printReport(os.Stdout, report, proc.Accept(report))
	return 0
}

func runDiscover(ctx context.Context, cfg *config.Config, log *logrus.Logger, args []string) int {
	opts := processor.OptionsFromConfig(cfg)

	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.IntVar(&opts.SampleSize, "sample", opts.SampleSize, "number of recent trades to sample for candidate wallets")
	fs.IntVar(&opts.MaxWallets, "max", opts.MaxWallets, "maximum wallets to analyze per iteration")
	fs.BoolVar(&opts.Continuous, "continuous", opts.Continuous, "repeat scans until interrupted")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.SampleSize <= 0 || opts.MaxWallets <= 0 {
		fmt.Fprintln(os.Stderr, "-sample and -max must be positive")
		return 2
	}

	proc := newProcessor(cfg, log)

	srv := newHTTPServer(cfg.HealthPort, proc.State(), log)
	go srv.run()
	defer srv.shutdown()

	snap, err := proc.Discover(ctx, opts)
	if err != nil {
		log.WithError(err).Error("Discovery failed")
		return 1
	}

	printSummary(os.Stdout, snap)
	return 0
}

func runArbitrage(ctx context.Context, cfg *config.Config, log *logrus.Logger, args []string) int {
	threshold := cfg.ArbitrageThreshold

	fs := flag.NewFlagSet("arbitrage", flag.ContinueOnError)
	fs.Float64Var(&threshold, "threshold", threshold, "flag markets where YES+NO is below this price")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if threshold <= 0 || threshold > 1 {
		fmt.Fprintln(os.Stderr, "-threshold must be in (0, 1]")
		return 2
	}

	scanner := arbitrage.NewScanner(threshold, log)
	opps, err := scanner.Run(ctx, gammaapi.NewClient(cfg))
	if err != nil {
		log.WithError(err).Error("Arbitrage scan failed")
		return 1
	}

	printOpportunities(os.Stdout, opps, threshold)
	return 0
}
