package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xkowalskidev/sourcequery/protocol"
	"github.com/0xkowalskidev/sourcequery/query"
)

func main() {
	var (
		timeout    = flag.Duration("timeout", 5*time.Second, "Query timeout")
		format     = flag.String("format", "text", "Output format (text, json)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		configPath = flag.String("config", "", "Watch config file (TOML); enables watch mode")
		interval   = flag.Duration("interval", 0, "Override watch poll interval")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	logger := newLogger(*debug)

	if *configPath != "" {
		runWatch(logger, *configPath, *interval)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: sourcequery [options] <address[:port]>\n")
		fmt.Fprintf(os.Stderr, "Run 'sourcequery -help' for more information\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	info, err := query.Query(ctx, args[0], query.Timeout(*timeout), query.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := outputResult(info, *format); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "sourcequery").Logger().Level(level)
}

func runWatch(logger zerolog.Logger, path string, interval time.Duration) {
	cfg, err := loadWatchConfig(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid watch config")
	}
	if interval > 0 {
		cfg.Interval = interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := query.NewWatcher(query.WatchConfig{
		Servers:        cfg.Servers,
		Interval:       cfg.Interval,
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         logger,
		QueryOptions: []query.Option{
			query.Timeout(cfg.Timeout),
			query.WithLogger(logger),
		},
	})

	logger.Info().Int("servers", len(cfg.Servers)).Dur("interval", cfg.Interval).Msg("watching servers")
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("watch loop failed")
	}
}

func showHelp() {
	fmt.Printf(`sourcequery - Query Source and GoldSrc game servers for status information

Usage: sourcequery [options] <address[:port]>
       sourcequery -config watch.toml

Options:
  -timeout duration    Query timeout (default 5s)
  -format string       Output format: text, json (default "text")
  -debug               Enable debug logging
  -config string       Watch config file (TOML); polls the listed servers
  -interval duration   Override watch poll interval
  -help                Show this help

Examples:
  sourcequery 192.168.1.100:27015          # One-shot info query
  sourcequery -format json play.example.net
  sourcequery -config watch.toml           # Poll servers, log state changes
`)
}

func outputResult(info *protocol.ServerInfo, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "text":
		return outputText(info)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func outputText(info *protocol.ServerInfo) error {
	printIfNotEmpty("Server", info.Name)
	if game := protocol.IdentifyGame(info); game != "" {
		fmt.Printf("Game: %s\n", game)
	} else {
		printIfNotEmpty("Game", info.Game)
	}
	fmt.Printf("Engine: %s\n", info.Engine)
	printIfNotEmpty("Map", info.Map)
	fmt.Printf("Players: %d/%d", info.Players, info.MaxPlayers)
	if info.Bots > 0 {
		fmt.Printf(" (%d bots)", info.Bots)
	}
	fmt.Println()
	printIfNotEmpty("Version", info.Version)
	fmt.Printf("Password: %t\n", info.Password)
	fmt.Printf("Secure: %t\n", info.Secure)

	if info.Port != 0 {
		fmt.Printf("Game Port: %d\n", info.Port)
	}
	if info.SteamID != 0 {
		fmt.Printf("Steam ID: %d\n", info.SteamID)
	}
	if info.SourceTV != nil {
		fmt.Printf("SourceTV: %s (port %d)\n", info.SourceTV.Name, info.SourceTV.Port)
	}
	printIfNotEmpty("Keywords", info.Keywords)
	if info.GameID != 0 {
		fmt.Printf("Game ID: %d\n", info.GameID)
	}
	if info.Mod != nil {
		fmt.Printf("Mod: %s (version %d)\n", info.Mod.URL, info.Mod.Version)
	}

	return nil
}

func printIfNotEmpty(label, value string) {
	if value != "" {
		fmt.Printf("%s: %s\n", label, value)
	}
}
