// Package main is the entry point for the marksync preview pairer.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dshills/marksync/internal/annotate"
	"github.com/dshills/marksync/internal/config"
	"github.com/dshills/marksync/internal/logging"
	"github.com/dshills/marksync/internal/pair"
	"github.com/dshills/marksync/internal/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
	File       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	if opts.LogLevel != "" {
		logCfg.Level = logging.ParseLevel(opts.LogLevel)
	}
	if opts.Debug {
		logCfg.Level = logging.LevelDebug
	}
	logger := logging.New(logCfg)

	tokens := cfg.TokenSet()
	host := plugin.NewHost(plugin.WithLogger(logger))
	for _, script := range cfg.Plugins.Scripts {
		if err := host.LoadFile(script); err != nil {
			logger.Warn("plugin %s: %v", script, err)
			continue
		}
	}
	host.Apply(tokens)

	ctrl := pair.New(
		pair.WithLogger(logger),
		pair.WithAnnotator(annotate.New(annotate.WithTokenSet(tokens))),
		pair.WithDebounce(time.Duration(cfg.Sync.DebounceMillis)*time.Millisecond),
		pair.WithGuardDuration(time.Duration(cfg.Sync.GuardMillis)*time.Millisecond),
		pair.WithWrapWidth(cfg.Sync.WrapWidth),
	)

	text := ""
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		text = string(data)
	}

	// Reload the token table when the config file changes on disk.
	var watcher *config.Watcher
	if opts.ConfigPath != "" {
		watcher, err = config.NewWatcher(opts.ConfigPath, func(next config.Config) {
			// Build a fresh token table and swap the whole annotator;
			// the live one is never mutated mid-render.
			ts := next.TokenSet()
			host.Apply(ts)
			ctrl.SetAnnotator(annotate.New(annotate.WithTokenSet(ts)))
			logger.Info("configuration reloaded")
		}, config.WithWatcherLogger(logger))
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	v, err := newViewer(ctrl, logger, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Marksync - paired markdown source/preview viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: marksync [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k, arrows      Scroll the source pane (preview follows)\n")
		fmt.Fprintf(os.Stderr, "  PgUp/PgDn        Scroll the preview pane (source follows)\n")
		fmt.Fprintf(os.Stderr, "  click (preview)  Place the cursor at the matching source position\n")
		fmt.Fprintf(os.Stderr, "  q, Esc           Quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Marksync %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	opts.File = flag.Arg(0)
	return opts
}
