// Command pdflayer renders PDF documents with their text layer, either to
// files or through an HTTP server.
//
// Usage:
//
//	pdflayer [-config file]... render [flags] <source>
//	pdflayer [-config file]... serve [-port n] [-host h]
//	pdflayer [-config file]... inspect [-password p] <source>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"github.com/tsawler/pdflayer/config"
	"github.com/tsawler/pdflayer/internal/logging"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	logLevel    = flag.String("log-level", "", "Log level (overrides config)")

	cfg    *config.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pdflayer [-config file]... <command> [flags] [args]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  render   render pages to PNG with text layer JSON\n")
	fmt.Fprintf(os.Stderr, "  serve    start the HTTP server\n")
	fmt.Fprintf(os.Stderr, "  inspect  print document structure\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("pdflayer.toml"); err == nil {
			configFiles = append(configFiles, "pdflayer.toml")
		}
	}

	var err error
	cfg, err = config.Load(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger = setupLogger(cfg)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "render":
		err = runRender(args)
	case "serve":
		err = runServe(args)
	case "inspect":
		err = runInspect(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("Command failed")
		os.Exit(1)
	}
}

// setupLogger creates the console logger and routes library diagnostics
// through it.
func setupLogger(cfg *config.Config) arbor.ILogger {
	l := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	})
	l = l.WithLevelFromString(cfg.Logging.Level)

	logging.Set(slog.New(logging.NewArborHandler(l, logging.ParseLevel(cfg.Logging.Level))))
	return l
}
