// Command dirfile inspects dirfiles and prints field data.
//
// Usage:
//
//	dirfile [flags] info   <dir>
//	dirfile [flags] fields <dir>
//	dirfile [flags] get    <dir> <field>...
//
// Flags may also be set in a TOML file passed with -config; flags given on
// the command line take precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile"
	"github.com/arloliu/dirfile/internal/config"
	"github.com/arloliu/dirfile/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

type command struct {
	cfg    config.Config
	logger zerolog.Logger
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dirfile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	configPath := fs.String("config", "", "TOML configuration file")
	logLevel := fs.String("log-level", "", "log level (trace, debug, info, warn, error, off)")
	output := fs.String("output", "", "output format of get (csv, json)")
	workers := fs.Int("workers", 0, "number of fields fetched concurrently")
	precision := fs.Int("precision", 0, "digits after the decimal point in CSV output, -1 for shortest")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	cfg, err := loadConfig(fs, *configPath, *logLevel, *output, *workers, *precision)
	if err != nil {
		fmt.Fprintf(stderr, "dirfile: %v\n", err)
		return 2
	}

	rest := fs.Args()
	if len(rest) < 2 {
		printUsage(stderr, fs)
		return 2
	}

	cmd := command{
		cfg:    cfg,
		logger: logging.New(stderr, "dirfile", cfg.LogLevel),
		stdout: stdout,
	}

	switch rest[0] {
	case "info":
		err = cmd.info(rest[1])
	case "fields":
		err = cmd.fields(rest[1])
	case "get":
		if len(rest) < 3 {
			printUsage(stderr, fs)
			return 2
		}
		err = cmd.get(ctx, rest[1], rest[2:])
	default:
		fmt.Fprintf(stderr, "dirfile: unknown command %q\n\n", rest[0])
		printUsage(stderr, fs)

		return 2
	}

	if err != nil {
		cmd.logger.Error().Err(err).Str("command", rest[0]).Msg("command failed")
		fmt.Fprintf(stderr, "dirfile: %v\n", err)

		return 1
	}

	return 0
}

// loadConfig applies the config file, then every flag set on the command line.
func loadConfig(fs *flag.FlagSet, path, logLevel, output string, workers, precision int) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "log-level":
			err = cfg.SetLogLevel(logLevel)
		case "output":
			err = cfg.SetOutput(output)
		case "workers":
			err = cfg.SetWorkers(workers)
		case "precision":
			if precision < -1 {
				err = fmt.Errorf("parse precision: %d is below -1", precision)
				return
			}
			cfg.Precision = precision
		}
	})

	return cfg, err
}

func (c command) open(dir string) (*dirfile.Dirfile, error) {
	return dirfile.Open(dir, dirfile.WithLogger(c.logger))
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  dirfile [flags] info   <dir>")
	fmt.Fprintln(w, "  dirfile [flags] fields <dir>")
	fmt.Fprintln(w, "  dirfile [flags] get    <dir> <field>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}
