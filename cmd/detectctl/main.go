// Command detectctl drives a detectkit client from the command line.
//
//	detectctl [-env-file .env] <command> [flags] [args]
//
// Configuration comes from the environment (DETECT_*, REDIS_*, PG_*,
// MONGODB_*, S3_*). Commands that talk to the detection backend provision the
// session first; when that fails they continue anonymously.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dmitrymomot/detectkit"
	"github.com/dmitrymomot/detectkit/pkg/config"
	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/requestid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("detectctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", "", "load variables from this .env file first")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	var cfg detectkit.Config
	if err := config.Parse(&cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := newLogger(cfg, stderr)
	ctx = requestid.Ensure(ctx)

	client, err := detectkit.New(ctx, cfg, detectkit.WithLogger(log))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			log.Error("close client", logger.Error(err))
		}
	}()

	if cmd.session {
		if err := client.EnsureSession(ctx); err != nil {
			log.WarnContext(ctx, "session not provisioned, continuing anonymously", logger.Error(err))
		}
	}

	a := &app{client: client, stdout: stdout, stderr: stderr}
	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(cfg detectkit.Config, w io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "detectctl"),
		logger.WithLevel(slog.LevelWarn),
		logger.WithOutput(w),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage: detectctl [-env-file path] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fs.PrintDefaults()
}
