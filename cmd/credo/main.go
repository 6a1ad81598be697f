// Credo posts the daily credo report.
//
// On an eligible business day it picks a credo value, asks a text model
// for a one-sentence insight about it, assembles the report and hands it
// to the configured delivery channel. Configuration is loaded from a
// YAML file discovered automatically (see [config.DefaultSearchPaths]);
// without one, defaults plus environment variables are used.
//
// Usage:
//
//	credo [flags] [run]          Gate, generate and deliver today's report
//	credo [flags] check          Print today's run decision
//	credo [flags] preview        Generate and print without delivering
//	credo [flags] gate cmd ...   Run cmd only on an eligible day
//	credo [flags] ask <prompt>   Send one prompt to the model
//	credo [flags] history        List recent deliveries
//	credo init [dir]             Write example config files
//	credo version                Print version and build information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/nugget/credo-bot/internal/buildinfo"
	"github.com/nugget/credo-bot/internal/config"
)

// exitError carries a specific process exit status out of run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// main wires the process environment to run and turns its error into an
// exit status. SIGINT and SIGTERM cancel the context; whatever is in
// flight is abandoned, never retried.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(exitCode(os.Stderr, err))
}

func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "%s\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "%s\n", err)
	return 1
}

// options are the global flags.
type options struct {
	configPath string
	envPath    string
	outputFmt  string // text or json
	dryRun     bool
	force      bool
	date       string // YYYY-MM-DD, overrides today
	maxTokens  int    // ask only
	temp       float64
	hasTemp    bool
}

// run is the real entry point. Flags are parsed by hand so that run has
// no package-level state and tests can drive it directly.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var opts options
	var command string
	var cmdArgs []string

	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag %s needs a value", name)
		}
		return args[i+1], nil
	}

parse:
	for i := 0; i < len(args); i++ {
		a := args[i]
		if command == "gate" {
			// Everything after gate belongs to the target command.
			cmdArgs = append(cmdArgs, args[i:]...)
			break parse
		}
		name, inline, hasInline := strings.Cut(a, "=")
		get := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			v, err := value(i, name)
			if err == nil {
				i++
			}
			return v, err
		}

		var err error
		switch name {
		case "-config", "--config":
			opts.configPath, err = get()
		case "-env", "--env":
			opts.envPath, err = get()
		case "-o", "--output":
			opts.outputFmt, err = get()
		case "-date", "--date":
			opts.date, err = get()
		case "-dry-run", "--dry-run":
			opts.dryRun = true
		case "-force", "--force":
			opts.force = true
		case "-max-tokens", "--max-tokens":
			var v string
			if v, err = get(); err == nil {
				opts.maxTokens, err = strconv.Atoi(v)
			}
		case "-temp", "--temp":
			var v string
			if v, err = get(); err == nil {
				opts.temp, err = strconv.ParseFloat(v, 64)
				opts.hasTemp = true
			}
		case "-h", "-help", "--help":
			return printUsage(stdout)
		default:
			switch {
			case !strings.HasPrefix(a, "-") && command == "":
				command = a
			case command != "":
				cmdArgs = append(cmdArgs, a)
			default:
				return fmt.Errorf("unknown flag: %s", a)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if opts.outputFmt == "" {
		opts.outputFmt = "text"
	}
	if opts.outputFmt != "text" && opts.outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", opts.outputFmt)
	}

	switch command {
	case "", "run":
		return runReport(ctx, stdout, stderr, opts)
	case "check":
		return runCheck(ctx, stdout, stderr, opts)
	case "preview":
		opts.dryRun = true
		return runReport(ctx, stdout, stderr, opts)
	case "gate":
		if len(cmdArgs) == 0 {
			return &exitError{code: 2, err: errors.New("usage: credo gate <command> [args...]")}
		}
		return runGate(ctx, stdout, stderr, opts, cmdArgs)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: credo ask <prompt>")
		}
		return runAsk(ctx, stdout, stderr, opts, strings.Join(cmdArgs, " "))
	case "history":
		return runHistory(ctx, stdout, opts)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "version":
		return runVersion(stdout, opts.outputFmt)
	case "help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "credo - daily credo report")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: credo [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run            Gate, generate and deliver today's report (default)")
	fmt.Fprintln(w, "  check          Print whether today is a run day and why")
	fmt.Fprintln(w, "  preview        Generate and print a report, ignoring the gate")
	fmt.Fprintln(w, "  gate cmd ...   Run cmd only on an eligible day")
	fmt.Fprintln(w, "  ask <prompt>   Send one prompt to the configured model")
	fmt.Fprintln(w, "  history        List recent deliveries")
	fmt.Fprintln(w, "  init [dir]     Write example config files (default: .)")
	fmt.Fprintln(w, "  version        Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -env <path>       dotenv file to load (default: .env next to the config)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w, "  -date YYYY-MM-DD  Act as if today were this date")
	fmt.Fprintln(w, "  -dry-run          Print the report instead of delivering it")
	fmt.Fprintln(w, "  -force            Deliver even if today's report was already sent")
	fmt.Fprintln(w, "  -max-tokens n     ask: output token limit")
	fmt.Fprintln(w, "  -temp t           ask: sampling temperature")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/credo/config.yaml, /etc/credo/config.yaml")
	return nil
}

// loadConfig loads the dotenv file, then the YAML config. Without an
// explicit -config and with no file in the search path, the defaults plus
// environment overrides are used. The returned path is empty in that case.
func loadConfig(opts options) (*config.Config, string, error) {
	cfgPath, findErr := config.FindConfig(opts.configPath)
	if findErr != nil && opts.configPath != "" {
		return nil, "", findErr
	}

	envPath := opts.envPath
	if envPath == "" {
		dir := "."
		if findErr == nil {
			dir = filepath.Dir(cfgPath)
		}
		envPath = filepath.Join(dir, ".env")
	}
	if err := config.LoadEnvFile(envPath); err != nil {
		return nil, "", err
	}

	var cfg *config.Config
	if findErr != nil {
		cfg = config.FromEnv()
		cfgPath = ""
	} else {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfgPath, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfgPath, nil
}
