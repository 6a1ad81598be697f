package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// runGate runs target only when today is an eligible business day. A
// skipped day exits 0 so cron stays quiet; a missing target exits 2; an
// executed target's exit status is passed through.
func runGate(ctx context.Context, stdout, stderr io.Writer, opts options, target []string) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)
	today, err := reportDate(cfg, opts.date)
	if err != nil {
		return err
	}

	d := decide(cfg, today, logger)
	if !d.ShouldRun {
		fmt.Fprintln(stdout, d.String())
		return nil
	}

	path, err := exec.LookPath(target[0])
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("[err] ターゲットが見つかりません: %s", target[0])}
	}
	fmt.Fprintf(stdout, "%s → %s\n", d.String(), target[0])

	cmd := exec.CommandContext(ctx, path, target[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() >= 0 {
			return &exitError{code: ee.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", target[0], err)
	}
	return nil
}
