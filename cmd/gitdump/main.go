package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielloader/gitdump/internal/config"
	"github.com/danielloader/gitdump/internal/orchestrator"
	"github.com/danielloader/gitdump/internal/progress"
)

func main() {
	rc, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gitdump: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: gitdump [flags] <git-url> <output-dir>")
		os.Exit(2)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: rc.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter := progress.New(os.Stdout, os.Stderr)

	orch, err := orchestrator.New(rc, reporter)
	if err != nil {
		slog.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	code := orch.Run(ctx)
	if code == orchestrator.ExitOK {
		reporter.Final("[-] Dump finished, output in %s", rc.OutputDir)
	} else {
		reporter.Warn("dump aborted")
	}
	os.Exit(code)
}
