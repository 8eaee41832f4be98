package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			os.Exit(exitErr.Code)
		}

		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createNewRootCommand().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}
