package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/internal/cli"
	bverrors "github.com/matzehuels/bracketview/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}
	return root.ExecuteContext(ctx)
}

// exitCode is 130 after an interrupt, 2 when the match data cannot form a
// bracket, 3 when the upstream API failed, and 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case bverrors.Is(err, bverrors.ErrCodeMalformedTopology):
		return 2
	case bverrors.Temporary(err),
		bverrors.Is(err, bverrors.ErrCodeUnauthorized),
		bverrors.Is(err, bverrors.ErrCodeForbidden):
		return 3
	default:
		return 1
	}
}
