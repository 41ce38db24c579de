package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyforge/internal/workflow"
)

var sweepCommand = &cobra.Command{
	Use:   "sweep",
	Short: "Fail requests abandoned at a review gate",
	Long: `Sweeps awaiting_review requests whose last activity predates the configured
idle TTL and marks them failed. Runs once by default; --watch keeps sweeping
on the configured interval until interrupted.`,
	RunE: runSweepCmd,
}

var sweepWatch bool

func init() {
	sweepCommand.Flags().BoolVar(&sweepWatch, "watch", false, "Keep sweeping on the configured interval")
	addEngineFlags(sweepCommand)

	rootCmd.AddCommand(sweepCommand)
}

func runSweepCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reaper := workflow.NewReaper(a.db, a.cfg.SweepInterval(), a.cfg.ReviewTTL())

	failed, err := reaper.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Swept %d abandoned request(s)\n", failed)

	if !sweepWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching; sweeping every %s (TTL %s)\n", a.cfg.SweepInterval(), a.cfg.ReviewTTL())
	reaper.Run(ctx, func(failed int, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "sweep error: %v\n", err)
			return
		}
		if failed > 0 {
			fmt.Printf("Swept %d abandoned request(s)\n", failed)
		}
	})
	return nil
}
