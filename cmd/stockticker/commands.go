package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkdone/stockticker/internal/feed"
	"github.com/pkdone/stockticker/internal/generator"
	"github.com/pkdone/stockticker/internal/render"
	"github.com/pkdone/stockticker/internal/seed"
	"github.com/pkdone/stockticker/internal/tracker"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stockticker",
		Short:         "Live stock price change tracking demo",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newInitCmd(),
		newCleanCmd(),
		newChangeCmd(),
		newTraceCmd(),
		newDisplayCmd(),
	)
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRand() generator.RealRand {
	return generator.RealRand{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Aliases: []string{"INIT"},
		Short:   "Seed the dataset with ~20k records plus the tracked symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			fmt.Println("-- Initialising dataset with stock price records (this may take a moment)")
			err = seed.Run(ctx, a.store, a.watch, newRand(), a.logger)
			if errors.Is(err, seed.ErrAlreadyInitialized) {
				fmt.Println("-- Initialisation not performed because the dataset already exists (run \"stockticker clean\" first)")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Println("-- Dataset initialised")
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Aliases: []string{"CLEAN"},
		Short:   "Remove the dataset and the change stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			fmt.Println("-- Dropping the dataset and all its records")
			removed, err := a.store.Wipe(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("-- Removed %d records\n", removed)
			return nil
		},
	}
}

func newChangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "change",
		Aliases: []string{"CHANGE"},
		Short:   "Continuously perform random updates against the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			if err := a.requireInitialized(ctx); err != nil {
				return err
			}

			fmt.Println("-- Continuously performing random updates on the dataset")
			workload := generator.NewWorkload(a.logger, a.store, a.watch, newRand(), a.cfg.Generator.Interval)
			if err := workload.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Println("\nInterrupted")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "trace",
		Aliases: []string{"TRACE"},
		Short:   "Print one line per tracked price change",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			if err := a.requireInitialized(ctx); err != nil {
				return err
			}

			fmt.Printf("-- Continuously listening for price updates on %d tracked symbols\n\n", a.watch.Len())
			trk := tracker.New(a.watch, tracker.RealClock{})
			trace := render.NewTrace(os.Stdout, tracker.RealClock{})
			consumer := feed.NewConsumer(a.store, a.watch, trk, trace, a.logger)

			if err := consumer.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Println("\nInterrupted")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newDisplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "display",
		Aliases: []string{"DISPLAY"},
		Short:   "Show a live, auto-updating view of the tracked symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The display owns the terminal, so the logger is a no-op.
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			sigCtx, stop := signalContext()
			defer stop()
			ctx, cancel := context.WithCancel(sigCtx)
			defer cancel()

			if err := a.requireInitialized(ctx); err != nil {
				return err
			}

			trk := tracker.New(a.watch, tracker.RealClock{})
			display := render.NewDisplay(a.watch, tracker.RealClock{}, a.cfg.Display.HighlightWindow)
			consumer := feed.NewConsumer(a.store, a.watch, trk, display, a.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- consumer.Run(ctx) }()

			var runErr error
			select {
			case runErr = <-errCh:
				// Consumer ended first: interrupt, store failure, or a
				// malformed event. Its deferred Close restored the terminal.
			case <-display.Done():
				// User quit the view; unblock the consumer's pull.
				cancel()
				runErr = <-errCh
			}

			if errors.Is(runErr, context.Canceled) {
				if sigCtx.Err() != nil {
					fmt.Println("Interrupted")
				}
				return nil
			}
			return runErr
		},
	}
}
