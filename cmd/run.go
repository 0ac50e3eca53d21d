package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mykolas-perevicius/edplay/internal/app"
	"github.com/mykolas-perevicius/edplay/internal/watch"
)

// runApp opens the store, watches it for writes from other processes, and
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	onboard, err := e.tracker.ShouldOnboard(ctx, false)
	if err != nil {
		return fmt.Errorf("read onboarding state: %w", err)
	}

	changes := make(chan struct{}, 1)
	w, err := watch.New(e.dbPath, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		logger.Warn("live refresh disabled", zap.Error(err))
	}

	return app.Run(ctx, app.Options{
		Tracker: e.tracker,
		Journal: e.store.EventRepo(),
		Changes: changes,
		Onboard: onboard,
		Logger:  logger,
	})
}
