package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/calendar"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var forceSync bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Register every assignment deadline from the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		loc, err := location()
		if err != nil {
			return err
		}

		// Nothing is submitted until calendar access is in place.
		svc, err := newAuthProvider().Service(ctx)
		if err != nil {
			logger.Error("calendar authorisation failed", zap.Error(err))
			return errors.Wrap(err, "calendar authorisation")
		}

		store, err := openLedger()
		if err != nil {
			return errors.Wrap(err, "open ledger")
		}
		registrar := &calendar.Registrar{
			Logger:     logger,
			Inserter:   calendar.GoogleCalendar{Service: svc},
			CalendarID: appConfig.Calendar.ID,
			TimeZone:   loc.String(),
			Force:      forceSync,
		}
		if store != nil {
			defer store.Close()
			registrar.Ledger = store
		}

		pipeline := newPipeline(loc, registrar)
		src, err := newSource(pipeline.Now())
		if err != nil {
			return err
		}

		summary, _, err := pipeline.Run(ctx, src)
		fmt.Fprintf(cmd.OutOrStdout(), "attempted=%d confirmed=%d failed=%d skipped=%d review=%d\n",
			summary.Attempted, summary.Confirmed, summary.Failed, summary.Skipped, summary.Review)

		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
		if err != nil && summary.Failed > 0 {
			return errors.Errorf("%d of %d registrations failed", summary.Failed, summary.Attempted)
		}
		return err
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&forceSync, "force", "f", false, "register events even if they were registered before")
}
