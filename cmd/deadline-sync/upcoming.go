package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/calendar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	upcomingMax  int64
	upcomingJSON bool
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List the next events on the calendar, soonest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newAuthProvider().Service(cmd.Context())
		if err != nil {
			logger.Error("calendar authorisation failed", zap.Error(err))
			return errors.Wrap(err, "calendar authorisation")
		}

		upcoming := newUpcoming(calendar.GoogleCalendar{Service: svc})
		if cmd.Flags().Changed("max") {
			upcoming.Max = upcomingMax
		}

		events, err := upcoming.List(cmd.Context(), time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if upcomingJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "no upcoming events")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s\t%s\n", e.Deadline, e.Title)
		}
		return nil
	},
}

func init() {
	upcomingCmd.Flags().Int64VarP(&upcomingMax, "max", "n", 10, "maximum number of events")
	upcomingCmd.Flags().BoolVar(&upcomingJSON, "json", false, "print the events as JSON for the reminder side")
}
