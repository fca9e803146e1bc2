package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/deadline"
	"github.com/spf13/cobra"
)

var parseNow string

var parseCmd = &cobra.Command{
	Use:   "parse <deadline text>",
	Short: "Show how a portal deadline string is interpreted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := location()
		if err != nil {
			return err
		}

		now := time.Now().In(loc)
		if parseNow != "" {
			if now, err = time.Parse(time.RFC3339, parseNow); err != nil {
				return errors.Wrap(err, "--now")
			}
		}

		parsed := deadline.New(logger, loc).Resolve(strings.Join(args, " "), now)
		fmt.Fprintf(cmd.OutOrStdout(), "%s fallback=%t\n", parsed.Time.Format(time.RFC3339), parsed.Fallback)
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseNow, "now", "", "reference time in RFC3339, defaults to the current time")
}
