package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the events that sync would register to an ICS file",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := location()
		if err != nil {
			return err
		}

		pipeline := newPipeline(loc, nil)
		src, err := newSource(pipeline.Now())
		if err != nil {
			return err
		}

		events, err := pipeline.Events(cmd.Context(), src)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return errors.Wrap(err, "create export file")
			}
			defer f.Close()
			w = f
		}

		if err := pipeline.Calendar.ExportICS(w, events, pipeline.Now()); err != nil {
			return err
		}
		logger.Info("exported events", zap.Int("count", len(events)), zap.String("out", exportOut))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "deadlines.ics", `output file, "-" for stdout`)
}
