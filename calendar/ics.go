package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

// ExportICS writes events as an iCalendar document, reminders included.
func (c Calendar) ExportICS(w io.Writer, events []t.CalendarEvent, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//portal-deadline-sync//EN")

	for _, e := range events {
		ev := cal.AddEvent(EventID(e.Key) + "@portal-deadline-sync")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
		ev.SetSummary(e.Summary)
		ev.SetDescription(e.Description)

		for _, r := range e.Reminders {
			alarm := ev.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", r.Minutes))
		}
	}

	if c.Logger != nil {
		c.Logger.Info("ExportICS", zap.Int("events", len(events)))
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
