package calendar

import (
	"context"
	"time"

	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
)

const DefaultUpcomingMax = 10

// Upcoming reads back what is already on the calendar, soonest first.
type Upcoming struct {
	Logger     *zap.Logger
	Lister     EventLister
	CalendarID string
	Max        int64
}

func (u *Upcoming) List(ctx context.Context, now time.Time) ([]t.UpcomingEvent, error) {
	max := u.Max
	if max <= 0 {
		max = DefaultUpcomingMax
	}
	calendarID := u.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	items, err := u.Lister.ListEvents(ctx, calendarID, now, max)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	events := make([]t.UpcomingEvent, 0, len(items))
	for _, item := range items {
		if item == nil || item.Start == nil {
			continue
		}
		events = append(events, upcomingEvent(item))
	}

	if u.Logger != nil {
		u.Logger.Debug("List", zap.String("calendar", calendarID), zap.Int("events", len(events)))
	}
	return events, nil
}

// Next returns the first upcoming event, or nil when the calendar has none.
func (u *Upcoming) Next(ctx context.Context, now time.Time) (*t.UpcomingEvent, error) {
	events, err := u.List(ctx, now)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

// Events registered here end at their deadline. All-day events have an
// exclusive end date, so their start date is the deadline.
func upcomingEvent(e *gcal.Event) t.UpcomingEvent {
	start, allDay := eventTime(e.Start)
	deadline := start
	if e.End != nil && !allDay {
		deadline, _ = eventTime(e.End)
	}
	return t.UpcomingEvent{
		ID:       e.Id,
		Title:    e.Summary,
		Start:    start,
		Deadline: deadline,
		AllDay:   allDay,
		Link:     e.HtmlLink,
	}
}

func eventTime(d *gcal.EventDateTime) (string, bool) {
	if d.DateTime != "" {
		return d.DateTime, false
	}
	return d.Date, true
}
