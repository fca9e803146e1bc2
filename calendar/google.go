package calendar

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	t "github.com/quesurifn/portal-deadline-sync/types"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

type EventInserter interface {
	InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error)
}

type EventLister interface {
	ListEvents(ctx context.Context, calendarID string, from time.Time, max int64) ([]*gcal.Event, error)
}

// GoogleCalendar talks to the Calendar API for both registration and
// listing.
type GoogleCalendar struct {
	Service *gcal.Service
}

func (g GoogleCalendar) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	return g.Service.Events.Insert(calendarID, event).Context(ctx).Do()
}

// ListEvents returns single (expanded) events ending after from, ordered by
// start time.
func (g GoogleCalendar) ListEvents(ctx context.Context, calendarID string, from time.Time, max int64) ([]*gcal.Event, error) {
	events, err := g.Service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(max).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

// EventID turns a registration key into a valid Google event id (base32hex
// alphabet, so the dashes go).
func EventID(key string) string {
	return strings.ReplaceAll(key, "-", "")
}

func toGoogleEvent(e t.CalendarEvent, timeZone string, withID bool) *gcal.Event {
	overrides := make([]*gcal.EventReminder, 0, len(e.Reminders))
	for _, r := range e.Reminders {
		overrides = append(overrides, &gcal.EventReminder{Method: r.Method, Minutes: r.Minutes})
	}

	event := &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		ColorId:     e.ColorID,
		Start: &gcal.EventDateTime{
			DateTime: e.Start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: e.End.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if withID && e.Key != "" {
		event.Id = EventID(e.Key)
	}
	return event
}

func isConflict(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
