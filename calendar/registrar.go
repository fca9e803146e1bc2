package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

const DefaultCalendarID = "primary"

var ErrNoEvent = errors.New("calendar accepted the insert but returned no event")

// RegistrationError wraps a failed submission of a single event.
type RegistrationError struct {
	Summary  string
	Deadline time.Time
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %q (deadline %s): %v", e.Summary, e.Deadline.Format(time.RFC3339), e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

type Ledger interface {
	Seen(key string) (bool, error)
	Record(key, eventID string) error
}

// Registrar submits events one at a time. Failures are reported on the
// result and never stop the caller from moving on to the next event.
type Registrar struct {
	Logger     *zap.Logger
	Inserter   EventInserter
	Ledger     Ledger
	CalendarID string
	TimeZone   string
	// Force ignores the ledger and lets the provider assign event ids, so
	// events already registered are created again.
	Force bool
}

func (r *Registrar) Register(ctx context.Context, event t.CalendarEvent) t.RegistrationResult {
	result := t.RegistrationResult{Event: event, State: t.StatePending}
	fields := []zap.Field{zap.String("title", event.Summary), zap.Time("deadline", event.End)}

	if r.Ledger != nil && !r.Force {
		seen, err := r.Ledger.Seen(event.Key)
		if err != nil {
			r.logger().Warn("ledger lookup failed", append(fields, zap.Error(err))...)
		} else if seen {
			result.State = t.StateSkipped
			r.logger().Info("already registered, skipping", fields...)
			return result
		}
	}

	result.State = t.StateSubmitted
	created, err := r.Inserter.InsertEvent(ctx, r.calendarID(), toGoogleEvent(event, r.TimeZone, !r.Force))
	if err == nil && created == nil {
		err = ErrNoEvent
	}
	if err != nil {
		if !r.Force && isConflict(err) {
			result.State = t.StateSkipped
			result.EventID = EventID(event.Key)
			r.record(event.Key, result.EventID, fields)
			r.logger().Info("event already exists in calendar, skipping", fields...)
			return result
		}
		result.State = t.StateFailed
		result.Err = &RegistrationError{Summary: event.Summary, Deadline: event.End, Err: err}
		r.logger().Error("registration failed", append(fields, zap.Error(err))...)
		return result
	}

	result.State = t.StateConfirmed
	result.EventID = created.Id
	result.Link = created.HtmlLink
	r.record(event.Key, created.Id, fields)
	r.logger().Info("registered", append(fields, zap.String("link", created.HtmlLink))...)
	return result
}

func (r *Registrar) record(key, eventID string, fields []zap.Field) {
	if r.Ledger == nil {
		return
	}
	if err := r.Ledger.Record(key, eventID); err != nil {
		r.logger().Warn("ledger write failed", append(fields, zap.Error(err))...)
	}
}

func (r *Registrar) calendarID() string {
	if r.CalendarID == "" {
		return DefaultCalendarID
	}
	return r.CalendarID
}

func (r *Registrar) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
