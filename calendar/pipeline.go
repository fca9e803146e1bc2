package calendar

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Source interface {
	Next(ctx context.Context) (t.RawAssignment, error)
}

type Resolver interface {
	Resolve(text string, now time.Time) t.ParsedDeadline
}

// Pipeline takes each assignment from parse to registration before it reads
// the next one.
type Pipeline struct {
	Logger    *zap.Logger
	Parser    Resolver
	Calendar  Calendar
	Registrar *Registrar
	Clock     func() time.Time
}

func (p *Pipeline) Events(ctx context.Context, src Source) ([]t.CalendarEvent, error) {
	var events []t.CalendarEvent
	err := p.each(ctx, src, func(event t.CalendarEvent) {
		events = append(events, event)
	})
	return events, err
}

func (p *Pipeline) Run(ctx context.Context, src Source) (t.Summary, []t.RegistrationResult, error) {
	var (
		summary t.Summary
		results []t.RegistrationResult
		errs    error
	)

	err := p.each(ctx, src, func(event t.CalendarEvent) {
		result := p.Registrar.Register(ctx, event)
		results = append(results, result)

		if event.NeedsReview {
			summary.Review++
		}
		switch result.State {
		case t.StateConfirmed:
			summary.Attempted++
			summary.Confirmed++
		case t.StateFailed:
			summary.Attempted++
			summary.Failed++
			errs = multierr.Append(errs, result.Err)
		case t.StateSkipped:
			summary.Skipped++
		}
	})

	p.logger().Info("run finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("confirmed", summary.Confirmed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("review", summary.Review),
	)

	return summary, results, multierr.Append(err, errs)
}

func (p *Pipeline) each(ctx context.Context, src Source, fn func(t.CalendarEvent)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read assignments")
		}

		parsed := p.Parser.Resolve(raw.DeadlineText, p.Now())
		fn(p.Calendar.Build(raw.Subject, raw.Title, parsed))
	}
}

func (p *Pipeline) Now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
