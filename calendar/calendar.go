package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

const (
	DefaultColorID = "11"
	DefaultTag     = "課題"

	// Lead time between the start of an event and its deadline.
	window = time.Hour
)

var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/quesurifn/portal-deadline-sync"))

var reminders = []t.Reminder{
	{Method: "popup", Minutes: 24 * 60},
	{Method: "popup", Minutes: 60},
}

type Calendar struct {
	Logger  *zap.Logger
	ColorID string
	Tag     string
}

func (c Calendar) Build(subject, title string, parsed t.ParsedDeadline) t.CalendarEvent {
	tag := strings.TrimSpace(subject)
	if tag == "" {
		tag = c.tag()
	}

	var desc strings.Builder
	desc.WriteString("origin: portal\n")
	fmt.Fprintf(&desc, "deadline: %s", parsed.Raw)
	if parsed.Fallback {
		desc.WriteString("\nreview: deadline text was not understood, the date is a placeholder")
	}

	event := t.CalendarEvent{
		Summary:     fmt.Sprintf("【%s】%s", tag, title),
		Description: desc.String(),
		Start:       parsed.Time.Add(-window),
		End:         parsed.Time,
		ColorID:     c.colorID(),
		Reminders:   append([]t.Reminder(nil), reminders...),
		Key:         Key(subject, title, parsed),
		NeedsReview: parsed.Fallback,
	}

	if c.Logger != nil {
		c.Logger.Debug("Build", zap.String("summary", event.Summary), zap.Time("end", event.End))
	}

	return event
}

// Key identifies an assignment across runs. Placeholder deadlines move with
// the clock, so those are keyed on the raw text instead.
func Key(subject, title string, parsed t.ParsedDeadline) string {
	deadline := parsed.Raw
	if !parsed.Fallback {
		deadline = parsed.Time.UTC().Format(time.RFC3339)
	}
	name := strings.Join([]string{strings.TrimSpace(subject), strings.TrimSpace(title), deadline}, "\x00")
	return uuid.NewSHA1(keySpace, []byte(name)).String()
}

func (c Calendar) colorID() string {
	if c.ColorID == "" {
		return DefaultColorID
	}
	return c.ColorID
}

func (c Calendar) tag() string {
	if c.Tag == "" {
		return DefaultTag
	}
	return c.Tag
}
