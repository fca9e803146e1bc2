package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quesurifn/portal-deadline-sync/deadline"
	"github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap/zaptest"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type fakeInserter struct {
	calls  []*gcal.Event
	failOn map[string]error
}

func (f *fakeInserter) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	f.calls = append(f.calls, event)
	if err, ok := f.failOn[event.Summary]; ok {
		return nil, err
	}
	return &gcal.Event{Id: event.Id, HtmlLink: "https://calendar.test/" + event.Id}, nil
}

type memLedger map[string]string

func (m memLedger) Seen(key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func (m memLedger) Record(key, eventID string) error {
	m[key] = eventID
	return nil
}

type sliceSource []types.RawAssignment

func (s *sliceSource) Next(ctx context.Context) (types.RawAssignment, error) {
	if len(*s) == 0 {
		return types.RawAssignment{}, io.EOF
	}
	next := (*s)[0]
	*s = (*s)[1:]
	return next, nil
}

func newPipeline(t *testing.T, r *Registrar) *Pipeline {
	now := time.Date(2025, time.November, 1, 9, 0, 0, 0, jst)
	return &Pipeline{
		Logger:    zaptest.NewLogger(t),
		Parser:    deadline.New(zaptest.NewLogger(t), jst),
		Calendar:  Calendar{},
		Registrar: r,
		Clock:     func() time.Time { return now },
	}
}

func TestRegisterMapsEvent(t *testing.T) {
	ins := &fakeInserter{}
	r := &Registrar{Logger: zaptest.NewLogger(t), Inserter: ins, TimeZone: "Asia/Tokyo"}
	event := Calendar{}.Build("LA", "Report", types.ParsedDeadline{
		Time: time.Date(2025, time.November, 28, 23, 59, 0, 0, jst),
		Raw:  "11/28 23:59",
	})

	result := r.Register(context.Background(), event)
	if result.State != types.StateConfirmed || result.Err != nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Link == "" || result.EventID != EventID(event.Key) {
		t.Errorf("missing provider id/link: %+v", result)
	}

	sent := ins.calls[0]
	if sent.Start.DateTime != "2025-11-28T22:59:00+09:00" || sent.End.DateTime != "2025-11-28T23:59:00+09:00" {
		t.Errorf("window %s - %s", sent.Start.DateTime, sent.End.DateTime)
	}
	if sent.Start.TimeZone != "Asia/Tokyo" || sent.ColorId != DefaultColorID {
		t.Errorf("zone %q color %q", sent.Start.TimeZone, sent.ColorId)
	}
	if sent.Reminders.UseDefault || len(sent.Reminders.Overrides) != 2 ||
		sent.Reminders.Overrides[0].Minutes != 1440 || sent.Reminders.Overrides[1].Minutes != 60 {
		t.Errorf("reminders %+v", sent.Reminders)
	}
}

type emptyInserter struct{}

func (emptyInserter) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	return nil, nil
}

func TestRegisterEmptyResponseFails(t *testing.T) {
	ledger := memLedger{}
	r := &Registrar{Logger: zaptest.NewLogger(t), Inserter: emptyInserter{}, Ledger: ledger}
	event := Calendar{}.Build("LA", "Report", types.ParsedDeadline{
		Time: time.Date(2025, time.November, 28, 23, 59, 0, 0, jst),
		Raw:  "11/28 23:59",
	})

	result := r.Register(context.Background(), event)
	if result.State != types.StateFailed {
		t.Fatalf("state %s", result.State)
	}
	var regErr *RegistrationError
	if !errors.As(result.Err, &regErr) || !errors.Is(result.Err, ErrNoEvent) {
		t.Errorf("expected RegistrationError wrapping ErrNoEvent, got %v", result.Err)
	}
	if len(ledger) != 0 {
		t.Errorf("failed registration recorded in ledger: %v", ledger)
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	ins := &fakeInserter{failOn: map[string]error{
		"【OS】Lab 1": &googleapi.Error{Code: http.StatusForbidden, Message: "quota"},
	}}
	p := newPipeline(t, &Registrar{Logger: zaptest.NewLogger(t), Inserter: ins})

	src := sliceSource{
		{Subject: "LA", Title: "Report 3", DeadlineText: "11/28 23:59"},
		{Subject: "OS", Title: "Lab 1", DeadlineText: "11/29 12:00"},
		{Subject: "DB", Title: "Quiz", DeadlineText: "12/01 9:00"},
		{Subject: "", Title: "Essay", DeadlineText: "N/A"},
	}

	summary, results, err := p.Run(context.Background(), &src)
	if len(ins.calls) != 4 {
		t.Fatalf("expected every item to be attempted, got %d", len(ins.calls))
	}
	want := types.Summary{Attempted: 4, Confirmed: 3, Failed: 1, Review: 1}
	if summary != want {
		t.Errorf("summary %+v, want %+v", summary, want)
	}
	if results[1].State != types.StateFailed || results[2].State != types.StateConfirmed {
		t.Errorf("states %s %s", results[1].State, results[2].State)
	}

	var regErr *RegistrationError
	if !errors.As(err, &regErr) || regErr.Summary != "【OS】Lab 1" {
		t.Fatalf("expected RegistrationError, got %v", err)
	}
}

func TestRunSkipsLedgerEntries(t *testing.T) {
	ledger := memLedger{}
	ins := &fakeInserter{}
	records := []types.RawAssignment{
		{Subject: "LA", Title: "Report 3", DeadlineText: "11/28 23:59"},
		{Subject: "LA", Title: "Report 4", DeadlineText: "12/05 23:59"},
	}

	first := sliceSource(append([]types.RawAssignment(nil), records...))
	if _, _, err := newPipeline(t, &Registrar{Inserter: ins, Ledger: ledger}).Run(context.Background(), &first); err != nil {
		t.Fatal(err)
	}

	second := sliceSource(append([]types.RawAssignment(nil), records...))
	summary, _, err := newPipeline(t, &Registrar{Inserter: ins, Ledger: ledger}).Run(context.Background(), &second)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 || summary.Attempted != 0 || len(ins.calls) != 2 {
		t.Errorf("second run summary %+v, calls %d", summary, len(ins.calls))
	}

	third := sliceSource(append([]types.RawAssignment(nil), records...))
	summary, _, _ = newPipeline(t, &Registrar{Inserter: ins, Ledger: ledger, Force: true}).Run(context.Background(), &third)
	if summary.Confirmed != 2 || ins.calls[2].Id != "" {
		t.Errorf("forced run summary %+v, id %q", summary, ins.calls[2].Id)
	}
}

func TestRunStopsOnSourceError(t *testing.T) {
	p := newPipeline(t, &Registrar{Inserter: &fakeInserter{}})
	_, _, err := p.Run(context.Background(), brokenSource{})
	if err == nil || !strings.Contains(err.Error(), "read assignments") {
		t.Fatalf("expected source error, got %v", err)
	}
}

type brokenSource struct{}

func (brokenSource) Next(ctx context.Context) (types.RawAssignment, error) {
	return types.RawAssignment{}, errors.New("portal closed")
}

func TestGoogleCalendarAgainstAPI(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)

		w.Header().Set("Content-Type", "application/json")
		if body["summary"] == "【LA】dup" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":409,"message":"The requested identifier already exists."}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"` + body["id"].(string) + `","htmlLink":"https://calendar.test/e"}`))
	}))
	defer srv.Close()

	svc, err := gcal.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	ledger := memLedger{}
	r := &Registrar{Logger: zaptest.NewLogger(t), Inserter: GoogleCalendar{Service: svc}, Ledger: ledger, TimeZone: "Asia/Tokyo"}
	deadlineAt := types.ParsedDeadline{Time: time.Date(2025, time.November, 28, 23, 59, 0, 0, jst), Raw: "11/28 23:59"}

	ok := r.Register(context.Background(), Calendar{}.Build("LA", "Report", deadlineAt))
	if ok.State != types.StateConfirmed || ok.Link != "https://calendar.test/e" {
		t.Fatalf("unexpected result %+v", ok)
	}

	dup := r.Register(context.Background(), Calendar{}.Build("LA", "dup", deadlineAt))
	if dup.State != types.StateSkipped || dup.Err != nil {
		t.Fatalf("conflict should be skipped, got %+v", dup)
	}
	if len(ledger) != 2 {
		t.Errorf("ledger entries %d", len(ledger))
	}

	reminders, _ := bodies[0]["reminders"].(map[string]any)
	if v, present := reminders["useDefault"]; !present || v != false {
		t.Errorf("useDefault must be sent as false, got %v", reminders)
	}
}

func TestExportICS(t *testing.T) {
	event := Calendar{}.Build("LA", "Report", types.ParsedDeadline{
		Time: time.Date(2025, time.November, 28, 23, 59, 0, 0, jst),
		Raw:  "11/28 23:59",
	})

	var buf bytes.Buffer
	if err := (Calendar{Logger: zaptest.NewLogger(t)}).ExportICS(&buf, []types.CalendarEvent{event}, time.Now()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"BEGIN:VEVENT", "DTSTART:20251128T135900Z", "DTEND:20251128T145900Z", "TRIGGER:-PT1440M", "TRIGGER:-PT60M", "BEGIN:VALARM"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}

func TestUpcomingAgainstAPI(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		query = map[string]string{
			"timeMin":      q.Get("timeMin"),
			"maxResults":   q.Get("maxResults"),
			"singleEvents": q.Get("singleEvents"),
			"orderBy":      q.Get("orderBy"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"e1","summary":"【LA】Report 3","htmlLink":"https://calendar.test/e1",
			 "start":{"dateTime":"2025-11-28T22:59:00+09:00"},"end":{"dateTime":"2025-11-28T23:59:00+09:00"}},
			{"id":"e2","summary":"Festival","start":{"date":"2025-12-01"},"end":{"date":"2025-12-02"}}
		]}`))
	}))
	defer srv.Close()

	svc, err := gcal.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	u := &Upcoming{Logger: zaptest.NewLogger(t), Lister: GoogleCalendar{Service: svc}}
	now := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)

	events, err := u.List(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"timeMin": "2025-11-01T00:00:00Z", "maxResults": "10", "singleEvents": "true", "orderBy": "startTime"}
	for k, v := range want {
		if query[k] != v {
			t.Errorf("%s = %q, want %q", k, query[k], v)
		}
	}

	if len(events) != 2 {
		t.Fatalf("events %+v", events)
	}
	if e := events[0]; e.Title != "【LA】Report 3" || e.Deadline != "2025-11-28T23:59:00+09:00" || e.AllDay || e.Link == "" {
		t.Errorf("first event %+v", e)
	}
	if e := events[1]; e.Deadline != "2025-12-01" || !e.AllDay {
		t.Errorf("all-day event %+v", e)
	}

	next, err := u.Next(context.Background(), now)
	if err != nil || next == nil || next.ID != "e1" {
		t.Errorf("next %+v %v", next, err)
	}
}

type emptyLister struct{}

func (emptyLister) ListEvents(ctx context.Context, calendarID string, from time.Time, max int64) ([]*gcal.Event, error) {
	return nil, nil
}

func TestUpcomingNextEmpty(t *testing.T) {
	next, err := (&Upcoming{Lister: emptyLister{}}).Next(context.Background(), time.Now())
	if err != nil || next != nil {
		t.Errorf("next %+v %v", next, err)
	}
}
