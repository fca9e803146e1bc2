package portal

import (
	"context"
	"regexp"
	"strings"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
	"github.com/apognu/gocal"
	"github.com/dgraph-io/ristretto"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

const DefaultFeedWindow = "P360D"

var bracketedSubject = regexp.MustCompile(`^\s*(?:【([^】]+)】|\[([^\]]+)\])\s*(.+)$`)

// Feed reads the portal's iCalendar export. Downloads are cached so that
// repeated previews of the same feed do not hit the portal every time.
type Feed struct {
	Logger *zap.Logger
	Client *resty.Client
	Cache  *ristretto.Cache
	TTL    time.Duration
	Window time.Duration
}

func NewFeed(logger *zap.Logger, ttl time.Duration, window string) (*Feed, error) {
	if window == "" {
		window = DefaultFeedWindow
	}
	d, err := duration.FromString(window)
	if err != nil {
		return nil, errors.Wrapf(err, "feed window %q", window)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Feed{
		Logger: logger,
		Client: resty.New().SetTimeout(30 * time.Second),
		Cache:  cache,
		TTL:    ttl,
		Window: d.ToDuration(),
	}, nil
}

func (f *Feed) Download(ctx context.Context, url string) (string, error) {
	if cached, found := f.Cache.Get(url); found {
		f.Logger.Debug("Download", zap.String("url", url), zap.Bool("cached", true))
		return cached.(string), nil
	}

	resp, err := f.Client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", errors.Wrap(err, "download feed")
	}
	if resp.IsError() {
		return "", errors.Errorf("download feed: unexpected status %d", resp.StatusCode())
	}

	body := resp.String()
	if f.TTL > 0 {
		f.Cache.SetWithTTL(url, body, int64(len(body)), f.TTL)
		f.Cache.Wait()
	}
	f.Logger.Debug("Download", zap.String("url", url), zap.Int("bytes", len(body)))

	return body, nil
}

// Parse turns feed entries ending between now and now+Window into
// assignments. Deadlines are passed on as RFC 3339 text since the feed
// already carries full dates.
func (f *Feed) Parse(data string, now time.Time) ([]t.RawAssignment, error) {
	start, end := now, now.Add(f.Window)

	for _, uid := range unstamped(data) {
		f.Logger.Warn("Parse", zap.String("uid", uid), zap.String("skipped", "no DTSTAMP"))
	}

	parser := gocal.NewParser(strings.NewReader(data))
	parser.Start, parser.End = &start, &end
	parser.Strict = gocal.StrictParams{Mode: gocal.StrictModeFailEvent}
	if err := parser.Parse(); err != nil {
		return nil, errors.Wrap(err, "parse feed")
	}

	var items []t.RawAssignment
	for _, e := range parser.Events {
		due := e.End
		if due == nil {
			due = e.Start
		}
		if due == nil {
			f.Logger.Warn("Parse", zap.String("summary", e.Summary), zap.String("skipped", "no date"))
			continue
		}

		subject, title := splitSummary(e.Summary)
		if subject == "" && len(e.Categories) > 0 {
			subject = e.Categories[0]
		}
		items = append(items, t.RawAssignment{
			Subject:      subject,
			Title:        title,
			DeadlineText: due.Format(time.RFC3339),
		})
	}

	return items, nil
}

func (f *Feed) Source(url string, now time.Time) Source {
	return &lazySource{load: func(ctx context.Context) ([]t.RawAssignment, error) {
		data, err := f.Download(ctx, url)
		if err != nil {
			return nil, err
		}
		return f.Parse(data, now)
	}}
}

// unstamped lists the UIDs of VEVENTs without a DTSTAMP; the parser drops
// those events.
func unstamped(data string) []string {
	var (
		uids    []string
		inEvent bool
		stamped bool
		uid     string
	)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		name := strings.ToUpper(line)
		if i := strings.IndexAny(name, ";:"); i >= 0 {
			name = name[:i]
		}
		switch {
		case line == "BEGIN:VEVENT":
			inEvent, stamped, uid = true, false, ""
		case line == "END:VEVENT" && inEvent:
			if !stamped {
				uids = append(uids, uid)
			}
			inEvent = false
		case inEvent && name == "DTSTAMP":
			stamped = true
		case inEvent && name == "UID":
			uid = line[strings.Index(line, ":")+1:]
		}
	}
	return uids
}

func splitSummary(summary string) (string, string) {
	m := bracketedSubject.FindStringSubmatch(summary)
	if m == nil {
		return "", strings.TrimSpace(summary)
	}
	subject := m[1]
	if subject == "" {
		subject = m[2]
	}
	return strings.TrimSpace(subject), strings.TrimSpace(m[3])
}
