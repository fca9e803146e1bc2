package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
	"golang.org/x/text/width"
)

const fixedLayout = "2006/1/2 15:04"

// Naive layouts are read in the parser location.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var rangeSeparators = []string{"～", "〜", "~"}

var shorthandRegexp = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})$`)

type Parser struct {
	Logger   *zap.Logger
	Location *time.Location
}

func New(logger *zap.Logger, loc *time.Location) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Parser{Logger: logger, Location: loc}
}

// Shorthand reads portal text of the form "M/D H:MM". The year comes from
// now, rolling forward when now is in December and the deadline in January.
// Unreadable text yields now plus one day with Fallback set.
func (p *Parser) Shorthand(text string, now time.Time) t.ParsedDeadline {
	raw := text
	text = windowEnd(text)

	if at, ok := p.shorthand(text, now); ok {
		return t.ParsedDeadline{Time: at, Raw: raw}
	}

	fallback := now.In(p.Location).AddDate(0, 0, 1)
	failure := &ParseFailure{Input: raw, Fallback: fallback}
	p.Logger.Warn("deadline needs review", zap.String("text", raw), zap.Error(failure))

	return t.ParsedDeadline{Time: fallback, Raw: raw, Fallback: true, Failure: failure}
}

func (p *Parser) shorthand(text string, now time.Time) (time.Time, bool) {
	// Full-width digits and the ideographic space fold to ASCII.
	m := shorthandRegexp.FindStringSubmatch(width.Fold.String(text))
	if m == nil {
		return time.Time{}, false
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	if month < 1 || month > 12 || hour > 23 || minute > 59 || day < 1 {
		return time.Time{}, false
	}

	ref := now.In(p.Location)
	year := ref.Year()
	if ref.Month() == time.December && time.Month(month) == time.January {
		year++
	}

	at := time.Date(year, time.Month(month), day, hour, minute, 0, 0, p.Location)
	// time.Date normalises 2/30 into March; reject instead.
	if at.Day() != day {
		return time.Time{}, false
	}
	return at, true
}

// Canonical reads unambiguous input: ISO-8601 first, then "YYYY/M/D H:MM".
func (p *Parser) Canonical(text string) (time.Time, error) {
	text = strings.TrimSpace(width.Fold.String(text))

	for _, layout := range isoLayouts {
		if at, err := time.ParseInLocation(layout, text, p.Location); err == nil {
			return at, nil
		}
	}
	if at, err := time.ParseInLocation(fixedLayout, text, p.Location); err == nil {
		return at, nil
	}

	return time.Time{}, &DateFormatError{
		Input: text,
		Tried: append(append([]string{}, isoLayouts...), fixedLayout),
	}
}

// Resolve tries ISO-8601, the fixed layout and finally the shorthand form.
func (p *Parser) Resolve(text string, now time.Time) t.ParsedDeadline {
	if at, err := p.Canonical(windowEnd(text)); err == nil {
		return t.ParsedDeadline{Time: at, Raw: text}
	}
	return p.Shorthand(text, now)
}

// windowEnd keeps what follows the last range separator.
func windowEnd(text string) string {
	cut := -1
	width := 0
	for _, sep := range rangeSeparators {
		if i := strings.LastIndex(text, sep); i > cut {
			cut, width = i, len(sep)
		}
	}
	if cut >= 0 {
		text = text[cut+width:]
	}
	return strings.TrimSpace(text)
}
