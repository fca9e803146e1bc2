package auth

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/pkg/sliceutil"
	gcal "google.golang.org/api/calendar/v3"
)

var (
	ErrReadOnlyScope = errors.New("calendar scope is read-only, events cannot be created")
	ErrNoCredentials = errors.New("oauth client credentials not found")
)

var DefaultScopes = []string{gcal.CalendarScope}

var writeScopes = []string{gcal.CalendarScope, gcal.CalendarEventsScope}

// ValidateScopes fails unless at least one scope allows writing events.
func ValidateScopes(scopes []string) error {
	if sliceutil.ContainsAny(scopes, writeScopes...) {
		return nil
	}
	return errors.Wrapf(ErrReadOnlyScope, "scopes [%s]", strings.Join(scopes, " "))
}

// grantedWrite reports whether a space separated scope grant, as returned
// by the token endpoint, allows writing events. An empty grant is unknown
// and accepted.
func grantedWrite(granted string) bool {
	if granted == "" {
		return true
	}
	return sliceutil.ContainsAny(strings.Fields(granted), writeScopes...)
}
