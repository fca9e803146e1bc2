package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/auth"
	"github.com/quesurifn/portal-deadline-sync/calendar"
	"github.com/quesurifn/portal-deadline-sync/deadline"
	"github.com/quesurifn/portal-deadline-sync/ledger"
	"github.com/quesurifn/portal-deadline-sync/portal"
)

func location() (*time.Location, error) {
	loc, err := time.LoadLocation(appConfig.TimeZone)
	return loc, errors.Wrapf(err, "timezone %q", appConfig.TimeZone)
}

func newPipeline(loc *time.Location, registrar *calendar.Registrar) *calendar.Pipeline {
	cal := calendar.Calendar{
		Logger:  logger,
		ColorID: appConfig.Calendar.ColorID,
		Tag:     appConfig.Calendar.Tag,
	}
	return &calendar.Pipeline{
		Logger:    logger,
		Parser:    deadline.New(logger, loc),
		Calendar:  cal,
		Registrar: registrar,
		Clock:     time.Now,
	}
}

func newUpcoming(lister calendar.EventLister) *calendar.Upcoming {
	return &calendar.Upcoming{
		Logger:     logger,
		Lister:     lister,
		CalendarID: appConfig.Calendar.ID,
		Max:        appConfig.Calendar.Upcoming,
	}
}

func newFeed() (*portal.Feed, error) {
	return portal.NewFeed(logger, appConfig.Source.CacheTTL, appConfig.Source.Window)
}

func newSource(now time.Time) (portal.Source, error) {
	s := appConfig.Source
	switch s.Kind {
	case "file":
		return portal.NewFileSource(s.Path), nil
	case "feed":
		if s.URL == "" {
			return nil, errors.New("source.url is required for feed sources")
		}
		feed, err := newFeed()
		if err != nil {
			return nil, err
		}
		return feed.Source(s.URL, now), nil
	case "json":
		if s.URL == "" {
			return nil, errors.New("source.url is required for json sources")
		}
		return portal.NewJSONEndpoint(logger, s.URL, s.Token, s.Paths).Source(), nil
	default:
		return nil, errors.Errorf("unknown source kind %q", s.Kind)
	}
}

func newAuthProvider() *auth.Provider {
	return &auth.Provider{
		Logger:          logger,
		CredentialsFile: appConfig.Auth.Credentials,
		Tokens:          auth.FileTokenStore{Path: appConfig.Auth.TokenFile},
		Scopes:          appConfig.Auth.Scopes,
	}
}

// openLedger returns a nil store when the ledger is disabled.
func openLedger() (*ledger.Store, error) {
	if appConfig.Ledger.Disabled {
		return nil, nil
	}
	return ledger.Open(appConfig.Ledger.Path)
}
