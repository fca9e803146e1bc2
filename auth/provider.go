package auth

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// AuthorizeFunc obtains a brand new token, normally by asking the user.
type AuthorizeFunc func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

// Provider hands out an authenticated calendar service. Cached tokens are
// refreshed when they expire; when refreshing fails or the cached grant is
// read-only, the user is asked to authorise again.
type Provider struct {
	Logger          *zap.Logger
	CredentialsFile string
	Tokens          FileTokenStore
	Scopes          []string
	Authorize       AuthorizeFunc
}

func (p *Provider) Service(ctx context.Context) (*gcal.Service, error) {
	client, err := p.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	return svc, errors.Wrap(err, "calendar service")
}

func (p *Provider) HTTPClient(ctx context.Context) (*http.Client, error) {
	scopes := p.scopes()
	if err := ValidateScopes(scopes); err != nil {
		return nil, err
	}

	cfg, err := p.config(scopes)
	if err != nil {
		return nil, err
	}

	tok, granted, err := p.Tokens.Load()
	if err != nil {
		p.logger().Warn("cached token unreadable, authorising again", zap.Error(err))
		tok = nil
	}
	if tok != nil && !grantedWrite(granted) {
		p.logger().Info("cached token is read-only, authorising again", zap.String("scope", granted))
		tok = nil
	}

	if tok != nil {
		fresh, err := cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			p.logger().Info("token refresh failed, authorising again", zap.Error(err))
			tok = nil
		} else {
			tok = fresh
		}
	}

	if tok == nil {
		if tok, err = p.authorize(ctx, cfg); err != nil {
			return nil, errors.Wrap(err, "authorise")
		}
		if g, ok := tok.Extra("scope").(string); ok {
			granted = g
		} else {
			granted = strings.Join(scopes, " ")
		}
		if !grantedWrite(granted) {
			return nil, errors.Wrapf(ErrReadOnlyScope, "granted [%s]", granted)
		}
	}

	if err := p.Tokens.Save(tok, granted); err != nil {
		return nil, err
	}

	ts := &persistingTokenSource{
		base:   cfg.TokenSource(ctx, tok),
		store:  p.Tokens,
		scope:  granted,
		last:   tok.AccessToken,
		logger: p.logger(),
	}
	return oauth2.NewClient(ctx, ts), nil
}

func (p *Provider) config(scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(p.CredentialsFile)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNoCredentials, p.CredentialsFile)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read credentials")
	}

	cfg, err := google.ConfigFromJSON(data, scopes...)
	return cfg, errors.Wrap(err, "parse credentials")
}

func (p *Provider) authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	if p.Authorize != nil {
		return p.Authorize(ctx, cfg)
	}
	return LoopbackAuthorize(p.logger(), os.Stderr)(ctx, cfg)
}

func (p *Provider) scopes() []string {
	if len(p.Scopes) == 0 {
		return DefaultScopes
	}
	return p.Scopes
}

func (p *Provider) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// persistingTokenSource writes refreshed tokens back to disk so the next
// run starts from the newest one.
type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  FileTokenStore
	scope  string
	last   string
	logger *zap.Logger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok, s.scope); err != nil {
			s.logger.Warn("could not persist refreshed token", zap.Error(err))
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
