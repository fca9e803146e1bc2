package main

import (
	"time"

	"github.com/quesurifn/portal-deadline-sync/portal"
)

var appConfig = struct {
	AppName  string `default:"Portal Deadline Sync"`
	TimeZone string `default:"Asia/Tokyo" yaml:"timezone"`

	Calendar struct {
		ID       string `default:"primary" yaml:"id"`
		ColorID  string `default:"'11'" yaml:"color_id"`
		Tag      string `default:"課題" yaml:"tag"`
		// Upcoming caps how many events `upcoming` and /events/upcoming return.
		Upcoming int64 `default:"10" yaml:"upcoming"`
	} `yaml:"calendar"`

	Auth struct {
		Credentials string   `default:"credentials.json" yaml:"credentials"`
		TokenFile   string   `default:"token.json" yaml:"token_file"`
		Scopes      []string `yaml:"scopes"`
	} `yaml:"auth"`

	Ledger struct {
		Path     string `default:"data/ledger.db" yaml:"path"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"ledger"`

	// Kind is one of file, feed or json.
	Source struct {
		Kind     string        `default:"file" yaml:"kind"`
		Path     string        `default:"assignments.yml" yaml:"path"`
		URL      string        `yaml:"url"`
		Token    string        `yaml:"token"`
		Window   string        `default:"P360D" yaml:"window"`
		CacheTTL time.Duration `default:"5m" yaml:"cache_ttl"`
		Paths    portal.Paths  `yaml:"paths"`
	} `yaml:"source"`

	Server struct {
		Port string `default:"'3000'" yaml:"port"`
	} `yaml:"server"`
}{}
