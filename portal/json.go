package portal

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Paths are gjson paths; List selects the array, the others are evaluated
// against each element.
type Paths struct {
	List     string `yaml:"list" default:"assignments"`
	Subject  string `yaml:"subject" default:"subject"`
	Title    string `yaml:"title" default:"title"`
	Deadline string `yaml:"deadline" default:"deadline"`
}

// JSONEndpoint reads assignments from a portal endpoint returning JSON.
type JSONEndpoint struct {
	Logger *zap.Logger
	Client *resty.Client
	URL    string
	Token  string
	Paths  Paths
}

func NewJSONEndpoint(logger *zap.Logger, url, token string, paths Paths) *JSONEndpoint {
	return &JSONEndpoint{
		Logger: logger,
		Client: resty.New().SetTimeout(30 * time.Second),
		URL:    url,
		Token:  token,
		Paths:  paths,
	}
}

func (j *JSONEndpoint) Source() Source {
	return &lazySource{load: j.fetch}
}

func (j *JSONEndpoint) fetch(ctx context.Context) ([]t.RawAssignment, error) {
	req := j.Client.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if j.Token != "" {
		req.SetAuthToken(j.Token)
	}

	resp, err := req.Get(j.URL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch assignments")
	}
	if resp.IsError() {
		return nil, errors.Errorf("fetch assignments: unexpected status %d", resp.StatusCode())
	}

	return j.decode(resp.Body())
}

func (j *JSONEndpoint) decode(body []byte) ([]t.RawAssignment, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("fetch assignments: response is not JSON")
	}

	list := gjson.ParseBytes(body)
	if j.Paths.List != "" {
		list = list.Get(j.Paths.List)
	}
	if !list.IsArray() {
		return nil, errors.Errorf("fetch assignments: %q is not an array", j.Paths.List)
	}

	var items []t.RawAssignment
	for _, item := range list.Array() {
		raw := t.RawAssignment{
			Subject:      strings.TrimSpace(item.Get(j.Paths.Subject).String()),
			Title:        strings.TrimSpace(item.Get(j.Paths.Title).String()),
			DeadlineText: item.Get(j.Paths.Deadline).String(),
		}
		if raw.Title == "" {
			j.Logger.Warn("decode", zap.String("skipped", item.Raw))
			continue
		}
		items = append(items, raw)
	}

	j.Logger.Debug("decode", zap.Int("assignments", len(items)))
	return items, nil
}
