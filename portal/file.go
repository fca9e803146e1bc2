package portal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"gopkg.in/yaml.v2"
)

// NewFileSource reads a YAML or JSON list of assignments, the format a
// scraper run dumps to disk.
func NewFileSource(path string) Source {
	return &lazySource{load: func(ctx context.Context) ([]t.RawAssignment, error) {
		return readFile(path)
	}}
}

func readFile(path string) ([]t.RawAssignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read assignments file")
	}

	var items []t.RawAssignment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &items)
	default:
		err = yaml.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return items, nil
}
