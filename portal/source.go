// Package portal supplies raw assignment records from the university portal
// or from anything that can stand in for it: an exported file, an ICS feed
// or a JSON endpoint. Every implementation is read through the same
// iterator, one record per call, ending with io.EOF.
package portal

import (
	"context"
	"io"

	t "github.com/quesurifn/portal-deadline-sync/types"
)

type Source interface {
	Next(ctx context.Context) (t.RawAssignment, error)
}

type SliceSource struct {
	items []t.RawAssignment
}

func NewSliceSource(items []t.RawAssignment) *SliceSource {
	return &SliceSource{items: items}
}

func (s *SliceSource) Next(ctx context.Context) (t.RawAssignment, error) {
	if len(s.items) == 0 {
		return t.RawAssignment{}, io.EOF
	}
	next := s.items[0]
	s.items = s.items[1:]
	return next, nil
}

// lazySource defers loading until the first Next call.
type lazySource struct {
	load  func(ctx context.Context) ([]t.RawAssignment, error)
	items *SliceSource
}

func (s *lazySource) Next(ctx context.Context) (t.RawAssignment, error) {
	if s.items == nil {
		items, err := s.load(ctx)
		if err != nil {
			return t.RawAssignment{}, err
		}
		s.items = NewSliceSource(items)
	}
	return s.items.Next(ctx)
}

// Drain reads a source to the end.
func Drain(ctx context.Context, src Source) ([]t.RawAssignment, error) {
	var out []t.RawAssignment
	for {
		item, err := src.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
}
