package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var bucket = []byte("Registrations")

var ErrClosed = errors.New("ledger is closed")

type Entry struct {
	EventID      string    `json:"eventId"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Store remembers which assignment keys already made it into the calendar.
type Store struct {
	db    *bbolt.DB
	clock func() time.Time
}

// Open opens (or creates) the ledger file.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create ledger dir")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, clock: time.Now}, nil
}

func (s *Store) Seen(key string) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

func (s *Store) Get(key string) (Entry, bool, error) {
	if s.db == nil {
		return Entry{}, false, ErrClosed
	}

	var (
		entry Entry
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	return entry, found, err
}

func (s *Store) Record(key, eventID string) error {
	if s.db == nil {
		return ErrClosed
	}

	data, err := json.Marshal(Entry{EventID: eventID, RegisteredAt: s.clock()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
