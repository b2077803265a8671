// Package store persists per-country documents, the scheduler state, and the
// summary document in an embedded LevelDB database. Records are JSON; the
// layout is one record per (store, country) plus two well-known keys.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/gamewatch/gamewatch/internal/listing"
)

const (
	stateKey   = "state"
	summaryKey = "summary"
)

// State is the scheduler-state record persisted between snapshot runs.
type State struct {
	LastRunAt          time.Time `json:"last_run_at"`
	RunType            string    `json:"run_type"`
	IncrementalCursor  int       `json:"incremental_cursor"`
	IncrementalSize    int       `json:"incremental_size"`
	CountriesProcessed []string  `json:"countries_processed"`
}

type Store struct {
	db *leveldb.DB
}

// Open opens (creating if needed) the database under dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func countryKey(store, country string) []byte {
	return []byte("data/" + store + "/" + country)
}

// PutCountry writes the document for its (store, country) pair, replacing
// any prior record.
func (s *Store) PutCountry(data listing.CountryData) error {
	return s.putJSON(countryKey(data.Store, data.Country), data)
}

// GetCountry reads the document for (store, country). The second return is
// false when no record exists.
func (s *Store) GetCountry(store, country string) (listing.CountryData, bool, error) {
	var data listing.CountryData
	ok, err := s.getJSON(countryKey(store, country), &data)
	return data, ok, err
}

// PutState persists the scheduler state.
func (s *Store) PutState(st State) error {
	return s.putJSON([]byte(stateKey), st)
}

// GetState reads the scheduler state; ok is false on first run.
func (s *Store) GetState() (State, bool, error) {
	var st State
	ok, err := s.getJSON([]byte(stateKey), &st)
	return st, ok, err
}

// PutSummary persists the aggregated summary document.
func (s *Store) PutSummary(doc any) error {
	return s.putJSON([]byte(summaryKey), doc)
}

// GetSummary reads the last persisted summary into out.
func (s *Store) GetSummary(out any) (bool, error) {
	return s.getJSON([]byte(summaryKey), out)
}

func (s *Store) putJSON(key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.db.Put(key, b, nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(key []byte, out any) (bool, error) {
	b, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}
