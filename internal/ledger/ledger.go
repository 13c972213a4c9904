// Package ledger remembers the outcome of each transcoded file so a later
// run can skip inputs that have not changed.
//
// Entries are JSON values in a pebble database, keyed by the input path
// relative to the input root.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/pebble"
)

const keyPrefix = "file/"

// Entry is the recorded outcome of one file.
type Entry struct {
	RunID     string `json:"run_id"`
	Direction string `json:"direction"`
	// Output is the absolute path the file was transcoded to.
	Output     string    `json:"output"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
	Total      int       `json:"total"`
	Converted  int       `json:"converted"`
	Failed     int       `json:"failed"`
	Trailing   int       `json:"trailing_bytes"`
	FinishedAt time.Time `json:"finished_at"`
}

// Matches reports whether the entry was recorded for a file with info's
// size and modification time, transcoded in direction to output.
func (e Entry) Matches(info os.FileInfo, direction, output string) bool {
	return e.Size == info.Size() &&
		e.ModTime.Equal(info.ModTime()) &&
		e.Direction == direction &&
		e.Output == output
}

type Ledger struct {
	db *pebble.DB
}

func Open(dir string) (*Ledger, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", dir, err)
	}
	return &Ledger{db: db}, nil
}

// Lookup returns the entry for rel, and false if none is recorded.
func (l *Ledger) Lookup(rel string) (Entry, bool, error) {
	data, closer, err := l.db.Get([]byte(keyPrefix + rel))
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode ledger entry %q: %w", rel, err)
	}
	return e, true, nil
}

func (l *Ledger) Put(rel string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return l.db.Set([]byte(keyPrefix+rel), b, pebble.Sync)
}

func (l *Ledger) Delete(rel string) error {
	return l.db.Delete([]byte(keyPrefix+rel), pebble.Sync)
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
