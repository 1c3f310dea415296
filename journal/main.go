// Package journal keeps a persistent append-only log of interlocking
// state transitions for operator review. It is an observer: a failed
// write is logged and dropped, never surfaced to the command path.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
)

// Event is one recorded state transition.
type Event struct {
	Seq  int       `json:"seq"`
	At   time.Time `json:"at"`
	Kind string    `json:"kind"`
	// Train is the running number of the train involved, if any.
	Train string `json:"train,omitempty"`
	Text  string `json:"text"`
}

type Journal struct {
	mu  sync.Mutex
	db  *buntdb.DB
	seq int
}

// Open opens or creates the journal at path. Use ":memory:" for an
// ephemeral journal.
func Open(path string) (*Journal, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	j := &Journal{db: db}
	// Resume the sequence from the last persisted event.
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Descend("", func(key, value string) bool {
			if !strings.HasPrefix(key, "event:") {
				return true
			}
			_, err := fmt.Sscanf(key, "event:%d", &j.seq)
			if err != nil {
				zap.S().Errorw("parsing key failed",
					"key", key,
					"value", value)
				return true
			}
			return false
		})
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Record appends an event. It implements tower.Recorder.
func (j *Journal) Record(kind, train, text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	e := Event{Seq: j.seq, At: time.Now(), Kind: kind, Train: train, Text: text}
	data, err := json.Marshal(e)
	if err != nil {
		zap.S().Errorf("journal: marshal: %s", err)
		return
	}
	err = j.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(fmt.Sprintf("event:%09d", e.Seq), string(data), nil)
		return err
	})
	if err != nil {
		zap.S().Errorf("journal: record: %s", err)
	}
}

// Recent returns up to n events, newest first.
func (j *Journal) Recent(n int) ([]Event, error) {
	events := make([]Event, 0, n)
	err := j.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend("", func(key, value string) bool {
			if !strings.HasPrefix(key, "event:") {
				return true
			}
			var e Event
			if err := json.Unmarshal([]byte(value), &e); err != nil {
				zap.S().Errorw("unmarshalling failed",
					"key", key,
					"value", value)
				return true
			}
			events = append(events, e)
			return len(events) < n
		})
	})
	return events, err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
