package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"blogchat/pkg/logger"
	"blogchat/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq reduces key collisions when multiple messages share the same
// nanosecond timestamp.
var seq uint64

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// Message keys sort by insertion time within a room:
//   room:<slug>:msg:<unix_nano_padded>-<seq>
// The slug is query-escaped so a room name containing ':' cannot forge
// another room's prefix. A secondary index maps message id to its room
// key so enrichment can find the record later:
//   msg:<id>
func msgKey(room string, ts int64, s uint64) []byte {
	return []byte(fmt.Sprintf("room:%s:msg:%020d-%06d", url.QueryEscape(room), ts, s))
}

func idxKey(id string) []byte {
	return []byte("msg:" + id)
}

func roomPrefix(room string) []byte {
	return []byte("room:" + url.QueryEscape(room) + ":msg:")
}

// GenMessageID returns a globally unique message id.
func GenMessageID() string {
	return "msg_" + uuid.NewString()
}

// Append durably persists a new message for room and returns the stored
// record with its server-assigned id and timestamp. The write is synced
// before return so a broadcast sent afterwards never precedes
// durability.
func Append(room, author, body, addr string) (models.Message, error) {
	if db == nil {
		return models.Message{}, fmt.Errorf("pebble not opened; call store.Open first")
	}
	now := time.Now().UTC()
	s := atomic.AddUint64(&seq, 1)
	m := models.Message{
		ID:        GenMessageID(),
		Room:      room,
		Username:  author,
		Content:   body,
		TS:        now,
		IPAddress: addr,
	}
	key := msgKey(room, now.UnixNano(), s)
	data, err := json.Marshal(m)
	if err != nil {
		return models.Message{}, fmt.Errorf("marshal message: %w", err)
	}

	batch := db.NewBatch()
	if err := batch.Set(key, data, nil); err != nil {
		_ = batch.Close()
		return models.Message{}, err
	}
	// id index stores the room key so updates can locate the record
	if err := batch.Set(idxKey(m.ID), key, nil); err != nil {
		_ = batch.Close()
		return models.Message{}, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("append_message_failed", "room", room, "key", string(key), "error", err)
		return models.Message{}, err
	}
	appendsTotal.WithLabelValues(room).Inc()
	logger.Debug("message_appended", "room", room, "id", m.ID)
	return m, nil
}

// ListRecent returns up to limit of the most recent messages for room,
// ordered oldest first. limit <= 0 returns an empty slice.
func ListRecent(room string, limit int) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	if limit <= 0 {
		return []models.Message{}, nil
	}
	prefix := roomPrefix(room)
	upper := append(append([]byte(nil), prefix...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]models.Message, 0, limit)
	// walk backwards from the newest key, then reverse
	for ok := iter.Last(); ok && len(out) < limit; ok = iter.Prev() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("skip_invalid_message_record", "key", string(iter.Key()), "error", err)
			continue
		}
		// backstop against records whose key escaped the room prefix
		if m.Room != room {
			continue
		}
		out = append(out, m)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	fetchesTotal.WithLabelValues(room).Inc()
	return out, nil
}

// Get returns a message by id via the id index.
func Get(id string) (models.Message, error) {
	if db == nil {
		return models.Message{}, fmt.Errorf("pebble not opened; call store.Open first")
	}
	key, closer, err := db.Get(idxKey(id))
	if err != nil {
		return models.Message{}, err
	}
	k := append([]byte(nil), key...)
	_ = closer.Close()
	v, closer2, err := db.Get(k)
	if err != nil {
		return models.Message{}, err
	}
	defer closer2.Close()
	var m models.Message
	if err := json.Unmarshal(v, &m); err != nil {
		return models.Message{}, fmt.Errorf("invalid message record: %w", err)
	}
	return m, nil
}

// SetWeather attaches the enrichment value to a stored message. This is
// the only permitted in-place mutation of a message record; later calls
// for a message that already carries weather are rejected.
func SetWeather(id, weather string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	key, closer, err := db.Get(idxKey(id))
	if err != nil {
		return fmt.Errorf("unknown message %s: %w", id, err)
	}
	k := append([]byte(nil), key...)
	_ = closer.Close()

	v, closer2, err := db.Get(k)
	if err != nil {
		return err
	}
	var m models.Message
	uerr := json.Unmarshal(v, &m)
	_ = closer2.Close()
	if uerr != nil {
		return fmt.Errorf("invalid message record: %w", uerr)
	}
	if m.Weather != "" {
		return fmt.Errorf("message %s already enriched", id)
	}
	m.Weather = weather
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := db.Set(k, data, pebble.Sync); err != nil {
		logger.Error("set_weather_failed", "id", id, "error", err)
		return err
	}
	logger.Debug("message_enriched", "id", id)
	return nil
}

// PruneBefore deletes messages older than cutoff across all rooms and
// returns the number removed. When dryRun is set, nothing is deleted.
// Deletes are committed in batches of batchSize.
func PruneBefore(cutoff time.Time, batchSize int, dryRun bool) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	cutNanos := cutoff.UTC().UnixNano()
	prefix := []byte("room:")
	upper := []byte("room;") // ':'+1
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	removed := 0
	batch := db.NewBatch()
	pending := 0
	flush := func() error {
		if pending == 0 {
			return batch.Close()
		}
		if err := batch.Commit(pebble.Sync); err != nil {
			return err
		}
		pending = 0
		return nil
	}
	for iter.First(); iter.Valid(); iter.Next() {
		k := iter.Key()
		ts, ok := keyTimestamp(k)
		if !ok || ts >= cutNanos {
			continue
		}
		removed++
		if dryRun {
			continue
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err == nil && m.ID != "" {
			_ = batch.Delete(idxKey(m.ID), nil)
		}
		_ = batch.Delete(append([]byte(nil), k...), nil)
		pending++
		if pending >= batchSize {
			if err := batch.Commit(pebble.Sync); err != nil {
				return removed, err
			}
			batch = db.NewBatch()
			pending = 0
		}
	}
	if err := iter.Error(); err != nil {
		_ = batch.Close()
		return removed, err
	}
	if dryRun {
		_ = batch.Close()
		return removed, nil
	}
	if err := flush(); err != nil {
		return removed, err
	}
	if removed > 0 {
		prunesTotal.Add(float64(removed))
		logger.Info("messages_pruned", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// keyTimestamp extracts the nanosecond timestamp from a message key.
func keyTimestamp(k []byte) (int64, bool) {
	i := bytes.LastIndex(k, []byte(":msg:"))
	if i < 0 {
		return 0, false
	}
	rest := string(k[i+len(":msg:"):])
	dash := strings.IndexByte(rest, '-')
	if dash < 0 {
		return 0, false
	}
	ts, err := strconv.ParseInt(rest[:dash], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
