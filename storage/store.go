package storage

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Store errors.
var (
	// ErrStoreFull is returned when the region cannot fit a record even after
	// compaction.
	ErrStoreFull = errors.New("storage: store full")

	// ErrInvalidKey is returned for keys violating length or charset limits.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrNotFound is returned when a key has no live record. Delete of a
	// missing key reports it too; that is the documented policy.
	ErrNotFound = errors.New("storage: key not found")
)

type entry struct {
	offset int64
	size   int64
}

// Store is a log-structured sprite store over a BlockDevice.
//
// Reads and writes may run concurrently: committed record bytes never change,
// so index lookups under a short read lock plus a device read outside any
// write path can never observe torn data. Format and compaction are the only
// operations that invalidate old offsets, and they hold the write lock for
// the duration of the erase.
type Store struct {
	mu    sync.RWMutex // guards index, tail, dead, and erase/rewrite cycles
	wmu   sync.Mutex   // serializes appenders
	dev   BlockDevice
	index map[string]entry
	tail  int64 // next append offset
	dead  int64 // bytes held by superseded and tombstoned records
}

// Open mounts the device and rebuilds the live-key index with a single log
// scan. A torn record at the tail ends the scan and is ignored.
func Open(dev BlockDevice) (*Store, error) {
	s := &Store{
		dev:   dev,
		index: make(map[string]entry),
	}

	for s.tail < dev.Size() {
		rec, err := readRecord(dev, s.tail)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}

		size := rec.size()
		if old, ok := s.index[rec.key]; ok {
			s.dead += old.size
		}
		if rec.tombstone {
			delete(s.index, rec.key)
			s.dead += size
		} else {
			s.index[rec.key] = entry{offset: s.tail, size: size}
		}
		s.tail += size
	}

	log.Printf("storage: mounted, %d live sprites, %d/%d bytes used (%d reclaimable)",
		len(s.index), s.tail, dev.Size(), s.dead)
	return s, nil
}

// Format erases the whole region. Afterwards no key exists.
func (s *Store) Format() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.EraseAll(); err != nil {
		return &DeviceError{Op: "erase", Err: err}
	}
	s.index = make(map[string]entry)
	s.tail = 0
	s.dead = 0
	return nil
}

// Upload stores payload under key, superseding any previous record for the
// key. The old record stays on flash as dead space until compaction or
// Format.
func (s *Store) Upload(key string, payload []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("storage: payload of %d bytes exceeds limit %d: %w",
			len(payload), MaxPayloadLen, ErrStoreFull)
	}

	rec := &record{key: key, payload: payload}
	return s.append(rec, func(off int64) {
		if old, ok := s.index[key]; ok {
			s.dead += old.size
		}
		s.index[key] = entry{offset: off, size: rec.size()}
	})
}

// Delete appends a tombstone for key. Deleting a key with no live record
// returns ErrNotFound.
func (s *Store) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.RLock()
	old, ok := s.index[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: delete %q: %w", key, ErrNotFound)
	}

	rec := &record{key: key, tombstone: true}
	return s.append(rec, func(int64) {
		delete(s.index, key)
		s.dead += old.size + rec.size()
	})
}

// append writes rec at the tail and applies the index update. The device
// write happens outside the index lock; readers only learn the new offset
// after the bytes, including the integrity trailer, are on the device.
func (s *Store) append(rec *record, apply func(off int64)) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	size := rec.size()
	if s.tail+size > s.dev.Size() {
		if err := s.compact(); err != nil {
			return err
		}
		if s.tail+size > s.dev.Size() {
			return fmt.Errorf("storage: %d bytes needed, %d free: %w",
				size, s.dev.Size()-s.tail, ErrStoreFull)
		}
	}

	off := s.tail
	if _, err := s.dev.WriteAt(rec.appendTo(nil), off); err != nil {
		return &DeviceError{Op: "write", Err: err}
	}

	s.mu.Lock()
	apply(off)
	s.tail = off + size
	s.mu.Unlock()
	return nil
}

// compact copies all live records to the head of a freshly erased region.
// Called with wmu held when an append does not fit.
func (s *Store) compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead == 0 {
		return nil
	}
	log.Printf("storage: compacting, %d bytes reclaimable", s.dead)

	type liveRecord struct {
		key     string
		payload []byte
	}
	live := make([]liveRecord, 0, len(s.index))
	keys := make([]string, 0, len(s.index))
	for key := range s.index {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		e := s.index[key]
		rec, err := readRecord(s.dev, e.offset)
		if err != nil {
			return err
		}
		if rec == nil {
			return &DeviceError{Op: "compact", Err: fmt.Errorf("live record for %q unreadable at offset %d", key, e.offset)}
		}
		live = append(live, liveRecord{key: key, payload: rec.payload})
	}

	if err := s.dev.EraseAll(); err != nil {
		return &DeviceError{Op: "erase", Err: err}
	}

	s.index = make(map[string]entry, len(live))
	s.tail = 0
	s.dead = 0
	for _, lr := range live {
		rec := &record{key: lr.key, payload: lr.payload}
		if _, err := s.dev.WriteAt(rec.appendTo(nil), s.tail); err != nil {
			return &DeviceError{Op: "write", Err: err}
		}
		s.index[lr.key] = entry{offset: s.tail, size: rec.size()}
		s.tail += rec.size()
	}
	return nil
}

// Exists reports whether key has a live (non-tombstoned) record.
func (s *Store) Exists(key string) bool {
	s.mu.RLock()
	_, ok := s.index[key]
	s.mu.RUnlock()
	return ok
}

// Load returns a copy of the payload stored under key.
//
// The read lock is held across the device read so a concurrent Format or
// compaction cannot pull the record out from under it.
func (s *Store) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.index[key]
	if !ok {
		return nil, fmt.Errorf("storage: load %q: %w", key, ErrNotFound)
	}

	rec, err := readRecord(s.dev, e.offset)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &DeviceError{Op: "load", Err: fmt.Errorf("live record for %q unreadable at offset %d", key, e.offset)}
	}
	return rec.payload, nil
}

// Keys returns the live keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.index))
	for key := range s.index {
		keys = append(keys, key)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Free is the number of bytes available at the tail, before compaction.
func (s *Store) Free() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dev.Size() - s.tail
}
