// Package store implements the shared address-keyed record store for a
// discovery session.
//
// The store is owned by the discovery coordinator for the session's
// lifetime. Ingest adapters get mediated, serialized mutation access through
// Upsert: every create-or-update of a single record runs as one critical
// section, so BLE events and Classic results arriving from independent
// execution contexts can never race on the same record. Records keep their
// creation order; later updates and merges never reorder them.
package store

import (
	"sync"
	"time"

	"btscan/internal/domain"
)

// Store is a mutex-guarded, insertion-ordered collection of device records
// keyed by address.
type Store struct {
	mu      sync.Mutex
	records map[string]*domain.DeviceRecord
	order   []string
	now     func() time.Time
}

// New creates an empty record store
func New() *Store {
	return &Store{
		records: make(map[string]*domain.DeviceRecord),
		now:     time.Now,
	}
}

// Upsert creates the record for address if unseen this session (with the
// given transport) and applies mutate to it, then registers exactly one
// sighting. The whole operation is a single critical section.
func (s *Store) Upsert(address string, transport domain.Transport, mutate func(*domain.DeviceRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[address]
	if !ok {
		rec = domain.NewDeviceRecord(address, transport, s.now())
		s.records[address] = rec
		s.order = append(s.order, address)
	}
	if mutate != nil {
		mutate(rec)
	}
	rec.Touch(s.now())
}

// Adopt inserts an externally built record unchanged, preserving its fields
// and sighting count. Used when folding a Classic result set into the
// session store: addresses unique to the Classic batch carry over as-is.
// Adopting an address that already exists is a no-op.
func (s *Store) Adopt(rec *domain.DeviceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Address]; ok {
		return
	}
	s.records[rec.Address] = rec
	s.order = append(s.order, rec.Address)
}

// Contains reports whether a record exists for the address
func (s *Store) Contains(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[address]
	return ok
}

// Get returns the record for the address, or nil when unseen.
// The returned pointer is live shared state; only read it after the
// discovery phase has completed, or mutate via Upsert.
func (s *Store) Get(address string) *domain.DeviceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[address]
}

// Len returns the number of distinct addresses observed
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns all records in first-creation order
func (s *Store) Records() []*domain.DeviceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.DeviceRecord, 0, len(s.order))
	for _, addr := range s.order {
		out = append(out, s.records[addr])
	}
	return out
}

// Rows renders every record's serializable view in first-creation order
func (s *Store) Rows() []domain.Row {
	records := s.Records()
	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	return rows
}
