package api

import (
	"sort"
	"sync"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/google/uuid"

	"github.com/samcharles93/esstool/pkg/ess"
)

type saveRecord struct {
	ID          string
	Digest      uint64
	Fingerprint uint64
	Size        int64
	CreatedAt   time.Time
	Save        *ess.Save
}

// SaveStore keeps decoded uploads in memory. Uploads with identical bytes
// share one record.
type SaveStore struct {
	mu       sync.Mutex
	saves    map[string]*saveRecord
	byDigest map[uint64]string
}

func NewSaveStore() *SaveStore {
	return &SaveStore{
		saves:    make(map[string]*saveRecord),
		byDigest: make(map[uint64]string),
	}
}

// Lookup returns the record already holding data, if any.
func (s *SaveStore) Lookup(data []byte) (*saveRecord, bool) {
	digest := farm.Fingerprint64(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDigest[digest]
	if !ok {
		return nil, false
	}
	return s.saves[id], true
}

// Put stores a decoded upload. If the same bytes were stored before, the
// existing record is returned and created is false.
func (s *SaveStore) Put(data []byte, sv *ess.Save, now time.Time) (rec *saveRecord, created bool) {
	digest := farm.Fingerprint64(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byDigest[digest]; ok {
		return s.saves[id], false
	}
	rec = &saveRecord{
		ID:          newSaveID(),
		Digest:      digest,
		Fingerprint: ess.Fingerprint(data),
		Size:        int64(len(data)),
		CreatedAt:   now,
		Save:        sv,
	}
	s.saves[rec.ID] = rec
	s.byDigest[digest] = rec.ID
	return rec, true
}

func (s *SaveStore) Get(id string) (*saveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.saves[id]
	return rec, ok
}

func (s *SaveStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.saves[id]
	if !ok {
		return false
	}
	delete(s.saves, id)
	delete(s.byDigest, rec.Digest)
	return true
}

// List returns all records, oldest first.
func (s *SaveStore) List() []*saveRecord {
	s.mu.Lock()
	out := make([]*saveRecord, 0, len(s.saves))
	for _, rec := range s.saves {
		out = append(out, rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func newSaveID() string {
	return "save_" + uuid.NewString()
}
