package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Payloads go through the
// codec so the in-memory and sqlite backends share serialization
// behavior.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Init(context.Context) error {
	return nil
}

func (s *MemoryStore) SaveExperiment(_ context.Context, record ExperimentRecord) error {
	payload, err := EncodeExperiment(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = payload
	return nil
}

func (s *MemoryStore) GetExperiment(_ context.Context, id string) (ExperimentRecord, bool, error) {
	s.mu.RLock()
	payload, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return ExperimentRecord{}, false, nil
	}
	record, err := DecodeExperiment(payload)
	if err != nil {
		return ExperimentRecord{}, false, err
	}
	return record, true, nil
}

func (s *MemoryStore) ListExperiments(context.Context) ([]ExperimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]ExperimentRecord, 0, len(s.records))
	for _, payload := range s.records {
		record, err := DecodeExperiment(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
