package expense

import (
	"fmt"
	"slices"
)

// Store is an immutable, process-wide collection of records. It is safe for
// concurrent use because nothing mutates it after NewStore returns.
type Store struct {
	records []Record
}

// NewStore copies records into a new store. Every record must satisfy
// Record.Validate; providers are expected to have rejected bad rows already.
func NewStore(records []Record) (*Store, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return &Store{records: slices.Clone(records)}, nil
}

// Records returns a copy of the stored records in load order.
func (s *Store) Records() []Record {
	return slices.Clone(s.records)
}

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.records) }
