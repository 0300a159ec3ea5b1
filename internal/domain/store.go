package domain

// RecordStore is an insertion-ordered, in-memory collection of records. It
// performs no deduplication; the crawler keeps its own key set for that.
type RecordStore struct {
	records []Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// NewRecordStoreFrom seeds a store with recs, preserving their order.
func NewRecordStoreFrom(recs []Record) *RecordStore {
	s := &RecordStore{records: make([]Record, len(recs))}
	copy(s.records, recs)
	return s
}

// Add appends a record at the end of the collection.
func (s *RecordStore) Add(r Record) {
	s.records = append(s.records, r)
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Get returns the record at position i. Positions are stable: nothing is ever
// removed or reordered.
func (s *RecordStore) Get(i int) Record {
	return s.records[i]
}

// Set replaces the record at position i.
func (s *RecordStore) Set(i int, r Record) {
	s.records[i] = r
}

// Records returns a snapshot copy of the collection in insertion order.
func (s *RecordStore) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
