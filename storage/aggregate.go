package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-analyzer/models"
	"marketplace-analyzer/utils"
)

// Resetter removes any decoration previously applied to a listing element.
// It must treat handles that no longer resolve as a no-op.
type Resetter interface {
	Reset(handle models.ElementHandle)
}

// AggregateStore is the deduplicated set of listings seen in the current
// keyword context. It only grows until Clear is called.
type AggregateStore struct {
	mu        sync.Mutex
	ids       *utils.KeySet
	records   []models.ListingRecord
	handles   []models.ElementHandle
	handleSet map[models.ElementHandle]struct{}
	keyword   string
	sessionID string

	resetter Resetter
	onChange func(count int)
	now      func() time.Time
	logger   *utils.Logger
}

// NewAggregateStore creates an empty store. resetter may be nil when nothing
// is ever decorated, e.g. offline analysis.
func NewAggregateStore(resetter Resetter, logger *utils.Logger) *AggregateStore {
	return &AggregateStore{
		ids:       utils.NewKeySet(),
		handleSet: make(map[models.ElementHandle]struct{}),
		sessionID: uuid.NewString(),
		resetter:  resetter,
		now:       time.Now,
		logger:    logger,
	}
}

// OnChange registers a callback invoked with the listing count after every
// Ingest that added records and after every Clear.
func (s *AggregateStore) OnChange(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Ingest adds the candidates whose key has not been seen in this keyword
// context and stamps them with the detection time. Duplicates are dropped
// silently, but their handles are remembered for Clear since a re-rendered
// card may be decorated under a new handle. It returns the number of
// records added.
func (s *AggregateStore) Ingest(cands []models.ListingRecord) int {
	s.mu.Lock()
	added := 0
	for _, c := range cands {
		if _, ok := s.handleSet[c.Handle]; c.Handle != "" && !ok {
			s.handleSet[c.Handle] = struct{}{}
			s.handles = append(s.handles, c.Handle)
		}
		if !s.ids.Add(c.Key()) {
			continue
		}
		c.DetectedAt = s.now()
		s.records = append(s.records, c)
		added++
	}
	count := len(s.records)
	notify := s.onChange
	s.mu.Unlock()

	if added > 0 {
		s.logger.Debug("[store] Ingested %d new listings (%d total)", added, count)
		if notify != nil {
			notify(count)
		}
	}
	return added
}

// Clear empties the store, resets the decoration of every handle ingested
// since the last Clear and starts a new session id.
func (s *AggregateStore) Clear() {
	s.mu.Lock()
	previous := s.records
	handles := s.handles
	s.records = nil
	s.handles = nil
	s.handleSet = make(map[models.ElementHandle]struct{})
	s.ids.Reset()
	s.sessionID = uuid.NewString()
	resetter := s.resetter
	notify := s.onChange
	s.mu.Unlock()

	if resetter != nil {
		for _, h := range handles {
			resetter.Reset(h)
		}
	}
	s.logger.Debug("[store] Cleared %d listings", len(previous))
	if notify != nil {
		notify(0)
	}
}

// SetKeywordContext records the active search term. It does not clear.
func (s *AggregateStore) SetKeywordContext(keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword = keyword
}

// Keyword returns the active search term.
func (s *AggregateStore) Keyword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

// SessionID identifies the current keyword context in exports.
func (s *AggregateStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *AggregateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Contains reports whether a record with key has been ingested.
func (s *AggregateStore) Contains(key string) bool {
	return s.ids.Contains(key)
}

// Records returns a copy of the records in insertion order.
func (s *AggregateStore) Records() []models.ListingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ListingRecord, len(s.records))
	copy(out, s.records)
	return out
}

// PriceSample returns the prices strictly above floor. It is recomputed on
// every call.
func (s *AggregateStore) PriceSample(floor float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prices []float64
	for _, r := range s.records {
		if r.Price > floor {
			prices = append(prices, r.Price)
		}
	}
	return prices
}
