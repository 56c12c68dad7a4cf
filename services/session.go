package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
	"marketplace-analyzer/scheduler"
	"marketplace-analyzer/storage"
	"marketplace-analyzer/utils"
)

// colorSetter is implemented by sinks whose palette follows the analysis
// configuration.
type colorSetter interface {
	SetColors(colors config.HighlightColors)
}

type nopSink struct{}

func (nopSink) Apply(models.ElementHandle, models.ColorToken, string) {}
func (nopSink) Reset(models.ElementHandle) {}

// Session owns the aggregate, the change scheduler and the analysis
// configuration of one browsing context. Scans are serialized.
type Session struct {
	extractor RecordExtractor
	sink      HighlightSink
	source    scheduler.ChangeSource
	store     *storage.AggregateStore
	sched     *scheduler.Scheduler
	cfg       atomic.Pointer[config.Analysis]
	logger    *utils.Logger
	now       func() time.Time

	scanMu    sync.Mutex
	mu        sync.Mutex
	ctx       context.Context
	decisions map[string]models.Decision
}

// NewSession wires a session. source may be nil, in which case only explicit
// Scan calls run the pipeline. A nil sink discards highlights.
func NewSession(extractor RecordExtractor, sink HighlightSink, source scheduler.ChangeSource,
	analysis config.Analysis, frame time.Duration, logger *utils.Logger) *Session {

	if sink == nil {
		sink = nopSink{}
	}
	s := &Session{
		extractor: extractor,
		sink:      sink,
		source:    source,
		store:     storage.NewAggregateStore(sink, logger),
		logger:    logger,
		now:       time.Now,
		ctx:       context.Background(),
		decisions: make(map[string]models.Decision),
	}
	s.sched = scheduler.New(s.scheduledScan, frame, logger)
	s.SetConfig(analysis)
	return s
}

// WithClock overrides the clock passed to the anomaly engine. Used by tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// WithDeferrer replaces the scheduler's deferral mechanism. Used by tests.
func (s *Session) WithDeferrer(d scheduler.Deferrer) *Session {
	s.sched.WithDeferrer(d)
	return s
}

// Store exposes the aggregate, e.g. to register a listing counter.
func (s *Session) Store() *storage.AggregateStore { return s.store }

// Config returns the analysis options used by the next pass.
func (s *Session) Config() config.Analysis { return *s.cfg.Load() }

// SetConfig swaps the analysis options. A pass already running keeps the
// options it started with.
func (s *Session) SetConfig(analysis config.Analysis) {
	analysis.Normalize()
	s.cfg.Store(&analysis)
	if cs, ok := s.sink.(colorSetter); ok {
		cs.SetColors(analysis.HighlightColors)
	}
}

// Start enters a keyword context. A different keyword than the current one
// clears the aggregate first. It runs one scan and then re-scans after every
// burst from the change source until Clear or Dispose.
func (s *Session) Start(ctx context.Context, keyword string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword != s.store.Keyword() {
		s.Clear()
	}
	s.store.SetKeywordContext(keyword)

	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("[session] Started keyword context %q (session %s)", keyword, s.store.SessionID())
	_, err := s.Scan(ctx)
	if s.source != nil {
		s.sched.Observe(s.source)
	}
	return err
}

func (s *Session) scheduledScan() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if _, err := s.Scan(ctx); err != nil {
		s.logger.Warn("[session] Scheduled scan failed: %v", err)
	}
}

// Scan runs one analysis pass over the visible listings: extract, ingest,
// score against the aggregate, highlight, then run the scam pass whose
// highlight wins over the anomaly one.
func (s *Session) Scan(ctx context.Context) ([]models.Decision, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	visible, err := s.extractor.ExtractVisible(ctx, s.store.Keyword())
	if err != nil {
		return nil, err
	}
	if visible == nil {
		s.logger.Debug("[session] No listing collection on the page")
		return nil, nil
	}
	s.store.Ingest(visible)

	cfg := s.cfg.Load()
	engine := NewPriceAnomalyEngine(*cfg).WithClock(s.now)
	detector := NewScamSignalDetector(*cfg)

	sample, haveSample := engine.NewSample(s.store.Records())
	var median float64
	if haveSample {
		median = sample.Median
	} else {
		s.logger.Debug("[session] Sample too small (%d listings), skipping price analysis", s.store.Len())
	}

	decisions := make([]models.Decision, len(visible))
	for i, r := range visible {
		decisions[i].Record = r
		if !haveSample {
			continue
		}
		res, ok := engine.Score(r, sample)
		if !ok {
			continue
		}
		decisions[i].Result = &res
		s.applyAnomaly(r.Handle, res)
	}

	for i, r := range visible {
		sig := detector.Detect(r, median, haveSample)
		decisions[i].Scam = sig
		if sig.Suspicious {
			s.sink.Apply(r.Handle, models.ColorPotentialScam, "Potential scam: "+strings.Join(sig.Reasons, "; "))
		}
	}

	s.mu.Lock()
	for _, d := range decisions {
		s.decisions[d.Record.Key()] = d
	}
	s.mu.Unlock()

	s.logger.Debug("[session] Pass over %d visible listings (%d in aggregate)", len(visible), s.store.Len())
	return decisions, nil
}

func (s *Session) applyAnomaly(handle models.ElementHandle, res models.AnalysisResult) {
	switch {
	case res.Tier.IsDeal():
		s.sink.Apply(handle, models.ColorGoodDeal, res.Rationale)
	case res.Tier.IsExpensive():
		s.sink.Apply(handle, models.ColorOverpriced, res.Rationale)
	default:
		s.sink.Reset(handle)
	}
}

// Clear stops observing changes, drops any pending scan and empties the
// aggregate, resetting every highlight it applied. A scan already running
// finishes before the aggregate is emptied, so its listings never reach the
// next keyword context.
func (s *Session) Clear() {
	s.sched.Disconnect()

	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.store.Clear()

	s.mu.Lock()
	s.decisions = make(map[string]models.Decision)
	s.mu.Unlock()
}

// Dispose clears the session and permanently stops the scheduler.
func (s *Session) Dispose() {
	s.sched.Close()
	s.sched.Wait()
	s.Clear()
	s.logger.Debug("[session] Disposed")
}

// Snapshot joins every aggregate record with its latest decision.
func (s *Session) Snapshot() []models.ScoredListing {
	records := s.store.Records()
	sessionID := s.store.SessionID()
	keyword := s.store.Keyword()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ScoredListing, 0, len(records))
	for _, r := range records {
		key := r.Key()
		row := models.ScoredListing{
			Key:       key,
			Record:    r,
			SessionID: sessionID,
			Keyword:   keyword,
		}
		if d, ok := s.decisions[key]; ok {
			row.Result = d.Result
			row.Scam = d.Scam
		}
		out = append(out, row)
	}
	return out
}
