package cmd

import (
	"errors"
	"testing"

	"marketplace-analyzer/models"
	"marketplace-analyzer/services"
)

type fakeWatcher struct {
	err      error
	stops    int
	onReveal func(string)
}

func (f *fakeWatcher) Watch(_ string, onReveal func(string)) (func(), error) {
	f.onReveal = onReveal
	return func() { f.stops++ }, f.err
}

func TestWatchRevealsReleasesFailedWatch(t *testing.T) {
	w := &fakeWatcher{err: errors.New("target node not found")}
	_, stop, err := watchReveals(w, services.NewRiskProfile(), "short")
	if err == nil {
		t.Fatal("expected the watch error")
	}
	if stop != nil {
		t.Error("stop should be nil on error")
	}
	if w.stops != 1 {
		t.Errorf("stop calls on failed watch: got %d, want 1", w.stops)
	}
}

func TestWatchRevealsUpdatesProfile(t *testing.T) {
	w := &fakeWatcher{}
	profile := services.NewRiskProfile()
	profile.Ingest(models.SingleListingAttributes{
		Type:              models.ListingTypeGeneral,
		Description:       "nice bike",
		SellerHighlyRated: true,
	})

	revealed, stop, err := watchReveals(w, profile, "nice bike")
	if err != nil {
		t.Fatalf("watchReveals: %v", err)
	}
	w.onReveal("nice bike, pay with bitcoin only")
	select {
	case <-revealed:
	default:
		t.Fatal("expected a reveal notification")
	}
	if got := profile.Report().ScamScore; got != 0.1 {
		t.Errorf("ScamScore after reveal: got %.2f, want 0.1", got)
	}

	stop()
	if w.stops != 1 {
		t.Errorf("stop calls: got %d, want 1", w.stops)
	}
}
