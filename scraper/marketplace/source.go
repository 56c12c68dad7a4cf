package marketplace

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"marketplace-analyzer/utils"
)

const (
	collectionBinding  = "__mpaCollectionChanged"
	descriptionBinding = "__mpaDescriptionChanged"
)

// MutationSource reports changes to the listing collection. Every
// MutationObserver callback in the page becomes one burst; coalescing is
// left to the subscriber.
type MutationSource struct {
	tab    context.Context
	logger *utils.Logger
}

// NewMutationSource creates a source observing the collection in tab.
func NewMutationSource(tab context.Context, logger *utils.Logger) *MutationSource {
	return &MutationSource{tab: tab, logger: logger}
}

// Subscribe installs the page observer and calls onBurst for each callback.
// onBurst runs on the CDP event goroutine and must not block.
func (m *MutationSource) Subscribe(onBurst func()) func() {
	stop, err := bind(m.tab, collectionBinding, observeJS(collectionBinding), func(string) { onBurst() })
	if err != nil {
		m.logger.Warn("[source] Could not observe listing collection: %v", err)
		return func() {}
	}
	return stop
}

// DescriptionWatcher reports growth of the detail description text, e.g.
// after "See more" is expanded.
type DescriptionWatcher struct {
	tab    context.Context
	logger *utils.Logger
}

// NewDescriptionWatcher creates a watcher for the detail view in tab.
func NewDescriptionWatcher(tab context.Context, logger *utils.Logger) *DescriptionWatcher {
	return &DescriptionWatcher{tab: tab, logger: logger}
}

// Watch observes the description node whose text starts like current and
// passes every new text to onReveal. onReveal runs on the CDP event
// goroutine and must not block. stop is nil when err is not.
func (w *DescriptionWatcher) Watch(current string, onReveal func(text string)) (stop func(), err error) {
	return bind(w.tab, descriptionBinding, watchDescriptionJS(descriptionBinding, current), onReveal)
}

// bind registers a runtime binding, routes its calls to fn and runs the
// script that installs the page-side observer. The returned stop func
// removes both. On error nothing stays installed and stop is nil.
func bind(tab context.Context, name, installJS string, fn func(payload string)) (func(), error) {
	lctx, cancel := context.WithCancel(tab)
	chromedp.ListenTarget(lctx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == name {
			fn(e.Payload)
		}
	})

	stop := func() {
		cancel()
		_ = chromedp.Run(tab, chromedp.Evaluate(disconnectJS(name), nil))
	}

	var installed bool
	if err := chromedp.Run(tab,
		runtime.AddBinding(name),
		chromedp.Evaluate(installJS, &installed),
	); err != nil {
		stop()
		return nil, fmt.Errorf("marketplace: install %s: %w", name, err)
	}
	if !installed {
		stop()
		return nil, fmt.Errorf("marketplace: install %s: target node not found", name)
	}
	return stop, nil
}
