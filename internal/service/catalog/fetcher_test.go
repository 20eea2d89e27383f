package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/kapu/fitplan-engine-go/internal/domain"
)

// fakeFetcher serves canned pages keyed by URL. When gate is set every fetch
// blocks until it is closed.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*Page
	errs  map[string]error
	calls int
	gate  chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]*Page),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[pageURL]; err != nil {
		return nil, err
	}
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("unexpected page %s", pageURL)
	}
	return page, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) setErr(pageURL string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, pageURL)
		return
	}
	f.errs[pageURL] = err
}

func record(id int, name string) domain.RawRecord {
	return domain.RawRecord(fmt.Sprintf(`{
		"id": %d,
		"translations": [
			{"language": 1, "name": "Kniebeuge", "description": ""},
			{"language": 2, "name": %q, "description": "<p>Keep your back straight.</p>"}
		],
		"category": {"id": 9, "name": "Legs"},
		"muscles": [{"id": 10, "name": "Quadriceps femoris", "name_en": "Quads"}],
		"muscles_secondary": [{"id": 8, "name": "Gluteus maximus", "name_en": ""}],
		"equipment": [{"id": 1, "name": "Barbell"}],
		"images": [{"id": 5, "image": "https://wger.de/media/squat.png", "is_main": true}],
		"videos": []
	}`, id, name))
}

func page(next string, names ...string) *Page {
	p := &Page{Next: next}
	for i, name := range names {
		p.Records = append(p.Records, record(i+1, name))
	}
	return p
}
