package dashboard

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

var errBoom = errors.New("boom")

// fakeBackend is an in-memory Backend with per-call failure switches.
type fakeBackend struct {
	mu          sync.Mutex
	widgets     []Widget
	next        int
	failList    error
	failCreate  error
	failDelete  error
	failConfig  error
	failLayout  map[string]error
	omitConfig  bool
	layoutCalls []string
	sentLayouts []grid.Rect
	configCalls []Config
	onLayout    func(id string)
}

func newFakeBackend(ws ...Widget) *fakeBackend {
	f := &fakeBackend{next: 100, failLayout: map[string]error{}}
	f.widgets = append(f.widgets, ws...)
	return f
}

func (f *fakeBackend) ListWidgets(ctx context.Context) ([]Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]Widget, len(f.widgets))
	copy(out, f.widgets)
	return out, nil
}

func (f *fakeBackend) CreateWidget(ctx context.Context, w NewWidget) (Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return Widget{}, f.failCreate
	}
	id := strconv.Itoa(f.next)
	f.next++
	created := Widget{ID: id, Kind: w.Kind, Config: w.Config, Layout: w.Layout}
	created.Layout.I = id
	f.widgets = append(f.widgets, created)
	return created, nil
}

func (f *fakeBackend) UpdateLayout(ctx context.Context, id string, layout grid.Rect) (Widget, error) {
	if f.onLayout != nil {
		f.onLayout(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.layoutCalls = append(f.layoutCalls, id)
	f.sentLayouts = append(f.sentLayouts, layout)
	if err := f.failLayout[id]; err != nil {
		return Widget{}, err
	}
	return Widget{ID: id, Layout: layout}, nil
}

func (f *fakeBackend) UpdateConfig(ctx context.Context, id string, cfg Config) (Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configCalls = append(f.configCalls, cfg)
	if f.failConfig != nil {
		return Widget{}, f.failConfig
	}
	if f.omitConfig {
		return Widget{ID: id}, nil
	}
	return Widget{ID: id, Config: cfg}, nil
}

func (f *fakeBackend) DeleteWidget(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	for i, w := range f.widgets {
		if w.ID == id {
			f.widgets = append(f.widgets[:i], f.widgets[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) layoutCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.layoutCalls)
}

// lastSent returns the last rect PUT for id.
func (f *fakeBackend) lastSent(id string) (grid.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sentLayouts) - 1; i >= 0; i-- {
		if f.sentLayouts[i].I == id {
			return f.sentLayouts[i], true
		}
	}
	return grid.Rect{}, false
}
