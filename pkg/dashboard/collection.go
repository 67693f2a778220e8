package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// Collection is the local mirror of the user's widgets. Every widget has
// exactly one rect in each breakpoint of the LayoutMap. Mutations persist
// first and change local state only on success. Network calls run without
// the lock held.
type Collection struct {
	backend Backend
	log     *zap.Logger

	mu      sync.RWMutex
	widgets []Widget
	layouts grid.LayoutMap
	loaded  bool

	// saveMu orders layout saves: one LayoutChange reaches the backend at
	// a time, in the order they are saved.
	saveMu    sync.Mutex
	layoutSeq uint64
	requested map[string]layoutJob // newest unsaved rect per widget
}

// NewCollection returns an empty collection backed by b.
func NewCollection(b Backend, log *zap.Logger) *Collection {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collection{
		backend:   b,
		log:       log,
		layouts:   grid.NewLayoutMap(),
		requested: map[string]layoutJob{},
	}
}

// Load replaces the collection with the backend's widgets. On failure the
// collection is left empty.
func (c *Collection) Load(ctx context.Context) error {
	list, err := c.backend.ListWidgets(ctx)
	if err != nil {
		c.mu.Lock()
		c.widgets = nil
		c.layouts = grid.NewLayoutMap()
		c.loaded = false
		c.mu.Unlock()
		c.log.Warn("fetch widgets failed", zap.Error(err))
		return &Error{Kind: FetchError, Err: err}
	}

	widgets := make([]Widget, 0, len(list))
	rects := make([]grid.Rect, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, w := range list {
		if w.ID == "" || seen[w.ID] {
			c.log.Warn("skipping widget with missing or duplicate id", zap.String("widget_id", w.ID))
			continue
		}
		seen[w.ID] = true
		w = w.normalize()
		widgets = append(widgets, w)
		rects = append(rects, w.Layout)
	}

	c.mu.Lock()
	c.widgets = widgets
	c.layouts = grid.FromCanonical(rects)
	c.loaded = true
	clear(c.requested)
	c.mu.Unlock()
	c.log.Debug("widgets loaded", zap.Int("count", len(widgets)))
	return nil
}

// Loaded reports whether the last Load succeeded.
func (c *Collection) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Add creates a widget of kind with cfg merged over the kind's default
// config, placed at the bottom of the canonical grid.
func (c *Collection) Add(ctx context.Context, kind Kind, cfg Config) (Widget, error) {
	if !kind.Valid() {
		return Widget{}, &Error{Kind: CreateError, Err: fmt.Errorf("%w: %q", ErrUnknownKind, kind)}
	}
	size := DefaultSize(kind)
	cols := grid.Columns(grid.Canonical)

	c.mu.RLock()
	x, y := grid.Place(c.layouts[grid.Canonical], size.W, cols)
	c.mu.RUnlock()

	proposed := grid.WithSize(uuid.NewString(), size, x, y)
	req := NewWidget{
		Kind:   kind,
		Config: DefaultConfig(kind).Merge(cfg),
		Layout: proposed,
	}

	created, err := c.backend.CreateWidget(ctx, req)
	if err != nil {
		c.log.Warn("create widget failed", zap.String("type", string(kind)), zap.Error(err))
		return Widget{}, &Error{Kind: CreateError, Err: err}
	}
	if created.ID == "" {
		return Widget{}, &Error{Kind: CreateError, Err: fmt.Errorf("dashboard: server returned no id")}
	}
	if created.Kind == "" {
		created.Kind = kind
	}
	if created.Config == nil {
		created.Config = req.Config
	}
	if created.Layout.Empty() {
		created.Layout = proposed
	}
	created = created.normalize()

	c.mu.Lock()
	c.widgets = append(c.widgets, created)
	c.layouts.Append(created.Layout, size.W)
	c.mu.Unlock()

	c.log.Info("widget added", zap.String("widget_id", created.ID), zap.String("type", string(kind)))
	return created.clone(), nil
}

// Remove deletes id on the backend, then drops it from the collection and
// from every breakpoint.
func (c *Collection) Remove(ctx context.Context, id string) error {
	if _, ok := c.Widget(id); !ok {
		return &Error{Kind: DeleteError, ID: id, Err: ErrNotFound}
	}
	if err := c.backend.DeleteWidget(ctx, id); err != nil {
		c.log.Warn("delete widget failed", zap.String("widget_id", id), zap.Error(err))
		return &Error{Kind: DeleteError, ID: id, Err: err}
	}

	c.mu.Lock()
	c.widgets = removeWidget(c.widgets, id)
	c.layouts.Remove(id)
	delete(c.requested, id)
	c.mu.Unlock()

	c.log.Info("widget removed", zap.String("widget_id", id))
	return nil
}

// UpdateConfig merges partial into id's config and persists it. The
// server's config replaces the local one; if the server omits it the
// merged config is kept.
func (c *Collection) UpdateConfig(ctx context.Context, id string, partial Config) (Widget, error) {
	current, ok := c.Widget(id)
	if !ok {
		return Widget{}, &Error{Kind: UpdateError, ID: id, Err: ErrNotFound}
	}
	merged := current.Config.Merge(partial)

	resp, err := c.backend.UpdateConfig(ctx, id, merged)
	if err != nil {
		c.log.Warn("update widget config failed", zap.String("widget_id", id), zap.Error(err))
		return Widget{}, &Error{Kind: UpdateError, ID: id, Err: err}
	}
	next := resp.Config
	if next == nil {
		next = merged
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexOf(c.widgets, id)
	if i < 0 {
		// Removed while the request was in flight.
		return Widget{}, &Error{Kind: UpdateError, ID: id, Err: ErrNotFound}
	}
	c.widgets[i].Config = next.Clone()
	return c.widgets[i].clone(), nil
}

// Widgets returns a copy of every widget in collection order.
func (c *Collection) Widgets() []Widget {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Widget, len(c.widgets))
	for i, w := range c.widgets {
		out[i] = w.clone()
	}
	return out
}

// Widget returns a copy of the widget with id.
func (c *Collection) Widget(id string) (Widget, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.widgets, id); i >= 0 {
		return c.widgets[i].clone(), true
	}
	return Widget{}, false
}

// Layouts returns a copy of the LayoutMap.
func (c *Collection) Layouts() grid.LayoutMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layouts.Clone()
}

// Len returns the number of widgets.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.widgets)
}

func indexOf(ws []Widget, id string) int {
	for i, w := range ws {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func removeWidget(ws []Widget, id string) []Widget {
	out := ws[:0:0]
	for _, w := range ws {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}
