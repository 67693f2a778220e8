package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// ChangeResult reports what a layout change persisted.
type ChangeResult struct {
	Saved  []string
	Failed []string
	// Banner is LayoutSaveFailed when any persist failed, else empty.
	Banner string
	// Err is the first persist error, for callers that react to its
	// cause (an expired session, say).
	Err error
}

// OK reports whether every changed rect was saved.
func (r ChangeResult) OK() bool { return len(r.Failed) == 0 }

type layoutJob struct {
	id   string
	seq  uint64
	rect grid.Rect
}

// LayoutChange is an adopted layout waiting to be persisted by
// SaveLayout.
type LayoutChange struct {
	seq  uint64
	jobs []layoutJob
}

// Pending reports how many canonical rects the change will try to save.
func (ch LayoutChange) Pending() int { return len(ch.jobs) }

// OnLayoutChange adopts the layout and persists it in one call.
func (c *Collection) OnLayoutChange(ctx context.Context, active []grid.Rect, all grid.LayoutMap) ChangeResult {
	return c.SaveLayout(ctx, c.AdoptLayout(active, all))
}

// AdoptLayout makes all the LayoutMap and returns the canonical rects that
// differ from what the widget has stored or was last asked to store. The
// canonical list is all[lg], or active when all has no lg entry. Widgets
// absent from a breakpoint's list keep their old rect there and unknown
// ids are dropped. It does no I/O.
func (c *Collection) AdoptLayout(active []grid.Rect, all grid.LayoutMap) LayoutChange {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]Widget, len(c.widgets))
	for _, w := range c.widgets {
		known[w.ID] = w
	}
	next := c.layouts.Clone()
	for bp, list := range all {
		kept := make([]grid.Rect, 0, len(list))
		have := make(map[string]bool, len(list))
		for _, r := range list {
			if _, ok := known[r.I]; ok && !have[r.I] {
				kept = append(kept, r)
				have[r.I] = true
			}
		}
		for _, w := range c.widgets {
			if have[w.ID] {
				continue
			}
			if r, ok := c.layouts.Rect(bp, w.ID); ok {
				kept = append(kept, r)
			}
		}
		next[bp] = kept
	}
	c.layouts = next

	canonical, ok := all[grid.Canonical]
	if !ok {
		canonical = active
	}
	c.layoutSeq++
	ch := LayoutChange{seq: c.layoutSeq}
	for _, r := range canonical {
		w, ok := known[r.I]
		if !ok {
			continue
		}
		ref := w.Layout
		if p, ok := c.requested[r.I]; ok {
			ref = p.rect
		}
		if r.SameGeometry(ref) {
			continue
		}
		if r.MinW <= 0 {
			r.MinW = w.Layout.MinW
		}
		if r.MinH <= 0 {
			r.MinH = w.Layout.MinH
		}
		job := layoutJob{id: r.I, seq: ch.seq, rect: r}
		c.requested[r.I] = job
		ch.jobs = append(ch.jobs, job)
	}
	return ch
}

// SaveLayout persists ch. One PUT per rect runs concurrently and they are
// joined before returning. Changes are saved one at a time, and a rect
// that a later adopted change has replaced is not sent, so the server
// always ends on the newest layout. A failed PUT keeps the previous
// canonical rect. Nothing is retried and no error escapes; failures are
// logged and reported in the result.
func (c *Collection) SaveLayout(ctx context.Context, ch LayoutChange) ChangeResult {
	if len(ch.jobs) == 0 {
		return ChangeResult{}
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.RLock()
	jobs := make([]layoutJob, 0, len(ch.jobs))
	for _, job := range ch.jobs {
		if c.current(job) {
			jobs = append(jobs, job)
		}
	}
	c.mu.RUnlock()
	if skipped := len(ch.jobs) - len(jobs); skipped > 0 {
		c.log.Debug("superseded layout saves skipped", zap.Int("count", skipped))
	}
	if len(jobs) == 0 {
		return ChangeResult{}
	}

	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job layoutJob) {
			defer wg.Done()
			_, errs[i] = c.backend.UpdateLayout(ctx, job.id, job.rect)
		}(i, job)
	}
	wg.Wait()

	var res ChangeResult
	c.mu.Lock()
	for i, job := range jobs {
		if c.current(job) {
			delete(c.requested, job.id)
		}
		if errs[i] != nil {
			c.log.Error("save layout failed",
				zap.String("widget_id", job.id),
				zap.Error(errs[i]),
			)
			res.Failed = append(res.Failed, job.id)
			if res.Err == nil {
				res.Err = errs[i]
			}
			continue
		}
		// Saves are serialized, so this is what the server now holds even
		// if a newer change is queued behind it.
		if j := indexOf(c.widgets, job.id); j >= 0 {
			c.widgets[j].Layout = job.rect
		}
		res.Saved = append(res.Saved, job.id)
	}
	c.mu.Unlock()

	if len(res.Failed) > 0 {
		res.Banner = LayoutSaveFailed
	}
	c.log.Debug("layout change persisted",
		zap.Int("saved", len(res.Saved)),
		zap.Int("failed", len(res.Failed)),
	)
	return res
}

// current reports whether job is still the newest request for its widget.
// c.mu must be held.
func (c *Collection) current(job layoutJob) bool {
	p, ok := c.requested[job.id]
	return ok && p.seq == job.seq
}

// Canonical returns every widget's stored canonical rect in collection
// order.
func (c *Collection) Canonical() []grid.Rect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]grid.Rect, len(c.widgets))
	for i, w := range c.widgets {
		out[i] = w.Layout
	}
	return out
}
