package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

func moved(m grid.LayoutMap, bp grid.Breakpoint, id string, x, y int) grid.LayoutMap {
	out := m.Clone()
	for i := range out[bp] {
		if out[bp][i].I == id {
			out[bp][i].X, out[bp][i].Y = x, y
		}
	}
	return out
}

func TestOnLayoutChangePersistsOnlyChanged(t *testing.T) {
	f := seeded()
	c := loaded(t, f)

	all := moved(c.Layouts(), grid.LG, "2", 8, 0)
	res := c.OnLayoutChange(context.Background(), all[grid.LG], all)
	if diff := cmp.Diff([]string{"2"}, res.Saved); diff != "" {
		t.Errorf("Saved mismatch (-want +got):\n%s", diff)
	}
	if !res.OK() || res.Banner != "" {
		t.Errorf("result = %+v", res)
	}
	if n := f.layoutCallCount(); n != 1 {
		t.Errorf("PUT calls = %d, want 1", n)
	}
	w, _ := c.Widget("2")
	if w.Layout.X != 8 {
		t.Errorf("canonical x = %d, want 8", w.Layout.X)
	}

	// Same layout again is a no-op.
	res = c.OnLayoutChange(context.Background(), all[grid.LG], all)
	if len(res.Saved) != 0 || f.layoutCallCount() != 1 {
		t.Errorf("second call persisted again: %+v, calls = %d", res, f.layoutCallCount())
	}
}

func TestOnLayoutChangeIgnoresMinimums(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	all := c.Layouts()
	for i := range all[grid.LG] {
		all[grid.LG][i].MinW = 1
	}
	c.OnLayoutChange(context.Background(), all[grid.LG], all)
	if n := f.layoutCallCount(); n != 0 {
		t.Errorf("minimum-only change issued %d PUTs", n)
	}
}

func TestOnLayoutChangeFallsBackToActive(t *testing.T) {
	f := seeded()
	c := loaded(t, f)

	layouts := c.Layouts()
	active := moved(layouts, grid.MD, "1", 0, 2)[grid.MD]
	all := grid.LayoutMap{grid.MD: active}

	res := c.OnLayoutChange(context.Background(), active, all)
	if diff := cmp.Diff([]string{"1"}, res.Saved); diff != "" {
		t.Errorf("Saved mismatch (-want +got):\n%s", diff)
	}
	// Breakpoints absent from the update keep their rects.
	after := c.Layouts()
	if len(after[grid.SM]) != 2 {
		t.Errorf("sm rects = %d, want 2", len(after[grid.SM]))
	}
	assertMembership(t, c)
}

func TestOnLayoutChangeNonCanonicalOnly(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	all := moved(c.Layouts(), grid.SM, "1", 2, 0)

	res := c.OnLayoutChange(context.Background(), all[grid.SM], all)
	if len(res.Saved) != 0 || f.layoutCallCount() != 0 {
		t.Errorf("non-lg change persisted: %+v", res)
	}
	r, _ := c.Layouts().Rect(grid.SM, "1")
	if r.X != 2 {
		t.Errorf("sm layout not adopted, x = %d", r.X)
	}
}

func TestOnLayoutChangeFailureKeepsCanonical(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	f.failLayout["1"] = errBoom
	before, _ := c.Widget("1")

	all := moved(c.Layouts(), grid.LG, "1", 6, 1)
	all = moved(all, grid.LG, "2", 10, 0)
	res := c.OnLayoutChange(context.Background(), all[grid.LG], all)

	if res.Banner != "Failed to save layout changes. Please try again." {
		t.Errorf("Banner = %q", res.Banner)
	}
	if diff := cmp.Diff([]string{"1"}, res.Failed); diff != "" {
		t.Errorf("Failed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2"}, res.Saved); diff != "" {
		t.Errorf("Saved mismatch (-want +got):\n%s", diff)
	}

	after, _ := c.Widget("1")
	if diff := cmp.Diff(before.Layout, after.Layout); diff != "" {
		t.Errorf("canonical layout changed despite failure (-before +after):\n%s", diff)
	}
	// The visual grid keeps the new position.
	if r, _ := c.Layouts().Rect(grid.LG, "1"); r.X != 6 || r.Y != 1 {
		t.Errorf("grid rect = %+v, want new position", r)
	}
}

func TestOnLayoutChangeRunsConcurrently(t *testing.T) {
	f := newFakeBackend()
	for _, id := range []string{"1", "2", "3"} {
		f.widgets = append(f.widgets, Widget{ID: id, Kind: Clock, Layout: grid.Rect{I: id, W: 2, H: 1}})
	}
	c := loaded(t, f)

	// Every PUT blocks until all three are in flight.
	var arrived sync.WaitGroup
	arrived.Add(3)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()
	f.onLayout = func(string) {
		arrived.Done()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}

	all := c.Layouts()
	for i := range all[grid.LG] {
		all[grid.LG][i].Y += 5
		all[grid.LG][i].X = i * 2
	}
	start := time.Now()
	res := c.OnLayoutChange(context.Background(), all[grid.LG], all)
	if len(res.Saved) != 3 {
		t.Fatalf("Saved = %v", res.Saved)
	}
	if time.Since(start) > time.Second {
		t.Error("PUTs were not issued concurrently")
	}
}

func TestOnLayoutChangeDropsUnknownIDs(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	all := c.Layouts()
	all[grid.LG] = append(all[grid.LG], grid.Rect{I: "ghost", X: 0, Y: 9, W: 1, H: 1})

	res := c.OnLayoutChange(context.Background(), all[grid.LG], all)
	if len(res.Saved)+len(res.Failed) != 0 {
		t.Errorf("unknown id persisted: %+v", res)
	}
	if _, ok := c.Layouts().Rect(grid.LG, "ghost"); ok {
		t.Error("unknown id adopted into the layout map")
	}
}

func TestSaveLayoutOutOfOrderKeepsNewest(t *testing.T) {
	f := seeded()
	c := loaded(t, f)

	older := c.AdoptLayout(nil, moved(c.Layouts(), grid.LG, "2", 6, 0))
	newer := c.AdoptLayout(nil, moved(c.Layouts(), grid.LG, "2", 8, 0))

	// The newer command happens to run first.
	if res := c.SaveLayout(context.Background(), newer); !cmp.Equal([]string{"2"}, res.Saved) {
		t.Fatalf("newer Saved = %v", res.Saved)
	}
	if res := c.SaveLayout(context.Background(), older); len(res.Saved)+len(res.Failed) != 0 {
		t.Errorf("superseded change persisted: %+v", res)
	}

	if n := f.layoutCallCount(); n != 1 {
		t.Errorf("PUT calls = %d, want 1", n)
	}
	if w, _ := c.Widget("2"); w.Layout.X != 8 {
		t.Errorf("canonical x = %d, want 8", w.Layout.X)
	}
	if r, _ := c.Layouts().Rect(grid.LG, "2"); r.X != 8 {
		t.Errorf("grid x = %d, want 8", r.X)
	}
}

func TestSaveLayoutAdoptedDuringPUT(t *testing.T) {
	f := seeded()
	c := loaded(t, f)

	var newer LayoutChange
	f.onLayout = func(string) {
		f.onLayout = nil
		newer = c.AdoptLayout(nil, moved(c.Layouts(), grid.LG, "2", 8, 0))
	}
	c.OnLayoutChange(context.Background(), nil, moved(c.Layouts(), grid.LG, "2", 6, 0))
	if newer.Pending() != 1 {
		t.Fatalf("newer change pending = %d, want 1", newer.Pending())
	}
	c.SaveLayout(context.Background(), newer)

	if r, _ := f.lastSent("2"); r.X != 8 {
		t.Errorf("server last got x = %d, want 8", r.X)
	}
	if w, _ := c.Widget("2"); w.Layout.X != 8 {
		t.Errorf("canonical x = %d, want 8", w.Layout.X)
	}
}

func TestMoveBackBeforeSaveIsPersisted(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	orig, _ := c.Widget("2")

	away := c.AdoptLayout(nil, moved(c.Layouts(), grid.LG, "2", 8, 0))
	back := c.AdoptLayout(nil, moved(c.Layouts(), grid.LG, "2", orig.Layout.X, orig.Layout.Y))
	if back.Pending() != 1 {
		t.Fatalf("moving back should still be saved, pending = %d", back.Pending())
	}
	c.SaveLayout(context.Background(), away)
	c.SaveLayout(context.Background(), back)

	if r, _ := f.lastSent("2"); r.X != orig.Layout.X {
		t.Errorf("server last got x = %d, want %d", r.X, orig.Layout.X)
	}
	if w, _ := c.Widget("2"); w.Layout.X != orig.Layout.X {
		t.Errorf("canonical x = %d, want %d", w.Layout.X, orig.Layout.X)
	}
}

func TestSaveLayoutReportsFirstError(t *testing.T) {
	f := seeded()
	c := loaded(t, f)
	f.failLayout["1"] = errBoom

	res := c.OnLayoutChange(context.Background(), nil, moved(c.Layouts(), grid.LG, "1", 6, 1))
	if !errors.Is(res.Err, errBoom) {
		t.Errorf("Err = %v, want errBoom", res.Err)
	}
}
