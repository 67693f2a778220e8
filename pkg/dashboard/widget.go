package dashboard

import (
	"encoding/json"
	"fmt"
	"maps"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// Config is a widget's free-form settings. Notes use "content", weather
// uses "city", and clocks use nothing.
type Config map[string]any

// Content returns the notes text.
func (c Config) Content() string { return c.str("content") }

// City returns the weather city.
func (c Config) City() string { return c.str("city") }

func (c Config) str(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy; nil stays nil.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}

// Merge returns a copy of c with every key of partial applied on top.
func (c Config) Merge(partial Config) Config {
	out := make(Config, len(c)+len(partial))
	maps.Copy(out, c)
	maps.Copy(out, partial)
	return out
}

// Widget is one tile on the dashboard. Layout is the canonical (lg)
// geometry the backend stores.
type Widget struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"type"`
	Config Config    `json:"config"`
	Layout grid.Rect `json:"layout"`
}

// Title is the tile header text.
func (w Widget) Title() string { return w.Kind.Title() }

func (w Widget) clone() Widget {
	w.Config = w.Config.Clone()
	return w
}

type wireRect struct {
	I    api.ID `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW"`
	MinH int    `json:"minH"`
}

type wireWidget struct {
	ID     api.ID    `json:"id"`
	Kind   Kind      `json:"type"`
	Config Config    `json:"config"`
	Layout *wireRect `json:"layout"`
}

// UnmarshalJSON accepts numeric or string ids and a missing layout.
func (w *Widget) UnmarshalJSON(data []byte) error {
	var ww wireWidget
	if err := json.Unmarshal(data, &ww); err != nil {
		return err
	}
	w.ID = ww.ID.String()
	w.Kind = ww.Kind
	w.Config = ww.Config
	w.Layout = grid.Rect{}
	if ww.Layout != nil {
		w.Layout = grid.Rect{
			I: ww.Layout.I.String(),
			X: ww.Layout.X, Y: ww.Layout.Y,
			W: ww.Layout.W, H: ww.Layout.H,
			MinW: ww.Layout.MinW, MinH: ww.Layout.MinH,
		}
	}
	return nil
}

// normalize fills what the backend may leave out: a config, the layout's
// id, and minimums or a whole rect from the kind's defaults.
func (w Widget) normalize() Widget {
	if w.Config == nil {
		w.Config = DefaultConfig(w.Kind)
	}
	size := DefaultSize(w.Kind)
	if w.Layout.Empty() {
		w.Layout = grid.WithSize(w.ID, size, 0, 0)
	}
	w.Layout.I = w.ID
	if w.Layout.MinW <= 0 {
		w.Layout.MinW = size.MinW
	}
	if w.Layout.MinH <= 0 {
		w.Layout.MinH = size.MinH
	}
	w.Layout = w.Layout.Clamp(grid.Columns(grid.Canonical))
	return w
}
