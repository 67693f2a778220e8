package dashboard

import (
	"context"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// NewWidget is a create request.
type NewWidget struct {
	Kind   Kind      `json:"type"`
	Config Config    `json:"config"`
	Layout grid.Rect `json:"layout"`
}

// Backend is the remote widget resource.
type Backend interface {
	ListWidgets(ctx context.Context) ([]Widget, error)
	CreateWidget(ctx context.Context, w NewWidget) (Widget, error)
	UpdateLayout(ctx context.Context, id string, layout grid.Rect) (Widget, error)
	UpdateConfig(ctx context.Context, id string, cfg Config) (Widget, error)
	DeleteWidget(ctx context.Context, id string) error
}

// RESTBackend implements Backend over /api/widgets.
type RESTBackend struct {
	client *api.Client
}

// NewRESTBackend returns a Backend using client.
func NewRESTBackend(client *api.Client) *RESTBackend {
	return &RESTBackend{client: client}
}

const widgetsPath = "/api/widgets"

func widgetPath(id string) string { return widgetsPath + "/" + id }

// ListWidgets implements Backend.
func (b *RESTBackend) ListWidgets(ctx context.Context) ([]Widget, error) {
	var out []Widget
	if err := b.client.Get(ctx, widgetsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWidget implements Backend.
func (b *RESTBackend) CreateWidget(ctx context.Context, w NewWidget) (Widget, error) {
	var out Widget
	err := b.client.Post(ctx, widgetsPath, w, &out)
	return out, err
}

// UpdateLayout implements Backend.
func (b *RESTBackend) UpdateLayout(ctx context.Context, id string, layout grid.Rect) (Widget, error) {
	var out Widget
	err := b.client.Put(ctx, widgetPath(id), map[string]any{"layout": layout}, &out)
	return out, err
}

// UpdateConfig implements Backend.
func (b *RESTBackend) UpdateConfig(ctx context.Context, id string, cfg Config) (Widget, error) {
	var out Widget
	err := b.client.Put(ctx, widgetPath(id), map[string]any{"config": cfg}, &out)
	return out, err
}

// DeleteWidget implements Backend.
func (b *RESTBackend) DeleteWidget(ctx context.Context, id string) error {
	return b.client.Delete(ctx, widgetPath(id), nil)
}
