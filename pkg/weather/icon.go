package weather

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"gitlab.com/tinyland/lab/tileboard/pkg/storage"
)

// DefaultIconURL is the OpenWeather icon template; %s is the icon code.
const DefaultIconURL = "https://openweathermap.org/img/wn/%s.png"

const maxIconBytes = 1 << 20

// Icons downloads condition icons and keeps them in a storage.Store.
type Icons struct {
	template string
	http     *http.Client
	cache    *storage.Store
	ttl      time.Duration
}

// NewIcons returns an icon fetcher. cache may be nil.
func NewIcons(template string, cache *storage.Store, ttl time.Duration) *Icons {
	if template == "" {
		template = DefaultIconURL
	}
	return &Icons{
		template: template,
		http:     &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		ttl:      ttl,
	}
}

// URL returns the download URL for code.
func (i *Icons) URL(code string) string {
	return fmt.Sprintf(i.template, code)
}

// Fetch returns the decoded icon for code.
func (i *Icons) Fetch(ctx context.Context, code string) (image.Image, error) {
	data, err := i.Bytes(ctx, code)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("weather: decode icon %s: %w", code, err)
	}
	return img, nil
}

// Bytes returns the raw PNG for code, from cache when present.
func (i *Icons) Bytes(ctx context.Context, code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("weather: empty icon code")
	}
	key := "icon:" + code
	if i.cache != nil {
		if data, ok := i.cache.Get(key); ok {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.URL(code), nil)
	if err != nil {
		return nil, err
	}
	resp, err := i.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: icon %s: %w", code, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: icon %s: HTTP %d", code, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("weather: read icon %s: %w", code, err)
	}
	if i.cache != nil {
		_ = i.cache.PutWithTTL(key, data, i.ttl)
	}
	return data, nil
}
