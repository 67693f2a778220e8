package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
)

// DefaultGeolocationURL is an IP lookup service answering {"city": ...}.
const DefaultGeolocationURL = "https://ipapi.co/json/"

// GeolocationError is a failed IP lookup.
type GeolocationError struct {
	Err error
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("geolocation: %v", e.Err)
}

func (e *GeolocationError) Unwrap() error { return e.Err }

// Locator resolves the caller's city from their public IP.
type Locator struct {
	api *api.Client
}

// NewLocator returns a Locator querying url. Requests carry no token.
func NewLocator(url string, opts ...api.Option) (*Locator, error) {
	if url == "" {
		url = DefaultGeolocationURL
	}
	c, err := api.New(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Locator{api: c}, nil
}

// Locate returns the city the lookup service reports.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	var body struct {
		City   string `json:"city"`
		Error  bool   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := l.api.Get(ctx, "", nil, &body); err != nil {
		return "", &GeolocationError{Err: err}
	}
	if body.Error {
		return "", &GeolocationError{Err: errors.New(body.Reason)}
	}
	city := strings.TrimSpace(body.City)
	if city == "" {
		return "", &GeolocationError{Err: errors.New("no city in response")}
	}
	return city, nil
}
