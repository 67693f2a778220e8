// Package weather fetches current conditions through the dashboard
// backend, guesses the user's city from their IP address, and downloads
// condition icons.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
)

// FetchFailed is shown when the backend gives no message.
const FetchFailed = "Failed to fetch weather"

// Report is the subset of the backend's weather payload the widget shows.
// City is the city the report was requested for, which may differ from
// the name the provider returns.
type Report struct {
	City      string  `json:"-"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Desc      string  `json:"description"`
	Icon      string  `json:"icon"`
	Wind      float64 `json:"wind_speed"`
}

// Place returns "Name, CC", or whichever half is known.
func (r Report) Place() string {
	switch {
	case r.Name != "" && r.Country != "":
		return r.Name + ", " + r.Country
	case r.Name != "":
		return r.Name
	case r.Country != "":
		return r.Country
	}
	return r.City
}

// TempLine returns the temperature summary in °C.
func (r Report) TempLine() string {
	return fmt.Sprintf("%s°C (feels like %s°C)", round(r.Temp), round(r.FeelsLike))
}

// Description returns the condition text with a leading capital.
func (r Report) Description() string {
	if r.Desc == "" {
		return ""
	}
	return strings.ToUpper(r.Desc[:1]) + r.Desc[1:]
}

func round(v float64) string {
	return fmt.Sprintf("%.0f", math.Round(v))
}

type payload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (p payload) report(city string) Report {
	r := Report{
		City:      city,
		Name:      p.Name,
		Country:   p.Sys.Country,
		Temp:      p.Main.Temp,
		FeelsLike: p.Main.FeelsLike,
		Humidity:  p.Main.Humidity,
		Wind:      p.Wind.Speed,
	}
	if len(p.Weather) > 0 {
		r.Desc = p.Weather[0].Description
		r.Icon = p.Weather[0].Icon
	}
	return r
}

// Error is a failed weather fetch for City.
type Error struct {
	City string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("weather: %s: %v", e.City, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the server's message or FetchFailed.
func (e *Error) Message() string { return api.Message(e.Err, FetchFailed) }

// Client fetches reports through the backend's /api/weather proxy.
type Client struct {
	api *api.Client
}

// NewClient returns a Client using c, which carries the session token.
func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

// Fetch returns the current report for city.
func (c *Client) Fetch(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, &Error{City: city, Err: fmt.Errorf("weather: empty city")}
	}
	var p payload
	if err := c.api.Get(ctx, "/api/weather", url.Values{"city": {city}}, &p); err != nil {
		return Report{}, &Error{City: city, Err: err}
	}
	return p.report(city), nil
}
