// Package apitest runs an in-process fake of the dashboard backend for
// tests. It speaks the same JSON shapes as the real service, keeps widgets
// in memory, and can be told to fail specific routes.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Widget is the backend's stored form of a widget.
type Widget struct {
	ID     int            `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
	Layout map[string]any `json:"layout"`
}

// Weather is the subset of the weather payload the fake serves.
type Weather struct {
	Name      string
	Country   string
	Temp      float64
	FeelsLike float64
	Humidity  int
	Desc      string
	Icon      string
	Wind      float64
}

// Call records one request the backend served.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type failure struct {
	status int
	msg    string
}

// Backend is the fake service. The zero value is not usable; call New.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]string
	tokens   map[string]string
	widgets  []Widget
	nextID   int
	weather  map[string]Weather
	failures map[string]failure
	calls    []Call
}

// New starts a backend and registers its shutdown with t.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:    map[string]string{},
		tokens:   map[string]string{},
		nextID:   1,
		weather:  map[string]Weather{},
		failures: map[string]failure{},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the server's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// AddUser registers a user directly.
func (b *Backend) AddUser(email, password string) {
	b.mu.Lock()
	b.users[email] = password
	b.mu.Unlock()
}

// TokenFor returns the token the backend issues for email.
func TokenFor(email string) string { return "tok-" + email }

// SeedWidget stores w and returns its assigned id.
func (b *Backend) SeedWidget(w Widget) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.ID = b.nextID
	b.nextID++
	b.widgets = append(b.widgets, w)
	return w.ID
}

// Widgets returns a snapshot of stored widgets.
func (b *Backend) Widgets() []Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Widget, len(b.widgets))
	copy(out, b.widgets)
	return out
}

// SetWeather registers the report for city (case-insensitive).
func (b *Backend) SetWeather(city string, w Weather) {
	b.mu.Lock()
	b.weather[strings.ToLower(city)] = w
	b.mu.Unlock()
}

// Fail makes every request matching method and path prefix answer with
// status and msg. An empty msg sends a body without one.
func (b *Backend) Fail(method, prefix string, status int, msg string) {
	b.mu.Lock()
	b.failures[method+" "+prefix] = failure{status: status, msg: msg}
	b.mu.Unlock()
}

// Heal removes every injected failure.
func (b *Backend) Heal() {
	b.mu.Lock()
	b.failures = map[string]failure{}
	b.mu.Unlock()
}

// Calls returns the requests matching method and path prefix. An empty
// method matches any.
func (b *Backend) Calls(method, prefix string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if (method == "" || c.Method == method) && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded requests.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record, b.inject)

	r.Post("/auth/login", b.login)
	r.Post("/auth/register", b.register)

	r.Group(func(r chi.Router) {
		r.Use(b.requireToken)
		r.Get("/api/widgets", b.listWidgets)
		r.Post("/api/widgets", b.createWidget)
		r.Put("/api/widgets/{id}", b.updateWidget)
		r.Delete("/api/widgets/{id}", b.deleteWidget)
		r.Get("/api/weather", b.getWeather)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The log keeps its own copy of the body; handlers edit theirs.
		var logged, body map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &logged)
			_ = json.Unmarshal(raw, &body)
		}
		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Auth:   r.Header.Get("Authorization"),
			Body:   logged,
		})
		b.mu.Unlock()
		ctx := r.Context()
		next.ServeHTTP(w, r.WithContext(withBody(ctx, body)))
	})
}

func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		var hit *failure
		for k, f := range b.failures {
			method, prefix, _ := strings.Cut(k, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				f := f
				hit = &f
				break
			}
		}
		b.mu.Unlock()
		if hit != nil {
			if hit.msg != "" {
				writeJSON(w, hit.status, map[string]string{"msg": hit.msg})
			} else {
				writeJSON(w, hit.status, map[string]string{})
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		_, ok := b.tokens[tok]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	b.mu.Lock()
	want, ok := b.users[email]
	if ok && want == password {
		b.tokens[TokenFor(email)] = email
	}
	b.mu.Unlock()

	if !ok || want != password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": TokenFor(email),
		"user":         map[string]any{"id": 1, "email": email},
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Email and password are required"})
		return
	}

	b.mu.Lock()
	_, exists := b.users[email]
	if !exists {
		b.users[email] = password
	}
	b.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"msg": "User already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"msg": "User created successfully"})
}

func (b *Backend) listWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Widgets())
}

func (b *Backend) createWidget(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	kind, _ := body["type"].(string)
	if kind == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Widget type is required"})
		return
	}
	cfg, _ := body["config"].(map[string]any)
	layout, _ := body["layout"].(map[string]any)

	b.mu.Lock()
	wd := Widget{ID: b.nextID, Type: kind, Config: cfg, Layout: layout}
	b.nextID++
	if wd.Layout != nil {
		wd.Layout["i"] = strconv.Itoa(wd.ID)
	}
	b.widgets = append(b.widgets, wd)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, wd)
}

func (b *Backend) updateWidget(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	body := bodyFrom(r)

	b.mu.Lock()
	idx := b.index(id)
	if idx < 0 {
		b.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Widget not found"})
		return
	}
	if cfg, ok := body["config"].(map[string]any); ok {
		b.widgets[idx].Config = cfg
	}
	if layout, ok := body["layout"].(map[string]any); ok {
		b.widgets[idx].Layout = layout
	}
	wd := b.widgets[idx]
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, wd)
}

func (b *Backend) deleteWidget(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	idx := b.index(id)
	if idx >= 0 {
		b.widgets = append(b.widgets[:idx], b.widgets[idx+1:]...)
	}
	b.mu.Unlock()

	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Widget not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Widget deleted"})
}

func (b *Backend) getWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	b.mu.Lock()
	rep, ok := b.weather[strings.ToLower(city)]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("city not found: %s", city)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name": rep.Name,
		"sys":  map[string]any{"country": rep.Country},
		"main": map[string]any{
			"temp":       rep.Temp,
			"feels_like": rep.FeelsLike,
			"humidity":   rep.Humidity,
		},
		"weather": []map[string]any{{"description": rep.Desc, "icon": rep.Icon}},
		"wind":    map[string]any{"speed": rep.Wind},
	})
}

func (b *Backend) index(id int) int {
	for i, w := range b.widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
