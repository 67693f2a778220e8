package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithTokenSource(TokenFunc(func() string { return "secret" })))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestBearerHeaderSkipsAuthPaths(t *testing.T) {
	seen := map[string]string{}
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		seen["login"] = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/widgets", func(w http.ResponseWriter, r *http.Request) {
		seen["widgets"] = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})
	c := newTestServer(t, r)

	if err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a"}, nil); err != nil {
		t.Fatalf("login: %v", err)
	}
	var out []any
	if err := c.Get(context.Background(), "/api/widgets", nil, &out); err != nil {
		t.Fatalf("widgets: %v", err)
	}
	if seen["login"] != "" {
		t.Errorf("auth path carried Authorization %q", seen["login"])
	}
	if seen["widgets"] != "Bearer secret" {
		t.Errorf("widgets Authorization = %q, want Bearer secret", seen["widgets"])
	}
}

func TestEmptyTokenSendsNoHeader(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/api/widgets", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	})
	c := newTestServer(t, r)
	c.SetTokenSource(TokenFunc(func() string { return "" }))
	_ = c.Get(context.Background(), "/api/widgets", nil, nil)
	if got != "" {
		t.Errorf("Authorization = %q, want none", got)
	}
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"msg field", `{"msg":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", `{"error":"nope"}`, "nope"},
		{"no message", `{}`, ""},
		{"not json", `<html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tt.body))
			})
			c := newTestServer(t, r)
			err := c.Post(context.Background(), "/auth/login", nil, nil)

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StatusError", err)
			}
			if se.Status != http.StatusUnauthorized || se.Msg != tt.want {
				t.Errorf("StatusError = %+v", se)
			}
			if got := Message(err, "Login failed"); tt.want == "" && got != "Login failed" {
				t.Errorf("Message fallback = %q", got)
			}
			if !IsUnauthorized(err) {
				t.Error("IsUnauthorized = false")
			}
		})
	}
}

func TestQueryAndJSONRoundTrip(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/weather", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"name": r.URL.Query().Get("city")})
	})
	r.Put("/api/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = chi.URLParam(r, "id")
		_ = json.NewEncoder(w).Encode(body)
	})
	c := newTestServer(t, r)

	var weather struct{ Name string }
	if err := c.Get(context.Background(), "/api/weather", url.Values{"city": {"São Paulo"}}, &weather); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if weather.Name != "São Paulo" {
		t.Errorf("name = %q", weather.Name)
	}

	var out struct {
		ID     string         `json:"id"`
		Config map[string]any `json:"config"`
	}
	if err := c.Put(context.Background(), "/api/widgets/7", map[string]any{"config": map[string]any{"city": "Paris"}}, &out); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if out.ID != "7" || out.Config["city"] != "Paris" {
		t.Errorf("out = %+v", out)
	}
}

func TestEmptySuccessBodyIsNotAnError(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestServer(t, r)
	var out map[string]any
	if err := c.Delete(context.Background(), "/api/widgets/1", &out); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestTimeout(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, _ := New(srv.URL, WithTimeout(20*time.Millisecond))
	if err := c.Get(context.Background(), "/slow", nil, nil); err == nil {
		t.Error("expected timeout error")
	}
}

func TestNewValidatesBaseURL(t *testing.T) {
	if _, err := New("not a url"); err == nil {
		t.Error("expected error for url without scheme")
	}
	c, err := New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}

func TestIDAcceptsNumberAndString(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`42`, "42"},
		{`"abc"`, "abc"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, id, tt.want)
		}
	}
	if err := json.Unmarshal([]byte(`true`), new(ID)); err == nil {
		t.Error("bool id should fail")
	}

	out, _ := json.Marshal(ID("42"))
	if string(out) != "42" {
		t.Errorf("Marshal numeric = %s", out)
	}
	out, _ = json.Marshal(ID("abc"))
	if string(out) != `"abc"` {
		t.Errorf("Marshal string = %s", out)
	}
}
