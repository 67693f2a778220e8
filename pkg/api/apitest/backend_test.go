package apitest

import (
	"net/http"
	"strings"
	"testing"
)

func post(t *testing.T, b *Backend, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.URL()+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func TestRecordedBodySurvivesHandlerEdits(t *testing.T) {
	b := New(t)
	b.AddUser("ann@example.com", "hunter22")
	if resp := post(t, b, "/auth/login", "", `{"email":"ann@example.com","password":"hunter22"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	resp := post(t, b, "/api/widgets", TokenFor("ann@example.com"),
		`{"type":"clock","config":{},"layout":{"i":"tmp-1","x":0,"y":0,"w":2,"h":1}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	calls := b.Calls(http.MethodPost, "/api/widgets")
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	layout, _ := calls[0].Body["layout"].(map[string]any)
	if got := layout["i"]; got != "tmp-1" {
		t.Errorf("recorded layout.i = %v, want the id the client sent", got)
	}
	if got := b.Widgets()[0].Layout["i"]; got != "1" {
		t.Errorf("stored layout.i = %v, want the server id", got)
	}
}
