package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/tileboard/pkg/api/apitest"
	"gitlab.com/tinyland/lab/tileboard/pkg/tui"
)

const (
	testEmail    = "ann@example.com"
	testPassword = "hunter22"
)

type env struct {
	t      *testing.T
	b      *apitest.Backend
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := apitest.New(t)
	b.AddUser(testEmail, testPassword)
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
[api]
base_url = %q
timeout = "5s"

[session]
state_dir = %q

[widgets]
geolocate = false

[image]
icons = false

[log]
file = %q
`, b.URL(), filepath.Join(dir, "state"), filepath.Join(dir, "tileboard.log"))
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return &env{t: t, b: b, config: path}
}

// run executes one invocation with stdin and returns stdout.
func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCmd(BuildInfo{Version: "test", Commit: "abc123", Date: "today"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, err := e.run(stdin, args...)
	if err != nil {
		e.t.Fatalf("tileboard %v: %v (%s)", args, err, userMessage(err))
	}
	return out
}

func (e *env) login() {
	e.t.Helper()
	e.mustRun(testPassword+"\n", "login", "--email", testEmail)
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(testPassword+"\n", "login", "--email", testEmail)
	if !strings.Contains(out, "Signed in as "+testEmail) {
		t.Errorf("login output = %q", out)
	}
	out = e.mustRun("", "whoami")
	if strings.TrimSpace(out) != testEmail {
		t.Errorf("whoami = %q", out)
	}
}

func TestLoginPromptsForEverything(t *testing.T) {
	e := newEnv(t)
	e.mustRun(testEmail+"\n"+testPassword+"\n", "login")
	if calls := e.b.Calls("POST", "/auth/login"); len(calls) != 1 || calls[0].Body["email"] != testEmail {
		t.Errorf("login calls = %+v", calls)
	}
}

func TestLoginRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("wrong\n", "login", "--email", testEmail)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := userMessage(err); got != "Invalid credentials" {
		t.Errorf("message = %q", got)
	}
	if _, err := e.run("", "whoami"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("whoami after failed login: %v", err)
	}
}

func TestLoginRequiresPassword(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("", "login", "--email", testEmail)
	if err == nil || !strings.Contains(err.Error(), "Password is required") {
		t.Errorf("err = %v", err)
	}
	if n := len(e.b.Calls("POST", "/auth/login")); n != 0 {
		t.Errorf("login calls = %d, want 0", n)
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		want     string
	}{
		{"mismatch", "secret1", "secret2", tui.MsgPasswordMismatch},
		{"short", "abc", "abc", tui.MsgPasswordShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.run("", "register", "--email", "new@example.com", "--password", tt.password, "--confirm", tt.confirm)
			if err == nil || err.Error() != tt.want {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
			if n := len(e.b.Calls("POST", "/auth/register")); n != 0 {
				t.Errorf("register calls = %d, want 0", n)
			}
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("secret1\nsecret1\n", "register", "--email", "new@example.com")
	if !strings.Contains(out, tui.MsgRegistered) {
		t.Errorf("register output = %q", out)
	}
	e.mustRun("secret1\n", "login", "--email", "new@example.com")

	_, err := e.run("", "register", "--email", "new@example.com", "--password", "secret1", "--confirm", "secret1")
	if err == nil || userMessage(err) != "User already exists" {
		t.Errorf("duplicate register: %v", err)
	}
}

func TestLogoutForgetsSession(t *testing.T) {
	e := newEnv(t)
	e.login()
	e.mustRun("", "logout")
	if _, err := e.run("", "widgets"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("widgets after logout: %v", err)
	}
}

func TestWidgetsAddListRemove(t *testing.T) {
	e := newEnv(t)
	e.login()

	out := e.mustRun("", "widgets", "add", "clock")
	if !strings.Contains(out, "Added clock 1 at (0,0) 2x1") {
		t.Errorf("add output = %q", out)
	}
	e.mustRun("", "widgets", "add", "weather", "--city", "Paris")
	e.mustRun("", "widgets", "add", "notes", "--content", "# groceries\nmilk")

	out = e.mustRun("", "widgets", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("list lines = %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[2], "Paris") || !strings.Contains(lines[3], "# groceries") {
		t.Errorf("list:\n%s", out)
	}
	if strings.Contains(out, "milk") {
		t.Error("notes detail should show only the first line")
	}

	out = e.mustRun("", "widgets", "rm", "1", "2")
	if !strings.Contains(out, "Removed 1, 2") {
		t.Errorf("rm output = %q", out)
	}
	ws := e.b.Widgets()
	if len(ws) != 1 || ws[0].Type != "notes" {
		t.Errorf("backend widgets = %+v", ws)
	}
}

func TestWidgetsRmUnknown(t *testing.T) {
	e := newEnv(t)
	e.login()
	_, err := e.run("", "widgets", "rm", "42")
	if err == nil || !strings.Contains(err.Error(), "widget 42 not found") {
		t.Errorf("err = %v", err)
	}
	if n := len(e.b.Calls("DELETE", "/api/widgets")); n != 0 {
		t.Errorf("DELETE calls = %d", n)
	}
}

func TestWidgetsAddUnknownKind(t *testing.T) {
	e := newEnv(t)
	e.login()
	if _, err := e.run("", "widgets", "add", "stocks"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
	if n := len(e.b.Calls("POST", "/api/widgets")); n != 0 {
		t.Errorf("POST calls = %d", n)
	}
}

func TestWidgetsListJSON(t *testing.T) {
	e := newEnv(t)
	e.login()
	e.mustRun("", "widgets", "add", "clock")

	out := e.mustRun("", "--json", "widgets", "list")
	var env struct {
		Data []struct {
			ID     string         `json:"id"`
			Type   string         `json:"type"`
			Layout map[string]any `json:"layout"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(env.Data) != 1 || env.Data[0].Type != "clock" || env.Data[0].Layout["w"] != float64(2) {
		t.Errorf("data = %+v", env.Data)
	}
}

func TestSeedTravelPreset(t *testing.T) {
	e := newEnv(t)
	e.login()
	out := e.mustRun("", "widgets", "seed", "travel")
	if n := strings.Count(out, "Added "); n != 4 {
		t.Errorf("seed added %d widgets:\n%s", n, out)
	}
	var cities []string
	for _, w := range e.b.Widgets() {
		if c, ok := w.Config["city"].(string); ok {
			cities = append(cities, c)
		}
	}
	if strings.Join(cities, ",") != "Seoul,Paris,Tokyo" {
		t.Errorf("cities = %v", cities)
	}
}

func TestSeedUnknownPreset(t *testing.T) {
	e := newEnv(t)
	e.login()
	_, err := e.run("", "widgets", "seed", "nope")
	if err == nil || !strings.Contains(err.Error(), "starter") {
		t.Errorf("err = %v", err)
	}
}

func TestSeedListNeedsNoSession(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("", "widgets", "seed", "--list")
	if out != "focus\nstarter\ntravel\n" {
		t.Errorf("presets = %q", out)
	}
}

func TestWeatherCommand(t *testing.T) {
	e := newEnv(t)
	e.b.SetWeather("Paris", apitest.Weather{Name: "Paris", Country: "FR", Temp: 18.4, FeelsLike: 17.6, Humidity: 60, Desc: "light rain", Icon: "10d", Wind: 3.5})
	e.login()

	out := e.mustRun("", "weather", "Paris")
	for _, want := range []string{"Paris, FR", "18°C (feels like 18°C)", "Light rain", "Humidity: 60%"} {
		if !strings.Contains(out, want) {
			t.Errorf("weather output missing %q:\n%s", want, out)
		}
	}

	_, err := e.run("", "weather", "Atlantis")
	if err == nil || userMessage(err) != "city not found: Atlantis" {
		t.Errorf("unknown city: %v", err)
	}
}

func TestWeatherDefaultsToConfiguredCity(t *testing.T) {
	e := newEnv(t)
	e.b.SetWeather("Seoul", apitest.Weather{Name: "Seoul", Country: "KR", Temp: 12})
	e.login()
	out := e.mustRun("", "weather")
	if !strings.Contains(out, "Seoul, KR") {
		t.Errorf("output = %q", out)
	}
}

func TestUnauthorizedDropsSession(t *testing.T) {
	e := newEnv(t)
	e.login()
	e.b.Fail("GET", "/api/widgets", 401, "Token expired")

	_, err := e.run("", "widgets")
	if err == nil {
		t.Fatal("expected an error")
	}
	e.b.Heal()
	if _, err := e.run("", "whoami"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("whoami after 401: %v", err)
	}
}

func TestRootWithoutTerminalListsWidgets(t *testing.T) {
	e := newEnv(t)
	e.login()
	out := e.mustRun("")
	if !strings.Contains(out, "No widgets yet") {
		t.Errorf("root output = %q", out)
	}
}

func TestVersionSkipsSetup(t *testing.T) {
	cmd := NewRootCmd(BuildInfo{Version: "1.2.3", Commit: "abc", Date: "2026-10-14"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "broken.toml"), "--api-url", "", "version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "tileboard 1.2.3 (commit abc, built 2026-10-14") {
		t.Errorf("version = %q", out.String())
	}
}

func TestAPIURLFlagOverridesConfig(t *testing.T) {
	e := newEnv(t)
	other := apitest.New(t)
	other.AddUser(testEmail, testPassword)

	e.mustRun(testPassword+"\n", "--api-url", other.URL(), "login", "--email", testEmail)
	if n := len(other.Calls("POST", "/auth/login")); n != 1 {
		t.Errorf("flag backend login calls = %d", n)
	}
	if n := len(e.b.Calls("POST", "/auth/login")); n != 0 {
		t.Errorf("config backend login calls = %d", n)
	}
}

func TestTable(t *testing.T) {
	got := table([]string{"ID", "TYPE"}, [][]string{{"10", "clock"}, {"2", "notes"}})
	want := "ID  TYPE\n10  clock\n2   notes\n"
	if got != want {
		t.Errorf("table =\n%q\nwant\n%q", got, want)
	}
}
