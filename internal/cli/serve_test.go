package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/prxtenses/repair-json-stream/pkg/cache"
	"github.com/prxtenses/repair-json-stream/pkg/observability"
)

func newTestServer(t *testing.T, store cache.Cache) *httptest.Server {
	t.Helper()
	cfg := defaultConfig()
	srv := newServer(log.New(io.Discard), store, cfg)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func postRepair(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t, cache.NewNullCache())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestServeRepair(t *testing.T) {
	ts := newTestServer(t, cache.NewNullCache())

	resp, body := postRepair(t, ts, "/v1/repair", `{"a": tru`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != `{"a": true}` {
		t.Errorf("body = %q, want %q", body, `{"a": true}`)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestServeRepairKeepsClientRequestID(t *testing.T) {
	ts := newTestServer(t, cache.NewNullCache())

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/repair", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "client-id-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "client-id-1" {
		t.Errorf("X-Request-ID = %q, want client-id-1", got)
	}
}

func TestServeRepairEvents(t *testing.T) {
	ts := newTestServer(t, cache.NewNullCache())

	resp, body := postRepair(t, ts, "/v1/repair?events=1", `{"a": [1`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var env repairEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v\nbody: %s", err, body)
	}
	if env.Repaired != `{"a": [1]}` {
		t.Errorf("repaired = %q, want %q", env.Repaired, `{"a": [1]}`)
	}
	if len(env.Events) != 2 {
		t.Fatalf("events = %v, want closed_array and closed_object", env.Events)
	}
	if string(env.Events[0].Kind) != "closed_array" || string(env.Events[1].Kind) != "closed_object" {
		t.Errorf("event kinds = %v, %v", env.Events[0].Kind, env.Events[1].Kind)
	}
}

func TestServeRepairValidInputNoEvents(t *testing.T) {
	ts := newTestServer(t, cache.NewNullCache())

	_, body := postRepair(t, ts, "/v1/repair?events=1", `{"ok": true}`)
	var env repairEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Events) != 0 {
		t.Errorf("events = %v, want empty", env.Events)
	}
	// The events list must serialize as [], not null.
	if !strings.Contains(body, `"events":[]`) {
		t.Errorf("body = %q, want explicit empty events array", body)
	}
}

// countingCacheHooks counts hits and misses through the global registry.
type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }

func TestServeRepairCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, fc)

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	_, first := postRepair(t, ts, "/v1/repair", `{"n": 1,`)
	_, second := postRepair(t, ts, "/v1/repair", `{"n": 1,`)

	if first != second {
		t.Errorf("cached response differs: %q vs %q", first, second)
	}
	if hooks.misses != 1 || hooks.hits != 1 {
		t.Errorf("hits = %d, misses = %d, want 1 and 1", hooks.hits, hooks.misses)
	}
}

func TestServeGracefulShutdown(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, log.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.runServe(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServe() = %v, want nil on shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
