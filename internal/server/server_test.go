package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gridpress/gridpress/pkg/cache"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store/memory"
	"github.com/gridpress/gridpress/pkg/sync"
)

// countingCache wraps a memory cache and counts hits and writes, so tests
// can tell whether a response came from the cache or a fresh render.
type countingCache struct {
	inner cache.Cache
	hits  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if ok {
		c.hits++
	}
	return data, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.inner.Set(ctx, key, data, ttl)
}

func (c *countingCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *countingCache) Close() error { return c.inner.Close() }

type testEnv struct {
	server *httptest.Server
	loader *sync.Loader
	cache  *countingCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.New()
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	logger := log.New(io.Discard)
	loader := sync.NewLoader(st, logger)
	cc := &countingCache{inner: cache.NewMemoryCache()}

	srv := New(Options{
		Loader: loader,
		Cache:  cc,
		Logger: logger,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, loader: loader, cache: cc}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func decodeDoc(t *testing.T, data []byte) page.Document {
	t.Helper()
	var doc page.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode document: %v\nbody: %s", err, data)
	}
	return doc
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestLivePage(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/p/home", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(body, []byte("Welcome")) {
		t.Error("live page should render the default hero headline")
	}
	if bytes.Contains(body, []byte("draggable")) {
		t.Error("live page must not carry editing affordances")
	}
}

func TestLivePageIsCached(t *testing.T) {
	env := newTestEnv(t)

	_, first := env.do(t, http.MethodGet, "/p/home", nil)
	if env.cache.sets != 1 {
		t.Fatalf("first request should write the cache once, sets = %d", env.cache.sets)
	}

	_, second := env.do(t, http.MethodGet, "/p/home", nil)
	if env.cache.hits != 1 {
		t.Errorf("second request should hit the cache, hits = %d", env.cache.hits)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached response should be byte-identical to the rendered one")
	}

	// Different width renders under a different key.
	env.do(t, http.MethodGet, "/p/home?w=768", nil)
	if env.cache.sets != 2 {
		t.Errorf("width change should miss and re-render, sets = %d", env.cache.sets)
	}
}

func TestLivePageCacheInvalidatedBySave(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/p/home", nil)
	hitsBefore := env.cache.hits

	doc := sync.DefaultDocument(sync.PageHome)
	doc.Meta.Title = "Updated"
	if _, err := env.loader.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	env.do(t, http.MethodGet, "/p/home", nil)
	if env.cache.hits != hitsBefore {
		t.Error("a saved revision should miss the old cache entry")
	}
}

func TestCanvas(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/edit/home", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte("draggable")) {
		t.Error("canvas should carry drag affordances")
	}
	if env.cache.sets != 0 {
		t.Error("canvas output must never be cached")
	}

	_, selected := env.do(t, http.MethodGet, "/edit/home?selected=hero-main", nil)
	if bytes.Count(selected, []byte("gp-selected")) != 1 {
		t.Error("selected query should mark exactly one section")
	}
}

func TestGetPage(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/pages/home", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	doc := decodeDoc(t, body)
	if doc.ID != "home" {
		t.Errorf("doc.ID = %q, want home", doc.ID)
	}
	if len(doc.Sections) != 3 {
		t.Errorf("default home has %d sections, want 3", len(doc.Sections))
	}
}

func TestPutPage(t *testing.T) {
	env := newTestEnv(t)

	doc := sync.DefaultDocument(sync.PageHome)
	doc.Meta.Title = "First save"

	resp, body := env.do(t, http.MethodPut, "/api/pages/home", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	stored := decodeDoc(t, body)
	if stored.Rev != 1 {
		t.Errorf("first save Rev = %d, want 1", stored.Rev)
	}

	// Replaying the same base revision is a conflict.
	resp, body = env.do(t, http.MethodPut, "/api/pages/home", doc)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stale save status = %d, want 409\nbody: %s", resp.StatusCode, body)
	}
	var errResp map[string]string
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp["code"] != "CONFLICT" {
		t.Errorf("error code = %q, want CONFLICT", errResp["code"])
	}

	// force=1 overwrites regardless of revision.
	resp, body = env.do(t, http.MethodPut, "/api/pages/home?force=1", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forced save status = %d, want 200", resp.StatusCode)
	}
	if stored = decodeDoc(t, body); stored.Rev != 2 {
		t.Errorf("forced save Rev = %d, want 2", stored.Rev)
	}
}

func TestPutPageIDMismatch(t *testing.T) {
	env := newTestEnv(t)
	doc := sync.DefaultDocument(sync.PagePricing)
	resp, _ := env.do(t, http.MethodPut, "/api/pages/home", doc)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPutPageMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/pages/home", strings.NewReader(`{"id":`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAddSection(t *testing.T) {
	env := newTestEnv(t)

	at := 1
	resp, body := env.do(t, http.MethodPost, "/api/pages/home/sections", map[string]any{
		"type": "RichText",
		"at":   at,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	doc := decodeDoc(t, body)
	if len(doc.Sections) != 4 {
		t.Fatalf("sections = %d, want 4", len(doc.Sections))
	}
	if doc.Sections[at].Type != "RichText" {
		t.Errorf("section at %d has type %s, want RichText", at, doc.Sections[at].Type)
	}
	if doc.Rev != 1 {
		t.Errorf("mutation should commit a new revision, Rev = %d", doc.Rev)
	}
}

func TestAddSectionWithoutIndexAppends(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/pages/home/sections", map[string]any{
		"type": "ButtonRow",
	})
	doc := decodeDoc(t, body)
	if last := doc.Sections[len(doc.Sections)-1]; last.Type != "ButtonRow" {
		t.Errorf("last section type = %s, want ButtonRow", last.Type)
	}
}

func TestAddSectionUnknownType(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/pages/home/sections", map[string]any{
		"type": "Carousel",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", resp.StatusCode, body)
	}
	var errResp map[string]string
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp["code"] != "UNKNOWN_SECTION_TYPE" {
		t.Errorf("error code = %q, want UNKNOWN_SECTION_TYPE", errResp["code"])
	}
}

func TestDeleteSection(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodDelete, "/api/pages/home/sections/spacer-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	doc := decodeDoc(t, body)
	if len(doc.Sections) != 2 {
		t.Errorf("sections = %d, want 2", len(doc.Sections))
	}

	resp, _ = env.do(t, http.MethodDelete, "/api/pages/home/sections/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown section status = %d, want 404", resp.StatusCode)
	}
}

func TestMoveSection(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/pages/home/sections/spacer-1/move", map[string]any{
		"direction": "up",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	doc := decodeDoc(t, body)
	if doc.Sections[0].ID != "spacer-1" {
		t.Errorf("first section = %s, want spacer-1", doc.Sections[0].ID)
	}

	// Unknown direction is rejected before touching the document.
	resp, _ = env.do(t, http.MethodPost, "/api/pages/home/sections/spacer-1/move", map[string]any{
		"direction": "sideways",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad direction status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateProp(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPatch, "/api/pages/home/sections/hero-main/props", map[string]any{
		"name":  "headline",
		"value": "New headline",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	doc := decodeDoc(t, body)
	if got := doc.Sections[0].Props["headline"]; got != "New headline" {
		t.Errorf("headline = %v, want New headline", got)
	}

	resp, _ = env.do(t, http.MethodPatch, "/api/pages/home/sections/hero-main/props", map[string]any{
		"name":  "bad name",
		"value": "x",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid prop name status = %d, want 400", resp.StatusCode)
	}
}

func TestApplyLayout(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPatch, "/api/pages/home/layout", map[string]page.Layout{
		"hero-main": {X: 2, Y: 0, W: 8, H: 5},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	doc := decodeDoc(t, body)
	got := doc.Sections[0].Layout
	if got == nil || got.X != 2 || got.W != 8 || got.H != 5 {
		t.Errorf("hero layout = %+v, want {2 0 8 5}", got)
	}
}

func TestRegistryEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/registry", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decode registry: %v", err)
	}
	if len(entries) != 7 {
		t.Errorf("registry entries = %d, want 7", len(entries))
	}
}

func TestWatchStreamsSnapshotAndUpdates(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/api/pages/home/watch", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("watch request: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, page.Document) {
		t.Helper()
		var event string
		var doc page.Document
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &doc); err != nil {
					t.Fatalf("decode event data: %v", err)
				}
			case line == "":
				if event != "" {
					return event, doc
				}
			}
		}
	}

	event, doc := readEvent()
	if event != "snapshot" {
		t.Fatalf("first event = %q, want snapshot", event)
	}
	if doc.ID != "home" {
		t.Errorf("snapshot doc.ID = %q, want home", doc.ID)
	}

	// A committed write shows up as an update event.
	updated := sync.DefaultDocument(sync.PageHome)
	updated.Meta.Title = "Streamed"
	if _, err := env.loader.Save(context.Background(), updated); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	event, doc = readEvent()
	if event != "update" {
		t.Fatalf("second event = %q, want update", event)
	}
	if doc.Meta.Title != "Streamed" {
		t.Errorf("update title = %q, want Streamed", doc.Meta.Title)
	}
	if doc.Rev != 1 {
		t.Errorf("update Rev = %d, want 1", doc.Rev)
	}
}

func TestWriteErrorMapsCodes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   any
		want   int
	}{
		{http.MethodDelete, "/api/pages/home/sections/ghost", nil, http.StatusNotFound},
		{http.MethodPost, "/api/pages/home/sections", map[string]any{"type": "Nope"}, http.StatusBadRequest},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			resp, _ := env.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
