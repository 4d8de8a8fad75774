package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/hopalong/internal/clock"
	"github.com/san-kum/hopalong/internal/engine"
	"github.com/san-kum/hopalong/internal/export"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

// inline runs work on the calling goroutine.
type inline struct{}

func (inline) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

func newTestServer(t *testing.T) (*engine.Engine, http.Handler) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Levels, cfg.Subsets, cfg.PointsPerSubset = 2, 2, 32
	cfg.Seed = 11
	eng, err := engine.New(cfg, orbit.DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}
	return eng, New(eng, inline{}).Handler()
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestGetSettings(t *testing.T) {
	_, h := newTestServer(t)
	rec := serve(h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[settings.Snapshot](t, rec); got != settings.Defaults() {
		t.Errorf("settings = %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"rotationSpeed"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPatchSettings(t *testing.T) {
	eng, h := newTestServer(t)
	var notified int
	eng.OnSettingsChange(func(settings.Snapshot) { notified++ })

	rec := serve(h, http.MethodPatch, "/api/settings", `{"speed": 50, "pointerLocked": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[settings.Snapshot](t, rec)
	if got.Speed != settings.MaxSpeed || !got.PointerLocked {
		t.Errorf("settings = %+v", got)
	}
	if got.RotationSpeed != settings.DefaultRotationSpeed {
		t.Error("untouched field changed")
	}
	if notified != 1 {
		t.Errorf("listener called %d times", notified)
	}
}

func TestPatchSettings_BadBody(t *testing.T) {
	_, h := newTestServer(t)
	for _, body := range []string{`{"speed": "fast"}`, `{"warp": 9}`, `not json`} {
		if rec := serve(h, http.MethodPatch, "/api/settings", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
}

func TestCurrentParams(t *testing.T) {
	eng, h := newTestServer(t)
	rec := serve(h, http.MethodGet, "/api/params/current", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want, _ := eng.CurrentParams()
	if got := decode[orbit.Params](t, rec); got.ID != want.ID {
		t.Errorf("id = %s, want %s", got.ID, want.ID)
	}
}

func TestHistoryAndRating(t *testing.T) {
	eng, h := newTestServer(t)
	if _, err := eng.Regenerate(); err != nil {
		t.Fatal(err)
	}

	rec := serve(h, http.MethodGet, "/api/params/history", "")
	hist := decode[export.HistoryDocument](t, rec)
	if len(hist.Entries) != 2 {
		t.Fatalf("entries = %d", len(hist.Entries))
	}

	id := hist.Entries[1].Params.ID
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"ok", "/api/params/" + id + "/rating", `{"rating": 5}`, http.StatusNoContent},
		{"out of range", "/api/params/" + id + "/rating", `{"rating": 9}`, http.StatusBadRequest},
		{"unknown id", "/api/params/nope/rating", `{"rating": 2}`, http.StatusNotFound},
		{"bad body", "/api/params/" + id + "/rating", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(h, http.MethodPost, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if got := eng.History()[1].Rating; got != 5 {
		t.Errorf("rating = %d", got)
	}
}

func TestCommands(t *testing.T) {
	eng, h := newTestServer(t)

	rec := serve(h, http.MethodPost, "/api/commands/speed-up", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if eng.Settings().Speed != settings.DefaultSpeed+settings.SpeedStep {
		t.Errorf("speed = %v", eng.Settings().Speed)
	}

	if rec := serve(h, http.MethodPost, "/api/commands/warp", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown command status = %d", rec.Code)
	}

	names := decode[[]string](t, serve(h, http.MethodGet, "/api/commands", ""))
	if len(names) != len(engine.CommandNames()) {
		t.Errorf("names = %v", names)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t)
	if rec := serve(h, http.MethodDelete, "/api/settings", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	eng, h := newTestServer(t)
	eng.Frame()
	if _, err := eng.Regenerate(); err != nil {
		t.Fatal(err)
	}

	got := decode[statsResponse](t, serve(h, http.MethodGet, "/api/stats", ""))
	if got.Frames != 1 || got.Regenerations != 1 || got.Groups != 4 || got.Generation != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestOrbitEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	doc := decode[export.OrbitDocument](t, serve(h, http.MethodGet, "/api/orbit?points=true", ""))
	if doc.NumPoints != 64 || len(doc.Subsets) != 2 {
		t.Errorf("doc points = %d subsets = %d", doc.NumPoints, len(doc.Subsets))
	}

	rec := serve(h, http.MethodGet, "/api/orbit.svg", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("status = %d type = %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if strings.Count(rec.Body.String(), "<circle") != 64 {
		t.Error("svg missing points")
	}
}

func TestCORS(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/settings", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestStoppedScheduler(t *testing.T) {
	eng, _ := newTestServer(t)
	sched := eng.Scheduler(time.Second, time.Second)
	sched.Stop()
	h := New(eng, sched).Handler()

	rec := serve(h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != clock.ErrStopped.Error() {
		t.Errorf("error = %q", got.Error)
	}
}

func TestThroughRunningScheduler(t *testing.T) {
	eng, _ := newTestServer(t)
	sched := eng.Scheduler(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()
	defer func() {
		sched.Stop()
		<-done
	}()

	h := New(eng, sched).Handler()
	rec := serve(h, http.MethodPost, "/api/commands/toggle-pointer-lock", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !decode[settings.Snapshot](t, rec).PointerLocked {
		t.Error("lock not applied")
	}
}
