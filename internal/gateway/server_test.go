package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SebastienMelki/artwall/internal/gallery"
)

// fakeGallery is a scripted gallery.Controller.
type fakeGallery struct {
	searchFn func(query, media string) ([]gallery.CandidateID, error)
	view     gallery.View
	playErr  error
	pauseErr error
	viewErr  error

	gotQuery string
	gotMedia string
}

func (f *fakeGallery) Search(_ context.Context, query, media string) ([]gallery.CandidateID, error) {
	f.gotQuery, f.gotMedia = query, media
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(query, media)
}

func (f *fakeGallery) Play(context.Context) (gallery.View, error)  { return f.view, f.playErr }
func (f *fakeGallery) Pause(context.Context) (gallery.View, error) { return f.view, f.pauseErr }
func (f *fakeGallery) View(context.Context) (gallery.View, error)  { return f.view, f.viewErr }

type fakeChecker struct{ err error }

func (c fakeChecker) HealthCheck(context.Context) error { return c.err }

func newTestServer(t *testing.T, g *fakeGallery, checks map[string]HealthChecker) *Server {
	t.Helper()
	cfg := Config{MaxBodyBytes: 1024}
	s, err := NewServer(cfg, Deps{
		Gallery:      g,
		MediaTypes:   []string{"movie", "music"},
		DefaultMedia: "music",
		Checks:       checks,
	}, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return v
}

func TestNewServer_RequiresGallery(t *testing.T) {
	if _, err := NewServer(Config{}, Deps{}, nil); !errors.Is(err, ErrGalleryRequired) {
		t.Errorf("NewServer() error = %v, want ErrGalleryRequired", err)
	}
}

func TestServer_Search(t *testing.T) {
	g := &fakeGallery{searchFn: func(query, _ string) ([]gallery.CandidateID, error) {
		return []gallery.CandidateID{"https://is1.example/a.jpg", "https://is1.example/b.jpg"}, nil
	}}
	s := newTestServer(t, g, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/search", `{"query":"daft punk"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	resp := decode[SearchResponse](t, rec)
	if resp.Query != "daft punk" || resp.Media != "music" || len(resp.Candidates) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if g.gotMedia != "music" {
		t.Errorf("gallery media = %q, want default music", g.gotMedia)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServer_SearchErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		found      int
		wantStatus int
		wantKind   gallery.Kind
	}{
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"query":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"query":"x","limit":5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing query",
			body:       `{"media":"movie"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too large",
			body:       `{"query":"` + strings.Repeat("a", 2048) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "invalid media",
			body:       `{"query":"x","media":"vinyl"}`,
			err:        gallery.ErrInvalidQuery,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "insufficient results",
			body:       `{"query":"rare"}`,
			err:        &gallery.Error{Kind: gallery.KindInsufficientResults, Query: "rare", Message: "7 distinct results found, but 21 or more are needed."},
			found:      7,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   gallery.KindInsufficientResults,
		},
		{
			name:       "transport failure",
			body:       `{"query":"down"}`,
			err:        &gallery.Error{Kind: gallery.KindTransportFailure, Query: "down", Message: "status 503"},
			wantStatus: http.StatusBadGateway,
			wantKind:   gallery.KindTransportFailure,
		},
		{
			name:       "superseded",
			body:       `{"query":"old"}`,
			err:        &gallery.Error{Kind: gallery.KindCancelled, Query: "old", Message: "superseded"},
			wantStatus: http.StatusConflict,
			wantKind:   gallery.KindCancelled,
		},
		{
			name:       "not running",
			body:       `{"query":"x"}`,
			err:        gallery.ErrNotRunning,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGallery{searchFn: func(query, _ string) ([]gallery.CandidateID, error) {
				return make([]gallery.CandidateID, tt.found), tt.err
			}}
			s := newTestServer(t, g, nil)

			rec := do(t, s, http.MethodPost, "/api/v1/search", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Error == "" || resp.RequestID == "" {
				t.Errorf("error response = %+v", resp)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if tt.found > 0 && (resp.Found == nil || *resp.Found != tt.found) {
				t.Errorf("found = %v, want %d", resp.Found, tt.found)
			}
		})
	}
}

func TestServer_PlayPause(t *testing.T) {
	g := &fakeGallery{view: gallery.View{State: gallery.StateRotating, Query: "q", CanRotate: true}}
	s := newTestServer(t, g, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/play", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("play status = %d", rec.Code)
	}
	view := decode[map[string]any](t, rec)
	if view["state"] != "rotating" || view["can_rotate"] != true {
		t.Errorf("play view = %v", view)
	}

	g.pauseErr = errors.Join(gallery.ErrInvalidTransition, errors.New("cannot pause while paused"))
	rec = do(t, s, http.MethodPost, "/api/v1/pause", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("pause status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/play", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET play status = %d, want 405", rec.Code)
	}
}

func TestServer_Gallery(t *testing.T) {
	alert := gallery.Alert{Kind: gallery.KindInsufficientResults, Query: "rare", Message: "7 distinct results found, but 21 or more are needed."}
	g := &fakeGallery{view: gallery.View{
		State:    gallery.StateError,
		Query:    "daft punk",
		PoolSize: 5,
		Slots:    []gallery.Slot{{ID: "https://is1.example/a.jpg", Occupied: true}, {}},
		Alert:    &alert,
	}}
	s := newTestServer(t, g, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/gallery", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decode[map[string]any](t, rec)
	if view["state"] != "error" || view["query"] != "daft punk" || view["pool_size"] != float64(5) {
		t.Errorf("view = %v", view)
	}
	if a, ok := view["alert"].(map[string]any); !ok || a["kind"] != "insufficient_results" {
		t.Errorf("alert = %v", view["alert"])
	}
	if slots, ok := view["slots"].([]any); !ok || len(slots) != 2 {
		t.Errorf("slots = %v", view["slots"])
	}
}

func TestServer_MediaTypes(t *testing.T) {
	s := newTestServer(t, &fakeGallery{}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/media-types", "")
	resp := decode[MediaTypesResponse](t, rec)
	if len(resp.MediaTypes) != 2 || resp.Default != "music" {
		t.Errorf("response = %+v", resp)
	}
}

func TestServer_HealthAndReady(t *testing.T) {
	g := &fakeGallery{}
	checks := map[string]HealthChecker{"nats": fakeChecker{}}
	s := newTestServer(t, g, checks)

	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d: %s", rec.Code, rec.Body.String())
	}

	checks["nats"] = fakeChecker{err: errors.New("NATS is not connected")}
	rec := do(t, s, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status with failing check = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NATS is not connected") {
		t.Errorf("ready body = %s", rec.Body.String())
	}

	checks["nats"] = fakeChecker{}
	g.viewErr = gallery.ErrNotRunning
	if rec := do(t, s, http.MethodGet, "/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status with stopped gallery = %d, want 503", rec.Code)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeGallery{}, nil)

	if rec := do(t, s, http.MethodGet, "/api/v1/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
