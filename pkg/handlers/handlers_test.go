package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/spencer-p/tidedash/pkg/dashboard"
	"github.com/spencer-p/tidedash/pkg/summary"
	"github.com/spencer-p/tidedash/pkg/tides"
)

type fakeSource struct {
	mu   sync.Mutex
	snap dashboard.Snapshot
}

func (f *fakeSource) Snapshot() dashboard.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSource) set(s dashboard.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
}

var snap = dashboard.Snapshot{
	RunID: "run-1",
	Latest: summary.Record{
		summary.Time:       "06/01/2021 12:00 PM",
		summary.WaterLevel: "2.345 ft Above MLLW",
	},
	Tides: []tides.Row{
		{Time: "8:29 AM", Tide: "High", Height: "4.10 ft"},
		{Time: "2:41 PM", Tide: "Low", Height: "0.52 ft"},
	},
	Artifacts: []string{"met.gif", "water_level.gif"},
}

func newServer(t *testing.T, prefix string, src Source) (*httptest.Server, string) {
	t.Helper()
	assets := t.TempDir()
	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(prefix).Subrouter()
	Register(s, prefix, assets, src)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, assets
}

func get(t *testing.T, url string) (int, string, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestTides(t *testing.T) {
	srv, _ := newServer(t, "/", &fakeSource{snap: snap})

	for _, tc := range []struct {
		name, query, contentType, want string
	}{{
		name:        "text",
		contentType: "text/plain; charset=utf-8",
		want:        "High tide at 8:29 AM, 4.10 ft\nLow tide at 2:41 PM, 0.52 ft",
	}, {
		name:        "json",
		query:       "?o=json",
		contentType: "application/json",
		want:        `[{"time":"8:29 AM","tide":"High","height":"4.10 ft"},{"time":"2:41 PM","tide":"Low","height":"0.52 ft"}]`,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			// the second request is served from the cache
			for i := 0; i < 2; i++ {
				code, ct, body := get(t, srv.URL+"/api/v1/tides"+tc.query)
				if code != http.StatusOK {
					t.Fatalf("status = %d, want 200", code)
				}
				if ct != tc.contentType {
					t.Errorf("Content-Type = %q, want %q", ct, tc.contentType)
				}
				if diff := cmp.Diff(tc.want, body); diff != "" {
					t.Errorf("request %d body (-want,+got): %s", i, diff)
				}
			}
		})
	}
}

func TestTidesFollowCycle(t *testing.T) {
	src := &fakeSource{snap: snap}
	srv, _ := newServer(t, "/", src)

	if _, _, body := get(t, srv.URL+"/api/v1/tides"); !strings.HasPrefix(body, "High") {
		t.Fatalf("body = %q", body)
	}

	next := snap
	next.RunID = "run-2"
	next.Tides = []tides.Row{{Time: "9:12 PM", Tide: "High", Height: "3.90 ft"}}
	src.set(next)
	if _, _, body := get(t, srv.URL+"/api/v1/tides"); body != "High tide at 9:12 PM, 3.90 ft" {
		t.Errorf("body after a new cycle = %q", body)
	}
}

func TestBeforeFirstCycle(t *testing.T) {
	srv, _ := newServer(t, "/", &fakeSource{})

	for _, path := range []string{"/api/v1/latest", "/api/v1/tides"} {
		if code, _, _ := get(t, srv.URL+path); code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, code)
		}
	}

	code, _, body := get(t, srv.URL+"/api/v1/rotation")
	if code != http.StatusOK {
		t.Fatalf("rotation status = %d", code)
	}
	if want := `{"run_id":"","urls":[]}` + "\n"; body != want {
		t.Errorf("rotation = %q, want %q", body, want)
	}
}

func TestLatest(t *testing.T) {
	srv, _ := newServer(t, "/", &fakeSource{snap: snap})

	_, ct, body := get(t, srv.URL+"/api/v1/latest")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got summary.Record
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("bad JSON %q: %v", body, err)
	}
	if diff := cmp.Diff(snap.Latest, got); diff != "" {
		t.Errorf("latest (-want,+got): %s", diff)
	}
}

func TestIndex(t *testing.T) {
	srv, _ := newServer(t, "/", &fakeSource{snap: snap})

	_, _, body := get(t, srv.URL+"/")
	for _, want := range []string{
		"Local Time: 06/01/2021 12:00 PM\n",
		"Water Level: 2.345 ft Above MLLW\n",
		"Low tide at 2:41 PM, 0.52 ft\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index is missing %q:\n%s", want, body)
		}
	}
}

func TestStaticUnderPrefix(t *testing.T) {
	srv, assets := newServer(t, "/tide/", &fakeSource{snap: snap})
	if err := os.WriteFile(filepath.Join(assets, "met.gif"), []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, body := get(t, srv.URL+"/tide/static/met.gif")
	if code != http.StatusOK || body != "GIF89a" {
		t.Errorf("GET static = %d %q, want the artifact", code, body)
	}

	_, _, body = get(t, srv.URL+"/tide/api/v1/rotation")
	var rot rotation
	if err := json.Unmarshal([]byte(body), &rot); err != nil {
		t.Fatalf("bad JSON %q: %v", body, err)
	}
	want := []string{"/tide/static/met.gif", "/tide/static/water_level.gif"}
	if diff := cmp.Diff(want, rot.URLs); diff != "" {
		t.Errorf("rotation (-want,+got): %s", diff)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newServer(t, "/", &fakeSource{snap: snap})
	get(t, srv.URL+"/api/v1/latest")

	code, _, body := get(t, srv.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("metrics status = %d", code)
	}
	if !strings.Contains(body, "tidedash_request_latency") {
		t.Error("metrics are missing the request latency histogram")
	}
}
