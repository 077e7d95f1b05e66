package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLatencyHandlerRecordsStatus(t *testing.T) {
	h := LatencyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	before := testutil.CollectAndCount(requestLatency)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusTeapot)
	}
	if after := testutil.CollectAndCount(requestLatency); after != before+1 {
		t.Errorf("got %d latency series, want %d", after, before+1)
	}
}

func TestSetStale(t *testing.T) {
	SetStale("wind", true)
	if got := testutil.ToFloat64(stale.WithLabelValues("wind")); got != 1 {
		t.Errorf("stale gauge = %v, want 1", got)
	}
	SetStale("wind", false)
	if got := testutil.ToFloat64(stale.WithLabelValues("wind")); got != 0 {
		t.Errorf("stale gauge = %v, want 0", got)
	}
}

func TestObservePull(t *testing.T) {
	c := pulls.WithLabelValues("wind", "ok")
	before := testutil.ToFloat64(c)
	ObservePull("wind", "ok")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("pull counter = %v, want %v", got, before+1)
	}
}
