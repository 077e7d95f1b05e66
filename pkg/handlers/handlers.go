package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/tidedash/pkg/cache"
	"github.com/spencer-p/tidedash/pkg/dashboard"
	"github.com/spencer-p/tidedash/pkg/metrics"
	"github.com/spencer-p/tidedash/pkg/tides"
)

// cacheTTL bounds how long a rendered response is reused. Responses are also
// keyed by cycle, so a new cycle is served as soon as it completes.
const cacheTTL = 10 * time.Minute

// Source is the state the handlers serve. *dashboard.Dashboard implements it.
type Source interface {
	Snapshot() dashboard.Snapshot
}

// Register mounts the front-end routes on r. Animations are served from
// assetsDir under static/.
func Register(r *mux.Router, prefix, assetsDir string, src Source) {
	r.Use(metrics.LatencyHandler)

	static := strings.TrimRight(prefix, "/") + "/static/"
	r.Handle("/", makeIndexHandler(src))
	r.Handle("/api/v1/latest", makeServeLatest(src))
	r.Handle("/api/v1/tides", makeServeTides(src))
	r.Handle("/api/v1/rotation", makeServeRotation(prefix, src))
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/static/").Handler(http.StripPrefix(static, http.FileServer(http.Dir(assetsDir))))
}

func makeIndexHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		w.Header().Add("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if snap.RunID == "" {
			fmt.Fprintf(w, "no data yet\n")
			return
		}
		for _, line := range snap.Latest.Lines() {
			fmt.Fprintf(w, "%s\n", line)
		}
		for _, row := range snap.Tides {
			fmt.Fprintf(w, "%s\n", row.String())
		}
	})
}

func makeServeLatest(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		if snap.RunID == "" {
			unavailable(w)
			return
		}
		writeJSON(w, snap.Latest)
	})
}

func makeServeTides(src Source) http.Handler {
	timeCache := cache.NewTimed[[]byte](cacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		if snap.RunID == "" {
			unavailable(w)
			return
		}

		// cache based on cycle, method and URL, which covers the output format
		key := fmt.Sprintf("%s %s %s", snap.RunID, r.Method, r.URL)
		asJSON := r.FormValue("o") == "json"
		contentType := "text/plain; charset=utf-8"
		if asJSON {
			contentType = "application/json"
		}

		if cached, ok := timeCache.Get(key); ok {
			w.Header().Add("Content-Type", contentType)
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		// duplicate the http response onto a buffer for the cache
		var toCache bytes.Buffer
		mw := io.MultiWriter(w, &toCache)

		w.Header().Add("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if asJSON {
			body, err := tides.MarshalJSON(snap.Tides)
			if err != nil {
				log.Printf("Failed to encode JSON result: %+v", err)
				return
			}
			mw.Write(body)
		} else {
			for i, row := range snap.Tides {
				fmt.Fprintf(mw, "%s", row.String())
				if i+1 < len(snap.Tides) {
					fmt.Fprintf(mw, "\n")
				}
			}
		}

		timeCache.Set(key, toCache.Bytes())
		timeCache.Sweep()
	})
}

// rotation is the slideshow order of the animations.
type rotation struct {
	RunID string   `json:"run_id"`
	URLs  []string `json:"urls"`
}

func makeServeRotation(prefix string, src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		rot := rotation{RunID: snap.RunID, URLs: []string{}}
		for _, name := range snap.Artifacts {
			rot.URLs = append(rot.URLs, path.Join(prefix, "static", name))
		}
		writeJSON(w, rot)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode JSON result: %+v", err)
	}
}

func unavailable(w http.ResponseWriter) {
	w.Header().Add("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintf(w, "no cycle has completed yet")
}
