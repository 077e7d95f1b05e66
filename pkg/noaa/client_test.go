package noaa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func serve(status int, body string) (*httptest.Server, *int) {
	hits := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	return srv, hits
}

func testQuery(product Product) Query {
	return Query{
		Product:  product,
		Interval: SixMinute,
		Begin:    time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2021, time.June, 1, 23, 59, 0, 0, time.UTC),
	}
}

func TestPullUnavailable(t *testing.T) {
	table := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"data":[{"t":"2021-06-01 00:00","v":"1.0"}]}`},
		{"not found", http.StatusNotFound, ``},
		{"empty body", http.StatusOK, ``},
		{"error payload", http.StatusOK, `{"error":{"message":"No data was found."}}`},
		{"missing keys", http.StatusOK, `{"metadata":{"id":"9410840"}}`},
		{"empty data", http.StatusOK, `{"data":[]}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"bad time", http.StatusOK, `{"data":[{"t":"yesterday","v":"1.0"}]}`},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := serve(tc.status, tc.body)
			defer srv.Close()
			c := NewClient(ClientOptions{BaseURL: srv.URL, Location: time.UTC})

			tbl, err := c.Pull(context.Background(), testQuery(WaterLevel))
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("got err %v, want ErrUnavailable", err)
			}
			if tbl != nil {
				t.Errorf("got table %v, want nil", tbl)
			}
		})
	}
}

func TestPullTransportFailure(t *testing.T) {
	srv, _ := serve(http.StatusOK, `{}`)
	srv.Close()
	c := NewClient(ClientOptions{BaseURL: srv.URL, Location: time.UTC})
	if _, err := c.Pull(context.Background(), testQuery(Wind)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got err %v, want ErrUnavailable", err)
	}
}

func TestPullTable(t *testing.T) {
	body := `{"metadata":{"id":"9410840"},"data":[
		{"t":"2021-06-01 00:06","s":"5.2","d":"270.00","dr":"W","g":"7.0","f":"0,0"},
		{"t":"2021-05-31 23:54","s":"4.1","d":"265.00","dr":"W","g":"","f":"0,0"},
		{"t":"2021-06-01 00:00","s":"","d":"","dr":"","g":"","f":"1,1"}
	]}`
	srv, hits := serve(http.StatusOK, body)
	defer srv.Close()
	c := NewClient(ClientOptions{BaseURL: srv.URL, Location: time.UTC, CacheTTL: time.Minute})

	tbl, err := c.Pull(context.Background(), testQuery(Wind))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The row before the window is trimmed and empty strings are dropped.
	want := []Row{{
		Time:   time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		Values: map[string]string{"f": "1,1"},
	}, {
		Time:   time.Date(2021, time.June, 1, 0, 6, 0, 0, time.UTC),
		Values: map[string]string{"s": "5.2", "d": "270.00", "dr": "W", "g": "7.0", "f": "0,0"},
	}}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("wrong rows (-want,+got): %s", diff)
	}

	if _, err := c.Pull(context.Background(), testQuery(Wind)); err != nil {
		t.Fatalf("unexpected error on cached pull: %v", err)
	}
	if *hits != 1 {
		t.Errorf("server hit %d times, want 1", *hits)
	}
}

func TestPullPredictions(t *testing.T) {
	body := `{"predictions":[
		{"t":"2021-06-01 04:12","v":"-0.412","type":"L"},
		{"t":"2021-06-01 10:40","v":"4.081","type":"H"}
	]}`
	srv, _ := serve(http.StatusOK, body)
	defer srv.Close()
	c := NewClient(ClientOptions{BaseURL: srv.URL, Location: time.UTC})

	q := testQuery(TidePredictions)
	q.Interval = HiLo
	tbl, err := c.Pull(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := tbl.Predictions()
	want := Predictions{{
		Time:   Time(time.Date(2021, time.June, 1, 4, 12, 0, 0, time.UTC)),
		Height: -0.412,
		Type:   LowTide,
	}, {
		Time:   Time(time.Date(2021, time.June, 1, 10, 40, 0, 0, time.UTC)),
		Height: 4.081,
		Type:   HighTide,
	}}
	if diff := cmp.Diff(fmt.Sprint(want), fmt.Sprint(got)); diff != "" {
		t.Errorf("wrong predictions (-want,+got): %s", diff)
	}
}
