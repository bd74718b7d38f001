package googleplaces_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Krminfinity/hotel-recommender/internal/adapters/googleplaces"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

const okResponse = `{
	"status": "OK",
	"results": [
		{
			"name": "新宿駅",
			"place_id": "pid-shinjuku",
			"formatted_address": "日本、東京都新宿区新宿3丁目",
			"geometry": {"location": {"lat": 35.6896, "lng": 139.7006}}
		},
		{
			"name": "新宿三丁目駅",
			"place_id": "pid-shinjuku-sanchome",
			"formatted_address": "日本、東京都新宿区新宿3丁目",
			"geometry": {"location": {"lat": 35.6909, "lng": 139.7046}}
		},
		{
			"name": "西新宿駅",
			"place_id": "pid-nishi-shinjuku",
			"formatted_address": "日本、東京都新宿区西新宿",
			"geometry": {"location": {"lat": 35.6945, "lng": 139.6926}}
		},
		{
			"name": "新宿御苑前駅",
			"place_id": "pid-gyoenmae",
			"formatted_address": "日本、東京都新宿区新宿1丁目",
			"geometry": {"location": {"lat": 35.6885, "lng": 139.7107}}
		}
	]
}`

func newClient(t *testing.T, base string) *googleplaces.Client {
	t.Helper()
	c, err := googleplaces.New(base, "test-key", 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := googleplaces.New("http://example", "", 10); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestResolve_ParsesAndCapsCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "train_station" {
			t.Errorf("type param: %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "ja" {
			t.Errorf("language param: %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okResponse))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	stations, err := c.Resolve(context.Background(), "新宿")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(stations) != 3 {
		t.Fatalf("expected candidates capped at 3, got %d", len(stations))
	}
	first := stations[0]
	if first.Name != "新宿駅" || first.PlaceID != "pid-shinjuku" {
		t.Errorf("first candidate: %+v", first)
	}
	if first.Lat != 35.6896 || first.Lon != 139.7006 {
		t.Errorf("coordinates: %f,%f", first.Lat, first.Lon)
	}
	if first.NormalizedName != "新宿" {
		t.Errorf("normalized name: %q", first.NormalizedName)
	}
}

func TestResolve_FallbackQueryWithSuffix(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		w.Header().Set("Content-Type", "application/json")
		if q == "恵比寿 駅" {
			w.Write([]byte(`{"status":"OK","results":[{"name":"恵比寿駅","place_id":"pid-ebisu","geometry":{"location":{"lat":35.6467,"lng":139.7101}}}]}`))
			return
		}
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	stations, err := c.Resolve(context.Background(), "恵比寿")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(queries) != 2 || queries[1] != "恵比寿 駅" {
		t.Fatalf("expected fallback query with suffix, got %v", queries)
	}
	if len(stations) != 1 || stations[0].PlaceID != "pid-ebisu" {
		t.Fatalf("stations: %+v", stations)
	}
}

func TestResolve_NoCandidatesIsResolutionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Resolve(context.Background(), "存在しない駅")
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolve_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okResponse))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	stations, err := c.Resolve(context.Background(), "新宿")
	if err != nil {
		t.Fatalf("Resolve after retries: %v", err)
	}
	if len(stations) == 0 {
		t.Fatal("expected stations after retry")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestResolve_ExhaustedRetriesIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Resolve(context.Background(), "新宿")
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected wrapped ProviderError, got %v", err)
	}
}

func TestResolve_NonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":"REQUEST_DENIED"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	if _, err := c.Resolve(context.Background(), "新宿"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt on 403, got %d", calls.Load())
	}
}
