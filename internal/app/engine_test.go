package app_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Krminfinity/hotel-recommender/internal/app"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

var shinjuku = domain.Station{
	Name: "新宿駅", NormalizedName: "新宿",
	Lat: 35.6896, Lon: 139.7006, PlaceID: "pid-shinjuku",
}

func candidate(id string, price int, distM float64) app.Candidate {
	return app.Candidate{
		Hotel: domain.Hotel{
			ID:         id,
			Name:       "ホテル" + id,
			Lat:        shinjuku.Lat,
			Lon:        shinjuku.Lon,
			PriceTotal: price,
			BookingURL: "https://travel.rakuten.co.jp/HOTEL?f_no=" + id,
		},
		Station:   shinjuku,
		DistanceM: distM,
	}
}

func TestRank_HardFilter(t *testing.T) {
	e := app.NewEngine(3)
	cands := []app.Candidate{
		candidate("1", 9800, 300),
		candidate("2", 15000, 100), // over ceiling
		candidate("3", 0, 100),     // invalid price
		candidate("4", -500, 100),  // invalid price
		candidate("5", 11000, 2000), // beyond walking distance
	}

	out := e.Rank(cands, 12000, app.Balanced)
	if len(out) != 1 || out[0].HotelID != "1" {
		t.Fatalf("expected only hotel 1 to pass, got %+v", out)
	}
	for _, r := range out {
		if r.PriceTotal > 12000 {
			t.Fatalf("hotel %s exceeds ceiling: %d", r.HotelID, r.PriceTotal)
		}
	}
}

func TestRank_TopNBound(t *testing.T) {
	e := app.NewEngine(3)
	var cands []app.Candidate
	for i := 0; i < 20; i++ {
		cands = append(cands, candidate(fmt.Sprintf("%02d", i), 8000+i*100, float64(200+i*10)))
	}
	out := e.Rank(cands, 12000, app.Balanced)
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
}

func TestRank_FewerSurvivorsThanBound(t *testing.T) {
	e := app.NewEngine(3)
	out := e.Rank([]app.Candidate{candidate("1", 9000, 200)}, 12000, app.Balanced)
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}

	// empty input is a valid outcome, not an error
	if out := e.Rank(nil, 12000, app.Balanced); len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}

func TestRank_Deterministic(t *testing.T) {
	e := app.NewEngine(3)
	cands := []app.Candidate{
		// identical score inputs, distinct IDs
		candidate("b", 9000, 300),
		candidate("a", 9000, 300),
		candidate("c", 9000, 300),
	}

	first := e.Rank(cands, 12000, app.Balanced)
	for i := 0; i < 10; i++ {
		again := e.Rank(cands, 12000, app.Balanced)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ordering not deterministic: %+v vs %+v", first, again)
		}
	}
	// ties break by hotel ID ascending
	if first[0].HotelID != "a" || first[1].HotelID != "b" || first[2].HotelID != "c" {
		t.Fatalf("unexpected tie-break order: %+v", first)
	}
}

func TestRank_DedupKeepsNearestInstance(t *testing.T) {
	e := app.NewEngine(3)
	near := candidate("1", 9000, 150)
	far := candidate("1", 9000, 700)

	out := e.Rank([]app.Candidate{far, near}, 12000, app.Balanced)
	if len(out) != 1 {
		t.Fatalf("expected one deduped result, got %d", len(out))
	}
	if out[0].DistanceM != 150 {
		t.Fatalf("expected nearest instance kept, got %dm", out[0].DistanceM)
	}
}

func TestRank_CancellableBreaksNearTies(t *testing.T) {
	e := app.NewEngine(3)
	flexible := candidate("flex", 9000, 300)
	flexible.Hotel.Cancellable = domain.CancelYes
	rigid := candidate("rigid", 9000, 300)
	rigid.Hotel.Cancellable = domain.CancelNo

	out := e.Rank([]app.Candidate{rigid, flexible}, 12000, app.Balanced)
	if len(out) != 2 || out[0].HotelID != "flex" {
		t.Fatalf("expected cancellable hotel first, got %+v", out)
	}
}

func TestRank_CloserBeatsFarther(t *testing.T) {
	e := app.NewEngine(3)
	out := e.Rank([]app.Candidate{
		candidate("far", 9000, 1000),
		candidate("near", 9000, 150),
	}, 12000, app.Balanced)
	if out[0].HotelID != "near" {
		t.Fatalf("expected nearer hotel ranked first, got %+v", out)
	}
}

func TestRank_OutputShape(t *testing.T) {
	e := app.NewEngine(3)
	out := e.Rank([]app.Candidate{candidate("1", 9800, 320)}, 12000, app.Balanced)
	if len(out) != 1 {
		t.Fatalf("expected one result")
	}
	r := out[0]
	if r.DistanceText != "320m" {
		t.Errorf("distance text: %q", r.DistanceText)
	}
	if !strings.Contains(r.Reason, "徒歩4分") || !strings.Contains(r.Reason, "¥9,800") {
		t.Errorf("reason should carry distance and price facts: %q", r.Reason)
	}
	if r.BookingURL == "" {
		t.Error("booking URL must not be empty")
	}
}

func TestCriteriaFor(t *testing.T) {
	cases := []struct {
		price    int
		stations int
		want     app.Criteria
	}{
		{6000, 2, app.BudgetFocused},
		{18000, 2, app.ComfortFocused},
		{12000, 1, app.DistanceFocused},
		{12000, 2, app.Balanced},
	}
	for _, c := range cases {
		if got := app.CriteriaFor(c.price, c.stations); got != c.want {
			t.Errorf("CriteriaFor(%d, %d) = %v, want %v", c.price, c.stations, got, c.want)
		}
	}
}
