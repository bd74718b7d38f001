// Package app holds the recommendation pipeline: date and station
// resolution, candidate scoring, and the request-scoped orchestration that
// ties the provider clients and caches together.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

const (
	maxStations = 10
	minPrice    = 1000
	maxPrice    = 100000

	// stations within this distance of each other are the same physical
	// station reached via different input names
	stationMergeM = 50
)

// Service orchestrates one recommendation request: resolve date, resolve
// stations in parallel, dedup, fetch hotels per unique station in parallel,
// rank, shape. The cache and the hotel provider's rate limiter are
// process-wide and shared across concurrent requests.
type Service struct {
	stations domain.StationProvider
	hotels   domain.HotelProvider
	cache    domain.Cache
	engine   *Engine

	stationTTL time.Duration
	hotelTTL   time.Duration

	now func() time.Time
}

type Option func(*Service)

// WithClock injects "now", used by tests to pin date resolution.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(sp domain.StationProvider, hp domain.HotelProvider, c domain.Cache,
	stationTTL, hotelTTL time.Duration, maxResults int, opts ...Option) *Service {
	s := &Service{
		stations:   sp,
		hotels:     hp,
		cache:      c,
		engine:     NewEngine(maxResults),
		stationTTL: stationTTL,
		hotelTTL:   hotelTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Suggest runs the full pipeline. Individual station failures degrade
// gracefully; the request as a whole fails only on invalid input or when no
// station resolves at all.
func (s *Service) Suggest(ctx context.Context, req domain.SuggestionRequest) (domain.Suggestion, error) {
	names, err := validateStations(req.Stations)
	if err != nil {
		return domain.Suggestion{}, err
	}
	if req.PriceMax < minPrice || req.PriceMax > maxPrice {
		return domain.Suggestion{}, domain.Validationf(
			"price_max must be between %d and %d, got %d", minPrice, maxPrice, req.PriceMax)
	}

	checkIn, err := ResolveDate(req.Date, req.Weekday, s.now())
	if err != nil {
		return domain.Suggestion{}, err
	}

	resolved, errs := s.resolveStations(ctx, names)
	if len(resolved) == 0 {
		return domain.Suggestion{}, &domain.AggregateError{Errs: errs}
	}
	unique := dedupStations(resolved)

	candidates := s.fetchCandidates(ctx, unique, req.PriceMax, checkIn)

	criteria := CriteriaFor(req.PriceMax, len(names))
	results := s.engine.Rank(candidates, req.PriceMax, criteria)

	log.Info().
		Int("stations_in", len(names)).
		Int("stations_unique", len(unique)).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Str("date", checkIn.Format("2006-01-02")).
		Msg("suggestion computed")

	return domain.Suggestion{
		ResolvedDate: checkIn.Format("2006-01-02"),
		Results:      results,
	}, nil
}

func validateStations(in []string) ([]string, error) {
	names := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		n, err := domain.NormalizeStationName(raw)
		if err != nil {
			continue // blank entries are dropped, not fatal
		}
		if _, dup := seen[n]; dup {
			return nil, domain.Validationf("duplicate station name %q", raw)
		}
		seen[n] = struct{}{}
		names = append(names, raw)
	}
	if len(names) == 0 {
		return nil, domain.Validationf("at least one non-empty station name is required")
	}
	if len(names) > maxStations {
		return nil, domain.Validationf("at most %d stations are allowed, got %d", maxStations, len(names))
	}
	return names, nil
}

// resolveStations fans out one lookup per input name through the 24h cache.
// Results land in per-name slots and are flattened in input order, so the
// downstream dedup sees the same sequence no matter which lookup finishes
// first. Failures are collected, not fatal; the caller decides whether the
// whole set failing is an aggregate error.
func (s *Service) resolveStations(ctx context.Context, names []string) ([]domain.Station, []error) {
	results := make([][]domain.Station, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			stations, err := s.resolveStation(gctx, name)
			if err != nil {
				log.Warn().Err(err).Str("station", name).Msg("station resolution failed")
				errs[i] = err
				return nil
			}
			results[i] = stations
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Station
	for _, r := range results {
		out = append(out, r...)
	}
	var errList []error
	for _, err := range errs {
		if err != nil {
			errList = append(errList, err)
		}
	}
	return out, errList
}

func (s *Service) resolveStation(ctx context.Context, name string) ([]domain.Station, error) {
	normalized, err := domain.NormalizeStationName(name)
	if err != nil {
		return nil, err
	}
	key := "station:" + normalized

	var cached []domain.Station
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	stations, err := s.stations.Resolve(ctx, name)
	if err != nil {
		return nil, err // failed fetches are never cached
	}
	_ = s.cache.Set(ctx, key, stations, int(s.stationTTL.Seconds()))
	return stations, nil
}

// dedupStations merges stations sharing a place ID, then anything within
// stationMergeM of an already-kept station. Input order is preserved so the
// merge is deterministic.
func dedupStations(stations []domain.Station) []domain.Station {
	seenIDs := make(map[string]struct{}, len(stations))
	out := make([]domain.Station, 0, len(stations))

	for _, st := range stations {
		if st.PlaceID != "" {
			if _, dup := seenIDs[st.PlaceID]; dup {
				continue
			}
		}
		tooClose := false
		for _, kept := range out {
			if Haversine(st.Lat, st.Lon, kept.Lat, kept.Lon) < stationMergeM {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		out = append(out, st)
		if st.PlaceID != "" {
			seenIDs[st.PlaceID] = struct{}{}
		}
	}
	return out
}

// fetchCandidates fans out one hotel search per unique station through the
// 15min cache. A station whose search fails contributes zero candidates;
// the rest still count.
func (s *Service) fetchCandidates(ctx context.Context, stations []domain.Station, priceMax int, checkIn time.Time) []Candidate {
	var (
		mu  sync.Mutex
		out []Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, st := range stations {
		st := st
		g.Go(func() error {
			hotels, err := s.searchHotels(gctx, st, priceMax, checkIn)
			if err != nil {
				log.Warn().Err(err).Str("station", st.Name).Msg("hotel search failed, degrading")
				return nil
			}
			local := make([]Candidate, 0, len(hotels))
			for _, h := range hotels {
				local = append(local, Candidate{
					Hotel:     h,
					Station:   st,
					DistanceM: Haversine(st.Lat, st.Lon, h.Lat, h.Lon),
				})
			}
			mu.Lock()
			out = append(out, local...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) searchHotels(ctx context.Context, st domain.Station, priceMax int, checkIn time.Time) ([]domain.Hotel, error) {
	key := fmt.Sprintf("hotels:%s:%d:%s", st.ID(), priceMax, checkIn.Format("2006-01-02"))

	var cached []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	hotels, err := s.hotels.Search(ctx, st, priceMax, checkIn)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, hotels, int(s.hotelTTL.Seconds()))
	return hotels, nil
}
