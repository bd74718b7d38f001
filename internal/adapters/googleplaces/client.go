// Package googleplaces resolves station names to coordinates via the Google
// Places Text Search API.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Krminfinity/hotel-recommender/internal/adapters/observability"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
	"github.com/Krminfinity/hotel-recommender/internal/shared"
)

// maxCandidates bounds how many same-named stations one input may resolve to.
const maxCandidates = 3

type Client struct {
	base  string
	hc    *http.Client
	key   string
	rl    *rate.Limiter
	retry shared.RetryPolicy
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("Google Places API key is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base:  base,
		hc:    &http.Client{Timeout: 10 * time.Second},
		key:   key,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
		retry: shared.DefaultRetryPolicy(),
	}, nil
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve finds stations matching name, in provider relevance order. If the
// plain query comes back empty it retries once with an explicit 駅 suffix
// before giving up with a ResolutionError.
func (c *Client) Resolve(ctx context.Context, name string) ([]domain.Station, error) {
	normalized, err := domain.NormalizeStationName(name)
	if err != nil {
		return nil, err
	}

	results, err := c.textSearch(ctx, name)
	if err != nil {
		return nil, &domain.ResolutionError{Station: name, Err: err}
	}
	if len(results.Results) == 0 && !strings.HasSuffix(name, "駅") {
		results, err = c.textSearch(ctx, name+" 駅")
		if err != nil {
			return nil, &domain.ResolutionError{Station: name, Err: err}
		}
	}

	stations := make([]domain.Station, 0, maxCandidates)
	for _, r := range results.Results {
		if r.Name == "" {
			continue
		}
		stations = append(stations, domain.Station{
			Name:           r.Name,
			NormalizedName: normalized,
			Lat:            r.Geometry.Location.Lat,
			Lon:            r.Geometry.Location.Lng,
			PlaceID:        r.PlaceID,
			Address:        r.FormattedAddress,
		})
		if len(stations) == maxCandidates {
			break
		}
	}
	if len(stations) == 0 {
		return nil, &domain.ResolutionError{Station: name}
	}
	return stations, nil
}

func (c *Client) textSearch(ctx context.Context, query string) (*textSearchResponse, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{
		"query":    {query},
		"type":     {"train_station"},
		"language": {"ja"},
		"region":   {"jp"},
		"key":      {c.key},
	}
	u := c.base + "/textsearch/json?" + q.Encode()

	var lastErr error
	for i := 0; i < c.retry.MaxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < c.retry.MaxAttempts-1 && shared.SleepCtx(ctx, c.retry.Backoff(i)) {
				continue
			}
			return nil, &domain.ProviderError{Provider: "googleplaces", Err: lastErr}
		}
		observability.ObserveProvider("googleplaces", "textsearch", resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			out, err := decodeTextSearch(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &domain.ProviderError{Provider: "googleplaces", Err: err}
			}
			switch out.Status {
			case "OK", "ZERO_RESULTS":
				return out, nil
			case "OVER_QUERY_LIMIT":
				lastErr = fmt.Errorf("quota exceeded")
				if i < c.retry.MaxAttempts-1 && shared.SleepCtx(ctx, c.retry.Backoff(i)) {
					continue
				}
				return nil, &domain.ProviderError{Provider: "googleplaces", Err: lastErr}
			default:
				return nil, &domain.ProviderError{
					Provider: "googleplaces",
					Err:      fmt.Errorf("status %s", out.Status),
				}
			}

		case retryableStatus(resp.StatusCode):
			wait := shared.RetryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if wait == 0 {
				wait = c.retry.Backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < c.retry.MaxAttempts-1 && shared.SleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &domain.ProviderError{Provider: "googleplaces", Err: lastErr}

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.ProviderError{
				Provider: "googleplaces",
				Err:      fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
			}
		}
	}

	return nil, &domain.ProviderError{Provider: "googleplaces", Err: lastErr}
}

func decodeTextSearch(r io.Reader) (*textSearchResponse, error) {
	var out textSearchResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		log.Debug().Err(err).Msg("googleplaces: decode failed")
		return nil, err
	}
	return &out, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
