// Package rakuten searches hotel inventory near a coordinate via the Rakuten
// Travel SimpleHotelSearch API.
package rakuten

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Krminfinity/hotel-recommender/internal/adapters/observability"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
	"github.com/Krminfinity/hotel-recommender/internal/shared"
)

const (
	searchPath = "/Travel/SimpleHotelSearch/20170426"
	bookingURL = "https://travel.rakuten.co.jp/HOTEL"

	// API caps hits per page at 30.
	maxHits = 30
)

type Client struct {
	base        string
	hc          *http.Client
	appID       string
	affiliateID string
	radiusM     int
	rl          *rate.Limiter
	retry       shared.RetryPolicy
}

// New builds a client. The rate limiter is owned by the client and therefore
// shared by every concurrent station fan-out in the process; callers beyond
// the limit block until a token frees up.
func New(base, appID, affiliateID string, rps, radiusM int) (*Client, error) {
	if appID == "" {
		return nil, fmt.Errorf("Rakuten application ID is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if radiusM <= 0 {
		radiusM = 800
	}
	return &Client{
		base:        base,
		hc:          &http.Client{Timeout: 30 * time.Second},
		appID:       appID,
		affiliateID: affiliateID,
		radiusM:     radiusM,
		rl:          rate.NewLimiter(rate.Limit(rps), rps),
		retry:       shared.DefaultRetryPolicy(),
	}, nil
}

type searchResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Hotels           []struct {
		Hotel []hotelEntry `json:"hotel"`
	} `json:"hotels"`
}

type hotelEntry struct {
	HotelBasicInfo *struct {
		HotelNo        json.Number `json:"hotelNo"`
		HotelName      string      `json:"hotelName"`
		Latitude       float64     `json:"latitude"`
		Longitude      float64     `json:"longitude"`
		HotelMinCharge int         `json:"hotelMinCharge"`
		HotelSpecial   string      `json:"hotelSpecial"`
	} `json:"hotelBasicInfo"`
	PlanList []struct {
		PlanBasicInfo *struct {
			PlanName   string `json:"planName"`
			PlanCharge int    `json:"planCharge"`
		} `json:"planBasicInfo"`
		RoomBasicInfo *struct {
			RoomName string `json:"roomName"`
		} `json:"roomBasicInfo"`
	} `json:"planList"`
}

// Search finds hotels near the station under priceMax for a one-night stay
// on checkIn (check-out = check-in per product scope).
func (c *Client) Search(ctx context.Context, station domain.Station, priceMax int, checkIn time.Time) ([]domain.Hotel, error) {
	day := checkIn.Format("2006-01-02")

	q := url.Values{
		"applicationId": {c.appID},
		"latitude":      {fmt.Sprintf("%.6f", station.Lat)},
		"longitude":     {fmt.Sprintf("%.6f", station.Lon)},
		"searchRadius":  {fmt.Sprintf("%.1f", float64(c.radiusM)/1000.0)},
		"checkinDate":   {day},
		"checkoutDate":  {day},
		"adultNum":      {"1"},
		"maxCharge":     {fmt.Sprintf("%d", priceMax)},
		"hits":          {fmt.Sprintf("%d", maxHits)},
		"responseType":  {"large"},
		"datumType":     {"1"}, // WGS84
		"sort":          {"standard"},
	}
	if c.affiliateID != "" {
		q.Set("affiliateId", c.affiliateID)
	}

	out, err := c.get(ctx, c.base+searchPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		// e.g. not_found when a remote area has no inventory at all
		if out.Error == "not_found" {
			return nil, nil
		}
		return nil, &domain.ProviderError{
			Provider: "rakuten",
			Err:      fmt.Errorf("%s: %s", out.Error, out.ErrorDescription),
		}
	}

	hotels := make([]domain.Hotel, 0, len(out.Hotels))
	for _, h := range out.Hotels {
		if len(h.Hotel) == 0 {
			continue
		}
		if hotel, ok := parseHotel(h.Hotel, checkIn, c.affiliateID); ok {
			hotels = append(hotels, hotel)
		}
	}
	return hotels, nil
}

func parseHotel(entries []hotelEntry, checkIn time.Time, affiliateID string) (domain.Hotel, bool) {
	basic := entries[0].HotelBasicInfo
	if basic == nil || basic.HotelNo.String() == "" || basic.HotelName == "" ||
		basic.Latitude == 0 || basic.Longitude == 0 {
		return domain.Hotel{}, false
	}

	price := basic.HotelMinCharge
	var plans []struct {
		name, room string
		charge     int
	}
	for _, e := range entries {
		for _, p := range e.PlanList {
			var pl struct {
				name, room string
				charge     int
			}
			if p.PlanBasicInfo != nil {
				pl.name = p.PlanBasicInfo.PlanName
				pl.charge = p.PlanBasicInfo.PlanCharge
			}
			if p.RoomBasicInfo != nil {
				pl.room = p.RoomBasicInfo.RoomName
			}
			plans = append(plans, pl)
		}
	}
	if price <= 0 {
		// fall back to the cheapest positive plan charge
		for _, p := range plans {
			if p.charge > 0 && (price <= 0 || p.charge < price) {
				price = p.charge
			}
		}
	}

	highlights := make([]string, 0, 5)
	if basic.HotelSpecial != "" {
		for _, part := range strings.FieldsFunc(basic.HotelSpecial, func(r rune) bool {
			return r == ',' || r == '、'
		}) {
			if p := strings.TrimSpace(part); p != "" {
				highlights = append(highlights, p)
			}
		}
	}
	for _, p := range plans {
		if len(highlights) >= 5 {
			break
		}
		if p.room != "" && !contains(highlights, p.room) {
			highlights = append(highlights, p.room)
		}
	}
	if len(highlights) > 5 {
		highlights = highlights[:5]
	}

	return domain.Hotel{
		ID:          basic.HotelNo.String(),
		Name:        basic.HotelName,
		Lat:         basic.Latitude,
		Lon:         basic.Longitude,
		PriceTotal:  price,
		Cancellable: cancellableFromPlans(plans),
		Highlights:  highlights,
		BookingURL:  buildBookingURL(basic.HotelNo.String(), checkIn, affiliateID),
	}, true
}

// cancellableFromPlans maps plan wording onto the tri-state flag. The search
// payload carries no structured cancellation field, so absent any signal the
// result stays unknown rather than false.
func cancellableFromPlans(plans []struct {
	name, room string
	charge     int
}) domain.Cancellable {
	for _, p := range plans {
		if strings.Contains(p.name, "キャンセル無料") {
			return domain.CancelYes
		}
		if strings.Contains(p.name, "キャンセル不可") || strings.Contains(p.name, "返金不可") {
			return domain.CancelNo
		}
	}
	return domain.CancelUnknown
}

func buildBookingURL(hotelID string, checkIn time.Time, affiliateID string) string {
	day := checkIn.Format("20060102")
	q := url.Values{
		"f_no":     {hotelID},
		"f_ci":     {day},
		"f_co":     {day},
		"f_teikei": {"1"},
	}
	if affiliateID != "" {
		q.Set("f_afcid", affiliateID)
	}
	return bookingURL + "?" + q.Encode()
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// get performs a rate-limited GET with retries on 429 and transient 5xx,
// honoring Retry-After when the provider sends one.
func (c *Client) get(ctx context.Context, u string) (*searchResponse, error) {
	waitStart := time.Now()
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	observability.ObserveLimiterWait("rakuten", time.Since(waitStart))

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
			return nil, &domain.ProviderError{Provider: "rakuten", Err: lastErr}
		}
		observability.ObserveProvider("rakuten", "SimpleHotelSearch", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var out searchResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, &domain.ProviderError{Provider: "rakuten", Err: err}
			}
			return &out, nil

		case http.StatusNotFound:
			// Rakuten answers 404 with an error body when nothing matches
			var out searchResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err == nil && out.Error != "" {
				return &out, nil
			}
			return nil, &domain.ProviderError{Provider: "rakuten", Err: fmt.Errorf("remote 404")}

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
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
			return nil, &domain.ProviderError{Provider: "rakuten", Err: lastErr}

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.ProviderError{
				Provider: "rakuten",
				Err:      fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
			}
		}
	}

	return nil, &domain.ProviderError{Provider: "rakuten", Err: lastErr}
}
