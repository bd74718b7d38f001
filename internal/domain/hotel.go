package domain

import (
	"encoding/json"
	"fmt"
)

// Cancellable is the tri-state cancellation flag: providers often omit
// plan-level cancellation terms, and "unknown" must stay distinct from "no".
type Cancellable int

const (
	CancelUnknown Cancellable = iota
	CancelYes
	CancelNo
)

// MarshalJSON emits true/false/null so the wire shape matches the
// bool-or-absent contract of the suggest response.
func (c Cancellable) MarshalJSON() ([]byte, error) {
	switch c {
	case CancelYes:
		return []byte("true"), nil
	case CancelNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (c *Cancellable) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "null":
		*c = CancelUnknown
	case "true":
		*c = CancelYes
	case "false":
		*c = CancelNo
	default:
		return fmt.Errorf("invalid cancellable value %q", b)
	}
	return nil
}

// Hotel is an unranked candidate returned by a hotel inventory provider.
type Hotel struct {
	ID          string      `json:"hotel_id"`
	Name        string      `json:"name"`
	Lat         float64     `json:"latitude"`
	Lon         float64     `json:"longitude"`
	PriceTotal  int         `json:"price_total"` // one night, JPY
	Cancellable Cancellable `json:"cancellable"`
	Highlights  []string    `json:"highlights"`
	BookingURL  string      `json:"booking_url"`
}

// RankedHotel is a scored, output-only recommendation.
type RankedHotel struct {
	HotelID      string      `json:"hotel_id"`
	Name         string      `json:"name"`
	DistanceText string      `json:"distance_text"`
	DistanceM    int         `json:"distance_m"`
	PriceTotal   int         `json:"price_total"`
	Cancellable  Cancellable `json:"cancellable"`
	Highlights   []string    `json:"highlights"`
	BookingURL   string      `json:"booking_url"`
	Reason       string      `json:"reason"`
}

// Suggestion is the response of one recommendation request.
type Suggestion struct {
	ResolvedDate string        `json:"resolved_date"` // YYYY-MM-DD
	Results      []RankedHotel `json:"results"`
}

// SuggestionRequest is the single inbound request shape. Exactly one of
// Date (YYYY-MM-DD) and Weekday (mon..sun) must be set.
type SuggestionRequest struct {
	Stations []string `json:"stations"`
	PriceMax int      `json:"price_max"`
	Date     string   `json:"date,omitempty"`
	Weekday  string   `json:"weekday,omitempty"`
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

var _ json.Marshaler = Cancellable(0)
