package domain

// Station is a geocoded transit point used as a search anchor for nearby
// hotels. One input name may resolve to several stations (same-named stations
// in different districts).
type Station struct {
	Name           string  `json:"name"`
	NormalizedName string  `json:"normalized_name"`
	Lat            float64 `json:"latitude"`
	Lon            float64 `json:"longitude"`
	PlaceID        string  `json:"place_id,omitempty"`
	Address        string  `json:"address,omitempty"`
}

// ID returns a stable identifier for cache keys: the provider place ID when
// present, otherwise the coordinate rounded to ~1m precision.
func (s Station) ID() string {
	if s.PlaceID != "" {
		return s.PlaceID
	}
	return coordKey(s.Lat, s.Lon)
}
