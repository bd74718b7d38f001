package app

import (
	"fmt"
	"math"
)

const (
	earthRadiusM = 6371000

	// urban walking pace used for display text
	walkingSpeedMPerMin = 80
)

// Haversine returns the great-circle distance in meters between two points
// given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	la1 := lat1 * math.Pi / 180
	lo1 := lon1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	lo2 := lon2 * math.Pi / 180

	dlat := la2 - la1
	dlon := lo2 - lo1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadiusM * 2 * math.Asin(math.Sqrt(a))
}

// WalkingMinutes converts a distance to walking time, minimum one minute.
func WalkingMinutes(distanceM float64) int {
	m := int(math.Round(distanceM / walkingSpeedMPerMin))
	if m < 1 {
		m = 1
	}
	return m
}

// DistanceText renders a short display string: "650m" below a kilometer,
// "1.2km" above.
func DistanceText(distanceM float64) string {
	m := int(math.Round(distanceM))
	if m < 1000 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%.1fkm", float64(m)/1000.0)
}

// reasonText explains a pick from its distance and price facts, e.g.
// "駅近(徒歩4分) × 予算内(¥9,800)".
func reasonText(distanceM float64, priceTotal int) string {
	minutes := WalkingMinutes(distanceM)

	var dist string
	switch {
	case minutes <= 3:
		dist = fmt.Sprintf("駅近(徒歩%d分)", minutes)
	case minutes <= 7:
		dist = fmt.Sprintf("好立地(徒歩%d分)", minutes)
	default:
		dist = fmt.Sprintf("徒歩%d分", minutes)
	}

	return fmt.Sprintf("%s × 予算内(¥%s)", dist, formatYen(priceTotal))
}

// formatYen inserts thousands separators: 12000 -> "12,000".
func formatYen(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
