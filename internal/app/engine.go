package app

import (
	"math"
	"sort"
	"strings"

	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

// Candidate is one provider hotel paired with the station whose search
// produced it, plus the computed great-circle distance between the two.
type Candidate struct {
	Hotel     domain.Hotel
	Station   domain.Station
	DistanceM float64
}

// Criteria selects a ranking weight preset.
type Criteria int

const (
	Balanced Criteria = iota
	DistanceFocused
	BudgetFocused
	ComfortFocused
)

// Weights splits the composite score across the four factors. Tunable
// heuristics, not a compatibility contract; only the ordering invariants
// (hard-filtered never outrank passing, deterministic ties) are fixed.
type Weights struct {
	Distance     float64
	PriceValue   float64
	Amenities    float64
	Availability float64
}

var criteriaWeights = map[Criteria]Weights{
	Balanced:        {Distance: 0.4, PriceValue: 0.3, Amenities: 0.2, Availability: 0.1},
	DistanceFocused: {Distance: 0.6, PriceValue: 0.2, Amenities: 0.1, Availability: 0.1},
	BudgetFocused:   {Distance: 0.2, PriceValue: 0.6, Amenities: 0.1, Availability: 0.1},
	ComfortFocused:  {Distance: 0.1, PriceValue: 0.2, Amenities: 0.6, Availability: 0.1},
}

// Engine dedups, filters, scores and ranks hotel candidates.
type Engine struct {
	// MaxWalkingM is the hard distance cutoff for candidates.
	MaxWalkingM float64
	// MaxResults bounds the returned recommendations.
	MaxResults int
}

func NewEngine(maxResults int) *Engine {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Engine{MaxWalkingM: 1200, MaxResults: maxResults}
}

// CriteriaFor infers a weight preset from the request: low budgets lean
// budget-focused, high budgets comfort-focused, a single station
// distance-focused, everything else balanced.
func CriteriaFor(priceMax, stationCount int) Criteria {
	ratio := float64(priceMax) / 20000.0
	switch {
	case ratio < 0.4:
		return BudgetFocused
	case ratio > 0.8:
		return ComfortFocused
	case stationCount == 1:
		return DistanceFocused
	default:
		return Balanced
	}
}

// Rank produces the final recommendation list. Candidates sharing a hotel ID
// are merged keeping the instance nearest its station; anything over the
// price ceiling, with a non-positive price, or beyond walking distance is
// discarded before scoring. Ordering is deterministic: score descending,
// then hotel ID ascending.
func (e *Engine) Rank(candidates []Candidate, priceMax int, criteria Criteria) []domain.RankedHotel {
	w := criteriaWeights[criteria]

	best := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		if prev, ok := best[c.Hotel.ID]; !ok || c.DistanceM < prev.DistanceM {
			best[c.Hotel.ID] = c
		}
	}

	type scored struct {
		c     Candidate
		score float64
	}
	passing := make([]scored, 0, len(best))
	for _, c := range best {
		if c.Hotel.PriceTotal <= 0 || c.Hotel.PriceTotal > priceMax {
			continue
		}
		if c.DistanceM > e.MaxWalkingM {
			continue
		}
		passing = append(passing, scored{c: c, score: e.score(c, priceMax, w)})
	}

	sort.Slice(passing, func(i, j int) bool {
		if passing[i].score != passing[j].score {
			return passing[i].score > passing[j].score
		}
		return passing[i].c.Hotel.ID < passing[j].c.Hotel.ID
	})

	n := e.MaxResults
	if n > len(passing) {
		n = len(passing)
	}
	out := make([]domain.RankedHotel, 0, n)
	for _, s := range passing[:n] {
		h := s.c.Hotel
		out = append(out, domain.RankedHotel{
			HotelID:      h.ID,
			Name:         h.Name,
			DistanceText: DistanceText(s.c.DistanceM),
			DistanceM:    int(math.Round(s.c.DistanceM)),
			PriceTotal:   h.PriceTotal,
			Cancellable:  h.Cancellable,
			Highlights:   h.Highlights,
			BookingURL:   h.BookingURL,
			Reason:       reasonText(s.c.DistanceM, h.PriceTotal),
		})
	}
	return out
}

func (e *Engine) score(c Candidate, priceMax int, w Weights) float64 {
	return w.Distance*distanceScore(c.DistanceM) +
		w.PriceValue*priceScore(c.Hotel.PriceTotal, priceMax) +
		w.Amenities*amenitiesScore(c.Hotel.Highlights) +
		w.Availability*availabilityScore(c.Hotel.Cancellable)
}

// distanceScore decays exponentially: 1.0 at the station, ~0.5 around 500m,
// floored at 0.1 from 2km out.
func distanceScore(d float64) float64 {
	switch {
	case d <= 0:
		return 1.0
	case d >= 2000:
		return 0.1
	default:
		return math.Exp(-d/600.0)*0.9 + 0.1
	}
}

// priceScore rewards value for money rather than raw cheapness: the sweet
// spot sits around 60-70% of the budget. Over-budget and invalid prices
// never reach here (hard filter), but score zero defensively.
func priceScore(price, budget int) float64 {
	if price <= 0 || price > budget {
		return 0.0
	}
	ratio := float64(price) / float64(budget)
	switch {
	case ratio <= 0.3:
		return 0.5 + (ratio/0.3)*0.3
	case ratio <= 0.7:
		return 0.8 + (1-math.Abs(ratio-0.6)/0.1)*0.2
	default:
		return 0.8 - ((ratio-0.7)/0.3)*0.7
	}
}

var highValueTags = []string{
	"wifi", "駐車場", "朝食", "温泉", "スパ", "大浴場", "レストラン", "送迎",
}

func amenitiesScore(highlights []string) float64 {
	if len(highlights) == 0 {
		return 0.2
	}
	count := float64(len(highlights)) / 10.0
	if count > 0.6 {
		count = 0.6
	}
	bonus := 0.0
	for _, h := range highlights {
		for _, tag := range highValueTags {
			if containsFold(h, tag) {
				bonus += 0.05
				break
			}
		}
	}
	if bonus > 0.4 {
		bonus = 0.4
	}
	return count + bonus
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func availabilityScore(c domain.Cancellable) float64 {
	switch c {
	case domain.CancelYes:
		return 1.0
	case domain.CancelNo:
		return 0.5
	default:
		return 0.7
	}
}
