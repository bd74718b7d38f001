package domain_test

import (
	"testing"

	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

func TestNormalizeStationName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"新宿駅", "新宿"},
		{"新宿 駅", "新宿"},
		{" Shibuya Station ", "shibuya"},
		{"Tokyo Sta.", "tokyo"},
		{"品川", "品川"},
		{"ｼﾅｶﾞﾜ", "シナガワ"}, // half-width katakana folds to full-width
		{"東 京", "東京"},
	}
	for _, c := range cases {
		got, err := domain.NormalizeStationName(c.in)
		if err != nil {
			t.Fatalf("normalize(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeStationName_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "駅"} {
		if _, err := domain.NormalizeStationName(in); err == nil {
			t.Errorf("normalize(%q): expected error", in)
		}
	}
}

func TestNormalizeStationName_SameKeyForVariants(t *testing.T) {
	a, _ := domain.NormalizeStationName("新宿")
	b, _ := domain.NormalizeStationName("新宿駅")
	if a != b {
		t.Fatalf("variants should share one cache key: %q vs %q", a, b)
	}
}
