package money

import "testing"

func TestCents(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1, 100},
		{19.99, 1999},           // 19.99*100 drifts in float64
		{0.1 + 0.2, 30},         // classic binary float sum
		{2.50, 250},
		{33.333333333333336, 3333},
		{-2.34, -234},
	}
	for _, tc := range cases {
		if got := Cents(tc.in); got != tc.want {
			t.Fatalf("Cents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromCents(t *testing.T) {
	cases := []struct {
		in   int64
		want float64
	}{
		{0, 0},
		{100, 1},
		{1999, 19.99},
		{233, 2.33},
		{-234, -2.34},
	}
	for _, tc := range cases {
		if got := FromCents(tc.in); got != tc.want {
			t.Fatalf("FromCents(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for c := int64(-500); c <= 500; c++ {
		if got := Cents(FromCents(c)); got != c {
			t.Fatalf("round trip %d -> %v -> %d", c, FromCents(c), got)
		}
	}
}
