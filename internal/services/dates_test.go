package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonthsClamped(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	cases := []struct {
		name   string
		base   time.Time
		months int
		want   time.Time
	}{
		{"plain advance", day(2025, time.March, 10), 1, day(2025, time.April, 10)},
		{"jan 31 to feb", day(2025, time.January, 31), 1, day(2025, time.February, 28)},
		{"jan 31 to feb leap", day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{"jan 31 to mar keeps day", day(2025, time.January, 31), 2, day(2025, time.March, 31)},
		{"may 31 to june", day(2025, time.May, 31), 1, day(2025, time.June, 30)},
		{"year rollover", day(2025, time.November, 15), 3, day(2026, time.February, 15)},
		{"many months", day(2025, time.January, 31), 13, day(2026, time.February, 28)},
		{"zero months", day(2025, time.July, 4), 0, day(2025, time.July, 4)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonthsClamped(tc.base, tc.months))
		})
	}
}
