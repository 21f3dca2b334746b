package models

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	today := time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)
	day := func(d int) time.Time {
		return time.Date(2025, time.June, d, 8, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name    string
		stored  string
		dueDate time.Time
		want    string
	}{
		{"pending past due reads overdue", StatusPending, day(9), StatusOverdue},
		{"pending due today stays pending", StatusPending, day(10), StatusPending},
		{"pending due tomorrow stays pending", StatusPending, day(11), StatusPending},
		{"paid never reads overdue", StatusPaid, day(1), StatusPaid},
		{"stored overdue passes through", StatusOverdue, day(20), StatusOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Payable{Status: tc.stored, DueDate: tc.dueDate}
			if got := p.EffectiveStatus(today); got != tc.want {
				t.Fatalf("EffectiveStatus = %q, want %q", got, tc.want)
			}
			if p.Status != tc.stored {
				t.Fatalf("stored status mutated: %q", p.Status)
			}
		})
	}
}
