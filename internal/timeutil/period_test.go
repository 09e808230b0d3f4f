package timeutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	months := MonthsBetween(date(2024, time.January, 15), date(2024, time.April, 2))
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	want := []string{"2024-02", "2024-03", "2024-04"}
	for i, m := range months {
		if MonthKey(m) != want[i] {
			t.Errorf("month %d: expected %s, got %s", i, want[i], MonthKey(m))
		}
	}
}

func TestMonthsBetweenYearBoundary(t *testing.T) {
	months := MonthsBetween(date(2023, time.November, 30), date(2024, time.February, 1))
	want := []string{"2023-12", "2024-01", "2024-02"}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(months))
	}
	for i, m := range months {
		if MonthKey(m) != want[i] {
			t.Errorf("month %d: expected %s, got %s", i, want[i], MonthKey(m))
		}
	}
}

func TestMonthsBetweenSameMonth(t *testing.T) {
	if months := MonthsBetween(date(2024, time.June, 1), date(2024, time.June, 28)); len(months) != 0 {
		t.Errorf("expected no months within the same month, got %d", len(months))
	}
}

func TestDaysLate(t *testing.T) {
	cases := []struct {
		day  int
		want int
	}{
		{1, 0},
		{2, 1},
		{15, 14},
		{31, 30},
	}
	for _, c := range cases {
		got := DaysLate(date(2024, time.January, c.day))
		if got != c.want {
			t.Errorf("day %d: expected %d days late, got %d", c.day, c.want, got)
		}
	}
}
