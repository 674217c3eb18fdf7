package calendar

import (
	"testing"
	"time"
)

func date(t *testing.T, got time.Time, want string) {
	t.Helper()
	if got.Format("2006-01-02") != want {
		t.Errorf("got %s, want %s", got.Format("2006-01-02"), want)
	}
}

func TestEarliestPickup_BeforeCutoff(t *testing.T) {
	// Tuesday 2025-09-09 10:00 Stockholm (08:00 UTC, CEST), cutoff 14:00.
	// Before cutoff → next business day.
	now := time.Date(2025, 9, 9, 8, 0, 0, 0, time.UTC)
	got := EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-09-10")
}

func TestEarliestPickup_AfterCutoff(t *testing.T) {
	// Same Tuesday at 15:00 local → two business days.
	now := time.Date(2025, 9, 9, 13, 0, 0, 0, time.UTC)
	got := EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-09-11")
}

func TestEarliestPickup_ExactlyAtCutoff(t *testing.T) {
	// Local time equal to the cutoff is not before it.
	now := time.Date(2025, 9, 9, 12, 0, 0, 0, time.UTC) // 14:00 CEST
	got := EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-09-11")
}

func TestEarliestPickup_SkipsWeekend(t *testing.T) {
	// Friday 2025-09-12 before cutoff → Monday.
	now := time.Date(2025, 9, 12, 8, 0, 0, 0, time.UTC)
	got := EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-09-15")

	// Friday after cutoff → two business days → Tuesday.
	now = time.Date(2025, 9, 12, 15, 0, 0, 0, time.UTC)
	got = EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-09-16")
}

func TestEarliestPickup_SkipsPublicHoliday(t *testing.T) {
	// Thursday 2025-10-02 morning in Germany: Friday is German Unity Day,
	// then the weekend, so the next business day is Monday.
	now := time.Date(2025, 10, 2, 7, 0, 0, 0, time.UTC)
	got := EarliestPickup("DE", 14, 0, now)
	date(t, got, "2025-10-06")
}

func TestEarliestPickup_MidsummerEve(t *testing.T) {
	// Thursday 2025-06-19 morning in Sweden: Friday June 20 is midsummer
	// eve, a full holiday in the Swedish calendar.
	now := time.Date(2025, 6, 19, 7, 0, 0, 0, time.UTC)
	got := EarliestPickup("SE", 14, 0, now)
	date(t, got, "2025-06-23")

	// The same instant for a country without that holiday books Friday.
	got = EarliestPickup("DE", 14, 0, now)
	date(t, got, "2025-06-20")
}

func TestEarliestPickup_ExtraDaysAreCalendarDays(t *testing.T) {
	// Thursday before cutoff → Friday; +2 extra days lands on Sunday.
	// Extra pickup days are not business-day-filtered.
	now := time.Date(2025, 9, 11, 8, 0, 0, 0, time.UTC)
	got := EarliestPickup("SE", 14, 2, now)
	date(t, got, "2025-09-14")
}

func TestEarliestPickup_UnknownCountryFallsBack(t *testing.T) {
	// Unknown country uses the default zone and an empty holiday set:
	// June 20 is bookable even though Sweden itself has midsummer eve.
	now := time.Date(2025, 6, 19, 7, 0, 0, 0, time.UTC)
	got := EarliestPickup("XX", 14, 0, now)
	date(t, got, "2025-06-20")
}

func TestEaster(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{2024, "2024-03-31"},
		{2025, "2025-04-20"},
		{2026, "2026-04-05"},
		{2030, "2030-04-21"},
	}
	for _, tt := range tests {
		if got := easter(tt.year).Format("2006-01-02"); got != tt.want {
			t.Errorf("easter(%d) = %s, want %s", tt.year, got, tt.want)
		}
	}
}

func TestIsHoliday_EasterDerived(t *testing.T) {
	// Good Friday 2025 is April 18; Whit Monday is June 9.
	if !IsHoliday("DE", time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Good Friday 2025 to be a DE holiday")
	}
	if !IsHoliday("DE", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Whit Monday 2025 to be a DE holiday")
	}
	if IsHoliday("ES", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)) {
		t.Error("Whit Monday is not a nationwide ES holiday")
	}
}

func TestIsHoliday_UKBankHolidays(t *testing.T) {
	// 2025: early May bank holiday May 5, spring bank holiday May 26,
	// summer bank holiday August 25.
	for _, day := range []time.Time{
		time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
	} {
		if !IsHoliday("GB", day) {
			t.Errorf("expected %s to be a GB bank holiday", day.Format("2006-01-02"))
		}
	}
}

func TestLocation_Fallback(t *testing.T) {
	if Location("ZZ").String() != "Europe/Stockholm" {
		t.Errorf("unknown country should fall back to Europe/Stockholm, got %s", Location("ZZ"))
	}
	if Location("FI").String() != "Europe/Helsinki" {
		t.Errorf("FI should resolve to Europe/Helsinki, got %s", Location("FI"))
	}
}
