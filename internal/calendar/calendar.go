// Package calendar derives the earliest feasible pickup date for a lane.
//
// A request placed before the mode's local cutoff hour can be picked up the
// next business day; after cutoff it takes two. Business days exclude
// weekends and the pickup country's public holidays. Mode-specific extra
// pickup days are plain calendar days added on top.
//
// Timezone data is embedded (time/tzdata) so results do not depend on the
// host's zoneinfo installation.
package calendar

import (
	"time"
	_ "time/tzdata"
)

// fallbackZone is used for countries without a configured timezone.
// The operator's home zone; unknown countries never cause an error.
const fallbackZone = "Europe/Stockholm"

// countryZones maps ISO country codes to their canonical timezone. One zone
// per country is enough for freight pickup planning: countries spanning
// multiple zones (ES, FR overseas territories) book through the mainland.
var countryZones = map[string]string{
	"SE": "Europe/Stockholm",
	"NO": "Europe/Oslo",
	"DK": "Europe/Copenhagen",
	"FI": "Europe/Helsinki",
	"DE": "Europe/Berlin",
	"NL": "Europe/Amsterdam",
	"BE": "Europe/Brussels",
	"LU": "Europe/Luxembourg",
	"FR": "Europe/Paris",
	"PL": "Europe/Warsaw",
	"CZ": "Europe/Prague",
	"SK": "Europe/Bratislava",
	"AT": "Europe/Vienna",
	"CH": "Europe/Zurich",
	"IT": "Europe/Rome",
	"ES": "Europe/Madrid",
	"PT": "Europe/Lisbon",
	"GB": "Europe/London",
	"IE": "Europe/Dublin",
	"EE": "Europe/Tallinn",
	"LV": "Europe/Riga",
	"LT": "Europe/Vilnius",
	"HU": "Europe/Budapest",
	"SI": "Europe/Ljubljana",
	"HR": "Europe/Zagreb",
	"RO": "Europe/Bucharest",
	"BG": "Europe/Sofia",
	"GR": "Europe/Athens",
}

// Location resolves a country's canonical timezone, falling back to the
// default zone for unknown countries.
func Location(countryCode string) *time.Location {
	name, ok := countryZones[countryCode]
	if !ok {
		name = fallbackZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EarliestPickup computes the earliest feasible pickup date for a pickup in
// the given country. nowUTC is injected so tests (and replayed quotes) are
// deterministic. The returned time is midnight in the pickup country's zone;
// only the date component is meaningful.
func EarliestPickup(countryCode string, cutoffHour, extraPickupDays int, nowUTC time.Time) time.Time {
	loc := Location(countryCode)
	local := nowUTC.In(loc)

	cutoff := time.Date(local.Year(), local.Month(), local.Day(), cutoffHour, 0, 0, 0, loc)
	lead := 2
	if local.Before(cutoff) {
		lead = 1
	}

	d := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for counted := 0; counted < lead; {
		d = d.AddDate(0, 0, 1)
		if isBusinessDay(countryCode, d) {
			counted++
		}
	}

	// Extra pickup days are calendar days, not business days.
	return d.AddDate(0, 0, extraPickupDays)
}

// isBusinessDay reports whether d is neither a weekend nor a public holiday
// in the country.
func isBusinessDay(countryCode string, d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsHoliday(countryCode, d)
}

// IsHoliday reports whether d is a public holiday in the country. Unknown
// countries have an empty holiday set.
func IsHoliday(countryCode string, d time.Time) bool {
	rule, ok := holidayRules[countryCode]
	if !ok {
		return false
	}

	for _, h := range rule.fixed {
		if int(d.Month()) == h.month && d.Day() == h.day {
			return true
		}
	}

	if len(rule.easterOffsets) > 0 {
		e := easter(d.Year())
		for _, off := range rule.easterOffsets {
			h := e.AddDate(0, 0, off)
			if h.Month() == d.Month() && h.Day() == d.Day() {
				return true
			}
		}
	}

	for _, fn := range rule.movable {
		h := fn(d.Year())
		if h.Month() == d.Month() && h.Day() == d.Day() {
			return true
		}
	}

	return false
}

type monthDay struct {
	month, day int
}

type holidayRule struct {
	fixed         []monthDay
	easterOffsets []int // days relative to Easter Sunday
	movable       []func(year int) time.Time
}

// Easter-relative offsets shared across the table.
const (
	maundyThursday = -3
	goodFriday     = -2
	easterMonday   = 1
	ascension      = 39
	whitMonday     = 50
	corpusChristi  = 60
)

// holidayRules lists nationwide public holidays per country. Regional
// holidays are deliberately excluded: a pickup blocked by a regional
// holiday is rebooked by the carrier, not by the quote engine.
var holidayRules = map[string]holidayRule{
	"SE": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {5, 1}, {6, 6}, {12, 24}, {12, 25}, {12, 26}, {12, 31}},
		easterOffsets: []int{goodFriday, easterMonday, ascension},
		movable:       []func(int) time.Time{midsummerEve},
	},
	"NO": {
		fixed:         []monthDay{{1, 1}, {5, 1}, {5, 17}, {12, 25}, {12, 26}},
		easterOffsets: []int{maundyThursday, goodFriday, easterMonday, ascension, whitMonday},
	},
	"DK": {
		fixed:         []monthDay{{1, 1}, {6, 5}, {12, 25}, {12, 26}},
		easterOffsets: []int{maundyThursday, goodFriday, easterMonday, ascension, whitMonday},
	},
	"FI": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {5, 1}, {12, 6}, {12, 24}, {12, 25}, {12, 26}},
		easterOffsets: []int{goodFriday, easterMonday, ascension},
		movable:       []func(int) time.Time{midsummerEve},
	},
	"DE": {
		fixed:         []monthDay{{1, 1}, {5, 1}, {10, 3}, {12, 25}, {12, 26}},
		easterOffsets: []int{goodFriday, easterMonday, ascension, whitMonday},
	},
	"NL": {
		fixed:         []monthDay{{1, 1}, {4, 27}, {12, 25}, {12, 26}},
		easterOffsets: []int{goodFriday, easterMonday, ascension, whitMonday},
	},
	"BE": {
		fixed:         []monthDay{{1, 1}, {5, 1}, {7, 21}, {8, 15}, {11, 1}, {11, 11}, {12, 25}},
		easterOffsets: []int{easterMonday, ascension, whitMonday},
	},
	"FR": {
		fixed:         []monthDay{{1, 1}, {5, 1}, {5, 8}, {7, 14}, {8, 15}, {11, 1}, {11, 11}, {12, 25}},
		easterOffsets: []int{easterMonday, ascension, whitMonday},
	},
	"PL": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {5, 1}, {5, 3}, {8, 15}, {11, 1}, {11, 11}, {12, 25}, {12, 26}},
		easterOffsets: []int{easterMonday, corpusChristi},
	},
	"CZ": {
		fixed:         []monthDay{{1, 1}, {5, 1}, {5, 8}, {7, 5}, {7, 6}, {9, 28}, {10, 28}, {11, 17}, {12, 24}, {12, 25}, {12, 26}},
		easterOffsets: []int{goodFriday, easterMonday},
	},
	"AT": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {5, 1}, {8, 15}, {10, 26}, {11, 1}, {12, 8}, {12, 25}, {12, 26}},
		easterOffsets: []int{easterMonday, ascension, whitMonday, corpusChristi},
	},
	"IT": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {4, 25}, {5, 1}, {6, 2}, {8, 15}, {11, 1}, {12, 8}, {12, 25}, {12, 26}},
		easterOffsets: []int{easterMonday},
	},
	"ES": {
		fixed:         []monthDay{{1, 1}, {1, 6}, {5, 1}, {8, 15}, {10, 12}, {11, 1}, {12, 6}, {12, 8}, {12, 25}},
		easterOffsets: []int{goodFriday},
	},
	"GB": {
		fixed:         []monthDay{{1, 1}, {12, 25}, {12, 26}},
		easterOffsets: []int{goodFriday, easterMonday},
		movable: []func(int) time.Time{
			func(y int) time.Time { return nthWeekday(y, time.May, time.Monday, 1) },
			func(y int) time.Time { return lastWeekday(y, time.May, time.Monday) },
			func(y int) time.Time { return lastWeekday(y, time.August, time.Monday) },
		},
	},
}

// easter returns Easter Sunday for the year (Gregorian, anonymous
// computus).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// midsummerEve is the Friday between June 19 and June 25 (Swedish and
// Finnish rule).
func midsummerEve(year int) time.Time {
	d := time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the nth given weekday of the month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

// lastWeekday returns the last given weekday of the month.
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
