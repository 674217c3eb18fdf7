// Package zone decides whether a transport mode serves a given country and
// postal-prefix combination.
//
// Zone specs are two-digit postal prefixes, either a single prefix "11" or
// an inclusive range "11-14". Membership is checked per request against the
// mode's configured zone map; pickup and delivery are checked independently
// because lane availability is directional.
package zone

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// specPattern is the canonical zone-spec shape enforced at config-load time:
// exactly two digits, optionally a two-digit inclusive range.
var specPattern = regexp.MustCompile(`^\d{2}(-\d{2})?$`)

// ValidateSpec checks that a configured zone spec has the canonical
// two-digit form and, for ranges, that the bounds are ordered. Called once
// when the tariff table is loaded so per-request checks never need to
// handle malformed specs.
func ValidateSpec(spec string) error {
	if !specPattern.MatchString(spec) {
		return fmt.Errorf("zone: spec %q must be two digits or a two-digit range", spec)
	}
	if start, end, ok := strings.Cut(spec, "-"); ok {
		s, _ := strconv.Atoi(start)
		e, _ := strconv.Atoi(end)
		if s > e {
			return fmt.Errorf("zone: range %q start exceeds end", spec)
		}
	}
	return nil
}

// Allowed reports whether the postal prefix falls inside the mode's
// serviceable zones for the country. A country absent from the map is not
// served. An unparseable prefix is not served either — garbage input is a
// negative answer, not an error.
func Allowed(countryCode, postalPrefix string, zones map[string][]string) bool {
	specs, ok := zones[countryCode]
	if !ok {
		return false
	}

	prefix, err := strconv.Atoi(strings.TrimSpace(postalPrefix))
	if err != nil {
		return false
	}

	for _, spec := range specs {
		if start, end, isRange := strings.Cut(spec, "-"); isRange {
			s, err1 := strconv.Atoi(start)
			e, err2 := strconv.Atoi(end)
			if err1 != nil || err2 != nil {
				continue
			}
			if prefix >= s && prefix <= e {
				return true
			}
		} else {
			n, err := strconv.Atoi(spec)
			if err != nil {
				continue
			}
			if prefix == n {
				return true
			}
		}
	}
	return false
}
