package timezone

import (
	"fmt"
	"strings"
	"time"
)

// ZoneInfo describes a visitor timezone for display: the IANA identifier, a
// short label (zone abbreviation when one exists, "UTC±HH:MM" otherwise) and a
// human-readable name derived from the identifier.
type ZoneInfo struct {
	Timezone string `json:"timezone"`
	Offset   string `json:"offset"`
	Name     string `json:"name"`
}

// Info resolves display metadata for a zone at the given instant. Unknown
// identifiers degrade to UTC+0 and return ErrUnknownTimezone alongside the
// fallback value.
func (r *Resolver) Info(id string, at time.Time) (ZoneInfo, error) {
	loc, err := r.Location(id)
	if err != nil {
		return ZoneInfo{Timezone: "UTC", Offset: "UTC+00:00", Name: "UTC"}, err
	}

	local := at.In(loc)
	abbrev, offsetSeconds := local.Zone()

	offset := formatUTCOffset(offsetSeconds / 60)
	// Numeric abbreviations like "-03" carry no more information than the
	// offset string itself.
	if abbrev != "" && !strings.ContainsAny(abbrev, "+-0123456789") {
		offset = abbrev
	}

	name := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		name = id[i+1:]
	}
	name = strings.ReplaceAll(name, "_", " ")

	return ZoneInfo{Timezone: id, Offset: offset, Name: name}, nil
}

func formatUTCOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, minutes/60, minutes%60)
}
