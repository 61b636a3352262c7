package timezone

import (
	"fmt"
	"time"
)

// LocalSlot is a slot time expressed in some local frame after conversion.
// DayOffset tells whether the converted calendar date landed on the previous
// day (-1), the same day (0), or the next day (+1) relative to the input date.
type LocalSlot struct {
	Date      Date      `json:"date"`
	Time      TimeOfDay `json:"time"`
	DayOffset int       `json:"day_offset"`
}

// Converter translates wall-clock times between the fixed facility timezone
// and arbitrary visitor timezones.
//
// Conversions use offset subtraction anchored at the facility instant: the
// visitor wall clock is the facility wall clock plus the difference of the two
// zones' UTC offsets at that instant. This is equivalent to converting through
// an absolute UTC instant but keeps the math in local wall-clock terms.
type Converter struct {
	resolver     *Resolver
	facilityZone string
	facilityLoc  *time.Location
}

func NewConverter(resolver *Resolver, facilityZone string) (*Converter, error) {
	loc, err := resolver.Location(facilityZone)
	if err != nil {
		return nil, fmt.Errorf("facility timezone: %w", err)
	}
	return &Converter{
		resolver:     resolver,
		facilityZone: facilityZone,
		facilityLoc:  loc,
	}, nil
}

func (c *Converter) FacilityZone() string { return c.facilityZone }

func (c *Converter) FacilityLocation() *time.Location { return c.facilityLoc }

// FacilityInstant interprets a facility-local (date, time) pair as an absolute
// instant in the facility timezone.
func (c *Converter) FacilityInstant(d Date, t TimeOfDay) time.Time {
	return d.In(t, c.facilityLoc)
}

// ToVisitorLocal converts a facility-local slot to the visitor's wall clock.
//
// When visitorZone is not resolvable the slot is converted to UTC+0 instead
// and ErrUnknownTimezone is returned alongside the usable fallback value, so
// display flows degrade instead of failing.
func (c *Converter) ToVisitorLocal(d Date, t TimeOfDay, visitorZone string) (LocalSlot, error) {
	instant := c.FacilityInstant(d, t)

	facilityOffset, err := c.resolver.OffsetMinutes(c.facilityZone, instant)
	if err != nil {
		// facility zone was validated in NewConverter
		return LocalSlot{}, err
	}

	visitorOffset, visitorErr := c.resolver.OffsetMinutes(visitorZone, instant)
	if visitorErr != nil {
		visitorOffset = 0
	}

	slot := shiftWallClock(d, t, visitorOffset-facilityOffset)
	return slot, visitorErr
}

// FromVisitorLocal converts a visitor-local (date, time) pair back to the
// facility wall clock, anchoring the offsets at the visitor instant.
func (c *Converter) FromVisitorLocal(d Date, t TimeOfDay, visitorZone string) (LocalSlot, error) {
	visitorLoc, visitorErr := c.resolver.Location(visitorZone)
	if visitorErr != nil {
		visitorLoc = time.UTC
	}
	instant := d.In(t, visitorLoc)

	facilityOffset, err := c.resolver.OffsetMinutes(c.facilityZone, instant)
	if err != nil {
		return LocalSlot{}, err
	}

	visitorOffset := 0
	if visitorErr == nil {
		visitorOffset, err = c.resolver.OffsetMinutes(visitorZone, instant)
		if err != nil {
			return LocalSlot{}, err
		}
	}

	slot := shiftWallClock(d, t, facilityOffset-visitorOffset)
	return slot, visitorErr
}

// shiftWallClock adds deltaMinutes to a naive wall-clock (date, time) pair and
// reports the resulting calendar-day shift.
func shiftWallClock(d Date, t TimeOfDay, deltaMinutes int) LocalSlot {
	naive := d.In(t, time.UTC).Add(time.Duration(deltaMinutes) * time.Minute)

	shifted := LocalSlot{
		Date: DateOf(naive),
		Time: TimeOfDayOf(naive),
	}
	switch {
	case shifted.Date.After(d):
		shifted.DayOffset = 1
	case shifted.Date.Before(d):
		shifted.DayOffset = -1
	}
	return shifted
}
