package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

// BookingIndex is the read-only view of the ledger the projector needs.
type BookingIndex interface {
	FindActive(ctx context.Context, key booking.SlotKey) (*booking.Booking, error)
}

// ProjectedSlot is one bookable slot annotated for display. Date and
// FacilityTime are facility-local; VisitorDate/VisitorTime carry the
// converted wall clock, with DayOffset flagging a calendar-day shift.
type ProjectedSlot struct {
	Date         timezone.Date      `json:"date"`
	FacilityTime timezone.TimeOfDay `json:"facility_time"`
	VisitorDate  timezone.Date      `json:"visitor_date"`
	VisitorTime  timezone.TimeOfDay `json:"visitor_time"`
	DayOffset    int                `json:"day_offset"`
	Offered      bool               `json:"offered"`
	Booked       bool               `json:"booked"`
	Past         bool               `json:"past"`
}

// Projector derives bookable slots from the weekly template, the ledger and
// the timezone converter. Projection never mutates anything; calling it twice
// with the same arguments and no intervening writes gives identical output.
type Projector struct {
	templates TemplateStore
	bookings  BookingIndex
	converter *timezone.Converter
	now       func() time.Time
}

func NewProjector(templates TemplateStore, bookings BookingIndex, converter *timezone.Converter) *Projector {
	return &Projector{
		templates: templates,
		bookings:  bookings,
		converter: converter,
		now:       time.Now,
	}
}

// Project returns the offered slots for the provider/modality across
// [from, to], annotated with visitor-local display times and booked/past
// status.
//
// Ordering is ascending facility-local time within each day, days ascending.
// Entries are deliberately not re-sorted by visitor time: a day-rollover
// conversion would otherwise interleave adjacent days. A provider with no
// template for a weekday yields no entries, not an error.
//
// An unresolvable visitorZone degrades every conversion to UTC+0; the
// projection still succeeds.
func (p *Projector) Project(ctx context.Context, providerID string, modality booking.Modality, from, to timezone.Date, visitorZone string) ([]ProjectedSlot, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid date range: %s after %s", from, to)
	}

	now := p.now()
	result := []ProjectedSlot{}

	for d := from; !d.After(to); d = d.AddDays(1) {
		slots, err := p.templates.SlotsFor(ctx, providerID, d.Weekday(), modality)
		if err != nil {
			return nil, fmt.Errorf("load template for %s: %w", d, err)
		}

		for _, slot := range slots {
			if !slot.Offered {
				continue
			}

			visitor, err := p.converter.ToVisitorLocal(d, slot.Time, visitorZone)
			if err != nil && !errors.Is(err, timezone.ErrUnknownTimezone) {
				return nil, fmt.Errorf("convert %s %s: %w", d, slot.Time, err)
			}

			key := booking.SlotKey{
				ProviderID: providerID,
				Date:       d,
				Time:       slot.Time,
				Modality:   modality,
			}
			booked := true
			if _, err := p.bookings.FindActive(ctx, key); err != nil {
				if !errors.Is(err, booking.ErrBookingNotFound) {
					return nil, fmt.Errorf("conflict lookup %s: %w", key, err)
				}
				booked = false
			}

			result = append(result, ProjectedSlot{
				Date:         d,
				FacilityTime: slot.Time,
				VisitorDate:  visitor.Date,
				VisitorTime:  visitor.Time,
				DayOffset:    visitor.DayOffset,
				Offered:      true,
				Booked:       booked,
				// past is judged on the facility clock, same frame as the
				// conflict key
				Past: p.converter.FacilityInstant(d, slot.Time).Before(now),
			})
		}
	}

	return result, nil
}
