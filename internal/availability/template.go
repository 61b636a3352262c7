package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

// TemplateSlot is one entry of a provider's weekly recurrence template. Time
// is facility-local; Offered marks whether the slot is currently bookable.
type TemplateSlot struct {
	Time    timezone.TimeOfDay
	Offered bool
}

// TemplateStore is the read-only weekly recurrence table. Implementations
// must return slots ordered by ascending time; nothing in this engine ever
// writes templates.
type TemplateStore interface {
	SlotsFor(ctx context.Context, providerID string, weekday time.Weekday, modality booking.Modality) ([]TemplateSlot, error)
}

type templateKey struct {
	providerID string
	weekday    time.Weekday
	modality   booking.Modality
}

// StaticTemplates is an in-memory TemplateStore built once from the external
// template input.
type StaticTemplates struct {
	slots map[templateKey][]TemplateSlot
}

// NewStaticTemplates validates the per-day invariant (strictly increasing,
// unique times) and builds the lookup table.
func NewStaticTemplates() *StaticTemplates {
	return &StaticTemplates{slots: make(map[templateKey][]TemplateSlot)}
}

func (s *StaticTemplates) Add(providerID string, weekday time.Weekday, modality booking.Modality, slots []TemplateSlot) error {
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].Time.Before(slots[i].Time) {
			return fmt.Errorf("template %s/%s/%s: slot times must be strictly increasing, got %s after %s",
				providerID, weekday, modality, slots[i].Time, slots[i-1].Time)
		}
	}
	key := templateKey{providerID: providerID, weekday: weekday, modality: modality}
	if _, exists := s.slots[key]; exists {
		return fmt.Errorf("template %s/%s/%s: duplicate day definition", providerID, weekday, modality)
	}
	s.slots[key] = append([]TemplateSlot(nil), slots...)
	return nil
}

func (s *StaticTemplates) SlotsFor(_ context.Context, providerID string, weekday time.Weekday, modality booking.Modality) ([]TemplateSlot, error) {
	return s.slots[templateKey{providerID: providerID, weekday: weekday, modality: modality}], nil
}
