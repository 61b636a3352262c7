package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/Lucila07/psi-mamolliti-challenge/internal/redis"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidField    = errors.New("invalid field value")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	ErrStorageFailure  = errors.New("booking could not be stored")
)

// BookingRequest is a reservation attempt as received from the submission
// surface. Date ("YYYY-MM-DD") and Time ("HH:MM") are facility-local.
type BookingRequest struct {
	ProviderID      string
	PatientName     string
	PatientEmail    string
	Specialty       string
	Modality        string
	Date            string
	Time            string
	PatientTimezone string
}

// Service is the booking writer: the only component that mutates the ledger.
type Service struct {
	ledger       Ledger
	catalog      Catalog
	locker       redisclient.Locker
	facilityZone string
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(ledger Ledger, catalog Catalog, locker redisclient.Locker, facilityZone string, log zerolog.Logger) *Service {
	return &Service{
		ledger:       ledger,
		catalog:      catalog,
		locker:       locker,
		facilityZone: facilityZone,
		log:          log,
		now:          time.Now,
	}
}

// Book validates the request, then performs the conflict check and the append
// as one critical section under a per-slot-key lock. At most one active
// booking can ever hold a slot key; the ledger's own compare-and-append
// backstops the lock.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Booking, error) {
	key, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	provider, err := s.catalog.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}

	var created *Booking

	err = s.locker.WithSlotLock(ctx, key.String(), func(lockCtx context.Context) error {
		// Inside the critical section re-check for an active booking on this key
		existing, err := s.ledger.FindActive(lockCtx, key)
		if err != nil && !errors.Is(err, ErrBookingNotFound) {
			return fmt.Errorf("check active booking: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		b := &Booking{
			ID:               newBookingID(s.now()),
			ProviderID:       provider.ID,
			ProviderName:     provider.Name,
			PatientName:      req.PatientName,
			PatientEmail:     req.PatientEmail,
			Date:             key.Date,
			Time:             key.Time,
			Specialty:        req.Specialty,
			Modality:         key.Modality,
			Status:           StatusConfirmed,
			PatientTimezone:  req.PatientTimezone,
			FacilityTimezone: s.facilityZone,
			CreatedAt:        s.now(),
		}

		if err := s.ledger.Append(lockCtx, b); err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return ErrSlotTaken
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}

		created = b
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.log.Info().
		Str("booking_id", created.ID).
		Str("provider_id", created.ProviderID).
		Str("slot_key", key.String()).
		Msg("booking confirmed")

	return created, nil
}

// Cancel transitions a booking to cancelled, which frees its slot key for
// subsequent booking attempts.
func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	b, err := s.ledger.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("booking_id", id).Msg("booking cancelled")
	return b, nil
}

// Remove physically deletes a booking record from the ledger.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.ledger.Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("booking_id", id).Msg("booking removed")
	return nil
}

// parseRequest checks field presence first, then parses the wall-clock and
// modality fields into the slot key.
func parseRequest(req BookingRequest) (SlotKey, error) {
	required := []struct {
		name, value string
	}{
		{"provider_id", req.ProviderID},
		{"patient_name", req.PatientName},
		{"patient_email", req.PatientEmail},
		{"specialty", req.Specialty},
		{"modality", req.Modality},
		{"date", req.Date},
		{"time", req.Time},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return SlotKey{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	modality, err := ParseModality(req.Modality)
	if err != nil {
		return SlotKey{}, fmt.Errorf("%w: modality", ErrInvalidField)
	}
	date, err := timezone.ParseDate(req.Date)
	if err != nil {
		return SlotKey{}, fmt.Errorf("%w: date", ErrInvalidField)
	}
	clock, err := timezone.ParseTimeOfDay(req.Time)
	if err != nil {
		return SlotKey{}, fmt.Errorf("%w: time", ErrInvalidField)
	}

	return SlotKey{
		ProviderID: req.ProviderID,
		Date:       date,
		Time:       clock,
		Modality:   modality,
	}, nil
}

// newBookingID follows the booking_<millis>_<suffix> scheme: not guaranteed
// globally unique, but collisions are negligible at this scale and the ledger
// enforces slot-key uniqueness regardless.
func newBookingID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("booking_%d_%s", at.UnixMilli(), suffix)
}
