package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	var modalities []string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialties,
		&modalities,
		&p.Availability,
		&p.Description,
		&p.Experience,
		&p.Rating,
		&p.HighDemand,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	p.Modalities = make([]Modality, len(modalities))
	for i, m := range modalities {
		p.Modalities[i] = Modality(m)
	}
	return &p, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var date time.Time
	var clock string

	err := row.Scan(
		&b.ID,
		&b.ProviderID,
		&b.ProviderName,
		&b.PatientName,
		&b.PatientEmail,
		&date,
		&clock,
		&b.Specialty,
		&b.Modality,
		&b.Status,
		&b.PatientTimezone,
		&b.FacilityTimezone,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	b.Date = timezone.DateOf(date)
	if b.Time, err = timezone.ParseTimeOfDay(clock); err != nil {
		return nil, fmt.Errorf("stored booking %s: %w", b.ID, err)
	}
	return &b, nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var date time.Time
	var clock string

	err := row.Scan(
		&s.ID,
		&s.ProviderID,
		&s.ProviderName,
		&s.PatientName,
		&s.Specialty,
		&date,
		&clock,
		&s.Modality,
		&s.Status,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Date = timezone.DateOf(date)
	if s.Time, err = timezone.ParseTimeOfDay(clock); err != nil {
		return nil, fmt.Errorf("stored session %s: %w", s.ID, err)
	}
	return &s, nil
}

func dateParam(d timezone.Date) time.Time {
	return d.In(timezone.TimeOfDay{}, time.UTC)
}

// Ledger

const bookingColumns = `id, provider_id, provider_name, patient_name, patient_email,
		       session_date, session_time, specialty, modality, status,
		       patient_timezone, facility_timezone, created_at`

func (r *PgRepository) Append(ctx context.Context, b *Booking) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		b.ID, b.ProviderID, b.ProviderName, b.PatientName, b.PatientEmail,
		dateParam(b.Date), b.Time.String(), b.Specialty, b.Modality, b.Status,
		b.PatientTimezone, b.FacilityTimezone, b.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PgRepository) FindActive(ctx context.Context, key SlotKey) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1
		  AND session_date = $2
		  AND session_time = $3
		  AND modality = $4
		  AND status <> 'cancelled'
	`, key.ProviderID, dateParam(key.Date), key.Time.String(), key.Modality)
	return scanBooking(row)
}

func (r *PgRepository) ListActive(ctx context.Context) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status <> 'cancelled'
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (r *PgRepository) Cancel(ctx context.Context, id string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'cancelled'
		WHERE id = $1
		  AND status <> 'cancelled'
		RETURNING `+bookingColumns+`
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) Remove(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Catalog

func (r *PgRepository) ListProviders(ctx context.Context) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialties, modalities, availability,
		       description, experience, rating, high_demand, created_at, updated_at
		FROM providers
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetProvider(ctx context.Context, id string) (*Provider, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialties, modalities, availability,
		       description, experience, rating, high_demand, created_at, updated_at
		FROM providers
		WHERE id = $1
	`, id)
	return scanProvider(row)
}

// SessionStore

func (r *PgRepository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, provider_name, patient_name, specialty,
		       session_date, session_time, modality, status, created_at
		FROM sessions
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}
