package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

// PgTemplateStore reads weekly templates from Postgres. The seed command owns
// the table; this store never writes it.
type PgTemplateStore struct {
	pool *pgxpool.Pool
}

func NewPgTemplateStore(pool *pgxpool.Pool) *PgTemplateStore {
	return &PgTemplateStore{pool: pool}
}

func (s *PgTemplateStore) SlotsFor(ctx context.Context, providerID string, weekday time.Weekday, modality booking.Modality) ([]TemplateSlot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slot_time, offered
		FROM slot_templates
		WHERE provider_id = $1
		  AND weekday = $2
		  AND modality = $3
		ORDER BY slot_time
	`, providerID, int(weekday), modality)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var slots []TemplateSlot
	for rows.Next() {
		var clock string
		var offered bool
		if err := rows.Scan(&clock, &offered); err != nil {
			return nil, err
		}
		t, err := timezone.ParseTimeOfDay(clock)
		if err != nil {
			return nil, fmt.Errorf("stored template for %s: %w", providerID, err)
		}
		slots = append(slots, TemplateSlot{Time: t, Offered: offered})
	}
	return slots, rows.Err()
}
