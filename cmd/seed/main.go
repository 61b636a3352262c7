package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/db"
)

//go:embed schema.sql
var schema string

var specialties = []string{
	"Anxiety",
	"Depression",
	"Couples Therapy",
	"Family Therapy",
	"Work Stress",
	"Grief",
	"Phobias",
	"Self-esteem",
	"Eating Disorders",
	"Adolescents",
}

// Facility-local slot grids the weekly templates are built from.
var slotGrids = [][]string{
	{"09:00", "10:00", "11:00", "12:00"},
	{"14:00", "15:00", "16:00", "17:00"},
	{"18:00", "19:00", "20:00", "21:00", "22:00", "23:30"},
}

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

func main() {
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if _, err := pool.Exec(context.Background(), schema); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}

	providerIDs, err := seedProviders(context.Background(), pool, 12)
	if err != nil {
		log.Fatal().Err(err).Msg("seed providers")
	}
	if err := seedTemplates(context.Background(), pool, providerIDs); err != nil {
		log.Fatal().Err(err).Msg("seed slot templates")
	}
	if err := seedSessions(context.Background(), pool, providerIDs, 400); err != nil {
		log.Fatal().Err(err).Msg("seed sessions")
	}

	log.Info().Msg("seed complete")
}

func seedProviders(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	log.Info().Int("count", count).Msg("seeding providers")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("prov-%d", i+1)
		name := "Lic. " + gofakeit.Name()

		specs := pickSpecialties()
		modalities := pickModalities()

		_, err := tx.Exec(ctx, `
			INSERT INTO providers (id, name, specialties, modalities, availability,
			                       description, experience, rating, high_demand, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (id) DO NOTHING
		`, id, name, specs, modalities,
			[]string{"Weekdays " + slotGrids[i%len(slotGrids)][0] + " onward"},
			gofakeit.Sentence(12),
			fmt.Sprintf("%d years", gofakeit.Number(2, 25)),
			float64(gofakeit.Number(35, 50))/10.0,
			gofakeit.Number(0, 4) == 0,
		)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("providers seeded")
	return ids, nil
}

func seedTemplates(ctx context.Context, pool *pgxpool.Pool, providerIDs []string) error {
	log.Info().Msg("seeding slot templates")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, providerID := range providerIDs {
		grid := slotGrids[i%len(slotGrids)]
		// Monday through Friday, both modalities for most providers.
		for weekday := 1; weekday <= 5; weekday++ {
			for _, modality := range []booking.Modality{booking.ModalityRemote, booking.ModalityInPerson} {
				if modality == booking.ModalityInPerson && i%3 == 0 {
					continue // a third of providers are remote-only
				}
				for _, slot := range grid {
					_, err := tx.Exec(ctx, `
						INSERT INTO slot_templates (provider_id, weekday, modality, slot_time, offered)
						VALUES ($1, $2, $3, $4, $5)
						ON CONFLICT DO NOTHING
					`, providerID, weekday, modality, slot, gofakeit.Number(0, 9) > 0)
					if err != nil {
						return err
					}
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("slot templates seeded")
	return nil
}

func seedSessions(ctx context.Context, pool *pgxpool.Pool, providerIDs []string, count int) error {
	log.Info().Int("count", count).Msg("seeding sessions")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	statuses := []string{"completed", "completed", "completed", "scheduled", "cancelled"}

	for i := 0; i < count; i++ {
		providerIdx := gofakeit.Number(0, len(providerIDs)-1)
		grid := slotGrids[providerIdx%len(slotGrids)]

		date := time.Now().AddDate(0, 0, -gofakeit.Number(1, 180))
		modality := booking.ModalityRemote
		if gofakeit.Bool() {
			modality = booking.ModalityInPerson
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO sessions (id, provider_id, patient_name, specialty,
			                      session_date, session_time, modality, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`,
			fmt.Sprintf("sess-%04d", i+1),
			providerIDs[providerIdx],
			gofakeit.Name(),
			specialties[gofakeit.Number(0, len(specialties)-1)],
			date,
			grid[gofakeit.Number(0, len(grid)-1)],
			modality,
			statuses[gofakeit.Number(0, len(statuses)-1)],
			date.AddDate(0, 0, -gofakeit.Number(1, 14)),
		)
		if err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			log.Info().Int("seeded", i+1).Int("total", count).Msg("sessions progress")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("sessions seeded")
	return nil
}

func pickSpecialties() []string {
	n := gofakeit.Number(1, 3)
	seen := make(map[string]bool)
	var out []string
	for len(out) < n {
		s := specialties[gofakeit.Number(0, len(specialties)-1)]
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func pickModalities() []string {
	if gofakeit.Number(0, 3) == 0 {
		return []string{string(booking.ModalityRemote)}
	}
	return []string{string(booking.ModalityRemote), string(booking.ModalityInPerson)}
}
