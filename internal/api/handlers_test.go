package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/availability"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

// -- Local mocks --

type memLedger struct {
	bookings []*booking.Booking
}

func (m *memLedger) Append(_ context.Context, b *booking.Booking) error {
	for _, existing := range m.bookings {
		if existing.Active() && existing.Key() == b.Key() {
			return booking.ErrSlotTaken
		}
	}
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *memLedger) FindActive(_ context.Context, key booking.SlotKey) (*booking.Booking, error) {
	for _, b := range m.bookings {
		if b.Active() && b.Key() == key {
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (m *memLedger) ListActive(_ context.Context) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.Active() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memLedger) Cancel(_ context.Context, id string) (*booking.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id && b.Active() {
			b.Status = booking.StatusCancelled
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (m *memLedger) Remove(_ context.Context, id string) error {
	for i, b := range m.bookings {
		if b.ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return booking.ErrBookingNotFound
}

type memCatalog struct{}

func (memCatalog) ListProviders(_ context.Context) ([]booking.Provider, error) {
	return []booking.Provider{{ID: "prov-1", Name: "Dr. Example"}}, nil
}

func (memCatalog) GetProvider(_ context.Context, id string) (*booking.Provider, error) {
	if id != "prov-1" {
		return nil, booking.ErrProviderNotFound
	}
	return &booking.Provider{ID: "prov-1", Name: "Dr. Example"}, nil
}

type inlineLocker struct{}

func (inlineLocker) WithSlotLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() *booking.Service {
	return booking.NewService(&memLedger{}, memCatalog{}, inlineLocker{}, "America/Argentina/Buenos_Aires", zerolog.Nop())
}

const validBookingBody = `{
	"provider_id": "prov-1",
	"patient_name": "Ana Garcia",
	"patient_email": "ana@example.com",
	"specialty": "Anxiety",
	"modality": "remote",
	"date": "2026-09-07",
	"time": "09:00"
}`

// -- Tests --

func TestCreateBookingHandler_Created(t *testing.T) {
	handler := createBookingHandler(newTestService())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/bookings", strings.NewReader(validBookingBody)))

	if rec.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var resp BookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", resp.Status)
	}
	if !strings.HasPrefix(resp.ID, "booking_") {
		t.Fatalf("unexpected id %q", resp.ID)
	}
}

func TestCreateBookingHandler_ErrorMapping(t *testing.T) {
	svc := newTestService()
	handler := createBookingHandler(svc)

	// First booking takes the slot.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/bookings", strings.NewReader(validBookingBody)))
	if rec.Code != 201 {
		t.Fatalf("setup booking failed: %d", rec.Code)
	}

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"conflict", validBookingBody, 409, "slot_taken"},
		{"bad json", "{", 400, "invalid_request_body"},
		{
			"missing field",
			`{"provider_id":"prov-1","patient_name":"","patient_email":"a@b.c","specialty":"x","modality":"remote","date":"2026-09-07","time":"10:00"}`,
			400, "missing_field",
		},
		{
			"invalid modality",
			`{"provider_id":"prov-1","patient_name":"Ana","patient_email":"a@b.c","specialty":"x","modality":"astral","date":"2026-09-07","time":"10:00"}`,
			400, "invalid_field",
		},
		{
			"unknown provider",
			`{"provider_id":"prov-404","patient_name":"Ana","patient_email":"a@b.c","specialty":"x","modality":"remote","date":"2026-09-07","time":"10:00"}`,
			404, "provider_not_found",
		},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("POST", "/bookings", strings.NewReader(tc.body)))
		if rec.Code != tc.wantCode {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.wantCode, rec.Code, rec.Body)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if resp.Error != tc.wantErr {
			t.Fatalf("%s: expected error %q, got %q", tc.name, tc.wantErr, resp.Error)
		}
	}
}

func TestAvailabilityHandler_ParamValidationAndProjection(t *testing.T) {
	templates := availability.NewStaticTemplates()
	if err := templates.Add("prov-1", time.Monday, booking.ModalityRemote, []availability.TemplateSlot{
		{Time: timezone.NewTimeOfDay(9, 0), Offered: true},
	}); err != nil {
		t.Fatalf("template: %v", err)
	}
	converter, err := timezone.NewConverter(timezone.NewResolver(), "America/Argentina/Buenos_Aires")
	if err != nil {
		t.Fatalf("converter: %v", err)
	}
	projector := availability.NewProjector(templates, &memLedger{}, converter)
	handler := availabilityHandler(projector, "America/Argentina/Buenos_Aires")

	for _, tc := range []struct {
		query    string
		wantCode int
	}{
		{"modality=remote&from=2026-09-07", 400},                      // missing provider
		{"provider_id=prov-1&from=2026-09-07", 400},                   // missing modality
		{"provider_id=prov-1&modality=remote", 400},                   // missing from
		{"provider_id=prov-1&modality=remote&from=09/07/2026", 400},   // bad date
		{"provider_id=prov-1&modality=remote&from=2026-09-07", 200},
	} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/availability?"+tc.query, nil))
		if rec.Code != tc.wantCode {
			t.Fatalf("query %q: expected %d, got %d: %s", tc.query, tc.wantCode, rec.Code, rec.Body)
		}
	}

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/availability?provider_id=prov-1&modality=remote&from=2026-09-07&tz=Etc/GMT-1", nil))
	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(resp.Slots))
	}
	if resp.Slots[0].VisitorTime.String() != "13:00" {
		t.Fatalf("expected visitor time 13:00, got %s", resp.Slots[0].VisitorTime)
	}
}

func TestTimezoneInfoHandler_UnknownZoneDegrades(t *testing.T) {
	handler := timezoneInfoHandler(timezone.NewResolver())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/timezone-info?tz=Not/A_Zone", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200 fallback, got %d", rec.Code)
	}
	var info timezone.ZoneInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Offset != "UTC+00:00" {
		t.Fatalf("expected UTC fallback, got %+v", info)
	}
}
