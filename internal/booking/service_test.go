package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// -- Mocks --

type mockLedger struct {
	bookings []*Booking
	failNext error
}

func newMockLedger() *mockLedger {
	return &mockLedger{}
}

func (m *mockLedger) Append(_ context.Context, b *Booking) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	for _, existing := range m.bookings {
		if existing.Active() && existing.Key() == b.Key() {
			return ErrSlotTaken
		}
	}
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *mockLedger) FindActive(_ context.Context, key SlotKey) (*Booking, error) {
	for _, b := range m.bookings {
		if b.Active() && b.Key() == key {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (m *mockLedger) ListActive(_ context.Context) ([]Booking, error) {
	var result []Booking
	for _, b := range m.bookings {
		if b.Active() {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockLedger) Cancel(_ context.Context, id string) (*Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id && b.Active() {
			b.Status = StatusCancelled
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (m *mockLedger) Remove(_ context.Context, id string) error {
	for i, b := range m.bookings {
		if b.ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return ErrBookingNotFound
}

type mockCatalog struct {
	providers map[string]*Provider
}

func newMockCatalog(providers ...*Provider) *mockCatalog {
	m := &mockCatalog{providers: make(map[string]*Provider)}
	for _, p := range providers {
		m.providers[p.ID] = p
	}
	return m
}

func (m *mockCatalog) ListProviders(_ context.Context) ([]Provider, error) {
	var result []Provider
	for _, p := range m.providers {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockCatalog) GetProvider(_ context.Context, id string) (*Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// passthroughLocker runs the critical section inline, matching the
// single-client cooperative model.
type passthroughLocker struct {
	held map[string]bool
}

func (l *passthroughLocker) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return fmt.Errorf("re-entrant lock on %s", key)
	}
	l.held[key] = true
	defer delete(l.held, key)
	return fn(ctx)
}

func newTestService(ledger *mockLedger, catalog *mockCatalog) *Service {
	return NewService(ledger, catalog, &passthroughLocker{}, "America/Argentina/Buenos_Aires", zerolog.Nop())
}

func validRequest() BookingRequest {
	return BookingRequest{
		ProviderID:      "prov-1",
		PatientName:     "Ana Garcia",
		PatientEmail:    "ana@example.com",
		Specialty:       "Anxiety",
		Modality:        "remote",
		Date:            "2026-09-07",
		Time:            "09:00",
		PatientTimezone: "Europe/Madrid",
	}
}

func testProvider() *Provider {
	return &Provider{
		ID:         "prov-1",
		Name:       "Dr. Example",
		Modalities: []Modality{ModalityRemote, ModalityInPerson},
	}
}

// -- Tests --

func TestBook_Success(t *testing.T) {
	ledger := newMockLedger()
	svc := newTestService(ledger, newMockCatalog(testProvider()))

	b, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if b.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
	if b.ID == "" {
		t.Fatal("expected an assigned booking id")
	}
	if b.FacilityTimezone != "America/Argentina/Buenos_Aires" {
		t.Fatalf("facility timezone not recorded: %q", b.FacilityTimezone)
	}

	// Success must be immediately observable through the ledger.
	found, err := ledger.FindActive(context.Background(), b.Key())
	if err != nil {
		t.Fatalf("find after book: %v", err)
	}
	if found.ID != b.ID {
		t.Fatalf("ledger returned %s, want %s", found.ID, b.ID)
	}
}

func TestBook_ConflictExclusivity(t *testing.T) {
	svc := newTestService(newMockLedger(), newMockCatalog(testProvider()))

	confirmed := 0
	for i := 0; i < 5; i++ {
		req := validRequest()
		req.PatientName = fmt.Sprintf("Patient %d", i)
		_, err := svc.Book(context.Background(), req)
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}

	if confirmed != 1 {
		t.Fatalf("expected exactly one confirmed booking, got %d", confirmed)
	}
}

func TestBook_CancelFreesSlotKey(t *testing.T) {
	svc := newTestService(newMockLedger(), newMockCatalog(testProvider()))
	ctx := context.Background()

	first, err := svc.Book(ctx, validRequest())
	if err != nil {
		t.Fatalf("first book: %v", err)
	}
	if _, err := svc.Book(ctx, validRequest()); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Book(ctx, validRequest()); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestBook_MissingFields(t *testing.T) {
	svc := newTestService(newMockLedger(), newMockCatalog(testProvider()))

	cases := []struct {
		field  string
		mutate func(*BookingRequest)
	}{
		{"provider_id", func(r *BookingRequest) { r.ProviderID = "" }},
		{"patient_name", func(r *BookingRequest) { r.PatientName = "  " }},
		{"patient_email", func(r *BookingRequest) { r.PatientEmail = "" }},
		{"specialty", func(r *BookingRequest) { r.Specialty = "" }},
		{"modality", func(r *BookingRequest) { r.Modality = "" }},
		{"date", func(r *BookingRequest) { r.Date = "" }},
		{"time", func(r *BookingRequest) { r.Time = "" }},
	}

	for _, tc := range cases {
		req := validRequest()
		tc.mutate(&req)
		_, err := svc.Book(context.Background(), req)
		if !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", tc.field, err)
		}
	}
}

func TestBook_InvalidFields(t *testing.T) {
	svc := newTestService(newMockLedger(), newMockCatalog(testProvider()))

	cases := []func(*BookingRequest){
		func(r *BookingRequest) { r.Modality = "telepathic" },
		func(r *BookingRequest) { r.Date = "07/09/2026" },
		func(r *BookingRequest) { r.Time = "9am" },
	}

	for i, mutate := range cases {
		req := validRequest()
		mutate(&req)
		_, err := svc.Book(context.Background(), req)
		if !errors.Is(err, ErrInvalidField) {
			t.Fatalf("case %d: expected ErrInvalidField, got %v", i, err)
		}
	}
}

func TestBook_UnknownProvider(t *testing.T) {
	svc := newTestService(newMockLedger(), newMockCatalog())

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestBook_StorageFailureLeavesNoPartialState(t *testing.T) {
	ledger := newMockLedger()
	ledger.failNext = errors.New("disk on fire")
	svc := newTestService(ledger, newMockCatalog(testProvider()))
	ctx := context.Background()

	_, err := svc.Book(ctx, validRequest())
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}

	active, err := ledger.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("failed write left %d bookings visible", len(active))
	}

	// The slot must still be bookable after the failure.
	if _, err := svc.Book(ctx, validRequest()); err != nil {
		t.Fatalf("book after storage failure: %v", err)
	}
}

func TestNewBookingID_Shape(t *testing.T) {
	at := time.UnixMilli(1757246400000)
	id := newBookingID(at)

	want := fmt.Sprintf("booking_%d_", at.UnixMilli())
	if len(id) != len(want)+9 {
		t.Fatalf("unexpected id length: %q", id)
	}
	if id[:len(want)] != want {
		t.Fatalf("unexpected id prefix: %q", id)
	}

	if id == newBookingID(at) {
		t.Fatal("two ids from the same instant should not collide")
	}
}
