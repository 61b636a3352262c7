package booking

import (
	"fmt"
	"time"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

type Modality string

const (
	ModalityRemote   Modality = "remote"
	ModalityInPerson Modality = "in_person"
)

func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case ModalityRemote, ModalityInPerson:
		return Modality(s), nil
	}
	return "", fmt.Errorf("invalid modality %q", s)
}

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusPending   BookingStatus = "pending"
	StatusCancelled BookingStatus = "cancelled"
)

// Provider is a catalog record. The catalog is externally owned and read-only
// for this engine.
type Provider struct {
	ID           string
	Name         string
	Specialties  []string
	Modalities   []Modality
	Availability []string // display-only schedule descriptions
	Description  string
	Experience   string
	Rating       float64
	HighDemand   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Provider) Offers(m Modality) bool {
	for _, pm := range p.Modalities {
		if pm == m {
			return true
		}
	}
	return false
}

// SlotKey identifies at most one active booking. Date and Time are always
// facility-local; mixing reference frames here would corrupt conflict checks.
type SlotKey struct {
	ProviderID string
	Date       timezone.Date
	Time       timezone.TimeOfDay
	Modality   Modality
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.ProviderID, k.Date, k.Time, k.Modality)
}

// Booking is a confirmed reservation in the ledger. Records are never mutated
// after creation except for the status transition to cancelled.
type Booking struct {
	ID               string
	ProviderID       string
	ProviderName     string
	PatientName      string
	PatientEmail     string
	Date             timezone.Date      // facility-local
	Time             timezone.TimeOfDay // facility-local
	Specialty        string
	Modality         Modality
	Status           BookingStatus
	PatientTimezone  string
	FacilityTimezone string
	CreatedAt        time.Time
}

func (b *Booking) Active() bool { return b.Status != StatusCancelled }

func (b *Booking) Key() SlotKey {
	return SlotKey{ProviderID: b.ProviderID, Date: b.Date, Time: b.Time, Modality: b.Modality}
}

// Session is a historical record from the seed dataset, shape-compatible with
// Booking but without the active-key uniqueness constraint.
type Session struct {
	ID           string
	ProviderID   string
	ProviderName string
	PatientName  string
	Specialty    string
	Date         timezone.Date
	Time         timezone.TimeOfDay
	Modality     Modality
	Status       string
	CreatedAt    time.Time
}
