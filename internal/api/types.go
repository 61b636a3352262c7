package api

import (
	"time"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/availability"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

type CreateBookingRequest struct {
	ProviderID      string `json:"provider_id"`
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	Specialty       string `json:"specialty"`
	Modality        string `json:"modality"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	PatientTimezone string `json:"patient_timezone,omitempty"`
}

type BookingResponse struct {
	ID               string             `json:"id"`
	ProviderID       string             `json:"provider_id"`
	ProviderName     string             `json:"provider_name"`
	PatientName      string             `json:"patient_name"`
	PatientEmail     string             `json:"patient_email"`
	Date             timezone.Date      `json:"date"`
	Time             timezone.TimeOfDay `json:"time"`
	Specialty        string             `json:"specialty"`
	Modality         string             `json:"modality"`
	Status           string             `json:"status"`
	PatientTimezone  string             `json:"patient_timezone,omitempty"`
	FacilityTimezone string             `json:"facility_timezone"`
	CreatedAt        time.Time          `json:"created_at"`
}

func newBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		ProviderID:       b.ProviderID,
		ProviderName:     b.ProviderName,
		PatientName:      b.PatientName,
		PatientEmail:     b.PatientEmail,
		Date:             b.Date,
		Time:             b.Time,
		Specialty:        b.Specialty,
		Modality:         string(b.Modality),
		Status:           string(b.Status),
		PatientTimezone:  b.PatientTimezone,
		FacilityTimezone: b.FacilityTimezone,
		CreatedAt:        b.CreatedAt,
	}
}

type AvailabilityResponse struct {
	ProviderID       string                       `json:"provider_id"`
	Modality         string                       `json:"modality"`
	FacilityTimezone string                       `json:"facility_timezone"`
	VisitorTimezone  string                       `json:"visitor_timezone"`
	Slots            []availability.ProjectedSlot `json:"slots"`
}

type ProviderResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Specialties  []string `json:"specialties"`
	Modalities   []string `json:"modalities"`
	Availability []string `json:"availability,omitempty"`
	Description  string   `json:"description,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Rating       float64  `json:"rating"`
	HighDemand   bool     `json:"high_demand,omitempty"`
}

func newProviderResponse(p *booking.Provider) ProviderResponse {
	modalities := make([]string, len(p.Modalities))
	for i, m := range p.Modalities {
		modalities[i] = string(m)
	}
	return ProviderResponse{
		ID:           p.ID,
		Name:         p.Name,
		Specialties:  p.Specialties,
		Modalities:   modalities,
		Availability: p.Availability,
		Description:  p.Description,
		Experience:   p.Experience,
		Rating:       p.Rating,
		HighDemand:   p.HighDemand,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
