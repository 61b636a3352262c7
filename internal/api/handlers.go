package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/availability"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	redisclient "github.com/Lucila07/psi-mamolliti-challenge/internal/redis"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

func createBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		b, err := svc.Book(r.Context(), booking.BookingRequest{
			ProviderID:      req.ProviderID,
			PatientName:     req.PatientName,
			PatientEmail:    req.PatientEmail,
			Specialty:       req.Specialty,
			Modality:        req.Modality,
			Date:            req.Date,
			Time:            req.Time,
			PatientTimezone: req.PatientTimezone,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newBookingResponse(b))
	}
}

func removeBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Remove(r.Context(), id); err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cancelBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := svc.Cancel(r.Context(), id)
		if err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(b))
	}
}

func availabilityHandler(projector *availability.Projector, facilityZone string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		providerID := q.Get("provider_id")
		if providerID == "" {
			writeError(w, http.StatusBadRequest, "missing_param", "provider_id is required")
			return
		}
		modality, err := booking.ParseModality(q.Get("modality"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_param", "modality must be remote or in_person")
			return
		}
		from, err := timezone.ParseDate(q.Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_param", "from must be YYYY-MM-DD")
			return
		}
		to := from
		if raw := q.Get("to"); raw != "" {
			if to, err = timezone.ParseDate(raw); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_param", "to must be YYYY-MM-DD")
				return
			}
		}
		visitorZone := q.Get("tz")
		if visitorZone == "" {
			visitorZone = "UTC"
		}

		slots, err := projector.Project(r.Context(), providerID, modality, from, to, visitorZone)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			ProviderID:       providerID,
			Modality:         string(modality),
			FacilityTimezone: facilityZone,
			VisitorTimezone:  visitorZone,
			Slots:            slots,
		})
	}
}

func statisticsHandler(agg *booking.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := agg.Summarize(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func listProvidersHandler(catalog booking.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers, err := catalog.ListProviders(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		resp := make([]ProviderResponse, len(providers))
		for i := range providers {
			resp[i] = newProviderResponse(&providers[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getProviderHandler(catalog booking.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := catalog.GetProvider(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, booking.ErrProviderNotFound) {
				writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newProviderResponse(p))
	}
}

func timezoneInfoHandler(resolver *timezone.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tz := r.URL.Query().Get("tz")
		info, err := resolver.Info(tz, time.Now())
		if err != nil && !errors.Is(err, timezone.ErrUnknownTimezone) {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		// Unknown zones degrade to the UTC fallback instead of failing.
		writeJSON(w, http.StatusOK, info)
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrMissingField):
		writeError(w, http.StatusBadRequest, "missing_field", err.Error())
	case errors.Is(err, booking.ErrInvalidField):
		writeError(w, http.StatusBadRequest, "invalid_field", err.Error())
	case errors.Is(err, booking.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "slot no longer available, choose another")
	case errors.Is(err, booking.ErrSlotBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrStorageFailure):
		writeError(w, http.StatusInternalServerError, "storage_failure", "booking could not be stored, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
