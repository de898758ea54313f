package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/middleware"
)

const tripNotFound = "trip not found"

// createTrip handles POST /trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), req.toDomain(uuid.Nil))
	if err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// listTrips handles GET /trips. Supports ?status= and ?driver_id= filters
// and optional ?page= / ?limit= paging; drivers always get their own trips
// only.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	filter := domain.TripFilter{Status: domain.TripStatus(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		requestError(w, "status must be one of: Upcoming Running Completed Cancelled")
		return
	}
	driverID, err := queryUUID(r, "driver_id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	filter.DriverID = driverID

	actor, _ := middleware.ActorFrom(r.Context())
	trips, err := s.trips.List(r.Context(), filter, actor)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	page, err := paginate(w, r, trips)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(page, tripToResponse))
}

// getTrip handles GET /trips/{id}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	trip, err := s.trips.GetByID(r.Context(), id, actor)
	if err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// updateTrip handles PUT /trips/{id}.
func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var req TripRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}

	updated, err := s.trips.Update(r.Context(), req.toDomain(id))
	if err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// updateTripStatus handles PATCH /trips/{id}/status.
func (s *Server) updateTripStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var req TripStatusRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	updated, err := s.trips.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// deleteTrip handles DELETE /trips/{id}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, tripNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getAvailability handles GET /availability?start=&end=&exclude_trip_id=.
// Missing dates reach the checker as zero values, which mark everything
// available.
func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	exclude, err := queryUUID(r, "exclude_trip_id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	avail, err := s.availability.Check(r.Context(), start, end, exclude)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, availabilityToResponse(avail))
}

// runSync handles POST /sync.
func (s *Server) runSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.sync.Run(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, syncReportToResponse(report))
}
