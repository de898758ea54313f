package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/middleware"
)

// markAttendance handles PUT /drivers/{id}/attendance/{date}. Marking the
// same day again overwrites the earlier record.
func (s *Server) markAttendance(w http.ResponseWriter, r *http.Request) {
	driverID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	date, err := parseDate("date", chi.URLParam(r, "date"))
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var req AttendanceRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	saved, err := s.attendance.Mark(r.Context(), domain.Attendance{
		DriverID: driverID,
		Date:     date,
		Status:   req.Status,
		Notes:    req.Notes,
	}, actor)
	if err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	writeJSON(w, http.StatusOK, attendanceToResponse(saved))
}

// listAttendance handles GET /drivers/{id}/attendance?month=YYYY-MM.
// An absent month means the current one.
func (s *Server) listAttendance(w http.ResponseWriter, r *http.Request) {
	driverID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())
	records, err := s.attendance.Month(r.Context(), driverID, r.URL.Query().Get("month"), actor)
	if err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(records, attendanceToResponse))
}
