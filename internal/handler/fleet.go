package handler

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	vehicleNotFound = "vehicle not found"
	driverNotFound  = "driver not found"
)

// listVehicles handles GET /vehicles.
func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicles.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(vehicles, vehicleToResponse))
}

// createVehicle handles POST /vehicles.
func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}
	created, err := s.vehicles.Create(r.Context(), req.toDomain(uuid.Nil))
	if err != nil {
		s.serviceError(w, r, err, vehicleNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, vehicleToResponse(created))
}

// getVehicle handles GET /vehicles/{id}.
func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	v, err := s.vehicles.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, vehicleNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(v))
}

// updateVehicle handles PUT /vehicles/{id}.
func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var req VehicleRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}
	updated, err := s.vehicles.Update(r.Context(), req.toDomain(id))
	if err != nil {
		s.serviceError(w, r, err, vehicleNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(updated))
}

// deleteVehicle handles DELETE /vehicles/{id}.
func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.vehicles.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, vehicleNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listDrivers handles GET /drivers.
func (s *Server) listDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.drivers.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(drivers, driverToResponse))
}

// createDriver handles POST /drivers.
func (s *Server) createDriver(w http.ResponseWriter, r *http.Request) {
	var req DriverRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}
	created, err := s.drivers.Create(r.Context(), req.toDomain(uuid.Nil))
	if err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, driverToResponse(created))
}

// getDriver handles GET /drivers/{id}.
func (s *Server) getDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	d, err := s.drivers.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	writeJSON(w, http.StatusOK, driverToResponse(d))
}

// updateDriver handles PUT /drivers/{id}.
func (s *Server) updateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var req DriverRequest
	if err := decodeBody(r, &req); err != nil {
		requestError(w, err.Error())
		return
	}
	updated, err := s.drivers.Update(r.Context(), req.toDomain(id))
	if err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	writeJSON(w, http.StatusOK, driverToResponse(updated))
}

// deleteDriver handles DELETE /drivers/{id}.
func (s *Server) deleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.drivers.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, driverNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listCustomers handles GET /customers.
func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(customers, customerToResponse))
}
