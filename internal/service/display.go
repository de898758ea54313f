package service

import (
	"github.com/google/uuid"

	"github.com/pkordes/travel-desk/internal/domain"
)

// directory resolves vehicle and driver references for display. A missing
// reference shows as domain.NotAssigned; a reference to a deleted record
// shows as domain.Unknown.
type directory struct {
	vehicles map[uuid.UUID]domain.Vehicle
	drivers  map[uuid.UUID]domain.Driver
}

func newDirectory(vehicles []domain.Vehicle, drivers []domain.Driver) directory {
	d := directory{
		vehicles: make(map[uuid.UUID]domain.Vehicle, len(vehicles)),
		drivers:  make(map[uuid.UUID]domain.Driver, len(drivers)),
	}
	for _, v := range vehicles {
		d.vehicles[v.ID] = v
	}
	for _, dr := range drivers {
		d.drivers[dr.ID] = dr
	}
	return d
}

// vehicle returns the display name and registration number of id.
func (d directory) vehicle(id uuid.UUID) (name, number string) {
	if id == uuid.Nil {
		return domain.NotAssigned, ""
	}
	v, ok := d.vehicles[id]
	if !ok {
		return domain.Unknown, ""
	}
	return v.Name, v.Number
}

func (d directory) driver(id uuid.UUID) string {
	if id == uuid.Nil {
		return domain.NotAssigned
	}
	dr, ok := d.drivers[id]
	if !ok {
		return domain.Unknown
	}
	return dr.Name
}
