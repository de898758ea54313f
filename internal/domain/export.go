package domain

// Display placeholders used when a referenced resource cannot be resolved.
const (
	NotAssigned = "Not Assigned" // no reference on the record
	Unknown     = "Unknown"      // reference points at a missing record
)

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per trip, with the vehicle and
// driver resolved to display names.
type ExportRow struct {
	TripID        string
	Status        string
	StartDate     string // "2006-01-02"
	EndDate       string // "2006-01-02"
	CustomerName  string
	CustomerPhone string
	Route         string
	VehicleName   string
	VehicleNumber string
	DriverName    string
	Passengers    int
	Rent          float64
	Advance       float64
	Remaining     float64
}
