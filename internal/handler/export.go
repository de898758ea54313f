// export.go implements GET /export.
// Returns every trip as a flat table, one row per trip, with the vehicle and
// driver resolved to display names. Supports ?format=csv, ?format=xlsx or
// the default JSON.

package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/travel-desk/internal/domain"
)

const (
	exportFilename = "trips"
	exportSheet    = "Trips"
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportHeaders defines the column names written as the first row of CSV and
// XLSX exports.
var exportHeaders = []string{
	"trip_id", "status", "start_date", "end_date",
	"customer_name", "customer_phone", "route",
	"vehicle_name", "vehicle_number", "driver_name",
	"passengers", "rent", "advance", "remaining",
}

// ExportRow is the JSON representation of one export row.
type ExportRow struct {
	TripID        string  `json:"trip_id"`
	Status        string  `json:"status"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Route         string  `json:"route"`
	VehicleName   string  `json:"vehicle_name"`
	VehicleNumber string  `json:"vehicle_number"`
	DriverName    string  `json:"driver_name"`
	Passengers    int     `json:"passengers"`
	Rent          float64 `json:"rent"`
	Advance       float64 `json:"advance"`
	Remaining     float64 `json:"remaining"`
}

// getExport handles GET /export.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "xlsx":
	default:
		requestError(w, "format must be one of: json csv xlsx")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}

	switch format {
	case "csv":
		writeFile(w, "text/csv", exportFilename+".csv", buildCSV(rows))
	case "xlsx":
		body, err := buildXLSX(rows)
		if err != nil {
			s.serviceError(w, r, fmt.Errorf("handler.getExport: %w", err), "")
			return
		}
		writeFile(w, xlsxMediaType, exportFilename+".xlsx", body)
	default:
		writeJSON(w, http.StatusOK, mapSlice(rows, exportRowToResponse))
	}
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(exportHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRecord(r))
	}
	cw.Flush()
	return buf.Bytes()
}

// buildXLSX writes rows to a single-sheet workbook with a bold header row.
// Amounts stay numeric so spreadsheet formulas work on them.
func buildXLSX(rows []domain.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.TripID, r.Status, r.StartDate, r.EndDate,
			r.CustomerName, r.CustomerPhone, r.Route,
			r.VehicleName, r.VehicleNumber, r.DriverName,
			r.Passengers, r.Rent, r.Advance, r.Remaining,
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportRecord encodes a row as CSV fields. Amounts use two decimals.
func exportRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.Status,
		r.StartDate,
		r.EndDate,
		r.CustomerName,
		r.CustomerPhone,
		r.Route,
		r.VehicleName,
		r.VehicleNumber,
		r.DriverName,
		strconv.Itoa(r.Passengers),
		strconv.FormatFloat(r.Rent, 'f', 2, 64),
		strconv.FormatFloat(r.Advance, 'f', 2, 64),
		strconv.FormatFloat(r.Remaining, 'f', 2, 64),
	}
}

func exportRowToResponse(r domain.ExportRow) ExportRow {
	return ExportRow{
		TripID:        r.TripID,
		Status:        r.Status,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Route:         r.Route,
		VehicleName:   r.VehicleName,
		VehicleNumber: r.VehicleNumber,
		DriverName:    r.DriverName,
		Passengers:    r.Passengers,
		Rent:          r.Rent,
		Advance:       r.Advance,
		Remaining:     r.Remaining,
	}
}
