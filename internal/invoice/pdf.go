// Package invoice renders trip invoices as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Document holds everything printed on an invoice. Names are already
// resolved for display; dates are calendar dates.
type Document struct {
	Number          string
	IssuedOn        time.Time
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	VehicleName     string
	VehicleNumber   string
	DriverName      string
	Route           string
	StartDate       time.Time
	EndDate         time.Time
	Passengers      int
	RentAmount      float64
	AdvancePayment  float64
	Remaining       float64
}

// PDFRenderer draws invoices on A4 pages with the core Helvetica font.
type PDFRenderer struct {
	company string
}

// NewPDFRenderer returns a renderer printing company in the header.
func NewPDFRenderer(company string) *PDFRenderer {
	if company == "" {
		company = "TRAVEL MANAGEMENT"
	}
	return &PDFRenderer{company: company}
}

// ContentType is the MIME type of rendered documents.
const ContentType = "application/pdf"

const displayDate = "02/01/2006"

// Render returns doc as a PDF.
func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+doc.Number, true)
	pdf.SetCreator(r.company, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(strings.ToUpper(r.company)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	line := func(text string) {
		pdf.CellFormat(0, 7, tr(text), "", 1, "L", false, 0, "")
	}
	heading := func(text string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		line(text)
		pdf.SetFont("Helvetica", "", 10)
	}

	line("Invoice No: " + doc.Number)
	line("Date: " + doc.IssuedOn.Format(displayDate))

	heading("Bill To:")
	line("Name: " + doc.CustomerName)
	line("Phone: " + doc.CustomerPhone)
	line("Address: " + doc.CustomerAddress)

	heading("Trip Details:")
	line(fmt.Sprintf("Vehicle: %s (%s)", doc.VehicleName, doc.VehicleNumber))
	line("Driver: " + doc.DriverName)
	line("Route: " + doc.Route)
	line("Start Date: " + doc.StartDate.Format(displayDate))
	line("End Date: " + doc.EndDate.Format(displayDate))
	line("Passengers: " + strconv.Itoa(doc.Passengers))

	heading("Payment Details:")
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 10, "Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(40, 10, "Amount", "", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(130, 10, "Total Rent", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, FormatAmount(doc.RentAmount), "", 1, "R", false, 0, "")
	pdf.CellFormat(130, 10, "Advance Payment", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, FormatAmount(doc.AdvancePayment), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 10, "Remaining Payment", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, FormatAmount(doc.Remaining), "T", 1, "R", false, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for your business!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "For any queries, please contact us.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice.PDFRenderer.Render: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatAmount formats v as rupees with two decimals and Indian digit
// grouping, e.g. 1234567.5 becomes "Rs. 12,34,567.50".
func FormatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(groups, ",") + "," + tail
	}
	return "Rs. " + sign + whole + "." + frac
}
