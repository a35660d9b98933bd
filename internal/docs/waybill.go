// Package docs renders printable booking documents.
package docs

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// WaybillData is everything printed on a waybill. Admin notes and the rider's
// phone are never part of it.
type WaybillData struct {
	Booking      domain.Booking
	History      []domain.StatusHistoryEntry
	PickupArea   string
	DropoffArea  string
	BusinessName string
	SupportPhone string
	Currency     string
	Location     *time.Location
}

// BuildWaybill returns the PDF bytes and a download filename.
func BuildWaybill(d WaybillData) ([]byte, string, error) {
	b := d.Booking
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Waybill "+b.TrackingID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, safe(d.BusinessName, "Waybill"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	if d.SupportPhone != "" {
		pdf.Cell(0, 6, "Support: "+d.SupportPhone)
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Tracking ID: "+b.TrackingID)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Status: "+strings.ReplaceAll(string(b.Status), "_", " "))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Booked: "+b.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	pdf.Ln(10)

	section(pdf, "Sender")
	partyLines(pdf, b.Sender)
	addressLines(pdf, b.Pickup, d.PickupArea)

	section(pdf, "Receiver")
	partyLines(pdf, b.Receiver)
	addressLines(pdf, b.Dropoff, d.DropoffArea)

	section(pdf, "Package")
	line(pdf, "Description", safe(b.PackageDescription, "-"))
	line(pdf, "ETA", safe(b.EtaText, "-"))
	if b.RiderName != "" {
		line(pdf, "Rider", b.RiderName)
	}
	if b.CustomerNotes != "" {
		pdf.MultiCell(0, 6, "Notes: "+b.CustomerNotes, "", "", false)
	}
	pdf.Ln(2)

	section(pdf, "Charges")
	line(pdf, "Delivery", money(d.Currency, b.PriceBase))
	addons := "-"
	if len(b.AddonsSelected) > 0 {
		addons = strings.Join(b.AddonsSelected, ", ")
	}
	line(pdf, "Add-ons", fmt.Sprintf("%s (%s)", money(d.Currency, b.PriceAddons), addons))
	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, "Total", money(d.Currency, b.PriceTotal))
	pdf.SetFont("Helvetica", "", 11)

	if len(d.History) > 0 {
		section(pdf, "History")
		for _, h := range d.History {
			pdf.MultiCell(0, 6, fmt.Sprintf("%s  %s  %s",
				h.CreatedAt.In(loc).Format("2006-01-02 15:04"),
				strings.ReplaceAll(string(h.Status), "_", " "),
				h.Note), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("WAYBILL_%s.pdf", b.TrackingID), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(0, 6, fmt.Sprintf("%-12s: %s", label, value))
	pdf.Ln(6)
}

func partyLines(pdf *gofpdf.Fpdf, p domain.Party) {
	line(pdf, "Name", safe(p.Name, "-"))
	line(pdf, "Phone", safe(p.Phone, "-"))
	if p.WhatsApp != "" {
		line(pdf, "WhatsApp", p.WhatsApp)
	}
}

func addressLines(pdf *gofpdf.Fpdf, a domain.Address, area string) {
	line(pdf, "Address", safe(a.Street, "-"))
	if a.Landmark != "" {
		line(pdf, "Landmark", a.Landmark)
	}
	if area != "" {
		line(pdf, "Area", area)
	}
	pdf.Ln(3)
}

func money(currency string, m domain.Money) string {
	if currency == "" {
		return m.String()
	}
	return currency + " " + m.String()
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
