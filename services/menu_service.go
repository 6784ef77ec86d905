package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
)

// MenuSelection is the payload stored on a reservation.
type MenuSelection struct {
	Items []MenuSelectionItem `json:"items"`
	Notes string              `json:"notes,omitempty"`
}

type MenuSelectionItem struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// MenuSummary aggregates a reservation's menu selection.
type MenuSummary struct {
	ReservationID uint                `json:"reservation_id"`
	CustomerName  string              `json:"customer_name"`
	Date          time.Time           `json:"date"`
	PartySize     int                 `json:"party_size"`
	Items         []MenuSelectionItem `json:"items"`
	TotalItems    int                 `json:"total_items"`
	TotalAmount   float64             `json:"total_amount"`
	Notes         string              `json:"notes,omitempty"`
}

// BuildMenuSummary parses the reservation's stored selection. A
// reservation without a selection yields an empty summary, not an error.
func BuildMenuSummary(reservation models.Reservation) (*MenuSummary, error) {
	summary := &MenuSummary{
		ReservationID: reservation.ID,
		CustomerName:  reservation.CustomerName,
		Date:          reservation.Date,
		PartySize:     reservation.PartySize,
		Items:         []MenuSelectionItem{},
	}

	if len(reservation.MenuSelection) == 0 {
		return summary, nil
	}

	var selection MenuSelection
	if err := json.Unmarshal(reservation.MenuSelection, &selection); err != nil {
		return nil, fmt.Errorf("error parsing menu selection: %v", err)
	}

	summary.Items = selection.Items
	summary.Notes = selection.Notes
	for _, item := range selection.Items {
		summary.TotalItems += item.Quantity
		summary.TotalAmount += float64(item.Quantity) * item.Price
	}

	return summary, nil
}

// RenderMenuPDF renders the summary as a printable PDF.
func RenderMenuPDF(summary *MenuSummary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Selección de menú - Reserva #%d", summary.ReservationID)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Cliente: %s", summary.CustomerName)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Fecha: %s", summary.Date.Format("02/01/2006 15:04"))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Comensales: %d", summary.PartySize)))
	pdf.Ln(10)

	// Table header
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, tr("Plato"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, tr("Cantidad"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Precio"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, tr("Subtotal"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range summary.Items {
		subtotal := float64(item.Quantity) * item.Price
		pdf.CellFormat(90, 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, tr(utils.FormatCurrency(item.Price)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, tr(utils.FormatCurrency(subtotal)), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 8, tr("Total"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, tr(utils.FormatCurrency(summary.TotalAmount)), "1", 1, "R", false, 0, "")

	if summary.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr("Notas: "+summary.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering pdf: %v", err)
	}
	return buf.Bytes(), nil
}
