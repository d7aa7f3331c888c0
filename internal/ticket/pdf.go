package ticket

import (
	"bytes"
	"fmt"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// Renderer builds the printable e-ticket for a reservation.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(res *domain.Reservation, trip *domain.Trip, userName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Billet Teranga Bus", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BILLET ELECTRONIQUE - TERANGA BUS")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passager      : %s", orDash(userName)),
		fmt.Sprintf("Trajet        : %s", trip.Route()),
		fmt.Sprintf("Date / Heure  : %s %s", trip.DepartureDate.Format("2006-01-02"), trip.DepartureTime),
		fmt.Sprintf("Siege         : %d", res.SeatNumber),
		fmt.Sprintf("Prix          : %d FCFA", res.AmountCents/100),
		fmt.Sprintf("Paiement      : %s", orDash(res.PaymentMethod)),
		fmt.Sprintf("Code          : %s", res.Code),
		fmt.Sprintf("Statut        : %s", res.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Ce billet est valable pour un passager et un siege. Presentez-le avec une piece d'identite au depart.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
