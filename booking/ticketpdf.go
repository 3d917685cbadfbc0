package booking

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"stagepass/middleware"
	"stagepass/models"
	"stagepass/utils"
)

// TicketPrinter renders a confirmed booking as a PDF with a signed QR
// payload, so a scanned code can be verified against the secret.
type TicketPrinter struct {
	Service *Service
	Secret  []byte
}

func NewTicketPrinter(s *Service, secret string) *TicketPrinter {
	return &TicketPrinter{Service: s, Secret: []byte(secret)}
}

// qrPayload is bookingID|showID|timestamp|signature.
func (tp *TicketPrinter) qrPayload(bookingID, showID string) string {
	data := fmt.Sprintf("%s|%s|%d", bookingID, showID, time.Now().Unix())
	h := hmac.New(sha256.New, tp.Secret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// GET /api/bookings/:id/ticket
func (tp *TicketPrinter) HandleTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := tp.Service.FindBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if booking.User != middleware.Identity(r) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if booking.Status != models.StatusConfirmed {
		utils.RespondWithError(w, http.StatusBadRequest, "Ticket available after payment confirmation")
		return
	}

	qrPNG, err := qrcode.Encode(tp.qrPayload(booking.ID, booking.ShowID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Ticket")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Show: %s", booking.ShowTitle))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Seats: %s", strings.Join(booking.SelectedSeats, ", ")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %d", booking.Amount))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking: %s", booking.ID))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=ticket-"+booking.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
