package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"stagepass/errs"
	"stagepass/middleware"
	"stagepass/models"
	"stagepass/utils"
)

// API exposes the booking service over HTTP.
type API struct {
	Service *Service
}

func NewAPI(s *Service) *API {
	return &API{Service: s}
}

func respondErr(w http.ResponseWriter, err error) {
	if sc, ok := errs.AsSeatConflict(err); ok {
		utils.RespondWithError(w, http.StatusConflict, sc.Error())
		return
	}
	switch {
	case errors.Is(err, errs.ErrInvalidRequest):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, errs.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, errs.ErrDuplicateUser):
		utils.RespondWithError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, errs.ErrDependencyUnavailable):
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

// GET /api/shows
func (a *API) HandleListShows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	views, err := a.Service.ListShows(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// GET /api/shows/:id/seats
func (a *API) HandleGetSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	show, err := a.Service.GetSeats(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"seatLayout":  show.SeatLayout,
		"bookedSeats": show.BookedSeats,
		"totalSeats":  show.TotalSeats,
	})
}

// POST /api/bookings
func (a *API) HandleReserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		ShowID        string   `json:"showId"`
		SelectedSeats []string `json:"selectedSeats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	user := middleware.Identity(r)
	b, err := a.Service.Reserve(r.Context(), user, req.ShowID, req.SelectedSeats)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"bookingId": b.ID,
		"amount":    b.Amount,
	})
}

// GET /api/user/bookings
func (a *API) HandleUserBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := a.Service.BookingsForUser(r.Context(), middleware.Identity(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// POST /api/payments
//
// The confirm signal stands in for the external payment gateway; its
// authenticity is the gateway's problem, not ours. A falsy signal leaves the
// booking pending.
func (a *API) HandlePayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		BookingID string `json:"bookingId"`
		Bypass    bool   `json:"bypass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if !req.Bypass {
		// verify the booking exists even when the signal is absent
		if _, err := a.Service.FindBooking(r.Context(), req.BookingID); err != nil {
			respondErr(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Payment processed"})
		return
	}

	status, err := a.Service.Confirm(r.Context(), req.BookingID)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Payment successful",
		"status":  status,
	})
}

// POST /api/bookings/:id/cancel
func (a *API) HandleCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user := middleware.Identity(r)
	if err := a.Service.Cancel(r.Context(), user, ps.ByName("id")); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Booking cancelled, refund processed"})
}
