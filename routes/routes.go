package routes

import (
	"github.com/julienschmidt/httprouter"

	"stagepass/auth"
	"stagepass/booking"
	"stagepass/middleware"
	"stagepass/ratelim"
)

func AddAuthRoutes(router *httprouter.Router, a *auth.API, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(a.Register))
	router.POST("/api/auth/login", rl.Limit(a.Login))
	router.POST("/api/auth/logout", a.Logout)
	router.GET("/api/auth/verify-session", a.VerifySession)
}

func AddShowRoutes(router *httprouter.Router, b *booking.API, hub *booking.Hub) {
	router.GET("/api/shows", b.HandleListShows)
	router.GET("/api/shows/:id/seats", b.HandleGetSeats)
	router.GET("/api/shows/:id/updates", hub.HandleWS)
}

func AddBookingRoutes(router *httprouter.Router, b *booking.API, tp *booking.TicketPrinter, am *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/bookings", rl.Limit(am.Authenticate(b.HandleReserve)))
	router.GET("/api/user/bookings", am.Authenticate(b.HandleUserBookings))
	router.POST("/api/bookings/:id/cancel", rl.Limit(am.Authenticate(b.HandleCancel)))
	router.GET("/api/bookings/:id/ticket", am.Authenticate(tp.HandleTicket))

	// payment confirmation arrives from the external gateway, not a session
	router.POST("/api/payments", rl.Limit(b.HandlePayment))
}
