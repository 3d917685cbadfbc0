// Package store is the inventory repository: users, shows and bookings.
//
// Two implementations exist, Mongo and Memory. Which one serves the process is
// decided exactly once at startup by a connectivity probe; a store that fails
// mid-run surfaces request-level errors rather than failing over.
package store

import (
	"context"

	"stagepass/models"
)

type Inventory interface {
	FindShow(ctx context.Context, id string) (*models.Show, error)
	ListShows(ctx context.Context) ([]models.Show, error)

	// ReserveSeats marks seats as booked in one conditional operation: it
	// succeeds only if none of the seats are already present. Returns
	// *errs.SeatConflictError when a seat is taken, errs.ErrNotFound for an
	// unknown show.
	ReserveSeats(ctx context.Context, showID string, seats []string) error

	// ReleaseSeats removes seats by value. Seats not present are ignored.
	ReleaseSeats(ctx context.Context, showID string, seats []string) error

	CreateBooking(ctx context.Context, b *models.Booking) error
	FindBooking(ctx context.Context, id string) (*models.Booking, error)
	FindBookingsByUser(ctx context.Context, email string) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error

	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, email string) (*models.User, error)
}
