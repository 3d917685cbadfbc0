// Package booking holds the reservation state machine and the availability
// read paths. The service never caches authoritative seat state: it reads
// through the inventory store and only invalidates the derived listing cache
// after a mutation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"stagepass/cache"
	"stagepass/errs"
	"stagepass/models"
	"stagepass/store"
)

// showsCacheKey caches the projected show listing until the next inventory
// mutation anywhere in the system.
const showsCacheKey = "shows"

const listingTTL = time.Hour

// Notifier receives a signal whenever a show's seat inventory changed.
type Notifier interface {
	ShowChanged(showID string)
}

type Service struct {
	store  store.Inventory
	cache  *cache.Cache
	notify Notifier // may be nil
}

func NewService(inv store.Inventory, c *cache.Cache, n Notifier) *Service {
	return &Service{store: inv, cache: c, notify: n}
}

func (s *Service) showChanged(ctx context.Context, showID string) {
	s.cache.Delete(ctx, showsCacheKey)
	if s.notify != nil {
		s.notify.ShowChanged(showID)
	}
}

// validSeat checks a seat id like "R3C5" against the show's layout.
func validSeat(seat string, layout models.SeatLayout) bool {
	if !strings.HasPrefix(seat, "R") {
		return false
	}
	rest := strings.TrimPrefix(seat, "R")
	parts := strings.SplitN(rest, "C", 2)
	if len(parts) != 2 {
		return false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	return row >= 1 && row <= layout.Rows && col >= 1 && col <= layout.Cols
}

// Reserve validates the seat selection, commits the seats atomically against
// the store, and records the booking at the show's current price. A failed
// booking insert releases the seats again so no partial state survives.
func (s *Service) Reserve(ctx context.Context, user, showID string, seats []string) (*models.Booking, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats selected: %w", errs.ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(seats))
	for _, seat := range seats {
		if seen[seat] {
			return nil, fmt.Errorf("duplicate seat %s: %w", seat, errs.ErrInvalidRequest)
		}
		seen[seat] = true
	}

	show, err := s.store.FindShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	Normalize(show)

	for _, seat := range seats {
		if !validSeat(seat, show.SeatLayout) {
			return nil, fmt.Errorf("invalid seat %s: %w", seat, errs.ErrInvalidRequest)
		}
	}

	// Early conflict check for a precise error; the store's conditional
	// write below is what actually guarantees exclusivity under races.
	booked := make(map[string]bool, len(show.BookedSeats))
	for _, seat := range show.BookedSeats {
		booked[seat] = true
	}
	for _, seat := range seats {
		if booked[seat] {
			return nil, &errs.SeatConflictError{Seat: seat}
		}
	}

	if err := s.store.ReserveSeats(ctx, showID, seats); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:            uuid.NewString(),
		User:          user,
		ShowID:        showID,
		ShowTitle:     show.Title,
		SelectedSeats: append([]string(nil), seats...),
		Tickets:       len(seats),
		Amount:        show.Price * int64(len(seats)),
		Status:        models.StatusPending,
		Created:       time.Now().Format(time.RFC3339),
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		// roll the seats back so a failed reservation leaves no trace
		_ = s.store.ReleaseSeats(ctx, showID, seats)
		return nil, err
	}

	s.showChanged(ctx, showID)
	return booking, nil
}

// Confirm flips a pending booking to confirmed and returns the resulting
// status. Confirming an already-confirmed booking is a no-op; a cancelled
// booking stays cancelled and its seats stay released.
func (s *Service) Confirm(ctx context.Context, bookingID string) (string, error) {
	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if b.Status != models.StatusPending {
		return b.Status, nil
	}
	if err := s.store.UpdateBookingStatus(ctx, bookingID, models.StatusConfirmed); err != nil {
		return "", err
	}
	return models.StatusConfirmed, nil
}

// Cancel releases the booking's seats and marks it cancelled. Cancelling an
// already-cancelled booking succeeds without touching inventory again.
func (s *Service) Cancel(ctx context.Context, user, bookingID string) error {
	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.User != user {
		return errs.ErrUnauthorized
	}
	if b.Status == models.StatusCancelled {
		return nil
	}

	if err := s.store.ReleaseSeats(ctx, b.ShowID, b.SelectedSeats); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	if err := s.store.UpdateBookingStatus(ctx, bookingID, models.StatusCancelled); err != nil {
		return err
	}

	s.showChanged(ctx, b.ShowID)
	return nil
}

// BookingsForUser lists a user's bookings, newest last.
func (s *Service) BookingsForUser(ctx context.Context, user string) ([]models.Booking, error) {
	return s.store.FindBookingsByUser(ctx, user)
}

// FindBooking exposes a single booking lookup for the ticket render path.
func (s *Service) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.FindBooking(ctx, id)
}
