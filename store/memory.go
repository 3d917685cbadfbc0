package store

import (
	"context"
	"sync"

	"stagepass/errs"
	"stagepass/models"
)

// Memory is the in-process fallback used when the durable store is
// unreachable at startup. All state lives behind one mutex; seat reservation
// performs the conflict check and the mutation inside a single critical
// section, which is what makes it safe under concurrent requests.
type Memory struct {
	mu       sync.Mutex
	shows    []models.Show
	bookings []models.Booking
	users    map[string]models.User
}

func NewMemory(shows []models.Show) *Memory {
	// back-fill the same defaults the mongo migration applies
	for i := range shows {
		if shows[i].TotalSeats == 0 && shows[i].LegacySeats > 0 {
			shows[i].TotalSeats = shows[i].LegacySeats
			shows[i].LegacySeats = 0
		}
		if shows[i].TotalSeats == 0 {
			shows[i].TotalSeats = 100
		}
		if shows[i].BookedSeats == nil {
			shows[i].BookedSeats = []string{}
		}
		if shows[i].SeatLayout.Rows == 0 {
			shows[i].SeatLayout = models.SeatLayout{Rows: 10, Cols: 10}
		}
	}
	return &Memory{
		shows: shows,
		users: make(map[string]models.User),
	}
}

func (m *Memory) findShowLocked(id string) *models.Show {
	for i := range m.shows {
		if m.shows[i].ID == id {
			return &m.shows[i]
		}
	}
	return nil
}

func (m *Memory) FindShow(ctx context.Context, id string) (*models.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	show := m.findShowLocked(id)
	if show == nil {
		return nil, errs.ErrNotFound
	}
	cp := *show
	cp.BookedSeats = append([]string(nil), show.BookedSeats...)
	return &cp, nil
}

func (m *Memory) ListShows(ctx context.Context) ([]models.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Show, len(m.shows))
	for i, s := range m.shows {
		out[i] = s
		out[i].BookedSeats = append([]string(nil), s.BookedSeats...)
	}
	return out, nil
}

func (m *Memory) ReserveSeats(ctx context.Context, showID string, seats []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	show := m.findShowLocked(showID)
	if show == nil {
		return errs.ErrNotFound
	}
	booked := make(map[string]bool, len(show.BookedSeats))
	for _, s := range show.BookedSeats {
		booked[s] = true
	}
	for _, s := range seats {
		if booked[s] {
			return &errs.SeatConflictError{Seat: s}
		}
	}
	if len(show.BookedSeats)+len(seats) > show.TotalSeats {
		return &errs.SeatConflictError{Seat: seats[0]}
	}
	show.BookedSeats = append(show.BookedSeats, seats...)
	return nil
}

func (m *Memory) ReleaseSeats(ctx context.Context, showID string, seats []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	show := m.findShowLocked(showID)
	if show == nil {
		return errs.ErrNotFound
	}
	release := make(map[string]bool, len(seats))
	for _, s := range seats {
		release[s] = true
	}
	kept := show.BookedSeats[:0]
	for _, s := range show.BookedSeats {
		if !release[s] {
			kept = append(kept, s)
		}
	}
	show.BookedSeats = kept
	return nil
}

func (m *Memory) CreateBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *Memory) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bookings {
		if m.bookings[i].ID == id {
			cp := m.bookings[i]
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *Memory) FindBookingsByUser(ctx context.Context, email string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if b.User == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) UpdateBookingStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings[i].Status = status
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.Email]; exists {
		return errs.ErrDuplicateUser
	}
	m.users[u.Email] = *u
	return nil
}

func (m *Memory) FindUser(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}
