package models

// SeatLayout describes the seat grid of a show. rows*cols may exceed
// TotalSeats; seat ids beyond TotalSeats are simply never sold.
type SeatLayout struct {
	Rows int `json:"rows" bson:"rows"`
	Cols int `json:"cols" bson:"cols"`
}

type Show struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Date        string     `json:"date" bson:"date"`
	Time        string     `json:"time" bson:"time"`
	Price       int64      `json:"price" bson:"price"` // smallest currency unit
	TotalSeats  int        `json:"totalSeats" bson:"totalSeats"`
	BookedSeats []string   `json:"bookedSeats" bson:"bookedSeats"`
	SeatLayout  SeatLayout `json:"seatLayout" bson:"seatLayout"`

	// Legacy field from old documents; migrated to TotalSeats at startup
	// and normalized on read paths.
	LegacySeats int `json:"-" bson:"seats,omitempty"`
}

// ShowView is what listing endpoints return: the show plus the derived
// availability count.
type ShowView struct {
	Show
	AvailableSeats int `json:"availableSeats"`
}

// Booking status values. Transitions are pending→confirmed or
// pending→cancelled; only the edge into cancelled releases seats.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID            string   `json:"id" bson:"id"`
	User          string   `json:"user" bson:"user"` // owning user's email
	ShowID        string   `json:"showId" bson:"showId"`
	ShowTitle     string   `json:"showTitle" bson:"showTitle"`
	SelectedSeats []string `json:"selectedSeats" bson:"selectedSeats"`
	Tickets       int      `json:"tickets" bson:"tickets"`
	Amount        int64    `json:"amount" bson:"amount"` // price captured at booking time
	Status        string   `json:"status" bson:"status"`
	Created       string   `json:"created" bson:"created"` // RFC 3339
}

type User struct {
	Email    string `json:"email" bson:"email"`
	Name     string `json:"name" bson:"name"`
	Password string `json:"-" bson:"password"` // bcrypt hash
}
